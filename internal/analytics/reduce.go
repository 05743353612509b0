package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sightline-analytics/sightline/internal/models"
	"github.com/sightline-analytics/sightline/internal/storage"
)

// Pure reductions over fetched rows. Both the warehouse fallback and
// the in-process aggregation paths go through these, so the two can
// never drift apart in shape.

// BuildMetricsMap reorganizes flat metric rows into a per-item map of
// metric name to coerced numeric value.
func BuildMetricsMap(rows []models.Metric) map[uuid.UUID]map[string]float64 {
	m := make(map[uuid.UUID]map[string]float64)
	for _, row := range rows {
		if m[row.ContentID] == nil {
			m[row.ContentID] = make(map[string]float64)
		}
		m[row.ContentID][row.Name] = models.ParseMetricValue(row.Value)
	}
	return m
}

// SummaryTotals sums the three headline metrics across all rows.
func SummaryTotals(rows []models.Metric) (views, likes, comments float64) {
	for _, row := range rows {
		v := models.ParseMetricValue(row.Value)
		switch row.Name {
		case models.MetricViews:
			views += v
		case models.MetricLikes:
			likes += v
		case models.MetricComments:
			comments += v
		}
	}
	return views, likes, comments
}

// EngagementRate formats (likes+comments)/views as a percentage with
// two decimals. Zero views yields "0.00", never a division error.
func EngagementRate(likes, comments, views float64) string {
	if views <= 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", (likes+comments)/views*100)
}

// CountByPlatform groups content items by platform. Output is sorted
// by platform name so repeated runs are byte-identical.
func CountByPlatform(items []models.ContentItem) []storage.PlatformCount {
	counts := make(map[models.Platform]int)
	for _, item := range items {
		counts[item.Platform]++
	}
	res := make([]storage.PlatformCount, 0, len(counts))
	for p, n := range counts {
		res = append(res, storage.PlatformCount{Platform: p, Count: n})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Platform < res[j].Platform })
	return res
}

// SumViewsByDate groups items by publish date and sums their views.
// Dates with no content simply do not appear; the series is sparse by
// contract. Output is ascending by date.
func SumViewsByDate(items []models.ContentItem, viewsByContent map[uuid.UUID]float64) []storage.DailyViewsRow {
	byDate := make(map[time.Time]float64)
	for _, item := range items {
		day := item.PostDate.Truncate(24 * time.Hour)
		byDate[day] += viewsByContent[item.ID]
	}
	res := make([]storage.DailyViewsRow, 0, len(byDate))
	for d, v := range byDate {
		res = append(res, storage.DailyViewsRow{Date: d, Views: v})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date.Before(res[j].Date) })
	return res
}

// PercentChange computes the period-over-period delta as a percentage
// rounded to one decimal. With no previous-period baseline the delta
// is 0 when the current value is also zero, and +100 otherwise
// (growth from zero).
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return math.Round((current-previous)/previous*100*10) / 10
}

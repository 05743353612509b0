package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/sightline-analytics/sightline/internal/models"
)

// Summary is the headline stat card payload.
type Summary struct {
	TotalViews        float64 `json:"totalViews"`
	TotalLikes        float64 `json:"totalLikes"`
	TotalComments     float64 `json:"totalComments"`
	AverageEngagement string  `json:"averageEngagement"`
}

// PlatformPerformanceRow is one row of the per-platform breakdown
// table.
type PlatformPerformanceRow struct {
	Platform   models.Platform `json:"platform"`
	Posts      int             `json:"posts"`
	Views      float64         `json:"views"`
	Engagement string          `json:"engagement"`
	Reach      int             `json:"reach"`
}

// SummaryStats computes the headline totals for a query window. An
// empty content set yields the zero summary without a metrics fetch.
func (s *Service) SummaryStats(ctx context.Context, q Query) (*Summary, error) {
	if payload := s.cache.Get(ctx, summaryCacheKey(q)); payload != nil {
		var cached Summary
		if err := json.Unmarshal(payload, &cached); err == nil {
			return &cached, nil
		}
	}

	items, err := s.contentInWindow(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content for summary: %w", err)
	}
	if len(items) == 0 {
		return &Summary{AverageEngagement: "0.00"}, nil
	}

	rows, err := s.metricRowsFor(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metrics for summary: %w", err)
	}

	views, likes, comments := SummaryTotals(rows)
	summary := &Summary{
		TotalViews:        views,
		TotalLikes:        likes,
		TotalComments:     comments,
		AverageEngagement: EngagementRate(likes, comments, views),
	}

	if payload, err := json.Marshal(summary); err == nil {
		s.cache.Set(ctx, summaryCacheKey(q), payload)
	}
	return summary, nil
}

// PlatformPerformance groups the filtered content set by platform and
// computes posts, views, engagement and reach per platform. Output is
// sorted by platform name.
func (s *Service) PlatformPerformance(ctx context.Context, q Query) ([]PlatformPerformanceRow, error) {
	items, err := s.contentInWindow(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content for performance: %w", err)
	}
	if len(items) == 0 {
		return []PlatformPerformanceRow{}, nil
	}

	rows, err := s.metricRowsFor(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metrics for performance: %w", err)
	}
	metricsMap := BuildMetricsMap(rows)

	type bucket struct {
		posts  int
		views  float64
		likes  float64
		commts float64
	}
	buckets := make(map[models.Platform]*bucket)
	for _, item := range items {
		b, ok := buckets[item.Platform]
		if !ok {
			b = &bucket{}
			buckets[item.Platform] = b
		}
		b.posts++
		m := metricsMap[item.ID]
		b.views += m[models.MetricViews]
		b.likes += m[models.MetricLikes]
		b.commts += m[models.MetricComments]
	}

	res := make([]PlatformPerformanceRow, 0, len(buckets))
	for _, pc := range CountByPlatform(items) {
		b := buckets[pc.Platform]
		row := PlatformPerformanceRow{
			Platform:   pc.Platform,
			Posts:      b.posts,
			Views:      b.views,
			Engagement: EngagementRate(b.likes, b.commts, b.views),
		}
		if b.posts > 0 {
			row.Reach = int(math.Round(b.views / float64(b.posts)))
		}
		res = append(res, row)
	}
	return res, nil
}

func summaryCacheKey(q Query) string {
	return cacheKey("summary", q)
}

func comparisonCacheKey(q Query) string {
	return cacheKey("comparison", q)
}

func cacheKey(kind string, q Query) string {
	campaign := ""
	if q.CampaignID != nil {
		campaign = q.CampaignID.String()
	}
	return fmt.Sprintf("sightline:%s:%s:%s:%s:%s:%s",
		kind,
		q.ClientID,
		q.Window.Start.Format(models.DateLayout),
		q.Window.End.Format(models.DateLayout),
		q.Platform,
		campaign,
	)
}

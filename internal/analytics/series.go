package analytics

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/google/uuid"

	"github.com/sightline-analytics/sightline/internal/models"
	"github.com/sightline-analytics/sightline/internal/storage"
)

// DailyPoint is one point of the daily views chart. The series is
// sparse: a date appears only when at least one item was published on
// it.
type DailyPoint struct {
	Date  string  `json:"date"`
	Views float64 `json:"views"`
}

// DailyViews produces the per-publish-date views series for a window,
// optionally platform-filtered, ascending by date. Preferred path is
// the warehouse GROUP BY; the fallback fetches raw rows and reduces
// through SumViewsByDate. The series has no campaign dimension: both
// paths see client, window and platform only, so a campaign filter on
// the request cannot make them diverge.
func (s *Service) DailyViews(ctx context.Context, q Query) ([]DailyPoint, error) {
	if s.stats != nil {
		rows, err := s.stats.DailyViews(ctx, q.ClientID, q.Window.Start, q.Window.End, q.Platform)
		if err == nil {
			return toPoints(rows), nil
		}
		s.logger.Warn("daily views aggregate failed, falling back to raw rows",
			zap.String("client_id", q.ClientID.String()),
			zap.Error(err),
		)
		s.countFallback("daily_views")
	}

	items, err := s.contentInWindow(ctx, Query{ClientID: q.ClientID, Window: q.Window, Platform: q.Platform})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content for daily views: %w", err)
	}
	if len(items) == 0 {
		return []DailyPoint{}, nil
	}

	rows, err := s.metricRowsFor(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metrics for daily views: %w", err)
	}

	viewsByContent := make(map[uuid.UUID]float64)
	for _, m := range rows {
		if m.Name == models.MetricViews {
			viewsByContent[m.ContentID] = models.ParseMetricValue(m.Value)
		}
	}
	return toPoints(SumViewsByDate(items, viewsByContent)), nil
}

func toPoints(rows []storage.DailyViewsRow) []DailyPoint {
	res := make([]DailyPoint, 0, len(rows))
	for _, row := range rows {
		res = append(res, DailyPoint{
			Date:  row.Date.Format(models.DateLayout),
			Views: row.Views,
		})
	}
	return res
}

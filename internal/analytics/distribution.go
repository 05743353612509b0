package analytics

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sightline-analytics/sightline/internal/models"
	"github.com/sightline-analytics/sightline/internal/storage"
)

// PlatformSlice is one wedge of the platform distribution chart.
type PlatformSlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// PlatformDistribution counts content per platform in the window.
// The warehouse aggregate is the preferred path; when it is absent or
// fails, raw rows are fetched and grouped in-process through the same
// CountByPlatform reduction, so both paths produce an identical
// shape.
func (s *Service) PlatformDistribution(ctx context.Context, q Query) ([]PlatformSlice, error) {
	if s.stats != nil {
		counts, err := s.stats.PlatformCounts(ctx, q.ClientID, q.Window.Start, q.Window.End)
		if err == nil {
			return toSlices(counts), nil
		}
		s.logger.Warn("platform aggregate failed, falling back to raw rows",
			zap.String("client_id", q.ClientID.String()),
			zap.Error(err),
		)
		s.countFallback("platform_counts")
	}

	items, err := s.contentInWindow(ctx, Query{ClientID: q.ClientID, Window: q.Window})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content for distribution: %w", err)
	}
	return toSlices(CountByPlatform(items)), nil
}

func toSlices(counts []storage.PlatformCount) []PlatformSlice {
	res := make([]PlatformSlice, 0, len(counts))
	for _, c := range counts {
		res = append(res, PlatformSlice{
			Name:  string(c.Platform),
			Value: c.Count,
			Color: models.PlatformColor(c.Platform),
		})
	}
	return res
}

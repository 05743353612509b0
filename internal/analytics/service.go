package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sightline-analytics/sightline/internal/cache"
	"github.com/sightline-analytics/sightline/internal/metrics"
	"github.com/sightline-analytics/sightline/internal/models"
	"github.com/sightline-analytics/sightline/internal/storage"
)

// maxAggregationRows caps how many content rows a single aggregation
// reads. Reductions need the full filtered set, not one page, so the
// cap is a safety valve rather than pagination.
const maxAggregationRows = 10000

// Window is an inclusive date range on publish dates.
type Window struct {
	Start time.Time
	End   time.Time
}

// Query scopes an aggregation request. ClientID is mandatory;
// Platform and CampaignID narrow the content set when present.
type Query struct {
	ClientID   uuid.UUID
	Window     Window
	Platform   models.Platform
	CampaignID *uuid.UUID
}

// Service computes all dashboard aggregates. It reads through the
// repositories and, when configured, prefers the warehouse aggregate
// path and the Redis payload cache. The service holds no mutable
// state; every method is safe for concurrent use.
type Service struct {
	content   storage.ContentRepo
	metrics   storage.MetricRepo
	campaigns storage.CampaignRepo
	stats     storage.StatsStore
	cache     *cache.Cache
	prom      *metrics.Metrics
	logger    *zap.Logger
}

// NewService constructs the analytics service. stats may be nil (no
// warehouse: aggregate endpoints group raw rows in-process), cache
// may be nil (no Redis: every request recomputes) and prom may be nil
// (telemetry disabled).
func NewService(content storage.ContentRepo, metricRepo storage.MetricRepo, campaigns storage.CampaignRepo, stats storage.StatsStore, payloadCache *cache.Cache, prom *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{
		content:   content,
		metrics:   metricRepo,
		campaigns: campaigns,
		stats:     stats,
		cache:     payloadCache,
		prom:      prom,
		logger:    logger,
	}
}

// countFallback records that a warehouse aggregate failed and the
// in-process path served the request instead.
func (s *Service) countFallback(query string) {
	if s.prom != nil {
		s.prom.AggregateFallbacks.WithLabelValues(query).Inc()
	}
}

// contentInWindow fetches the full filtered content set for a query.
func (s *Service) contentInWindow(ctx context.Context, q Query) ([]models.ContentItem, error) {
	start, end := q.Window.Start, q.Window.End
	return s.content.ListContent(ctx, storage.ContentFilter{
		ClientID:   q.ClientID,
		Platform:   q.Platform,
		CampaignID: q.CampaignID,
		StartDate:  &start,
		EndDate:    &end,
		Limit:      maxAggregationRows,
	})
}

// metricRowsFor fetches metric rows for a content set, returning an
// empty slice without touching the store when the set is empty. This
// avoids the degenerate IN () query.
func (s *Service) metricRowsFor(ctx context.Context, items []models.ContentItem) ([]models.Metric, error) {
	if len(items) == 0 {
		return []models.Metric{}, nil
	}
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return s.metrics.MetricsForContent(ctx, ids)
}

// MetricsForContent returns per-item metric maps for the given IDs.
// An empty ID set short-circuits to an empty map without a store
// round trip.
func (s *Service) MetricsForContent(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]map[string]float64, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]map[string]float64{}, nil
	}
	rows, err := s.metrics.MetricsForContent(ctx, ids)
	if err != nil {
		return nil, err
	}
	return BuildMetricsMap(rows), nil
}

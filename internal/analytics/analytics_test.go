package analytics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sightline-analytics/sightline/internal/models"
	"github.com/sightline-analytics/sightline/internal/storage"
)

// fixture bundles a service over in-memory repos with seed helpers.
type fixture struct {
	svc       *Service
	content   *storage.InMemoryContentRepo
	metrics   *storage.InMemoryMetricRepo
	campaigns *storage.InMemoryCampaignRepo
	clientID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	content := storage.NewInMemoryContentRepo()
	metricRepo := storage.NewInMemoryMetricRepo()
	campaigns := storage.NewInMemoryCampaignRepo()
	return &fixture{
		svc:       NewService(content, metricRepo, campaigns, nil, nil, nil, zap.NewNop()),
		content:   content,
		metrics:   metricRepo,
		campaigns: campaigns,
		clientID:  uuid.New(),
	}
}

// addItem seeds one content item with optional metrics given as
// name/value pairs.
func (f *fixture) addItem(t *testing.T, platform models.Platform, date string, metrics map[string]string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	f.content.AddItem(models.ContentItem{
		ID:       id,
		ClientID: f.clientID,
		Name:     fmt.Sprintf("item-%s", id.String()[:8]),
		Platform: platform,
		PostDate: mustDate(t, date),
	})
	for name, value := range metrics {
		f.metrics.SetMetric(id, name, value)
	}
	return id
}

func (f *fixture) query(t *testing.T, start, end string) Query {
	t.Helper()
	return Query{
		ClientID: f.clientID,
		Window:   Window{Start: mustDate(t, start), End: mustDate(t, end)},
	}
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

// failingMetricRepo errors on every call. Tests use it to prove a
// code path never reaches the metric store.
type failingMetricRepo struct{}

func (failingMetricRepo) MetricsForContent(context.Context, []uuid.UUID) ([]models.Metric, error) {
	return nil, errors.New("metric store must not be queried")
}

// failingStatsStore errors on every call, forcing the in-process
// fallback.
type failingStatsStore struct{}

func (failingStatsStore) PlatformCounts(context.Context, uuid.UUID, time.Time, time.Time) ([]storage.PlatformCount, error) {
	return nil, errors.New("warehouse unavailable")
}

func (failingStatsStore) DailyViews(context.Context, uuid.UUID, time.Time, time.Time, models.Platform) ([]storage.DailyViewsRow, error) {
	return nil, errors.New("warehouse unavailable")
}

func TestMetricsForContentEmptySet(t *testing.T) {
	f := newFixture(t)
	// A service whose metric store always errors: the empty ID set
	// must short-circuit before the store is touched.
	svc := NewService(f.content, failingMetricRepo{}, f.campaigns, nil, nil, nil, zap.NewNop())

	m, err := svc.MetricsForContent(context.Background(), nil)
	if err != nil {
		t.Fatalf("empty ID set must not error: %v", err)
	}
	if len(m) != 0 {
		t.Fatalf("expected empty map, got %d entries", len(m))
	}
}

func TestMetricsForContentCoercion(t *testing.T) {
	f := newFixture(t)
	id := f.addItem(t, models.PlatformInstagram, "2024-01-01", map[string]string{
		"views": "120",
		"likes": "not-a-number",
	})

	m, err := f.svc.MetricsForContent(context.Background(), []uuid.UUID{id})
	if err != nil {
		t.Fatalf("MetricsForContent: %v", err)
	}
	if got := m[id]["views"]; got != 120 {
		t.Errorf("views = %v, want 120", got)
	}
	if got := m[id]["likes"]; got != 0 {
		t.Errorf("unparseable likes = %v, want 0", got)
	}
}

package analytics

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sightline-analytics/sightline/internal/models"
	"github.com/sightline-analytics/sightline/internal/storage"
)

func TestDailyViewsSparseSeries(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, models.PlatformInstagram, "2024-01-01", map[string]string{"views": "50"})
	f.addItem(t, models.PlatformYouTube, "2024-01-03", map[string]string{"views": "30"})

	points, err := f.svc.DailyViews(context.Background(), f.query(t, "2024-01-01", "2024-01-07"))
	if err != nil {
		t.Fatalf("DailyViews: %v", err)
	}

	// Dates without publishes are absent, not zero-filled.
	want := []DailyPoint{
		{Date: "2024-01-01", Views: 50},
		{Date: "2024-01-03", Views: 30},
	}
	if !reflect.DeepEqual(points, want) {
		t.Errorf("series = %+v, want %+v", points, want)
	}
}

func TestDailyViewsSameDateSummed(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, models.PlatformInstagram, "2024-01-02", map[string]string{"views": "20"})
	f.addItem(t, models.PlatformTikTok, "2024-01-02", map[string]string{"views": "25"})

	points, err := f.svc.DailyViews(context.Background(), f.query(t, "2024-01-01", "2024-01-07"))
	if err != nil {
		t.Fatalf("DailyViews: %v", err)
	}
	if len(points) != 1 || points[0].Views != 45 {
		t.Errorf("series = %+v, want single point with 45 views", points)
	}
}

func TestDailyViewsPlatformFilter(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, models.PlatformInstagram, "2024-01-01", map[string]string{"views": "50"})
	f.addItem(t, models.PlatformYouTube, "2024-01-03", map[string]string{"views": "30"})

	q := f.query(t, "2024-01-01", "2024-01-07")
	q.Platform = models.PlatformYouTube

	points, err := f.svc.DailyViews(context.Background(), q)
	if err != nil {
		t.Fatalf("DailyViews: %v", err)
	}
	want := []DailyPoint{{Date: "2024-01-03", Views: 30}}
	if !reflect.DeepEqual(points, want) {
		t.Errorf("filtered series = %+v, want %+v", points, want)
	}
}

func TestDailyViewsAggregateMatchesFallback(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, models.PlatformInstagram, "2024-01-01", map[string]string{"views": "50"})
	f.addItem(t, models.PlatformKick, "2024-01-03", map[string]string{"views": "30"})
	f.addItem(t, models.PlatformKick, "2024-01-03", map[string]string{"views": "5"})
	q := f.query(t, "2024-01-01", "2024-01-07")

	stats := storage.NewInMemoryStatsStore(f.content, f.metrics)
	withStats := NewService(f.content, f.metrics, f.campaigns, stats, nil, nil, zap.NewNop())

	aggregate, err := withStats.DailyViews(context.Background(), q)
	if err != nil {
		t.Fatalf("aggregate path: %v", err)
	}
	fallback, err := f.svc.DailyViews(context.Background(), q)
	if err != nil {
		t.Fatalf("fallback path: %v", err)
	}
	if !reflect.DeepEqual(aggregate, fallback) {
		t.Errorf("paths diverge: aggregate %+v, fallback %+v", aggregate, fallback)
	}
}

func TestDailyViewsIgnoresCampaignFilterOnBothPaths(t *testing.T) {
	f := newFixture(t)
	campaignID := uuid.New()

	id := uuid.New()
	f.content.AddItem(models.ContentItem{
		ID:         id,
		ClientID:   f.clientID,
		Name:       "campaigned",
		Platform:   models.PlatformInstagram,
		PostDate:   mustDate(t, "2024-01-02"),
		CampaignID: &campaignID,
	})
	f.metrics.SetMetric(id, "views", "40")
	f.addItem(t, models.PlatformYouTube, "2024-01-03", map[string]string{"views": "60"})

	q := f.query(t, "2024-01-01", "2024-01-07")
	q.CampaignID = &campaignID

	stats := storage.NewInMemoryStatsStore(f.content, f.metrics)
	withStats := NewService(f.content, f.metrics, f.campaigns, stats, nil, nil, zap.NewNop())

	want := []DailyPoint{
		{Date: "2024-01-02", Views: 40},
		{Date: "2024-01-03", Views: 60},
	}
	aggregate, err := withStats.DailyViews(context.Background(), q)
	if err != nil {
		t.Fatalf("aggregate path: %v", err)
	}
	fallback, err := f.svc.DailyViews(context.Background(), q)
	if err != nil {
		t.Fatalf("fallback path: %v", err)
	}
	if !reflect.DeepEqual(aggregate, want) {
		t.Errorf("aggregate series = %+v, want %+v", aggregate, want)
	}
	if !reflect.DeepEqual(fallback, want) {
		t.Errorf("fallback series = %+v, want %+v", fallback, want)
	}
}

func TestDailyViewsEmptyWindow(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, models.PlatformInstagram, "2024-06-01", map[string]string{"views": "50"})

	points, err := f.svc.DailyViews(context.Background(), f.query(t, "2024-01-01", "2024-01-31"))
	if err != nil {
		t.Fatalf("DailyViews: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected empty series, got %+v", points)
	}
}

package analytics

import (
	"context"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/sightline-analytics/sightline/internal/models"
	"github.com/sightline-analytics/sightline/internal/storage"
)

func TestPlatformDistributionFallback(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, models.PlatformInstagram, "2024-03-10", nil)
	f.addItem(t, models.PlatformInstagram, "2024-03-11", nil)
	f.addItem(t, models.PlatformTwitch, "2024-03-12", nil)

	slices, err := f.svc.PlatformDistribution(context.Background(), f.query(t, "2024-03-01", "2024-03-31"))
	if err != nil {
		t.Fatalf("PlatformDistribution: %v", err)
	}

	want := []PlatformSlice{
		{Name: "Instagram", Value: 2, Color: "#E1306C"},
		{Name: "Twitch", Value: 1, Color: "#6441A4"},
	}
	if !reflect.DeepEqual(slices, want) {
		t.Errorf("distribution = %+v, want %+v", slices, want)
	}
}

func TestPlatformDistributionAggregateMatchesFallback(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, models.PlatformYouTube, "2024-03-10", nil)
	f.addItem(t, models.PlatformKick, "2024-03-11", nil)
	f.addItem(t, models.PlatformKick, "2024-03-12", nil)
	q := f.query(t, "2024-03-01", "2024-03-31")

	stats := storage.NewInMemoryStatsStore(f.content, f.metrics)
	withStats := NewService(f.content, f.metrics, f.campaigns, stats, nil, nil, zap.NewNop())

	aggregate, err := withStats.PlatformDistribution(context.Background(), q)
	if err != nil {
		t.Fatalf("aggregate path: %v", err)
	}
	fallback, err := f.svc.PlatformDistribution(context.Background(), q)
	if err != nil {
		t.Fatalf("fallback path: %v", err)
	}
	if !reflect.DeepEqual(aggregate, fallback) {
		t.Errorf("paths diverge: aggregate %+v, fallback %+v", aggregate, fallback)
	}
}

func TestPlatformDistributionEmptyBothPaths(t *testing.T) {
	f := newFixture(t)
	q := f.query(t, "2024-03-01", "2024-03-31")

	stats := storage.NewInMemoryStatsStore(f.content, f.metrics)
	for name, svc := range map[string]*Service{
		"aggregate": NewService(f.content, f.metrics, f.campaigns, stats, nil, nil, zap.NewNop()),
		"fallback":  f.svc,
	} {
		slices, err := svc.PlatformDistribution(context.Background(), q)
		if err != nil {
			t.Fatalf("%s path errored on empty set: %v", name, err)
		}
		if len(slices) != 0 {
			t.Errorf("%s path returned %d slices for empty set", name, len(slices))
		}
	}
}

func TestPlatformDistributionWarehouseFailure(t *testing.T) {
	f := newFixture(t)
	f.addItem(t, models.PlatformTikTok, "2024-03-10", nil)

	svc := NewService(f.content, f.metrics, f.campaigns, failingStatsStore{}, nil, nil, zap.NewNop())
	slices, err := svc.PlatformDistribution(context.Background(), f.query(t, "2024-03-01", "2024-03-31"))
	if err != nil {
		t.Fatalf("warehouse failure must fall back, not error: %v", err)
	}
	if len(slices) != 1 || slices[0].Name != "TikTok" || slices[0].Color != "#000000" {
		t.Errorf("fallback result = %+v", slices)
	}
}

func TestPlatformColorUnknownPlatform(t *testing.T) {
	if got := models.PlatformColor("Friendster"); got != models.DefaultPlatformColor {
		t.Errorf("unknown platform color = %q, want %q", got, models.DefaultPlatformColor)
	}
}

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sightline-analytics/sightline/internal/models"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		t.Fatalf("bad date %q: %v", s, err)
	}
	return d
}

func seedContent(t *testing.T, repo *InMemoryContentRepo, clientID uuid.UUID, platform models.Platform, date string, campaignID *uuid.UUID) uuid.UUID {
	t.Helper()
	id := uuid.New()
	repo.AddItem(models.ContentItem{
		ID:         id,
		ClientID:   clientID,
		Name:       id.String()[:8],
		Platform:   platform,
		PostDate:   day(t, date),
		CampaignID: campaignID,
	})
	return id
}

func TestListContentFilterConjunction(t *testing.T) {
	repo := NewInMemoryContentRepo()
	clientID := uuid.New()
	campaignID := uuid.New()

	match := seedContent(t, repo, clientID, models.PlatformInstagram, "2024-03-10", &campaignID)
	seedContent(t, repo, clientID, models.PlatformYouTube, "2024-03-10", &campaignID)   // wrong platform
	seedContent(t, repo, clientID, models.PlatformInstagram, "2024-03-10", nil)        // no campaign
	seedContent(t, repo, clientID, models.PlatformInstagram, "2024-05-01", &campaignID) // outside window
	seedContent(t, repo, uuid.New(), models.PlatformInstagram, "2024-03-10", &campaignID) // other tenant

	start, end := day(t, "2024-03-01"), day(t, "2024-03-31")
	items, err := repo.ListContent(context.Background(), ContentFilter{
		ClientID:   clientID,
		Platform:   models.PlatformInstagram,
		CampaignID: &campaignID,
		StartDate:  &start,
		EndDate:    &end,
	})
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if len(items) != 1 || items[0].ID != match {
		t.Errorf("got %d items, want exactly the fully matching one", len(items))
	}
}

func TestListContentInclusiveDates(t *testing.T) {
	repo := NewInMemoryContentRepo()
	clientID := uuid.New()
	seedContent(t, repo, clientID, models.PlatformTikTok, "2024-03-01", nil)
	seedContent(t, repo, clientID, models.PlatformTikTok, "2024-03-31", nil)
	seedContent(t, repo, clientID, models.PlatformTikTok, "2024-02-29", nil)
	seedContent(t, repo, clientID, models.PlatformTikTok, "2024-04-01", nil)

	start, end := day(t, "2024-03-01"), day(t, "2024-03-31")
	items, err := repo.ListContent(context.Background(), ContentFilter{
		ClientID:  clientID,
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("got %d items, want the two boundary dates included", len(items))
	}
}

func TestListContentEndDateIncludesTimeOfDay(t *testing.T) {
	repo := NewInMemoryContentRepo()
	clientID := uuid.New()
	repo.AddItem(models.ContentItem{
		ID:       uuid.New(),
		ClientID: clientID,
		Name:     "evening-post",
		Platform: models.PlatformTwitch,
		PostDate: day(t, "2024-03-31").Add(18*time.Hour + 30*time.Minute),
	})

	start, end := day(t, "2024-03-01"), day(t, "2024-03-31")
	items, err := repo.ListContent(context.Background(), ContentFilter{
		ClientID:  clientID,
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("timestamped end-day item excluded from inclusive range")
	}
}

func TestEndOfDay(t *testing.T) {
	d := day(t, "2024-03-31")
	eod := endOfDay(d)
	if eod.Before(d.Add(23 * time.Hour)) {
		t.Errorf("endOfDay(%v) = %v, want late on the same day", d, eod)
	}
	if eod.Day() != 31 || eod.Month() != time.March {
		t.Errorf("endOfDay crossed into the next day: %v", eod)
	}
}

func TestListContentOrderAndPaging(t *testing.T) {
	repo := NewInMemoryContentRepo()
	clientID := uuid.New()
	dates := []string{"2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04", "2024-03-05"}
	for _, d := range dates {
		seedContent(t, repo, clientID, models.PlatformKick, d, nil)
	}

	page0, err := repo.ListContent(context.Background(), ContentFilter{ClientID: clientID, Page: 0, Limit: 2})
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if len(page0) != 2 {
		t.Fatalf("page 0 size = %d, want 2", len(page0))
	}
	// Newest first.
	if !page0[0].PostDate.Equal(day(t, "2024-03-05")) || !page0[1].PostDate.Equal(day(t, "2024-03-04")) {
		t.Errorf("page 0 dates = %v, %v", page0[0].PostDate, page0[1].PostDate)
	}

	page2, err := repo.ListContent(context.Background(), ContentFilter{ClientID: clientID, Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if len(page2) != 1 || !page2[0].PostDate.Equal(day(t, "2024-03-01")) {
		t.Errorf("last page = %+v, want the single oldest item", page2)
	}

	empty, err := repo.ListContent(context.Background(), ContentFilter{ClientID: clientID, Page: 9, Limit: 2})
	if err != nil {
		t.Fatalf("ListContent: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("past-the-end page returned %d items", len(empty))
	}
}

func TestListCampaignsNewestFirst(t *testing.T) {
	repo := NewInMemoryCampaignRepo()
	clientID := uuid.New()
	repo.AddCampaign(models.Campaign{ID: uuid.New(), ClientID: clientID, Name: "old", StartDate: day(t, "2024-01-01")})
	repo.AddCampaign(models.Campaign{ID: uuid.New(), ClientID: clientID, Name: "new", StartDate: day(t, "2024-03-01")})
	repo.AddCampaign(models.Campaign{ID: uuid.New(), ClientID: uuid.New(), Name: "foreign", StartDate: day(t, "2024-02-01")})

	campaigns, err := repo.ListCampaigns(context.Background(), clientID)
	if err != nil {
		t.Fatalf("ListCampaigns: %v", err)
	}
	if len(campaigns) != 2 || campaigns[0].Name != "new" || campaigns[1].Name != "old" {
		t.Errorf("campaigns = %+v", campaigns)
	}
}

func TestMetricOverwrite(t *testing.T) {
	repo := NewInMemoryMetricRepo()
	id := uuid.New()
	repo.SetMetric(id, models.MetricViews, "10")
	repo.SetMetric(id, models.MetricViews, "25")

	rows, err := repo.MetricsForContent(context.Background(), []uuid.UUID{id})
	if err != nil {
		t.Fatalf("MetricsForContent: %v", err)
	}
	if len(rows) != 1 || rows[0].Value != "25" {
		t.Errorf("rows = %+v, want single overwritten value", rows)
	}
}

func TestStatsStoreDailyViewsSumsSameDate(t *testing.T) {
	content := NewInMemoryContentRepo()
	metricRepo := NewInMemoryMetricRepo()
	clientID := uuid.New()

	a := seedContent(t, content, clientID, models.PlatformInstagram, "2024-03-05", nil)
	b := seedContent(t, content, clientID, models.PlatformYouTube, "2024-03-05", nil)
	metricRepo.SetMetric(a, models.MetricViews, "40")
	metricRepo.SetMetric(b, models.MetricViews, "60")

	store := NewInMemoryStatsStore(content, metricRepo)
	rows, err := store.DailyViews(context.Background(), clientID, day(t, "2024-03-01"), day(t, "2024-03-31"), "")
	if err != nil {
		t.Fatalf("DailyViews: %v", err)
	}
	if len(rows) != 1 || rows[0].Views != 100 {
		t.Errorf("rows = %+v, want one date with 100 views", rows)
	}
}

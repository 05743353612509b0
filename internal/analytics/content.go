package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sightline-analytics/sightline/internal/models"
	"github.com/sightline-analytics/sightline/internal/storage"
)

// NoCampaign is the display label for content with no resolvable
// campaign.
const NoCampaign = "No Campaign"

// ContentRow is a content item annotated for display: campaign name
// resolved and metric values attached.
type ContentRow struct {
	ID       uuid.UUID          `json:"id"`
	Name     string             `json:"name"`
	Platform models.Platform    `json:"platform"`
	Type     string             `json:"type"`
	URL      string             `json:"url,omitempty"`
	Date     string             `json:"date"`
	Campaign string             `json:"campaign"`
	Metrics  map[string]float64 `json:"metrics"`

	// PostDate backs chronological sorting; Date above is its wire
	// form.
	PostDate time.Time `json:"-"`
}

// ContentList returns one page of filtered content, each row
// annotated with its campaign display name and metric values. Rows
// arrive publish-date descending from the store; callers re-sort via
// SortContent when the user picks a different column.
func (s *Service) ContentList(ctx context.Context, q Query, page, limit int) ([]ContentRow, error) {
	start, end := q.Window.Start, q.Window.End
	items, err := s.content.ListContent(ctx, storage.ContentFilter{
		ClientID:   q.ClientID,
		Platform:   q.Platform,
		CampaignID: q.CampaignID,
		StartDate:  &start,
		EndDate:    &end,
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	if len(items) == 0 {
		return []ContentRow{}, nil
	}

	names, err := s.campaignNames(ctx, q.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve campaign names: %w", err)
	}

	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	metricsMap, err := s.MetricsForContent(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content metrics: %w", err)
	}

	rows := make([]ContentRow, 0, len(items))
	for _, item := range items {
		campaign := NoCampaign
		if item.CampaignID != nil {
			if name, ok := names[*item.CampaignID]; ok {
				campaign = name
			}
		}
		m := metricsMap[item.ID]
		if m == nil {
			m = map[string]float64{}
		}
		rows = append(rows, ContentRow{
			ID:       item.ID,
			Name:     item.Name,
			Platform: item.Platform,
			Type:     item.ContentType,
			URL:      item.URL,
			Date:     item.PostDate.Format(models.DateLayout),
			Campaign: campaign,
			Metrics:  m,
			PostDate: item.PostDate,
		})
	}
	return rows, nil
}

// Campaigns returns the client's campaigns for the filter dropdown.
func (s *Service) Campaigns(ctx context.Context, clientID uuid.UUID) ([]models.Campaign, error) {
	return s.campaigns.ListCampaigns(ctx, clientID)
}

func (s *Service) campaignNames(ctx context.Context, clientID uuid.UUID) (map[uuid.UUID]string, error) {
	campaigns, err := s.campaigns.ListCampaigns(ctx, clientID)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(campaigns))
	for _, c := range campaigns {
		names[c.ID] = c.Name
	}
	return names, nil
}

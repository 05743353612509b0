package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sightline-analytics/sightline/internal/models"
)

// DefaultPageSize is the content page size when the caller does not
// supply one.
const DefaultPageSize = 100

// ContentFilter restricts a content query. ClientID is mandatory;
// every other predicate is optional and conjunctive. StartDate and
// EndDate bound the publish date inclusively on both ends.
type ContentFilter struct {
	ClientID   uuid.UUID
	Platform   models.Platform
	CampaignID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int
	Limit      int
}

// Offset returns the row offset implied by Page and Limit.
func (f ContentFilter) Offset() int {
	return f.Page * f.EffectiveLimit()
}

// EffectiveLimit returns Limit or the default page size.
func (f ContentFilter) EffectiveLimit() int {
	if f.Limit <= 0 {
		return DefaultPageSize
	}
	return f.Limit
}

// PlatformCount is one row of a platform GROUP BY.
type PlatformCount struct {
	Platform models.Platform
	Count    int
}

// DailyViewsRow is one row of a per-date views aggregate.
type DailyViewsRow struct {
	Date  time.Time
	Views float64
}

// ClientRepo provides client records and user/client associations.
// Implementations must scope nothing here by tenant: the access gate
// is the component that decides which associations matter.
type ClientRepo interface {
	// GetClient returns a single client by ID or nil if not found.
	GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	// AssociationsForUser returns every client association the user
	// holds, in no particular order. Empty slice when none exist.
	AssociationsForUser(ctx context.Context, userID uuid.UUID) ([]models.ClientUser, error)
}

// CampaignRepo provides campaign records for a client.
type CampaignRepo interface {
	// ListCampaigns returns the client's campaigns, newest start date
	// first. Used for the filter dropdown and for resolving campaign
	// display names on content rows.
	ListCampaigns(ctx context.Context, clientID uuid.UUID) ([]models.Campaign, error)
}

// ContentRepo provides filtered access to the content catalog.
type ContentRepo interface {
	// ListContent returns items matching every predicate in the
	// filter, ordered by publish date descending, paged by
	// filter.Offset()/EffectiveLimit().
	ListContent(ctx context.Context, f ContentFilter) ([]models.ContentItem, error)
}

// MetricRepo provides per-item metric rows.
type MetricRepo interface {
	// MetricsForContent returns all metric rows attached to the given
	// items. Callers must not pass an empty ID set; the aggregator
	// short-circuits before reaching the store.
	MetricsForContent(ctx context.Context, ids []uuid.UUID) ([]models.Metric, error)
}

// StatsStore is the server-side aggregate path. The ClickHouse
// implementation pushes the GROUP BY into the warehouse; when no
// warehouse is configured the analytics layer fetches raw rows and
// groups in-process, producing the identical shape.
type StatsStore interface {
	// PlatformCounts returns content counts grouped by platform for a
	// client within the inclusive date range.
	PlatformCounts(ctx context.Context, clientID uuid.UUID, start, end time.Time) ([]PlatformCount, error)
	// DailyViews returns summed views per distinct publish date,
	// ascending by date. Dates with no content are absent, not zero.
	DailyViews(ctx context.Context, clientID uuid.UUID, start, end time.Time, platform models.Platform) ([]DailyViewsRow, error)
}

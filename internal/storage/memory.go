package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sightline-analytics/sightline/internal/models"
)

// In-memory implementations of the repository interfaces. They back
// the service when Postgres is unavailable and double as fakes in
// tests. All of them are safe for concurrent use.

// InMemoryClientRepo stores clients and user associations in maps.
type InMemoryClientRepo struct {
	mu           sync.RWMutex
	clients      map[uuid.UUID]*models.Client
	associations map[uuid.UUID][]models.ClientUser
}

// NewInMemoryClientRepo creates an empty in-memory client repo.
func NewInMemoryClientRepo() *InMemoryClientRepo {
	return &InMemoryClientRepo{
		clients:      make(map[uuid.UUID]*models.Client),
		associations: make(map[uuid.UUID][]models.ClientUser),
	}
}

// AddClient inserts or replaces a client record.
func (r *InMemoryClientRepo) AddClient(c models.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := c
	r.clients[c.ID] = &cp
}

// AddAssociation records a user/client association.
func (r *InMemoryClientRepo) AddAssociation(cu models.ClientUser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.associations[cu.UserID] = append(r.associations[cu.UserID], cu)
}

func (r *InMemoryClientRepo) GetClient(_ context.Context, id uuid.UUID) (*models.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.clients[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *InMemoryClientRepo) AssociationsForUser(_ context.Context, userID uuid.UUID) ([]models.ClientUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]models.ClientUser, len(r.associations[userID]))
	copy(res, r.associations[userID])
	return res, nil
}

// InMemoryCampaignRepo stores campaigns keyed by client.
type InMemoryCampaignRepo struct {
	mu        sync.RWMutex
	campaigns map[uuid.UUID][]models.Campaign
}

// NewInMemoryCampaignRepo creates an empty in-memory campaign repo.
func NewInMemoryCampaignRepo() *InMemoryCampaignRepo {
	return &InMemoryCampaignRepo{campaigns: make(map[uuid.UUID][]models.Campaign)}
}

// AddCampaign inserts a campaign.
func (r *InMemoryCampaignRepo) AddCampaign(c models.Campaign) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.campaigns[c.ClientID] = append(r.campaigns[c.ClientID], c)
}

func (r *InMemoryCampaignRepo) ListCampaigns(_ context.Context, clientID uuid.UUID) ([]models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]models.Campaign, len(r.campaigns[clientID]))
	copy(res, r.campaigns[clientID])
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].StartDate.After(res[j].StartDate)
	})
	return res, nil
}

// InMemoryContentRepo stores content items in a map keyed by item ID.
type InMemoryContentRepo struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*models.ContentItem
}

// NewInMemoryContentRepo creates an empty in-memory content repo.
func NewInMemoryContentRepo() *InMemoryContentRepo {
	return &InMemoryContentRepo{items: make(map[uuid.UUID]*models.ContentItem)}
}

// AddItem inserts or replaces a content item.
func (r *InMemoryContentRepo) AddItem(item models.ContentItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := item
	r.items[item.ID] = &cp
}

func (r *InMemoryContentRepo) ListContent(_ context.Context, f ContentFilter) ([]models.ContentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.ContentItem
	for _, item := range r.items {
		if matchesFilter(item, f) {
			matched = append(matched, *item)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].PostDate.After(matched[j].PostDate)
	})

	offset, limit := f.Offset(), f.EffectiveLimit()
	if offset >= len(matched) {
		return []models.ContentItem{}, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func matchesFilter(item *models.ContentItem, f ContentFilter) bool {
	if item.ClientID != f.ClientID {
		return false
	}
	if f.Platform != "" && item.Platform != f.Platform {
		return false
	}
	if f.CampaignID != nil {
		if item.CampaignID == nil || *item.CampaignID != *f.CampaignID {
			return false
		}
	}
	if f.StartDate != nil && item.PostDate.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && item.PostDate.After(endOfDay(*f.EndDate)) {
		return false
	}
	return true
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}

// InMemoryMetricRepo stores metric rows keyed by content ID. A second
// write with the same (content, name) pair overwrites the first.
type InMemoryMetricRepo struct {
	mu      sync.RWMutex
	metrics map[uuid.UUID]map[string]string
}

// NewInMemoryMetricRepo creates an empty in-memory metric repo.
func NewInMemoryMetricRepo() *InMemoryMetricRepo {
	return &InMemoryMetricRepo{metrics: make(map[uuid.UUID]map[string]string)}
}

// SetMetric records a metric value, overwriting any previous value
// with the same name.
func (r *InMemoryMetricRepo) SetMetric(contentID uuid.UUID, name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.metrics[contentID] == nil {
		r.metrics[contentID] = make(map[string]string)
	}
	r.metrics[contentID][name] = value
}

func (r *InMemoryMetricRepo) MetricsForContent(_ context.Context, ids []uuid.UUID) ([]models.Metric, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var res []models.Metric
	for _, id := range ids {
		names := make([]string, 0, len(r.metrics[id]))
		for name := range r.metrics[id] {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			res = append(res, models.Metric{ContentID: id, Name: name, Value: r.metrics[id][name]})
		}
	}
	return res, nil
}

// InMemoryStatsStore simulates the warehouse aggregate path over the
// in-memory content and metric repos. Used when ClickHouse is absent
// in tests that still need to exercise the aggregate code path.
type InMemoryStatsStore struct {
	content *InMemoryContentRepo
	metrics *InMemoryMetricRepo
}

// NewInMemoryStatsStore creates a stats store over the given repos.
func NewInMemoryStatsStore(content *InMemoryContentRepo, metrics *InMemoryMetricRepo) *InMemoryStatsStore {
	return &InMemoryStatsStore{content: content, metrics: metrics}
}

func (s *InMemoryStatsStore) PlatformCounts(ctx context.Context, clientID uuid.UUID, start, end time.Time) ([]PlatformCount, error) {
	items, err := s.rangeContent(ctx, clientID, start, end, "")
	if err != nil {
		return nil, err
	}
	counts := make(map[models.Platform]int)
	for _, item := range items {
		counts[item.Platform]++
	}
	res := make([]PlatformCount, 0, len(counts))
	for p, n := range counts {
		res = append(res, PlatformCount{Platform: p, Count: n})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Platform < res[j].Platform })
	return res, nil
}

func (s *InMemoryStatsStore) DailyViews(ctx context.Context, clientID uuid.UUID, start, end time.Time, platform models.Platform) ([]DailyViewsRow, error) {
	items, err := s.rangeContent(ctx, clientID, start, end, platform)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []DailyViewsRow{}, nil
	}

	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	rows, err := s.metrics.MetricsForContent(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make(map[uuid.UUID]float64)
	for _, m := range rows {
		if m.Name == models.MetricViews {
			views[m.ContentID] = models.ParseMetricValue(m.Value)
		}
	}

	byDate := make(map[time.Time]float64)
	for _, item := range items {
		day := item.PostDate.Truncate(24 * time.Hour)
		byDate[day] += views[item.ID]
	}

	res := make([]DailyViewsRow, 0, len(byDate))
	for d, v := range byDate {
		res = append(res, DailyViewsRow{Date: d, Views: v})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Date.Before(res[j].Date) })
	return res, nil
}

func (s *InMemoryStatsStore) rangeContent(ctx context.Context, clientID uuid.UUID, start, end time.Time, platform models.Platform) ([]models.ContentItem, error) {
	return s.content.ListContent(ctx, ContentFilter{
		ClientID:  clientID,
		Platform:  platform,
		StartDate: &start,
		EndDate:   &end,
		Limit:     1 << 20,
	})
}

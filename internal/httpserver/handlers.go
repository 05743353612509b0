package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sightline-analytics/sightline/internal/access"
	"github.com/sightline-analytics/sightline/internal/analytics"
	"github.com/sightline-analytics/sightline/internal/middleware"
	"github.com/sightline-analytics/sightline/internal/models"
)

// apiPageLimit caps how many rows the flat /api/metrics listing
// returns in one response.
const apiPageLimit = 10000

// contentMetricsItem is the /api/metrics row shape: the content item
// flattened with its metric map.
type contentMetricsItem struct {
	ID       uuid.UUID          `json:"id"`
	Name     string             `json:"name"`
	Platform models.Platform    `json:"platform"`
	Type     string             `json:"type"`
	Date     string             `json:"date"`
	Campaign string             `json:"campaign"`
	Metrics  map[string]float64 `json:"metrics"`
}

// handleContentMetrics serves GET /api/metrics: the full filtered
// content list with metric values, publish date descending.
func (s *Server) handleContentMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q, ok := s.authorizedQuery(w, r)
	if !ok {
		return
	}

	rows, err := s.analytics.ContentList(r.Context(), q, 0, apiPageLimit)
	if err != nil {
		s.logger.Error("content metrics fetch failed",
			zap.String("client_id", q.ClientID.String()),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	items := make([]contentMetricsItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, contentMetricsItem{
			ID:       row.ID,
			Name:     row.Name,
			Platform: row.Platform,
			Type:     row.Type,
			Date:     row.Date,
			Campaign: row.Campaign,
			Metrics:  row.Metrics,
		})
	}
	writeJSON(w, http.StatusOK, items)
}

// handleSummary serves GET /api/summary. Retrieval failures degrade
// to the zero summary rather than failing the widget.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q, ok := s.authorizedQuery(w, r)
	if !ok {
		return
	}

	summary, err := s.analytics.SummaryStats(r.Context(), q)
	if err != nil {
		s.degraded(q, "summary", err)
		summary = &analytics.Summary{AverageEngagement: "0.00"}
	}
	writeJSON(w, http.StatusOK, summary)
}

// handleComparison serves GET /api/comparison.
func (s *Server) handleComparison(w http.ResponseWriter, r *http.Request) {
	q, ok := s.authorizedQuery(w, r)
	if !ok {
		return
	}

	comparison, err := s.analytics.MetricsComparison(r.Context(), q)
	if err != nil {
		s.degraded(q, "comparison", err)
		comparison = &analytics.Comparison{}
	}
	writeJSON(w, http.StatusOK, comparison)
}

// handlePerformance serves GET /api/performance.
func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	q, ok := s.authorizedQuery(w, r)
	if !ok {
		return
	}

	rows, err := s.analytics.PlatformPerformance(r.Context(), q)
	if err != nil {
		s.degraded(q, "performance", err)
		rows = []analytics.PlatformPerformanceRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// handlePlatformDistribution serves GET /api/platforms.
func (s *Server) handlePlatformDistribution(w http.ResponseWriter, r *http.Request) {
	q, ok := s.authorizedQuery(w, r)
	if !ok {
		return
	}

	slices, err := s.analytics.PlatformDistribution(r.Context(), q)
	if err != nil {
		s.degraded(q, "platform distribution", err)
		slices = []analytics.PlatformSlice{}
	}
	writeJSON(w, http.StatusOK, slices)
}

// handleDailyViews serves GET /api/views/daily.
func (s *Server) handleDailyViews(w http.ResponseWriter, r *http.Request) {
	q, ok := s.authorizedQuery(w, r)
	if !ok {
		return
	}

	points, err := s.analytics.DailyViews(r.Context(), q)
	if err != nil {
		s.degraded(q, "daily views", err)
		points = []analytics.DailyPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

// overviewPayload bundles everything the overview tab renders.
type overviewPayload struct {
	Platforms  []analytics.PlatformSlice `json:"platforms"`
	DailyViews []analytics.DailyPoint    `json:"dailyViews"`
	Summary    *analytics.Summary        `json:"summary"`
	Comparison *analytics.Comparison     `json:"comparison"`
}

// handleOverview serves GET /api/overview: the four overview widgets
// fetched concurrently. Each widget degrades to its empty shape on
// failure without blocking its siblings.
func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	q, ok := s.authorizedQuery(w, r)
	if !ok {
		return
	}

	payload := overviewPayload{
		Platforms:  []analytics.PlatformSlice{},
		DailyViews: []analytics.DailyPoint{},
		Summary:    &analytics.Summary{AverageEngagement: "0.00"},
		Comparison: &analytics.Comparison{},
	}

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		slices, err := s.analytics.PlatformDistribution(ctx, q)
		if err != nil {
			s.degraded(q, "platform distribution", err)
			return nil
		}
		payload.Platforms = slices
		return nil
	})
	g.Go(func() error {
		points, err := s.analytics.DailyViews(ctx, q)
		if err != nil {
			s.degraded(q, "daily views", err)
			return nil
		}
		payload.DailyViews = points
		return nil
	})
	g.Go(func() error {
		summary, err := s.analytics.SummaryStats(ctx, q)
		if err != nil {
			s.degraded(q, "summary", err)
			return nil
		}
		payload.Summary = summary
		return nil
	})
	g.Go(func() error {
		comparison, err := s.analytics.MetricsComparison(ctx, q)
		if err != nil {
			s.degraded(q, "comparison", err)
			return nil
		}
		payload.Comparison = comparison
		return nil
	})
	g.Wait()

	writeJSON(w, http.StatusOK, payload)
}

// handleContent serves GET /api/content: one page of the content
// table, optionally re-sorted by a caller-chosen column.
func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	q, ok := s.authorizedQuery(w, r)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 0 {
		page = 0
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	rows, err := s.analytics.ContentList(r.Context(), q, page, limit)
	if err != nil {
		s.degraded(q, "content list", err)
		rows = []analytics.ContentRow{}
	}

	sortKey := analytics.ParseSortKey(r.URL.Query().Get("sort"))
	sortDesc := r.URL.Query().Get("dir") != "asc"
	if sortKey != analytics.SortByDate || !sortDesc {
		analytics.SortContent(rows, sortKey, sortDesc)
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleCampaigns serves GET /api/campaigns: the filter dropdown
// contents.
func (s *Server) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	q, ok := s.authorizedQuery(w, r)
	if !ok {
		return
	}

	campaigns, err := s.analytics.Campaigns(r.Context(), q.ClientID)
	if err != nil {
		s.degraded(q, "campaigns", err)
		campaigns = []models.Campaign{}
	}
	writeJSON(w, http.StatusOK, campaigns)
}

// mePayload is the identity-resolution response. Configured is false
// when the user has no client association yet; the UI shows its
// "account not configured" state instead of an error banner.
type mePayload struct {
	Configured bool           `json:"configured"`
	Client     *models.Client `json:"client,omitempty"`
}

// handleMe serves GET /api/me: resolves the caller to their client
// account.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := middleware.IdentityFrom(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	client, err := s.gate.ResolveClient(r.Context(), claims.UserID)
	if errors.Is(err, access.ErrNotConfigured) {
		writeJSON(w, http.StatusOK, mePayload{Configured: false})
		return
	}
	if err != nil {
		s.logger.Error("client resolution failed",
			zap.String("user_id", claims.UserID.String()),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to resolve client")
		return
	}
	writeJSON(w, http.StatusOK, mePayload{Configured: true, Client: client})
}

// handleAdminClients serves GET /api/admin/clients: the set of
// clients the caller administers.
func (s *Server) handleAdminClients(w http.ResponseWriter, r *http.Request) {
	claims := middleware.IdentityFrom(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	clients, err := s.gate.AdminClients(r.Context(), claims.UserID)
	if errors.Is(err, access.ErrForbidden) || errors.Is(err, access.ErrNotConfigured) {
		writeError(w, http.StatusForbidden, "admin access required")
		return
	}
	if err != nil {
		s.logger.Error("admin client listing failed",
			zap.String("user_id", claims.UserID.String()),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "failed to list clients")
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

// authorizedQuery parses the common filter parameters and verifies
// that the caller may read the requested client's data. The client
// association is re-checked on every call.
func (s *Server) authorizedQuery(w http.ResponseWriter, r *http.Request) (analytics.Query, bool) {
	claims := middleware.IdentityFrom(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return analytics.Query{}, false
	}

	q, err := parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return analytics.Query{}, false
	}

	if err := s.gate.Authorize(r.Context(), claims.UserID, q.ClientID); err != nil {
		if errors.Is(err, access.ErrForbidden) {
			writeError(w, http.StatusForbidden, "No access to this client data")
			return analytics.Query{}, false
		}
		s.logger.Error("authorization check failed",
			zap.String("user_id", claims.UserID.String()),
			zap.String("client_id", q.ClientID.String()),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "authorization check failed")
		return analytics.Query{}, false
	}
	return q, true
}

// parseQuery extracts the shared filter parameters. The date window
// defaults to the trailing 30 days, matching the dashboard's initial
// state.
func parseQuery(r *http.Request) (analytics.Query, error) {
	params := r.URL.Query()

	clientID, err := uuid.Parse(params.Get("clientId"))
	if err != nil {
		return analytics.Query{}, fmt.Errorf("invalid clientId")
	}

	now := time.Now().UTC().Truncate(24 * time.Hour)
	window := analytics.Window{Start: now.AddDate(0, 0, -30), End: now}

	if raw := params.Get("startDate"); raw != "" {
		t, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			return analytics.Query{}, fmt.Errorf("invalid startDate")
		}
		window.Start = t
	}
	if raw := params.Get("endDate"); raw != "" {
		t, err := time.Parse(models.DateLayout, raw)
		if err != nil {
			return analytics.Query{}, fmt.Errorf("invalid endDate")
		}
		window.End = t
	}

	q := analytics.Query{ClientID: clientID, Window: window}

	if p := params.Get("platform"); p != "" && p != "all" {
		q.Platform = models.Platform(p)
	}
	if c := params.Get("campaign"); c != "" && c != "all" {
		campaignID, err := uuid.Parse(c)
		if err != nil {
			return analytics.Query{}, fmt.Errorf("invalid campaign")
		}
		q.CampaignID = &campaignID
	}
	return q, nil
}

// degraded logs a retrieval failure that was served as an empty
// widget instead of an error.
func (s *Server) degraded(q analytics.Query, widget string, err error) {
	s.logger.Error("widget fetch failed, serving empty state",
		zap.String("widget", widget),
		zap.String("client_id", q.ClientID.String()),
		zap.Error(err),
	)
}

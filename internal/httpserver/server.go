package httpserver

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/sightline-analytics/sightline/internal/access"
	"github.com/sightline-analytics/sightline/internal/analytics"
	"github.com/sightline-analytics/sightline/internal/cache"
	"github.com/sightline-analytics/sightline/internal/config"
	"github.com/sightline-analytics/sightline/internal/database"
	"github.com/sightline-analytics/sightline/internal/metrics"
	"github.com/sightline-analytics/sightline/internal/middleware"
	"github.com/sightline-analytics/sightline/internal/storage"
)

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	DB         *database.PostgresDB
	ClickHouse *database.ClickHouseDB
	Redis      *database.RedisDB
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// Server wraps HTTP handlers, the access gate and the analytics
// service.
type Server struct {
	analytics *analytics.Service
	gate      *access.Gate
	logger    *zap.Logger
	config    *config.Config
}

// NewServer constructs a new http.Handler with all routes registered.
func NewServer(deps *Dependencies) http.Handler {
	// Initialize repositories
	var (
		clientRepo   storage.ClientRepo
		campaignRepo storage.CampaignRepo
		contentRepo  storage.ContentRepo
		metricRepo   storage.MetricRepo
	)

	if deps.DB != nil {
		clientRepo = storage.NewPostgresClientRepo(deps.DB.Pool)
		campaignRepo = storage.NewPostgresCampaignRepo(deps.DB.Pool)
		contentRepo = storage.NewPostgresContentRepo(deps.DB.Pool)
		metricRepo = storage.NewPostgresMetricRepo(deps.DB.Pool)
	} else {
		content := storage.NewInMemoryContentRepo()
		clientRepo = storage.NewInMemoryClientRepo()
		campaignRepo = storage.NewInMemoryCampaignRepo()
		contentRepo = content
		metricRepo = storage.NewInMemoryMetricRepo()
	}

	// Warehouse aggregate path is optional
	var statsStore storage.StatsStore
	if deps.ClickHouse != nil {
		statsStore = storage.NewClickHouseStatsStore(deps.ClickHouse.Conn)
	}

	// Redis payload cache is optional
	var payloadCache *cache.Cache
	if deps.Redis != nil && deps.Config.Cache.Enabled {
		payloadCache = cache.New(deps.Redis.Client, deps.Config.Cache.TTL, deps.Logger)
	}

	svc := analytics.NewService(contentRepo, metricRepo, campaignRepo, statsStore, payloadCache, deps.Metrics, deps.Logger)

	s := &Server{
		analytics: svc,
		gate:      access.NewGate(clientRepo),
		logger:    deps.Logger,
		config:    deps.Config,
	}
	return s.routes(deps.Metrics)
}

// routes builds the route table and wraps it in the middleware chain:
// recovery outermost, then request logging, rate limiting and session
// resolution.
func (s *Server) routes(prom *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	if s.config.Metrics.Enabled {
		mux.Handle(s.config.Metrics.Path, metrics.Handler())
	}

	// Dashboard data plane
	mux.HandleFunc("/api/metrics", s.handleContentMetrics)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/comparison", s.handleComparison)
	mux.HandleFunc("/api/performance", s.handlePerformance)
	mux.HandleFunc("/api/platforms", s.handlePlatformDistribution)
	mux.HandleFunc("/api/views/daily", s.handleDailyViews)
	mux.HandleFunc("/api/overview", s.handleOverview)
	mux.HandleFunc("/api/content", s.handleContent)
	mux.HandleFunc("/api/campaigns", s.handleCampaigns)
	mux.HandleFunc("/api/me", s.handleMe)
	mux.HandleFunc("/api/admin/clients", s.handleAdminClients)

	session := middleware.NewSessionMiddleware(s.config.Auth, s.logger, prom)
	ratelimit := middleware.NewRateLimitMiddleware(s.config.RateLimit, s.logger, prom)
	logging := middleware.NewLoggingMiddleware(s.logger, prom)
	recovery := middleware.NewRecoveryMiddleware(s.logger)

	return recovery.Handler(logging.Handler(ratelimit.Handler(session.Handler(echoGeneration(mux)))))
}

// echoGeneration reflects the client's request-generation token back
// on the response. Filter changes can supersede an in-flight fetch;
// the UI compares this header against its latest generation and
// discards stale responses instead of letting them overwrite current
// state.
func echoGeneration(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gen := r.Header.Get("X-Request-Generation"); gen != "" {
			w.Header().Set("X-Request-Generation", gen)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

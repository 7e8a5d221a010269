package httpserver

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/adpilot/adpilot/internal/config"
	"github.com/adpilot/adpilot/internal/database"
	"github.com/adpilot/adpilot/internal/graph"
	"github.com/adpilot/adpilot/internal/metrics"
	"github.com/adpilot/adpilot/internal/middleware"
	"github.com/adpilot/adpilot/internal/publisher"
	"github.com/adpilot/adpilot/internal/storage"
)

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	DB      *database.PostgresDB
	Redis   *database.RedisDB
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// publishService is the slice of publisher.Service the handlers need.
type publishService interface {
	Publish(ctx context.Context, req publisher.Request) (*graph.PublishResult, error)
}

// Server wraps HTTP handlers and publishing services.
type Server struct {
	publish         publishService
	campaignService *publisher.CampaignService
	metricsService  *publisher.MetricsService
	cache           publisher.ResultCache
	db              *database.PostgresDB
	redis           *database.RedisDB
	logger          *zap.Logger
	config          *config.Config
	metrics         *metrics.Metrics
}

// NewServer constructs a new http.Handler with all routes registered.
func NewServer(deps *Dependencies) (http.Handler, error) {
	// Initialize repositories, falling back to in-memory storage
	// when PostgreSQL is unavailable.
	var campaignRepo storage.CampaignRepo
	var metricsRepo storage.MetricsRepo

	if deps.DB != nil {
		campaignRepo = storage.NewPostgresCampaignRepo(deps.DB.Pool)
		metricsRepo = storage.NewPostgresMetricsRepo(deps.DB.Pool)
	} else {
		campaignRepo = storage.NewInMemoryCampaignRepo()
		metricsRepo = storage.NewInMemoryMetricsRepo()
	}

	var cache publisher.ResultCache = publisher.NopResultCache{}
	if deps.Redis != nil {
		cache = publisher.NewRedisResultCache(deps.Redis.Client, deps.Metrics, deps.Logger)
	}

	graphClient, err := graph.NewClient(deps.Config.Graph, deps.Config.Schedule, deps.Logger)
	if err != nil {
		return nil, err
	}

	publishSvc := publisher.NewService(graphClient, graphClient, campaignRepo, cache,
		deps.Config.Schedule.MinLead, deps.Metrics, deps.Logger)

	s := &Server{
		publish:         publishSvc,
		campaignService: publisher.NewCampaignService(campaignRepo),
		metricsService:  publisher.NewMetricsService(metricsRepo, campaignRepo),
		cache:           cache,
		db:              deps.DB,
		redis:           deps.Redis,
		logger:          deps.Logger,
		config:          deps.Config,
		metrics:         deps.Metrics,
	}

	return s.routes(deps), nil
}

func (s *Server) routes(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)

	if deps.Config.Metrics.Enabled {
		mux.Handle(deps.Config.Metrics.Path, metrics.Handler())
	}

	// Publishing
	mux.HandleFunc("/api/ads/publish", s.handlePublish)
	mux.HandleFunc("/api/ads/latest", s.handleLatest)

	// Campaign management
	mux.HandleFunc("/campaigns", s.handleCampaigns)
	mux.HandleFunc("/campaigns/", s.handleCampaignByID)

	// Engagement analytics
	mux.HandleFunc("/analytics/", s.handleAnalytics)
	mux.HandleFunc("/metrics/engagement", s.handleEngagement)

	// Middleware chain: recovery -> logging -> auth -> rate limit -> mux
	recovery := middleware.NewRecoveryMiddleware(deps.Logger)
	logging := middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics)
	auth := middleware.NewAuthMiddleware(deps.Config.Auth, deps.Logger)
	rateLimit := middleware.NewRateLimitMiddleware(deps.Config.RateLimit, deps.Metrics, deps.Logger)

	var handler http.Handler = mux
	handler = rateLimit.HandlerPerIP(handler)
	handler = auth.Handler(handler)
	handler = logging.Handler(handler)
	handler = recovery.Handler(handler)

	return handler
}

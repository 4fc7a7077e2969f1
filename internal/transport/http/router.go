package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abdillahiomardjamaainan/EDA-Project/internal/config"
	apierrors "github.com/abdillahiomardjamaainan/EDA-Project/internal/errors"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/infrastructure"
	edamw "github.com/abdillahiomardjamaainan/EDA-Project/internal/middleware"
)

// RouterDeps carries everything the router wires together
type RouterDeps struct {
	Explore ExploreServiceInterface
	Health  HealthServiceInterface
	Logger  *slog.Logger

	// Metrics records request counts; nil disables HTTP metrics
	Metrics *infrastructure.PipelineMetrics
	// MetricsHandler serves /metrics; nil uses the default registry
	MetricsHandler http.Handler

	RateLimit      config.RateLimitConfig
	RequestTimeout time.Duration
	CORS           edamw.CORSConfig
	IncludeStack   bool
}

// NewRouter builds the exploration API
func NewRouter(deps RouterDeps) chi.Router {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	errorHandler := apierrors.NewErrorHandler(logger, deps.IncludeStack)

	r := chi.NewRouter()

	r.Use(edamw.RequestID)
	r.Use(edamw.RealIP)

	// Scrapes stay out of request logs and the rate limiter
	r.With(apierrors.RecoveryMiddleware(errorHandler)).
		Method(http.MethodGet, config.MetricsEndpoint, NewMetricsHandler(deps.MetricsHandler))

	r.Group(func(r chi.Router) {
		r.Use(edamw.NewOTelMiddleware(deps.Metrics, logger).Handler)
		r.Use(edamw.StructuredLogger(logger))
		r.Use(edamw.Recoverer(logger))
		r.Use(edamw.SecurityHeaders)
		if deps.CORS.Logger == nil {
			deps.CORS.Logger = logger
		}
		r.Use(edamw.CORS(deps.CORS))
		r.Use(edamw.NewRateLimiterFromConfig(deps.RateLimit, logger).Handler)
		if deps.RequestTimeout > 0 {
			r.Use(edamw.Timeout(deps.RequestTimeout, logger))
		}

		r.NotFound(errorHandler.NotFound)
		r.MethodNotAllowed(errorHandler.MethodNotAllowed)

		health := NewHealthHandler(deps.Health, logger)
		r.Get(config.HealthEndpoint, health.HealthCheck)

		r.Route(config.APIBasePath, func(r chi.Router) {
			r.Get("/version", health.Version)
			r.Mount("/", NewExploreHandler(deps.Explore, logger, errorHandler).Routes())
			r.Mount("/charts", NewChartHandler(deps.Explore, logger, errorHandler).Routes())
		})
	})

	return r
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/abdillahiomardjamaainan/EDA-Project/internal/config"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/dataprocessing"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/infrastructure"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/loader"
	edamw "github.com/abdillahiomardjamaainan/EDA-Project/internal/middleware"
	"github.com/abdillahiomardjamaainan/EDA-Project/internal/services"
	handlers "github.com/abdillahiomardjamaainan/EDA-Project/internal/transport/http"
)

const defaultShutdownTimeout = 30 * time.Second

// LatestProcessed as the processed name loads the newest processed workbook
const LatestProcessed = "latest"

// Application represents the exploration server and everything it owns
type Application struct {
	Config         *config.Config
	Paths          *config.Paths
	Logger         *slog.Logger
	OTelProviders  *infrastructure.OTelProviders
	Metrics        *infrastructure.PipelineMetrics
	Loader         *loader.Loader
	PrepareService *services.PrepareService
	ExploreService *services.ExploreService
	HealthService  *services.HealthService
	Router         chi.Router
	Server         *http.Server

	stopOnce sync.Once
	stopErr  error
}

// NewApplication loads the configuration and logger, then wires the server
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires an application from an already loaded configuration
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}
	paths.LogPathResolution(logger)

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFromSettings(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	meter := otelProviders.Meter
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(infrastructure.MeterName)
	}
	metrics, err := infrastructure.CreatePipelineMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the load, convert and explore chain
func (a *Application) initializeServices() {
	a.Loader = loader.New(a.Paths, a.Logger)
	pipeline := dataprocessing.NewPipeline(dataprocessing.ConfigFromSettings(a.Config.Pipeline), a.Logger, a.Metrics)
	a.PrepareService = services.NewPrepareService(a.Loader, pipeline, a.Logger)
	a.ExploreService = services.NewExploreService(a.Logger)
	a.HealthService = services.NewHealthService(config.AppVersion, a.ExploreService, a.Logger)

	a.Logger.Info("Services initialized",
		slog.String("recipes_file", a.Config.Pipeline.RecipesFile))
}

// setupRouter configures the HTTP router with middleware and routes
func (a *Application) setupRouter() {
	a.Router = handlers.NewRouter(handlers.RouterDeps{
		Explore:        a.ExploreService,
		Health:         a.HealthService,
		Logger:         a.Logger,
		Metrics:        a.Metrics,
		MetricsHandler: a.OTelProviders.PrometheusHTTP,
		RateLimit:      a.Config.Server.RateLimit,
		RequestTimeout: a.Config.Server.WriteTimeout,
		CORS:           getCORSConfig(a.Logger),
		IncludeStack:   a.Config.Logging.Development,
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// getCORSConfig allows any origin to read; the API has no write routes
func getCORSConfig(logger *slog.Logger) edamw.CORSConfig {
	return edamw.CORSConfig{
		AllowedOrigins: []string{"*"},
		ExposedHeaders: []string{edamw.RequestIDHeader, "Retry-After"},
		MaxAge:         300,
		Logger:         logger,
	}
}

// LoadDataset installs the table queries run against. An empty processed
// name converts the configured raw recipes file; otherwise the named
// processed workbook, or the newest one for LatestProcessed, is read back.
func (a *Application) LoadDataset(ctx context.Context, processed string) error {
	start := time.Now()

	var (
		ds  *services.PreparedDataset
		err error
	)
	if processed == LatestProcessed {
		if processed, err = a.Loader.LatestProcessed(); err != nil {
			a.Logger.ErrorContext(ctx, "No processed workbook to load", slog.String("error", err.Error()))
			return fmt.Errorf("failed to load dataset: %w", err)
		}
	}
	if processed == "" {
		ds, err = a.PrepareService.PrepareRecipes(ctx, a.Config.Pipeline.RecipesFile)
	} else {
		ds, err = a.PrepareService.LoadProcessed(ctx, processed)
	}
	if err != nil {
		a.Logger.ErrorContext(ctx, "Failed to load dataset", slog.String("error", err.Error()))
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	a.ExploreService.SetDataset(ds)
	a.Logger.InfoContext(ctx, "Dataset ready",
		slog.String("source", a.Paths.RelativeToRoot(ds.Source)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Run serves HTTP while the dataset loads in the background, so /healthz
// reports "loading" until queries can be answered. It returns when ctx is
// cancelled, the server fails or the dataset cannot be loaded.
func (a *Application) Run(ctx context.Context, processed string) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(ctx, "Starting HTTP server", slog.String("address", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.LoadDataset(gctx, processed)
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop gracefully stops the server and flushes telemetry. Later calls
// return the first result.
func (a *Application) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() {
		a.Logger.InfoContext(ctx, "Shutting down application")

		timeout := a.Config.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var errs []error
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
		}
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		a.stopErr = errors.Join(errs...)

		if a.stopErr == nil {
			a.Logger.InfoContext(ctx, "Application stopped")
		}
	})
	return a.stopErr
}

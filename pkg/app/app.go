// Package app wires configuration, storage, observability and the HTTP
// servers into a runnable application.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sabormap/sabormap/pkg/config"
	"github.com/sabormap/sabormap/pkg/health"
	"github.com/sabormap/sabormap/pkg/middleware/logging"
	metricsmw "github.com/sabormap/sabormap/pkg/middleware/metrics"
	"github.com/sabormap/sabormap/pkg/middleware/ratelimit"
	"github.com/sabormap/sabormap/pkg/middleware/recovery"
	"github.com/sabormap/sabormap/pkg/middleware/requestid"
	tracingmw "github.com/sabormap/sabormap/pkg/middleware/tracing"
	"github.com/sabormap/sabormap/pkg/observability/logger"
	"github.com/sabormap/sabormap/pkg/observability/metrics"
	"github.com/sabormap/sabormap/pkg/observability/tracing"
	"github.com/sabormap/sabormap/pkg/restaurants"
	"github.com/sabormap/sabormap/pkg/server"
	"github.com/sabormap/sabormap/pkg/server/router"
	"github.com/sabormap/sabormap/pkg/server/router/factory"
	"github.com/sabormap/sabormap/pkg/store/mongodb"
	"github.com/sabormap/sabormap/pkg/version"
)

const tracerShutdownTimeout = 10 * time.Second

// App holds the assembled application.
type App struct {
	cfg    *config.Config
	log    logger.Logger
	store  *mongodb.Adapter
	tracer *tracing.TracerProvider

	public     *server.Server
	management *server.ManagementServer
}

// New assembles the application from cfg: logger, MongoDB adapter,
// tracing, the restaurant routes with their middleware chain, and the
// management server when enabled.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log, err := newLogger(cfg.Observability.Log)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	info := version.Current(cfg.Service.Name)
	log.Info("starting service",
		"service", info.Service,
		"version", info.Version,
		"commit", info.Commit,
		"environment", cfg.Service.Environment,
	)

	store, err := mongodb.NewAdapter(mongodb.Config{
		URL:              cfg.Database.MongoDB.URL,
		Database:         cfg.Database.MongoDB.Database,
		ConnectTimeout:   cfg.Database.MongoDB.ConnectTimeout,
		OperationTimeout: cfg.Database.MongoDB.OperationTimeout,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	// Proximity search depends on this index existing.
	if err := store.EnsureGeoIndex(ctx, restaurants.Collection, restaurants.GeoField); err != nil {
		return nil, fmt.Errorf("ensure geo index: %w", err)
	}

	tracer, err := tracing.NewTracerProvider(ctx, tracing.TracerConfig{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: info.Version,
		Environment:    cfg.Service.Environment,
		Endpoint:       cfg.Observability.Tracing.Endpoint,
		SampleRate:     cfg.Observability.Tracing.SampleRate,
		Enabled:        cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize tracing: %w", err)
	}

	a := &App{cfg: cfg, log: log, store: store, tracer: tracer}

	if err := a.buildPublicServer(); err != nil {
		return nil, err
	}
	if cfg.Management.Enabled {
		if err := a.buildManagementServer(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *App) buildPublicServer() error {
	r, err := factory.NewRouter(a.cfg.RouterType)
	if err != nil {
		return fmt.Errorf("create public router: %w", err)
	}

	r.Use(
		requestid.RequestID(),
		tracingmw.Tracing(a.cfg.Service.Name),
		logging.Logging(a.log),
		metricsmw.Metrics(),
		recovery.Recovery(a.log),
	)
	if a.cfg.RateLimit.Enabled {
		limiter := ratelimit.NewTokenBucketLimiter(a.cfg.RateLimit.RequestsPerSecond, a.cfg.RateLimit.Burst)
		r.Use(ratelimit.RateLimit(limiter))
	}

	executor, err := restaurants.NewMongoExecutor(a.store)
	if err != nil {
		return fmt.Errorf("create restaurant executor: %w", err)
	}
	repo := restaurants.NewRepository(executor, a.log)
	restaurants.NewController(repo, a.log).RegisterRoutes(r)

	a.public = server.NewServer(server.Config{
		Port:         a.cfg.HTTP.Port,
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
	}, r, a.log)
	return nil
}

func (a *App) buildManagementServer() error {
	r, err := factory.NewRouter(a.cfg.RouterType)
	if err != nil {
		return fmt.Errorf("create management router: %w", err)
	}

	healthRegistry := health.NewRegistry()
	healthRegistry.Register(health.NewAdapterChecker("mongodb", a.store, a.cfg.Database.MongoDB.OperationTimeout))

	info := version.Current(a.cfg.Service.Name)
	r.GET("/version", func(c router.Context) error {
		return c.JSON(200, info)
	})

	a.management = server.NewManagementServer(
		a.cfg.Management,
		r,
		a.log,
		healthRegistry,
		metrics.NewRegistry(),
	)
	return nil
}

// Run starts the servers and blocks until the context is cancelled or a
// server fails. Dependencies are released before returning.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverCount := 1
	if a.management != nil {
		serverCount = 2
	}

	errCh := make(chan error, serverCount)
	go func() { errCh <- a.public.Start(runCtx) }()
	if a.management != nil {
		go func() { errCh <- a.management.Start(runCtx) }()
	}

	var firstErr error
	for i := 0; i < serverCount; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
			cancel()
		}
	}
	return firstErr
}

func (a *App) close() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
	defer cancel()

	if err := a.tracer.Shutdown(shutdownCtx); err != nil {
		a.log.Error("failed to shutdown tracing provider", "error", err)
	}
	if err := a.store.Close(); err != nil {
		a.log.Error("failed to close mongodb adapter", "error", err)
	}
	if zl, ok := a.log.(*logger.ZapLogger); ok {
		_ = zl.Sync()
	}
}

func newLogger(cfg config.LogConfig) (logger.Logger, error) {
	level, err := logger.ParseLogLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format, err := logger.ParseLogFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	return logger.NewZapLogger(logger.Config{Level: level, Format: format})
}

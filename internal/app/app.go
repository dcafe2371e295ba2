// Package app wires configuration, the gateway pipeline, the job poller and
// the ambient services into one runnable server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aashari/go-generative-gateway/internal/config"
	"github.com/aashari/go-generative-gateway/internal/database"
	"github.com/aashari/go-generative-gateway/internal/handlers"
	"github.com/aashari/go-generative-gateway/internal/health"
	"github.com/aashari/go-generative-gateway/internal/httpclient"
	"github.com/aashari/go-generative-gateway/internal/logger"
	"github.com/aashari/go-generative-gateway/internal/monitoring"
	"github.com/aashari/go-generative-gateway/internal/poller"
	"github.com/aashari/go-generative-gateway/internal/proxy"
	"github.com/aashari/go-generative-gateway/internal/reliability"
	"github.com/aashari/go-generative-gateway/internal/router"
	"github.com/aashari/go-generative-gateway/internal/types"
	"github.com/aashari/go-generative-gateway/internal/utils"
	"golang.org/x/sync/errgroup"
)

const (
	healthClientTimeout = 5 * time.Second
	usageQueueSize      = 512
	retryBackoffFactor  = 2.0
)

// App centralizes the application's dependencies and configuration
type App struct {
	Config   *config.Config
	Metrics  *monitoring.Metrics
	Health   *health.HealthChecker
	Poller   *poller.Poller
	Sessions *proxy.SessionManager
	Gateway  *proxy.Gateway
	Handler  http.Handler

	server *http.Server
	redis  *poller.RedisStore
	db     *database.Connection
	usage  *database.UsageLogger
}

// NewApp creates a new App instance with all dependencies
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	ctx = logger.WithComponent(ctx, logger.ComponentNames.App)
	ctx = logger.WithStage(ctx, logger.LogStages.Initialization)

	a := &App{
		Config:  cfg,
		Metrics: monitoring.NewMetrics(monitoring.DefaultNamespace),
		Health:  health.NewHealthChecker(),
	}

	factory := httpclient.NewFactory(httpclient.Options{})
	dispatchClient := factory.CreateDefaultClient()
	pollClient := factory.CreateClient(httpclient.Options{Timeout: cfg.Poller.QueryTimeout})
	healthClient := factory.CreateClient(httpclient.Options{Timeout: healthClientTimeout})

	client := proxy.NewAPIClient(proxy.ClientConfig{
		WebhookURL: cfg.Backend.WebhookURL,
		Timeouts: proxy.Timeouts{
			Chat:  cfg.Backend.ChatTimeout,
			Image: cfg.Backend.ImageTimeout,
			Video: cfg.Backend.VideoTimeout,
		},
		Retry: reliability.RetryConfig{
			MaxAttempts:   cfg.Backend.RetryAttempts,
			InitialDelay:  cfg.Backend.RetryInitialDelay,
			MaxDelay:      cfg.Backend.RetryMaxDelay,
			BackoffFactor: retryBackoffFactor,
		},
	}, dispatchClient)

	store, err := a.newJobStore(ctx)
	if err != nil {
		return nil, err
	}
	a.Poller = poller.New(poller.Config{
		StatusURL:    cfg.Backend.StatusURL,
		InitialDelay: cfg.Poller.InitialDelay,
		Interval:     cfg.Poller.Interval,
		MaxAttempts:  cfg.Poller.MaxAttempts,
		QueryTimeout: cfg.Poller.QueryTimeout,
	}, pollClient, store)
	a.Poller.SetRecorder(a.Metrics)

	a.Sessions = proxy.NewSessionManager(a.Poller)
	a.Sessions.SetIdleTTL(cfg.Limits.SessionIdleTTL)
	a.Poller.OnUpdate(func(_ context.Context, record *types.JobRecord) {
		if record.SessionID != "" {
			a.Sessions.UpdateJobMessage(record.SessionID, record.JobID, record.Content)
		}
	})

	a.connectUsageLog(ctx)

	deps := proxy.GatewayDeps{
		Builder:  proxy.NewPayloadBuilder(proxy.NewFileProcessor(), cfg.Limits.MaxAttachmentBytes, cfg.Limits.HistoryTurns),
		Client:   client,
		Sessions: a.Sessions,
		Jobs:     a.Poller,
		Metrics:  a.Metrics,
	}
	if a.usage != nil {
		deps.Usage = a.usage
	}
	a.Gateway = proxy.NewGateway(deps)

	a.Health.RegisterCheck(health.RegistryCheck())
	a.Health.RegisterCheck(health.WebhookCheck(healthClient, cfg.Backend.WebhookURL))
	if a.redis != nil {
		a.Health.RegisterCheck(health.PingCheck("redis", "Job store reachability", true, a.redis.Ping))
	}
	if a.db != nil {
		a.Health.RegisterCheck(health.PingCheck("mongodb", "Usage log reachability", false, a.db.Ping))
	}

	a.Handler = router.SetupRoutes(router.Dependencies{
		Gateway:        proxy.NewProxyHandler(a.Gateway, cfg.Limits.MaxAttachmentBytes),
		API:            handlers.NewAPIHandlers(a.Poller, a.Sessions),
		Health:         a.Health,
		Metrics:        a.Metrics,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	a.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      a.Handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	logger.Info(ctx, "Application initialized",
		"address", a.server.Addr,
		"webhook_url", cfg.Backend.WebhookURL,
		"status_url", cfg.Backend.StatusURL,
		"job_store", jobStoreKind(a.redis),
		"usage_log_enabled", a.usage != nil,
		"health_checks", a.Health.Names(),
	)
	return a, nil
}

func (a *App) newJobStore(ctx context.Context) (poller.JobStore, error) {
	cfg := a.Config.JobStore
	if cfg.RedisAddr == "" {
		return poller.NewMemoryStore(cfg.TerminalTTL), nil
	}
	store, err := poller.NewRedisStore(ctx, poller.RedisOptions{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		KeyPrefix:   cfg.KeyPrefix,
		TerminalTTL: cfg.TerminalTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect job store: %w", err)
	}
	a.redis = store
	return store, nil
}

// connectUsageLog enables the MongoDB usage log. It is optional: a failed
// connection is logged and the gateway runs without it.
func (a *App) connectUsageLog(ctx context.Context) {
	cfg := a.Config
	if cfg.Database.URI == "" {
		return
	}
	dbConfig := database.NewDatabaseConfig(cfg.Database.URI, cfg.Database.Name,
		cfg.Logging.Environment, cfg.Logging.ServiceName, cfg.Database.Timeout)

	conn, err := database.Connect(ctx, dbConfig)
	if err != nil {
		logger.Warn(logger.WithStage(ctx, logger.LogStages.DatabaseOperation), "Usage log disabled",
			"uri", dbConfig.MaskedURI(),
			"error", err.Error())
		return
	}
	a.db = conn
	a.usage = database.NewUsageLogger(conn.UsageRepository(), dbConfig.Environment, utils.ServiceVersion, usageQueueSize)
}

// Run serves HTTP and keeps the poller alive until ctx is done or the server
// fails, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	logCtx := logger.WithComponent(ctx, logger.ComponentNames.App)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info(logCtx, "Server starting", "address", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return a.Poller.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(logger.WithStage(logCtx, logger.LogStages.Shutdown), "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	runErr := g.Wait()

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()
	return errors.Join(runErr, a.Close(closeCtx))
}

// Close releases the poller, the usage log and the store connections.
func (a *App) Close(ctx context.Context) error {
	a.Poller.Shutdown()

	var errs []error
	if a.usage != nil {
		if err := a.usage.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("usage log: %w", err))
		}
		if dropped := a.usage.Dropped(); dropped > 0 {
			logger.Warn(ctx, "Usage records dropped", "count", dropped)
		}
	}
	if a.db != nil {
		if err := a.db.Disconnect(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("job store: %w", err))
		}
	}
	return errors.Join(errs...)
}

func jobStoreKind(redis *poller.RedisStore) string {
	if redis != nil {
		return "redis"
	}
	return "memory"
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/incident-intake/internal/api/http"
	"github.com/spec-kit/incident-intake/internal/api/http/handlers"
	"github.com/spec-kit/incident-intake/internal/config"
	"github.com/spec-kit/incident-intake/internal/events"
	"github.com/spec-kit/incident-intake/internal/observability"
	"github.com/spec-kit/incident-intake/internal/persistence"
	"github.com/spec-kit/incident-intake/internal/repository"
	"github.com/spec-kit/incident-intake/internal/service"
	"github.com/spec-kit/incident-intake/internal/worker"
)

func run(target config.Target) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck
	logger = logger.With(zap.String("target", string(target)))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := map[string]handlers.HealthCheck{}
	var incidentRepo repository.IncidentRepository

	if target == config.TargetServer {
		repo, cleanup, err := openStore(ctx, cfg, logger, checks)
		if err != nil {
			return err
		}
		defer cleanup()
		incidentRepo = repo
	}

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	profile := cfg.Store.DefaultsFor(target)
	incidentService := service.NewIncidentService(service.IncidentDependencies{
		Normalizer:   service.NewNormalizer(profile),
		IncidentRepo: incidentRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(cfg.App.Name)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:        handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, string(target), checks, metrics),
		Incidents:     handlers.NewIncidentsHandler(incidentService),
		EnableListing: incidentService.Persistent(),
	})

	go func() {
		logger.Info("listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("defaults", profile),
			zap.Bool("persistent", incidentService.Persistent()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	notificationService.Wait()
	return nil
}

// openStore builds the configured incident store and registers its readiness checks.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger, checks map[string]handlers.HealthCheck) (repository.IncidentRepository, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect postgres: %w", err)
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		checks["postgres"] = pg.Ping
		logger.Info("using postgres incident store")
		return repository.NewPostgresIncidentRepository(pg.PoolHandle()), pg.Close, nil

	default:
		redis := persistence.NewRedis(cfg.Redis, logger)
		var locker persistence.Locker
		if l := persistence.NewRedisLocker(redis, cfg.Store.LockTTL()); l != nil {
			locker = l
			checks["redis"] = redis.Ping
		}
		checks["store_dir"] = func(context.Context) error {
			_, err := os.Stat(filepath.Dir(cfg.Store.FilePath))
			return err
		}
		logger.Info("using file incident store",
			zap.String("path", cfg.Store.FilePath),
			zap.Bool("advisory_lock", locker != nil))
		return repository.NewFileIncidentRepository(cfg.Store.FilePath, locker), redis.Close, nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/omnicart-backend/internal/catalog"
	"github.com/angelmondragon/omnicart-backend/internal/cron"
	"github.com/angelmondragon/omnicart-backend/pkg/config"
	"github.com/angelmondragon/omnicart-backend/pkg/db"
	"github.com/angelmondragon/omnicart-backend/pkg/instance"
	"github.com/angelmondragon/omnicart-backend/pkg/logger"
	"github.com/angelmondragon/omnicart-backend/pkg/metrics"
	"github.com/angelmondragon/omnicart-backend/pkg/migrate"
	"github.com/angelmondragon/omnicart-backend/pkg/redis"
)

const (
	serviceKind = "cron-worker"
	lockName    = "cron-worker:%s"
)

func main() {
	boot := logger.New(logger.Options{ServiceName: serviceKind})
	if err := godotenv.Load(); err != nil {
		boot.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		boot.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceKind

	logg := logger.New(logger.Options{
		ServiceName: serviceKind,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		stop()
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}

// run owns every resource so deferred closes happen before main exits.
func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer closeWithLog(ctx, logg, "database", dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	lock, closeLock, err := cycleLock(ctx, cfg, logg)
	if err != nil {
		return err
	}
	defer closeLock()

	syncJob, err := cron.NewCatalogSyncJob(
		catalog.NewFileSource(cfg.Catalog.Path),
		catalog.NewRepository(dbClient.DB()),
		logg,
	)
	if err != nil {
		return fmt.Errorf("catalog sync job: %w", err)
	}
	registry, err := cron.NewRegistry(syncJob)
	if err != nil {
		return fmt.Errorf("cron registry: %w", err)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:     logg,
		Registry:   registry,
		Lock:       lock,
		Metrics:    metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval:   cfg.Cron.Interval,
		RunOnStart: true,
	})
	if err != nil {
		return fmt.Errorf("cron service: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
		"jobs":        registry.Names(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// cycleLock shares the scheduler cycle across replicas through Redis when it
// is configured and falls back to a process-local lock otherwise.
func cycleLock(ctx context.Context, cfg *config.Config, logg *logger.Logger) (cron.Lock, func(), error) {
	if !cfg.Redis.Enabled() {
		logg.Warn(ctx, "redis not configured; cron lock is process-local")
		return &cron.LocalLock{}, func() {}, nil
	}
	client, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return nil, nil, fmt.Errorf("bootstrap redis: %w", err)
	}
	closeRedis := func() { closeWithLog(ctx, logg, "redis", client.Close) }

	env := cfg.App.Env
	if env == "" {
		env = "local"
	}
	lock, err := cron.NewRedisLock(client, client.LockKey(fmt.Sprintf(lockName, env)), cfg.Cron.LockTTL)
	if err != nil {
		closeRedis()
		return nil, nil, fmt.Errorf("cron lock: %w", err)
	}
	return lock, closeRedis, nil
}

func closeWithLog(ctx context.Context, logg *logger.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logg.Error(ctx, "error closing "+name, err)
	}
}

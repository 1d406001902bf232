package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/omnicart-backend/api/controllers"
	"github.com/angelmondragon/omnicart-backend/api/routes"
	"github.com/angelmondragon/omnicart-backend/internal/auth"
	"github.com/angelmondragon/omnicart-backend/internal/cart"
	"github.com/angelmondragon/omnicart-backend/internal/catalog"
	"github.com/angelmondragon/omnicart-backend/internal/checkout"
	"github.com/angelmondragon/omnicart-backend/internal/cron"
	"github.com/angelmondragon/omnicart-backend/internal/notifications"
	"github.com/angelmondragon/omnicart-backend/internal/orders"
	"github.com/angelmondragon/omnicart-backend/internal/pricing"
	"github.com/angelmondragon/omnicart-backend/internal/users"
	"github.com/angelmondragon/omnicart-backend/internal/wishlist"
	"github.com/angelmondragon/omnicart-backend/pkg/auth/session"
	"github.com/angelmondragon/omnicart-backend/pkg/clientstate"
	"github.com/angelmondragon/omnicart-backend/pkg/config"
	"github.com/angelmondragon/omnicart-backend/pkg/db"
	"github.com/angelmondragon/omnicart-backend/pkg/instance"
	"github.com/angelmondragon/omnicart-backend/pkg/logger"
	"github.com/angelmondragon/omnicart-backend/pkg/metrics"
	"github.com/angelmondragon/omnicart-backend/pkg/migrate"
	"github.com/angelmondragon/omnicart-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "api"

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("bootstrap database: %w", err)
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("dev migrations: %w", err)
	}

	pingers := map[string]controllers.Pinger{"database": dbClient}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return fmt.Errorf("bootstrap redis: %w", err)
		}
		defer func() { err = multierr.Append(err, redisClient.Close()) }()
		pingers["redis"] = redisClient
	} else {
		logg.Warn(ctx, "redis not configured; client state, sessions and rate limits stay in memory")
	}

	registry := prometheus.DefaultRegisterer
	storefrontMetrics := metrics.NewStorefrontMetrics(registry)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	source, err := catalog.NewSourceFromConfig(cfg.Catalog, catalogRepo)
	if err != nil {
		return err
	}
	store := catalog.NewStore(source, logg, storefrontMetrics)
	if err := store.Reload(ctx); err != nil {
		logg.Error(ctx, "initial catalog load failed; serving an empty catalog until the next reload", err)
	}

	state := clientstate.New(redisClient, cfg.ClientState)
	emitter := notifications.NewEmitter(cfg.Notifications, logg, storefrontMetrics)
	defer emitter.Close()

	cartSvc, err := cart.NewService(cart.ServiceParams{
		Products: store,
		State:    state,
		Notifier: emitter,
		Logger:   logg,
		Metrics:  storefrontMetrics,
	})
	if err != nil {
		return fmt.Errorf("create cart service: %w", err)
	}
	wishlistSvc, err := wishlist.NewService(wishlist.ServiceParams{
		Products: store,
		State:    state,
		Notifier: emitter,
		Logger:   logg,
		Metrics:  storefrontMetrics,
	})
	if err != nil {
		return fmt.Errorf("create wishlist service: %w", err)
	}

	calc := pricing.NewCalculator(cfg.Pricing)
	ordersRepo := orders.NewRepository(dbClient.DB())
	checkoutSvc, err := checkout.NewService(checkout.ServiceParams{
		Cart:     cartSvc,
		Pricing:  calc,
		Orders:   ordersRepo,
		Notifier: emitter,
		Logger:   logg,
		Metrics:  storefrontMetrics,
	})
	if err != nil {
		return fmt.Errorf("create checkout service: %w", err)
	}
	ordersSvc, err := orders.NewService(ordersRepo)
	if err != nil {
		return fmt.Errorf("create orders service: %w", err)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return fmt.Errorf("create session manager: %w", err)
	}
	usersRepo := users.NewRepository(dbClient.DB())
	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		State:          state,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
		Metrics:        storefrontMetrics,
	})
	if err != nil {
		return fmt.Errorf("create auth service: %w", err)
	}
	usersSvc, err := users.NewService(usersRepo, cfg.Password)
	if err != nil {
		return fmt.Errorf("create users service: %w", err)
	}

	scheduler, err := newScheduler(cfg, logg, store, state, cartSvc, wishlistSvc)
	if err != nil {
		return err
	}

	services := routes.Services{
		Catalog:       store,
		Lister:        catalog.NewLister(store, cfg.Catalog),
		Resolver:      catalog.NewResolver(store, cfg.Catalog.RelatedCount),
		Cart:          cartSvc,
		Wishlist:      wishlistSvc,
		Checkout:      checkoutSvc,
		Pricing:       calc,
		Notifications: emitter,
		Auth:          authSvc,
		Users:         usersSvc,
		Orders:        ordersSvc,
		Sessions:      sessionManager,
		Pingers:       pingers,
		Gatherer:      prometheus.DefaultGatherer,
	}
	if redisClient != nil {
		services.RateLimiter = redisClient
		services.Idempotency = redisClient
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, services),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.App.WriteTimeout,
	}

	go func() {
		if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "in-process cron stopped", err)
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownWait)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newScheduler runs the catalog reload and client state sweep inside the API
// process. Both jobs touch process-local state so a local lock is enough.
func newScheduler(
	cfg *config.Config,
	logg *logger.Logger,
	store *catalog.Store,
	state clientstate.Store,
	cartSvc *cart.Service,
	wishlistSvc *wishlist.Service,
) (*cron.Service, error) {
	reloadJob, err := cron.NewCatalogReloadJob(store)
	if err != nil {
		return nil, fmt.Errorf("create catalog reload job: %w", err)
	}
	sweepParams := cron.ClientStateSweepJobParams{
		Logger:   logg,
		Evictors: []cron.IdleEvictor{cartSvc, wishlistSvc},
		Idle:     cfg.ClientState.IdleEvict,
	}
	if purger, ok := state.(cron.ExpiryPurger); ok {
		sweepParams.Purger = purger
	}
	sweepJob, err := cron.NewClientStateSweepJob(sweepParams)
	if err != nil {
		return nil, fmt.Errorf("create client state sweep job: %w", err)
	}
	registry, err := cron.NewRegistry(reloadJob, sweepJob)
	if err != nil {
		return nil, fmt.Errorf("create cron registry: %w", err)
	}
	return cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     &cron.LocalLock{},
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Catalog.ReloadInterval,
	})
}

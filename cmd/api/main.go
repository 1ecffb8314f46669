package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/buzdealz-backend/api/routes"
	"github.com/angelmondragon/buzdealz-backend/internal/analytics"
	"github.com/angelmondragon/buzdealz-backend/internal/auth"
	"github.com/angelmondragon/buzdealz-backend/internal/deals"
	"github.com/angelmondragon/buzdealz-backend/internal/wishlist"
	"github.com/angelmondragon/buzdealz-backend/pkg/auth/session"
	"github.com/angelmondragon/buzdealz-backend/pkg/config"
	"github.com/angelmondragon/buzdealz-backend/pkg/db"
	"github.com/angelmondragon/buzdealz-backend/pkg/logger"
	"github.com/angelmondragon/buzdealz-backend/pkg/metrics"
	"github.com/angelmondragon/buzdealz-backend/pkg/migrate"
	"github.com/angelmondragon/buzdealz-backend/pkg/pubsub"
	"github.com/angelmondragon/buzdealz-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

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

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	var closers []func() error
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i]())
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	closers = append(closers, dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var (
		redisClient *redis.Client
		revocations *session.Manager
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		closers = append(closers, redisClient.Close)

		revocations, err = session.NewManager(redisClient)
		if err != nil {
			return err
		}
	} else {
		logg.Warn(ctx, "redis not configured; auth rate limiting and logout revocation disabled")
	}

	var publisher analytics.Publisher
	if cfg.PubSub.Enabled() {
		pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			return err
		}
		closers = append(closers, pubsubClient.Close)
		publisher = analytics.NewPubSubPublisher(pubsubClient.AnalyticsPublisher())
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	authParams := auth.ServiceParams{
		DB:             dbClient,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	}
	if revocations != nil {
		authParams.Revoker = revocations
	}
	authService, err := auth.NewService(authParams)
	if err != nil {
		return err
	}

	wishlistRepo := wishlist.NewRepository(dbClient.DB())
	dealService, err := deals.NewService(deals.ServiceParams{DB: dbClient, Wishlist: wishlistRepo})
	if err != nil {
		return err
	}

	recorder, err := analytics.NewRecorder(analytics.RecorderParams{
		Store:     analytics.NewRepository(dbClient.DB()),
		Publisher: publisher,
		Logger:    logg,
	})
	if err != nil {
		return err
	}
	closers = append(closers, recorder.Close)

	wishlistService, err := wishlist.NewService(wishlist.ServiceParams{
		WishlistRepo: wishlistRepo,
		DealRepo:     deals.NewRepository(dbClient.DB()),
		Recorder:     recorder,
		Metrics:      metrics.NewWishlistMetrics(reg),
	})
	if err != nil {
		return err
	}

	deps := routes.Dependencies{
		Config:          cfg,
		Logger:          logg,
		DB:              dbClient,
		Redis:           redisClient,
		Gatherer:        reg,
		HTTPMetrics:     metrics.NewHTTPMetrics(reg),
		AuthService:     authService,
		DealService:     dealService,
		WishlistService: wishlistService,
	}
	if revocations != nil {
		deps.Revocations = revocations
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"db":      dbClient.Dialect(),
		"redis":   redisClient != nil,
		"pubsub":  publisher != nil,
		"metrics": cfg.Metrics.Enabled,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

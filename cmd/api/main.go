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

	"github.com/angelmondragon/eventpos-backend/api"
	"github.com/angelmondragon/eventpos-backend/api/controllers"
	"github.com/angelmondragon/eventpos-backend/api/routes"
	"github.com/angelmondragon/eventpos-backend/internal/catalog"
	"github.com/angelmondragon/eventpos-backend/internal/checkout"
	"github.com/angelmondragon/eventpos-backend/internal/events"
	"github.com/angelmondragon/eventpos-backend/internal/rates"
	"github.com/angelmondragon/eventpos-backend/internal/transactions"
	"github.com/angelmondragon/eventpos-backend/pkg/config"
	"github.com/angelmondragon/eventpos-backend/pkg/db"
	"github.com/angelmondragon/eventpos-backend/pkg/enums"
	"github.com/angelmondragon/eventpos-backend/pkg/logger"
	"github.com/angelmondragon/eventpos-backend/pkg/metrics"
	"github.com/angelmondragon/eventpos-backend/pkg/migrate"
	"github.com/angelmondragon/eventpos-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeAutoRun(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var (
		redisPinger controllers.Pinger
		idempotency redis.IdempotencyStore
		rateCache   = rates.NewMemoryCache(cfg.Pricing.RateCacheTTL)
	)
	if cfg.Redis.Enabled() {
		var redisClient *redis.Client
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		redisPinger = redisClient
		idempotency = redisClient
		rateCache = rates.NewRedisCache(redisClient, cfg.Pricing.RateCacheTTL)
	} else {
		logg.Warn(ctx, "redis not configured: idempotency disabled, rates cached in memory")
	}

	seed, err := cfg.Pricing.Rates()
	if err != nil {
		return err
	}
	rateService, err := rates.NewService(rates.NewRepository(dbClient.DB()), rateCache, logg)
	if err != nil {
		return err
	}
	if err := rateService.Seed(ctx, seed); err != nil {
		return err
	}

	settlement, err := enums.ParseCurrency(cfg.Pricing.SettlementCurrency())
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	posMetrics := metrics.NewPOSMetrics(registry)

	eventRepo := events.NewRepository(dbClient.DB())
	eventService, err := events.NewService(eventRepo)
	if err != nil {
		return err
	}
	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), eventRepo)
	if err != nil {
		return err
	}
	txRepo := transactions.NewRepository(dbClient.DB())
	transactionService, err := transactions.NewService(txRepo, eventService, posMetrics)
	if err != nil {
		return err
	}
	checkoutService, err := checkout.NewService(dbClient, eventService, catalogService, rateService, txRepo, settlement, posMetrics, logg)
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	server := api.NewServer(addr, routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisPinger,
		idempotency,
		registry,
		eventService,
		catalogService,
		checkoutService,
		transactionService,
		rateService,
	))

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"driver":     dbClient.Dialect(),
		"settlement": settlement.String(),
	})
	logg.Info(logCtx, "starting api server")

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

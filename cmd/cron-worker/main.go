package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/smartlist-backend/api"
	"github.com/angelmondragon/smartlist-backend/internal/cron"
	"github.com/angelmondragon/smartlist-backend/internal/shoppinglists"
	"github.com/angelmondragon/smartlist-backend/pkg/config"
	"github.com/angelmondragon/smartlist-backend/pkg/db"
	"github.com/angelmondragon/smartlist-backend/pkg/logger"
	"github.com/angelmondragon/smartlist-backend/pkg/metrics"
	"github.com/angelmondragon/smartlist-backend/pkg/migrate"
	"github.com/angelmondragon/smartlist-backend/pkg/outbox"
	"github.com/angelmondragon/smartlist-backend/pkg/redis"
)

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit, for use under an external scheduler")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		JSONOnly:    cfg.App.IsProd(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	reg := prometheus.NewRegistry()
	cronMetrics := metrics.NewCronJobMetrics(reg)

	lock, err := cron.NewRedisLock(redisClient, "cron-worker", 0)
	requireJob(ctx, logg, "cron lock", err)

	outboxJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outbox.NewRepository(dbClient.DB()),
		Metrics:    cronMetrics,
		Retention:  cfg.Outbox.Retention,
	})
	requireJob(ctx, logg, "outbox retention job", err)

	listJob, err := cron.NewShoppingListRetentionJob(cron.ShoppingListRetentionJobParams{
		Logger:        logg,
		Lists:         shoppinglists.NewRepository(dbClient.DB()),
		Metrics:       cronMetrics,
		RetentionDays: cfg.Replenishment.ListRetentionDays,
	})
	requireJob(ctx, logg, "shopping list retention job", err)

	jobs, err := cron.NewRegistry(outboxJob, listJob)
	requireJob(ctx, logg, "cron registry", err)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: jobs,
		Lock:     lock,
		Metrics:  cronMetrics,
		Interval: cfg.Replenishment.CronInterval,
	})
	requireJob(ctx, logg, "cron service", err)

	if *once {
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cron cycle failed", err)
			os.Exit(1)
		}
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	go func() {
		if err := api.Serve(ctx, api.NewServer(":"+cfg.App.Port, mux), logg); err != nil {
			logg.Error(ctx, "metrics listener stopped", err)
		}
	}()

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}

func requireJob(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to create "+name, err)
	os.Exit(1)
}

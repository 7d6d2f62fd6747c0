package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/angelmondragon/smartlist-backend/api"
	"github.com/angelmondragon/smartlist-backend/api/routes"
	"github.com/angelmondragon/smartlist-backend/internal/categories"
	"github.com/angelmondragon/smartlist-backend/internal/inventory"
	"github.com/angelmondragon/smartlist-backend/internal/shoppinglists"
	"github.com/angelmondragon/smartlist-backend/internal/users"
	"github.com/angelmondragon/smartlist-backend/pkg/config"
	"github.com/angelmondragon/smartlist-backend/pkg/db"
	"github.com/angelmondragon/smartlist-backend/pkg/instance"
	"github.com/angelmondragon/smartlist-backend/pkg/logger"
	"github.com/angelmondragon/smartlist-backend/pkg/metrics"
	"github.com/angelmondragon/smartlist-backend/pkg/migrate"
	"github.com/angelmondragon/smartlist-backend/pkg/outbox"
	"github.com/angelmondragon/smartlist-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
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

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		JSONOnly:    cfg.App.IsProd(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	replenishment := metrics.NewReplenishmentMetrics(reg)

	conn := dbClient.DB()
	emitter := outbox.NewService(outbox.NewRepository(conn), logg)
	userRepo := users.NewRepository(conn)
	itemRepo := inventory.NewItemRepository(conn)
	categoryRepo := categories.NewRepository(conn)
	listStore := shoppinglists.NewRepository(conn)

	registry, err := shoppinglists.NewRegistry(shoppinglists.RegistryParams{
		Store:   listStore,
		Tx:      dbClient,
		Metrics: replenishment,
		Logger:  logg,
	})
	requireService(ctx, logg, "shopping list registry", err)

	coordinator, err := inventory.NewCoordinator(inventory.CoordinatorParams{
		Items:   itemRepo,
		Users:   userRepo,
		Lists:   registry,
		Tx:      dbClient,
		Outbox:  emitter,
		Metrics: replenishment,
		Logger:  logg,
	})
	requireService(ctx, logg, "replenishment coordinator", err)

	finalizer, err := shoppinglists.NewFinalizer(shoppinglists.FinalizerParams{
		Store:   listStore,
		Tx:      dbClient,
		Stock:   coordinator,
		Outbox:  emitter,
		Metrics: replenishment,
		Logger:  logg,
	})
	requireService(ctx, logg, "shopping list finalizer", err)

	listService, err := shoppinglists.NewService(shoppinglists.ServiceParams{
		Registry:  registry,
		Finalizer: finalizer,
		Refresher: coordinator,
	})
	requireService(ctx, logg, "shopping list service", err)

	itemService, err := inventory.NewItemService(inventory.ItemServiceParams{
		Items:       itemRepo,
		Users:       userRepo,
		Categories:  categoryRepo,
		Coordinator: coordinator,
		Tx:          dbClient,
		Logger:      logg,
	})
	requireService(ctx, logg, "item service", err)

	categoryService, err := categories.NewService(categories.ServiceParams{Repo: categoryRepo, Tx: dbClient, Logger: logg})
	requireService(ctx, logg, "category service", err)

	settingsService, err := users.NewService(users.ServiceParams{Repo: userRepo, Refresher: coordinator, Logger: logg})
	requireService(ctx, logg, "settings service", err)

	handler := routes.NewRouter(routes.Deps{
		Config:        cfg,
		Logger:        logg,
		DB:            dbClient,
		Redis:         redisClient,
		Idempotency:   redisClient,
		Gatherer:      reg,
		Settings:      settingsService,
		Categories:    categoryService,
		Items:         itemService,
		Coordinator:   coordinator,
		ShoppingLists: listService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(logCtx, "starting api server")

	if err := api.Serve(logCtx, api.NewServer(addr, handler), logg); err != nil {
		logg.Error(logCtx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to create "+name, err)
	os.Exit(1)
}

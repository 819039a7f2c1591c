package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fleetparts/fleetparts-backend/api/routes"
	"github.com/fleetparts/fleetparts-backend/internal/catalog"
	"github.com/fleetparts/fleetparts-backend/internal/ledger"
	"github.com/fleetparts/fleetparts-backend/internal/locations"
	"github.com/fleetparts/fleetparts-backend/internal/reports"
	"github.com/fleetparts/fleetparts-backend/internal/transfers"
	"github.com/fleetparts/fleetparts-backend/pkg/auth/session"
	"github.com/fleetparts/fleetparts-backend/pkg/config"
	"github.com/fleetparts/fleetparts-backend/pkg/db"
	"github.com/fleetparts/fleetparts-backend/pkg/logger"
	"github.com/fleetparts/fleetparts-backend/pkg/metrics"
	"github.com/fleetparts/fleetparts-backend/pkg/migrate"
	"github.com/fleetparts/fleetparts-backend/pkg/outbox"
	"github.com/fleetparts/fleetparts-backend/pkg/redis"
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
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var sessionChecker session.AccessSessionChecker
	if cfg.FeatureFlags.SessionCheck {
		manager, err := session.NewManager(redisClient, cfg.JWT)
		if err != nil {
			logg.Error(context.Background(), "failed to create session manager", err)
			os.Exit(1)
		}
		sessionChecker = manager
	}

	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	ledgerRepo := ledger.NewRepository(dbClient.DB())
	locationsRepo := locations.NewRepository(dbClient.DB())
	transfersRepo := transfers.NewRepository(dbClient.DB())
	reportsRepo := reports.NewRepository(dbClient.DB())

	locationsSvc, err := locations.NewService(locationsRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create locations service", err)
		os.Exit(1)
	}

	catalogSvc, err := catalog.NewService(catalogRepo, dbClient, ledgerRepo, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	ledgerSvc, err := ledger.NewService(ledgerRepo, dbClient, catalogRepo, locationsRepo, outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	transfersSvc, err := transfers.NewService(
		transfersRepo,
		ledgerRepo,
		locationsRepo,
		dbClient,
		outboxSvc,
		metrics.NewTransferMetrics(prometheus.DefaultRegisterer),
		cfg.Stocking,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create transfer service", err)
		os.Exit(1)
	}

	reportsSvc, err := reports.NewService(reportsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create reports service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionChecker,
			catalogSvc,
			ledgerSvc,
			locationsSvc,
			transfersSvc,
			reportsSvc,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

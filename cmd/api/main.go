// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

// Command api is the entry point for the institutions HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the institution store (PostgreSQL + migrations, or in-memory).
//  4. Connect to Redis when a list cache is configured.
//  5. Prepare the reference datasets (local files or S3).
//  6. Wire the institution service and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/osg-htc/institutions/internal/api"
	"github.com/osg-htc/institutions/internal/institution"
	"github.com/osg-htc/institutions/internal/institution/metrics"
	"github.com/osg-htc/institutions/internal/platform/config"
	"github.com/osg-htc/institutions/internal/platform/constants"
	"github.com/osg-htc/institutions/internal/platform/migration"
	"github.com/osg-htc/institutions/internal/platform/objectstore"
	pgstore "github.com/osg-htc/institutions/internal/platform/postgres"
	redisstore "github.com/osg-htc/institutions/internal/platform/redis"
	"github.com/osg-htc/institutions/internal/reference"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("store", cfg.StoreDriver),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	institutionMetrics := metrics.New(registry)

	var health api.HealthDependencies

	// ── 3. Institution store ──────────────────────────────────────────────
	var repository institution.Repository
	if cfg.UsesPostgres() {
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing postgres pool")
			pool.Close()
		}()

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		repository = institution.NewPostgresRepository(pool)
		health.CheckDatabase = func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }
	} else {
		log.Warn("memory_store_selected", slog.String("hint", "data is lost on restart"))
		repository = institution.NewMemoryStore()
	}

	// ── 4. Redis list cache ───────────────────────────────────────────────
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()

		repository = institution.NewCachedRepository(repository, redisstore.NewCache(rdb), cfg.ListCacheTTL, log, institutionMetrics)
		health.CheckCache = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }
	}

	// ── 5. Reference datasets ─────────────────────────────────────────────
	locations := reference.Locations{
		IPEDS:        cfg.IPEDSDataLocation,
		Carnegie2021: cfg.Carnegie2021DataLocation,
		Carnegie2025: cfg.Carnegie2025DataLocation,
	}

	var objects reference.Opener
	if objectstore.IsLocation(locations.IPEDS) || objectstore.IsLocation(locations.Carnegie2021) || objectstore.IsLocation(locations.Carnegie2025) {
		store, err := objectstore.New(startupCtx, objectstore.Config{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PathStyle: cfg.S3PathStyle,
		})
		must(log, err, "configure object storage")
		objects = store
	}

	catalog := reference.NewCatalog(reference.NewSource(objects), locations, log)
	if err := catalog.Preload(startupCtx); err != nil {
		// Lookups retry the load, so a missing dataset only fails unit id writes.
		log.Warn("reference_preload_failed", slog.Any("error", err))
	}

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	service := institution.NewService(
		repository,
		institution.NewReconciler(catalog),
		institution.NewPublicIDGenerator(cfg.PublicIDLength, cfg.PublicIDMaxAttempts),
		log,
		institution.WithMetrics(institutionMetrics),
	)

	liveness, readiness := api.NewHealthHandlers(health, log)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, registry, api.Handlers{
		Liveness:    liveness,
		Readiness:   readiness,
		Institution: institution.NewHandler(service),
	})

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}

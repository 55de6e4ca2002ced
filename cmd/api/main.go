// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Ficdex explorer server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Refresh the local dataset copy from DATASET_SOURCE_PATH, if set.
//  4. Open the dataset read-only.
//  5. Connect to Redis when REDIS_URL is set (optional aggregate cache).
//  6. Wire services and HTTP handlers.
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

	"github.com/dustin/go-humanize"

	"github.com/taibuivan/ficdex/internal/api"
	"github.com/taibuivan/ficdex/internal/core/stats"
	"github.com/taibuivan/ficdex/internal/core/story"
	"github.com/taibuivan/ficdex/internal/platform/cache"
	"github.com/taibuivan/ficdex/internal/platform/config"
	"github.com/taibuivan/ficdex/internal/platform/constants"
	"github.com/taibuivan/ficdex/internal/platform/database"
	redisstore "github.com/taibuivan/ficdex/internal/platform/redis"
	"github.com/taibuivan/ficdex/internal/platform/snapshot"
	"github.com/taibuivan/ficdex/internal/web"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing")

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
		slog.String("driver", cfg.DatabaseDriver),
		slog.String("addr", cfg.Addr()),
	)

	// Root context for background workers (rate limiter eviction).
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Startup deadline so misconfiguration is caught quickly. The snapshot
	// copy of a large dump is the slow part.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 10*time.Minute)
	defer startupCancel()

	// ── 3. Dataset Snapshot ───────────────────────────────────────────────
	if cfg.DatasetSourcePath != "" && cfg.DatabaseDriver == config.DriverSQLite {
		result, err := snapshot.Sync(startupCtx, cfg.DatasetSourcePath, cfg.DatabasePath)
		must(log, err, "sync dataset snapshot")

		if result.Copied {
			log.Info("dataset_snapshot_copied",
				slog.String("source", cfg.DatasetSourcePath),
				slog.String("size", humanize.IBytes(uint64(result.Bytes))),
				slog.Duration("elapsed", result.Elapsed),
			)
		} else {
			log.Info("dataset_snapshot_up_to_date", slog.String("size", humanize.IBytes(uint64(result.Bytes))))
		}
	}

	// ── 4. Dataset ────────────────────────────────────────────────────────
	db, err := database.Open(startupCtx, cfg.DatabaseDriver, cfg.DSN(),
		database.ReadOnly(),
		database.WithLogger(log),
	)
	must(log, err, "open dataset")
	defer func() {
		log.Info("closing dataset")
		if cerr := db.Close(); cerr != nil {
			log.Error("dataset close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Aggregate Cache ────────────────────────────────────────────────
	var (
		aggregateCache cache.Cache = cache.Noop{}
		checkCache     func(context.Context) error
	)
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		if err != nil {
			// The cache only saves work; the explorer runs without it.
			log.Warn("redis_unavailable_cache_disabled", slog.Any("error", err))
		} else {
			defer func() {
				log.Info("closing redis client")
				if cerr := rdb.Close(); cerr != nil {
					log.Error("redis close error", slog.Any("error", cerr))
				}
			}()

			aggregateCache = cache.NewRedis(rdb, constants.RedisPrefixStats+datasetVersion(cfg)+":")
			checkCache = func(ctx context.Context) error { return redisstore.Ping(ctx, rdb) }
		}
	}

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	storyService := story.NewService(story.NewSQLRepository(db), cfg.MaxPageSize, log)
	statsService := stats.NewService(stats.NewSQLRepository(db), aggregateCache, cfg.CacheTTL, log)

	pages, err := web.NewHandler(storyService, statsService)
	must(log, err, "parse page templates")

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDataset: db.Ping,
		CheckCache:   checkCache,
	}, log)

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Story:     story.NewHandler(storyService),
		Stats:     stats.NewHandler(statsService),
		Web:       pages,
	}

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	server := api.NewServer(rootCtx, cfg, log, handlers)

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
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", constants.AppName))
}

// datasetVersion namespaces cache keys so a refreshed dump never serves the
// previous dump's aggregates. A Postgres mirror has no file to fingerprint;
// the cache TTL bounds staleness there.
func datasetVersion(cfg *config.Config) string {
	if cfg.DatabaseDriver != config.DriverSQLite {
		return config.DriverPostgres
	}
	fingerprint, err := snapshot.Fingerprint(cfg.DatabasePath)
	if err != nil {
		return "unknown"
	}
	return fingerprint
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned
// and handled explicitly.
func must(log *slog.Logger, err error, step string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("step", step),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}

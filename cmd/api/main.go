// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

// Command api is the entry point for the Kanri HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire HTTP handlers.
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

	"github.com/kanrihq/kanri/internal/api"
	"github.com/kanrihq/kanri/internal/auth"
	"github.com/kanrihq/kanri/internal/org/department"
	"github.com/kanrihq/kanri/internal/org/section"
	"github.com/kanrihq/kanri/internal/platform/config"
	"github.com/kanrihq/kanri/internal/platform/constants"
	"github.com/kanrihq/kanri/internal/platform/migration"
	pgstore "github.com/kanrihq/kanri/internal/platform/postgres"
	redisstore "github.com/kanrihq/kanri/internal/platform/redis"
	"github.com/kanrihq/kanri/internal/platform/sec"
	"github.com/kanrihq/kanri/internal/system/audit"
	"github.com/kanrihq/kanri/internal/system/settings"
	"github.com/kanrihq/kanri/internal/users"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "kanri"))
	slog.SetDefault(log)

	log.Info("[Kanri] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "kanri"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Session Codec ──────────────────────────────────────────────────
	// A short secret is a startup-fatal misconfiguration.
	sessionCodec, err := sec.NewSessionCodec(cfg.SessionSecret, constants.AuthIssuer, constants.SessionTokenTTL)
	must(log, err, "initialize session codec")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	auditService := audit.NewService(audit.NewPostgresStore(pool), log)
	auditHandler := audit.NewHandler(auditService)

	settingsService := settings.NewService(settings.NewPostgresStore(pool), auditService, log)
	settingsHandler := settings.NewHandler(settingsService)

	loginLimiter := auth.NewLoginLimiter(rdb)
	authService := auth.NewService(auth.NewPostgresStore(pool), sessionCodec, loginLimiter, auditService, log)
	authHandler := auth.NewHandler(authService, cfg)

	usersService := users.NewService(users.NewPostgresStore(pool), auditService, log)
	usersHandler := users.NewHandler(usersService)

	departmentService := department.NewService(department.NewPostgresStore(pool), auditService, log)
	departmentHandler := department.NewHandler(departmentService)

	sectionService := section.NewService(section.NewPostgresStore(pool), auditService, log)
	sectionHandler := section.NewHandler(sectionService)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Auth:       authHandler,
		Users:      usersHandler,
		Department: departmentHandler,
		Section:    sectionHandler,
		Settings:   settingsHandler,
		Audit:      auditHandler,
	}

	gates := api.Gates{
		Verifier:    authService,
		Maintenance: settingsService,
		Decoder:     sessionCodec,
	}

	server := api.NewServer(startupCtx, cfg, log, gates, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
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

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}

// Copyright (c) 2026 Kanri. All rights reserved.
// Author: dev@kanri.app

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kanrihq/kanri/internal/auth"
	"github.com/kanrihq/kanri/internal/org/department"
	"github.com/kanrihq/kanri/internal/org/section"
	"github.com/kanrihq/kanri/internal/platform/config"
	"github.com/kanrihq/kanri/internal/platform/constants"
	"github.com/kanrihq/kanri/internal/platform/middleware"
	"github.com/kanrihq/kanri/internal/platform/sec"
	"github.com/kanrihq/kanri/internal/system/audit"
	"github.com/kanrihq/kanri/internal/system/settings"
	"github.com/kanrihq/kanri/internal/users"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles the session lifecycle (csrf-token, login, logout, me).
	Auth *auth.Handler

	// Users handles administrative account management.
	Users *users.Handler

	// Department and Section manage the organizational hierarchy.
	Department *department.Handler
	Section    *section.Handler

	// Settings handles runtime configuration and the maintenance switch.
	Settings *settings.Handler

	// Audit exposes the activity trail to administrators.
	Audit *audit.Handler
}

// Gates bundles the request gatekeeper dependencies.
type Gates struct {
	// Verifier authenticates session cookies against live account state.
	Verifier middleware.SessionVerifier

	// Maintenance reports the (cached) maintenance flag.
	Maintenance middleware.MaintenanceStatusProvider

	// Decoder performs the tolerant codec-only admin probe used while the
	// platform is in maintenance mode.
	Decoder middleware.TokenDecoder
}

// maintenanceExempt lists path prefixes the maintenance gate never blocks:
// the session endpoints (so admins can log in to end maintenance) and the
// settings endpoints (the public status probe plus the admin switch itself).
var maintenanceExempt = []string{
	"/api/v1/auth",
	"/api/v1/system/settings",
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, gates Gates, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	//
	// The gatekeeper chain runs in a fixed order: CSRF screening first,
	// then the maintenance gate, then cookie authentication. Role checks
	// live on the individual route groups.
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.CSRF())
		api.Use(middleware.Maintenance(gates.Maintenance, gates.Decoder, maintenanceExempt))
		api.Use(middleware.Authenticate(gates.Verifier))

		api.Mount("/auth", h.Auth.Routes())

		// Settings carry their own public/admin split: the maintenance
		// status probe is open, the management surface is admin-gated.
		api.Mount("/system/settings", h.Settings.Routes())

		// Administrative surface.
		api.Group(func(admin chi.Router) {
			admin.Use(middleware.RequireAuth)
			admin.Use(middleware.RequireRole(sec.RoleAdmin))

			admin.Mount("/users", h.Users.Routes())
			admin.Mount("/departments", h.Department.Routes())
			admin.Mount("/sections", h.Section.Routes())
			admin.Mount("/system/audit", h.Audit.Routes())
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}

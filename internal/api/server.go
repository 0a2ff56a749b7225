// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

/*
Package api wires together the HTTP router, middleware chain, and the domain
handlers into a runnable [http.Server].

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
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osg-htc/institutions/internal/institution"
	"github.com/osg-htc/institutions/internal/platform/config"
	"github.com/osg-htc/institutions/internal/platform/constants"
	"github.com/osg-htc/institutions/internal/platform/middleware"
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

// Handlers groups the HTTP handler sets mounted by the server.
type Handlers struct {
	// Liveness is the /health handler. It returns 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Institution serves the catalog under /api/v1/institutions.
	Institution *institution.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups. Collectors are registered on registry, which is
// also what /metrics exposes.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, registry *prometheus.Registry, h Handlers) *Server {
	r := chi.NewRouter()
	httpMetrics := middleware.NewHTTPMetrics(registry)

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.Author(cfg.AuthorHeader))
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.PanicRecovery(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.CORS(cfg, strings.Split(cfg.ExtraOrigins, ",")))
	r.Use(chimw.CleanPath)
	r.Use(httpMetrics.Instrument)

	// # Infrastructure Endpoints
	// Unauthenticated probes for container orchestration and scraping.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	// # Application API
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/institutions", h.Institution.Routes())
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

// Handler exposes the fully wired router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
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

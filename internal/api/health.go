// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/osg-htc/institutions/internal/platform/constants"
	"github.com/osg-htc/institutions/internal/platform/respond"
)

// Check reports whether one dependency is usable.
type Check func(ctx context.Context) error

// HealthDependencies holds the injectable dependency checkers for the /ready endpoint.
// A nil check is skipped, e.g. Redis when the list cache is disabled.
type HealthDependencies struct {
	// CheckDatabase pings the PostgreSQL pool.
	CheckDatabase Check

	// CheckCache pings the Redis client.
	CheckCache Check
}

type healthHandler struct {
	dependencies HealthDependencies
	logger       *slog.Logger
}

// NewHealthHandlers creates the /health and /ready http.HandlerFuncs.
func NewHealthHandlers(deps HealthDependencies, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	handler := &healthHandler{dependencies: deps, logger: logger}
	return handler.liveness, handler.readiness
}

// liveness handles GET /health (Liveness probe).
func (handler *healthHandler) liveness(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, map[string]string{constants.FieldStatus: "ok"})
}

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// readiness handles GET /ready (Readiness probe).
func (handler *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	checks := []struct {
		name  string
		check Check
	}{
		{"postgres", handler.dependencies.CheckDatabase},
		{"redis", handler.dependencies.CheckCache},
	}

	results := make([]checkResult, 0, len(checks))
	ready := true

	for _, dependency := range checks {
		if dependency.check == nil {
			continue
		}

		result := checkResult{Name: dependency.name, IsOK: true}
		if err := dependency.check(request.Context()); err != nil {
			result.IsOK = false
			result.Error = err.Error()
			ready = false
			handler.logger.ErrorContext(request.Context(), "readiness_check_failed",
				slog.String("dependency", dependency.name), slog.Any("error", err))
		}
		results = append(results, result)
	}

	status, httpStatus := "ready", http.StatusOK
	if !ready {
		status, httpStatus = "degraded", http.StatusServiceUnavailable
	}

	respond.JSON(writer, httpStatus, map[string]any{
		constants.FieldStatus: status,
		constants.FieldChecks: results,
	})
}

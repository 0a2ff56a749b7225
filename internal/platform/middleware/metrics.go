// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics holds the request counters exported on /metrics.
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP collectors with reg.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	factory := promauto.With(reg)
	return &HTTPMetrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "institutions_http_requests_total",
			Help: "Total HTTP requests by method, route pattern and status",
		}, []string{"method", "route", "status"}),

		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "institutions_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),
	}
}

// Instrument records request counts and latency keyed by the chi route pattern,
// so /institutions/{id} is one series regardless of the id.
func (m *HTTPMetrics) Instrument(next http.Handler) http.Handler {
	if m == nil {
		return next
	}

	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

		next.ServeHTTP(recorder, request)

		route := "unmatched"
		if routeCtx := chi.RouteContext(request.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		m.Requests.WithLabelValues(request.Method, route, strconv.Itoa(recorder.status)).Inc()
		m.Duration.WithLabelValues(request.Method, route).Observe(time.Since(start).Seconds())
	})
}

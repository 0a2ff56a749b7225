// Copyright (c) 2026 OSG-HTC. All rights reserved.
// Author: OSG-HTC Topology team

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the institution module.
type Metrics struct {
	// Write outcomes by operation (create, update, invalidate) and result
	Writes *prometheus.CounterVec

	// Create requests redirected to a soft-deleted record
	Reactivations prometheus.Counter

	// Candidates drawn per generated public id
	PublicIDAttempts prometheus.Histogram

	// Identifier rows changed by reconciliation, by kind and op
	IdentifierOps *prometheus.CounterVec

	// Write transaction latency by operation
	WriteDuration *prometheus.HistogramVec

	// List cache lookups by result (hit, miss, error)
	ListCache *prometheus.CounterVec
}

// New creates a Metrics instance with every collector registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Writes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "institutions_writes_total",
			Help: "Total institution write operations by operation and result",
		}, []string{"operation", "result"}),

		Reactivations: factory.NewCounter(prometheus.CounterOpts{
			Name: "institutions_reactivations_total",
			Help: "Creates that reactivated a soft-deleted institution instead of inserting",
		}),

		PublicIDAttempts: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "institutions_public_id_attempts",
			Help:    "Candidates drawn before a unique public id was found",
			Buckets: []float64{1, 2, 3, 5, 10, 100, 1000},
		}),

		IdentifierOps: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "institutions_identifier_ops_total",
			Help: "Identifier row mutations applied by reconciliation",
		}, []string{"kind", "op"}),

		WriteDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "institutions_write_duration_seconds",
			Help:    "Duration of institution write transactions",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		ListCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "institutions_list_cache_total",
			Help: "Valid-institution list cache lookups by result",
		}, []string{"result"}),
	}
}

// ObserveWrite records the outcome and latency of a write.
func (m *Metrics) ObserveWrite(operation, result string, d time.Duration) {
	if m != nil {
		m.Writes.WithLabelValues(operation, result).Inc()
		m.WriteDuration.WithLabelValues(operation).Observe(d.Seconds())
	}
}

// IncrementReactivations records a create that reused a soft-deleted record.
func (m *Metrics) IncrementReactivations() {
	if m != nil {
		m.Reactivations.Inc()
	}
}

// ObservePublicIDAttempts records how many candidates a public id took.
func (m *Metrics) ObservePublicIDAttempts(attempts int) {
	if m != nil {
		m.PublicIDAttempts.Observe(float64(attempts))
	}
}

// IncrementIdentifierOp records one reconciled identifier mutation.
func (m *Metrics) IncrementIdentifierOp(kind, op string) {
	if m != nil {
		m.IdentifierOps.WithLabelValues(kind, op).Inc()
	}
}

// IncrementListCache records a list cache lookup result.
func (m *Metrics) IncrementListCache(result string) {
	if m != nil {
		m.ListCache.WithLabelValues(result).Inc()
	}
}

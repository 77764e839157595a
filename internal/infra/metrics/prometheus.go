// Package metrics provides a Prometheus-backed recorder for store and effect
// operation outcomes.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "fluxcore"
	subsystem = "store"
)

// Recorder implements the store's MetricsRecorder contract on a Prometheus
// registry. Each Recorder owns its collectors; pass a shared registry to
// aggregate several stores, or nil to get a private one.
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
}

// New builds a Recorder registered on reg. A nil reg creates a dedicated
// registry, which Registry exposes for scraping.
func New(reg *prometheus.Registry) *Recorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "operations_total",
				Help:      "Total dispatch and effect operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		durations: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "operation_duration_seconds",
				Help:      "Duration of dispatch and effect operations in seconds",
			},
			[]string{"operation"},
		),
	}
}

// Registry returns the registry collectors are registered on.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Observe records one operation outcome.
func (r *Recorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	outcome := "success"
	if !success {
		outcome = "error"
	}
	r.operations.WithLabelValues(operation, outcome).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

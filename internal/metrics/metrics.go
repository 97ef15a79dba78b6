// Package metrics exposes Prometheus instrumentation for the run pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set bundles the collectors the worker and API report into. A Set owns its
// registry so tests can construct isolated instances.
type Set struct {
	registry *prometheus.Registry

	RunsClaimed   prometheus.Counter
	RunsCompleted prometheus.Counter
	RunsFailed    prometheus.Counter
	RunsReclaimed prometheus.Counter

	NodeExecutions *prometheus.CounterVec
	RunDuration    prometheus.Histogram
}

// New constructs a Set with all collectors registered.
func New() *Set {
	registry := prometheus.NewRegistry()

	s := &Set{
		registry: registry,
		RunsClaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gaffer_runs_claimed_total",
			Help: "Runs successfully claimed by a worker.",
		}),
		RunsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gaffer_runs_completed_total",
			Help: "Runs that reached the completed state.",
		}),
		RunsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gaffer_runs_failed_total",
			Help: "Runs that reached the failed state.",
		}),
		RunsReclaimed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gaffer_runs_reclaimed_total",
			Help: "Stale processing runs returned to the queue.",
		}),
		NodeExecutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gaffer_node_executions_total",
			Help: "Node executions by node type and result state.",
		}, []string{"node_type", "state"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gaffer_run_duration_seconds",
			Help:    "Wall-clock duration of claimed runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
		}),
	}

	registry.MustRegister(
		s.RunsClaimed,
		s.RunsCompleted,
		s.RunsFailed,
		s.RunsReclaimed,
		s.NodeExecutions,
		s.RunDuration,
	)
	return s
}

// Handler returns the HTTP handler serving this set's registry.
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

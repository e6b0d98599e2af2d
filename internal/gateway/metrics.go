package gateway

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks check-level counters. Prometheus collectors feed /metrics;
// a parallel set of atomics backs the /status snapshot without forcing a
// registry scrape.
type Metrics struct {
	registry *prometheus.Registry

	checksVec     *prometheus.CounterVec
	probeFailures prometheus.Counter
	badRequests   prometheus.Counter
	duration      prometheus.Histogram

	checks       atomic.Int64
	errors       atomic.Int64
	totalLatency atomic.Int64 // nanoseconds
}

// NewMetrics creates and registers all collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		checksVec: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fragcheck_checks_total",
			Help: "Username checks completed, by outcome.",
		}, []string{"outcome"}),
		probeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fragcheck_probe_failures_total",
			Help: "Upstream probes that failed at the transport level.",
		}),
		badRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fragcheck_bad_requests_total",
			Help: "Requests rejected before any probe ran.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fragcheck_check_duration_seconds",
			Help:    "End-to-end duration of a username check.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(m.checksVec, m.probeFailures, m.badRequests, m.duration)
	return m
}

// Registry exposes the private registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// RecordCheck records a completed check.
func (m *Metrics) RecordCheck(outcome string, latency time.Duration, probeFailures int) {
	m.checksVec.WithLabelValues(outcome).Inc()
	m.probeFailures.Add(float64(probeFailures))
	m.duration.Observe(latency.Seconds())

	m.checks.Add(1)
	m.totalLatency.Add(int64(latency))
}

// RecordBadRequest records a request rejected during validation.
func (m *Metrics) RecordBadRequest() {
	m.badRequests.Inc()
	m.errors.Add(1)
}

// Snapshot returns a consistent point-in-time view of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	checks := m.checks.Load()
	snap := MetricsSnapshot{
		Checks: checks,
		Errors: m.errors.Load(),
	}
	if checks > 0 {
		snap.AvgLatency = time.Duration(m.totalLatency.Load() / checks)
	}
	return snap
}

// MetricsSnapshot is a serializable point-in-time metrics view.
type MetricsSnapshot struct {
	Checks     int64         `json:"checks"`
	Errors     int64         `json:"errors"`
	AvgLatency time.Duration `json:"avg_latency_ns"`
}

// Package observability wires structured logging and Prometheus metrics for
// the fetch, render and export pipeline.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "xsplot"

// Fetch outcomes recorded per library.
const (
	OutcomeSuccess     = "success"
	OutcomeUnsupported = "unsupported_library"
	OutcomeNetwork     = "network"
	OutcomeDecode      = "decode"
)

// Recorder receives pipeline measurements. Components depend on this
// interface so tests can run without a registry.
type Recorder interface {
	ObserveFetch(library, outcome string)
	ObserveCache(tier string, hit bool)
	ObserveResolve(duration time.Duration, entries, failures int)
	ObserveExport(format, status string)
}

// NopRecorder discards all measurements.
type NopRecorder struct{}

func (NopRecorder) ObserveFetch(string, string)            {}
func (NopRecorder) ObserveCache(string, bool)              {}
func (NopRecorder) ObserveResolve(time.Duration, int, int) {}
func (NopRecorder) ObserveExport(string, string)           {}

// Metrics is a Recorder backed by a private Prometheus registry.
type Metrics struct {
	registry *prometheus.Registry

	fetches         *prometheus.CounterVec
	cache           *prometheus.CounterVec
	resolveDuration prometheus.Histogram
	resolveFailures prometheus.Counter
	exports         *prometheus.CounterVec
}

var _ Recorder = (*Metrics)(nil)

// NewMetrics registers the xsplot collectors plus the Go runtime and process
// collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "series",
			Name:      "fetch_total",
			Help:      "Remote series fetches by library and outcome.",
		}, []string{"library", "outcome"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "series",
			Name:      "cache_lookups_total",
			Help:      "Series cache lookups by tier and result.",
		}, []string{"tier", "result"}),
		resolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "series",
			Name:      "resolve_duration_seconds",
			Help:      "Wall time to resolve a full selection.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		resolveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "series",
			Name:      "resolve_failed_entries_total",
			Help:      "Selected records excluded from a resolve because their fetch failed.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "export",
			Name:      "jobs_total",
			Help:      "Export artifacts by format and final status.",
		}, []string{"format", "status"}),
	}
	m.registry.MustRegister(
		m.fetches,
		m.cache,
		m.resolveDuration,
		m.resolveFailures,
		m.exports,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveFetch counts one remote fetch attempt.
func (m *Metrics) ObserveFetch(library, outcome string) {
	m.fetches.WithLabelValues(library, outcome).Inc()
}

// ObserveCache counts a cache lookup on the given tier ("memory" or "blob").
func (m *Metrics) ObserveCache(tier string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(tier, result).Inc()
}

// ObserveResolve records a completed resolve.
func (m *Metrics) ObserveResolve(duration time.Duration, _ int, failures int) {
	m.resolveDuration.Observe(duration.Seconds())
	if failures > 0 {
		m.resolveFailures.Add(float64(failures))
	}
}

// ObserveExport counts a finished export artifact.
func (m *Metrics) ObserveExport(format, status string) {
	m.exports.WithLabelValues(format, status).Inc()
}

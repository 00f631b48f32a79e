// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// HTTP metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Store metrics
	StoreQueryDuration *prometheus.HistogramVec
	StoreQueryErrors   *prometheus.CounterVec

	// Cache metrics
	CacheLookups *prometheus.CounterVec

	// Scoreboard metrics
	DroppedMatches prometheus.Counter

	registry *prometheus.Registry
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// Default returns the process-wide metrics registered on the default registry.
func Default() *Metrics {
	defaultOnce.Do(func() {
		defaultMetrics = newMetrics("efi", promauto.With(prometheus.DefaultRegisterer), nil)
	})
	return defaultMetrics
}

// NewMetrics creates metrics on a private registry. Tests use it to avoid
// duplicate registration against the default registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "efi"
	}
	reg := prometheus.NewRegistry()
	return newMetrics(namespace, promauto.With(reg), reg)
}

func newMetrics(namespace string, f promauto.Factory, reg *prometheus.Registry) *Metrics {
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status",
		}, []string{"route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		StoreQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "query_duration_seconds",
			Help:      "Store query latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"backend", "operation"}),
		StoreQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "query_errors_total",
			Help:      "Total number of failed store queries",
		}, []string{"backend", "operation"}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by operation and result (hit or miss)",
		}, []string{"operation", "result"}),

		DroppedMatches: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scoreboard",
			Name:      "dropped_matches_total",
			Help:      "Match events dropped before layout because they failed validation",
		}),

		registry: reg,
	}
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveQuery records one store call.
func (m *Metrics) ObserveQuery(backend, operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.StoreQueryDuration.WithLabelValues(backend, operation).Observe(d.Seconds())
	if err != nil {
		m.StoreQueryErrors.WithLabelValues(backend, operation).Inc()
	}
}

func (m *Metrics) CacheResult(operation string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(operation, result).Inc()
}

// Handler returns the Prometheus HTTP handler for the registry the metrics
// were created on.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

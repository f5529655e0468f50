package gateway

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "restokit"

// Metrics holds the Prometheus collectors updated by a Gateway.
type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
	invalidations prometheus.Counter
	rateRemaining prometheus.Gauge
}

// NewMetrics registers the gateway collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "gateway",
				Name:      "requests_total",
				Help:      "Backend requests by method and status class",
			},
			[]string{"method", "status"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "gateway",
				Name:      "request_duration_seconds",
				Help:      "Duration of backend requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "gateway",
				Name:      "cache_lookups_total",
				Help:      "Response cache lookups by result",
			},
			[]string{"result"},
		),
		invalidations: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "gateway",
				Name:      "cache_invalidated_entries_total",
				Help:      "Cache entries removed by invalidation",
			},
		),
		rateRemaining: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: "gateway",
				Name:      "rate_limit_remaining",
				Help:      "Last X-RateLimit-Remaining value reported by the backend",
			},
		),
	}
}

// The record helpers accept a nil receiver so call sites need no checks.

func (m *Metrics) recordRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, statusClass(status)).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) recordCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) recordInvalidation(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.invalidations.Add(float64(n))
}

func (m *Metrics) recordRateLimit(info RateLimitInfo) {
	if m == nil {
		return
	}
	m.rateRemaining.Set(float64(info.Remaining))
}

func statusClass(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}

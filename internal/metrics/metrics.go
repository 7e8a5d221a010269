package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the publishing backend.
type Metrics struct {
	// Publish pipeline
	PublishRequests *prometheus.CounterVec
	PublishResults  *prometheus.CounterVec
	PublishDuration *prometheus.HistogramVec
	StepFailures    *prometheus.CounterVec

	// Result cache
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// HTTP
	HTTPRequests  *prometheus.CounterVec
	RateLimitHits *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		PublishRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "publish_requests_total",
				Help:      "Total number of publish requests received",
			},
			[]string{"platform"},
		),
		PublishResults: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "publish_results_total",
				Help:      "Publish outcomes by platform and result",
			},
			[]string{"platform", "result"},
		),
		PublishDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "publish_duration_seconds",
				Help:      "End-to-end publish latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"platform"},
		),
		StepFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "publish_step_failures_total",
				Help:      "Remote step failures by platform and step",
			},
			[]string{"platform", "step"},
		),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_hits_total",
			Help:      "Latest-result cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_misses_total",
			Help:      "Latest-result cache misses",
		}),
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method, path and status",
			},
			[]string{"method", "path", "status"},
		),
		RateLimitHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Requests rejected by rate limiting",
			},
			[]string{"path"},
		),
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePublish records one publish outcome.
func (m *Metrics) ObservePublish(platform string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.PublishResults.WithLabelValues(platform, result).Inc()
	m.PublishDuration.WithLabelValues(platform).Observe(time.Since(start).Seconds())
}

// ObserveHTTP records one HTTP request.
func (m *Metrics) ObserveHTTP(method, path string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

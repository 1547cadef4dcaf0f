// Package monitoring holds the service's prometheus metrics, the
// structured logger setup, and the request instrumentation middleware.
package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every collector the service exposes on /metrics.
type Metrics struct {
	RequestsTotal      *prometheus.CounterVec
	RequestDuration    prometheus.Histogram
	RecommendTotal     prometheus.Counter
	RecommendDuration  prometheus.Histogram
	RotationSize       prometheus.Histogram
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	RateLimitedTotal   prometheus.Counter
}

// NewMetrics builds and registers the collectors on a fresh registry, so
// tests can hold as many instances as they like.
func NewMetrics() (*Metrics, *prometheus.Registry) {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shoefit_http_requests_total",
			Help: "HTTP requests by method, path and status",
		}, []string{"method", "path", "status"}),
		RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shoefit_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}),
		RecommendTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shoefit_recommendations_total",
			Help: "Total recommendations served",
		}),
		RecommendDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shoefit_recommendation_duration_seconds",
			Help:    "Latency of the recommendation pipeline",
			Buckets: prometheus.DefBuckets,
		}),
		RotationSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shoefit_rotation_size",
			Help:    "Number of shoes in assembled rotations",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shoefit_cache_hits_total",
			Help: "Response cache hits",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shoefit_cache_misses_total",
			Help: "Response cache misses",
		}),
		RateLimitedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "shoefit_rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		}),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RecommendTotal,
		m.RecommendDuration,
		m.RotationSize,
		m.CacheHits,
		m.CacheMisses,
		m.RateLimitedTotal,
	)
	return m, registry
}

// IncrementCacheHit counts a response-cache hit.
func (m *Metrics) IncrementCacheHit() { m.CacheHits.Inc() }

// IncrementCacheMiss counts a response-cache miss.
func (m *Metrics) IncrementCacheMiss() { m.CacheMisses.Inc() }

// IncrementRateLimited counts a rate-limiter rejection.
func (m *Metrics) IncrementRateLimited() { m.RateLimitedTotal.Inc() }

// RecordRecommendation observes one trip through the pipeline.
func (m *Metrics) RecordRecommendation(duration time.Duration, rotationSize int) {
	m.RecommendTotal.Inc()
	m.RecommendDuration.Observe(duration.Seconds())
	m.RotationSize.Observe(float64(rotationSize))
}

// Middleware instruments every request with the counter and latency
// histogram.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		m.RequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		m.RequestDuration.Observe(time.Since(start).Seconds())
	}
}

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "puffbuddy"

// Metrics holds the infrastructure metrics of the API server
type Metrics struct {
	// HTTP
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPResponseSize      *prometheus.HistogramVec
	HTTPActiveConnections prometheus.Gauge

	// Cache
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Rate limiting
	RateLimitExceededTotal *prometheus.CounterVec

	// Database
	DatabaseQueryDuration   *prometheus.HistogramVec
	DatabaseConnectionsOpen prometheus.Gauge

	// Redis
	RedisOperationsTotal *prometheus.CounterVec

	// Websocket
	WebSocketConnections prometheus.Gauge
	WebSocketMessages    *prometheus.CounterVec

	// Errors
	ErrorsTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all infrastructure metrics once
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "http_requests_total",
					Help:      "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: namespace,
					Name:      "http_request_duration_seconds",
					Help:      "HTTP request latency in seconds",
					Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPResponseSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: namespace,
					Name:      "http_response_size_bytes",
					Help:      "HTTP response size in bytes",
					Buckets:   prometheus.ExponentialBuckets(100, 10, 7),
				},
				[]string{"method", "path"},
			),
			HTTPActiveConnections: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: namespace,
					Name:      "http_active_requests",
					Help:      "Number of in-flight HTTP requests",
				},
			),
			CacheHitsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "cache_hits_total",
					Help:      "Total number of cache hits",
				},
				[]string{"cache_name"},
			),
			CacheMissesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "cache_misses_total",
					Help:      "Total number of cache misses",
				},
				[]string{"cache_name"},
			),
			RateLimitExceededTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "rate_limit_exceeded_total",
					Help:      "Total number of rate limit violations",
				},
				[]string{"limiter", "path"},
			),
			DatabaseQueryDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: namespace,
					Name:      "database_query_duration_seconds",
					Help:      "Database query latency in seconds",
					Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .25, .5, 1, 2.5},
				},
				[]string{"operation", "table"},
			),
			DatabaseConnectionsOpen: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: namespace,
					Name:      "database_connections_open",
					Help:      "Number of open database connections",
				},
			),
			RedisOperationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "redis_operations_total",
					Help:      "Total number of Redis operations",
				},
				[]string{"operation", "status"},
			),
			WebSocketConnections: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: namespace,
					Name:      "websocket_connections",
					Help:      "Number of open websocket connections",
				},
			),
			WebSocketMessages: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "websocket_messages_total",
					Help:      "Websocket messages by direction and type",
				},
				[]string{"direction", "type"},
			),
			ErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "errors_total",
					Help:      "Total number of API errors by code",
				},
				[]string{"code"},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	return Initialize()
}

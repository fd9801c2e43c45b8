package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Search metrics exported to Prometheus
var (
	SearchQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_queries_total",
			Help:      "Search queries by index and backend",
		},
		[]string{"index", "backend"},
	)

	SearchQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_query_duration_seconds",
			Help:      "Search query duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"index", "backend"},
	)

	SearchFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_fallbacks_total",
			Help:      "Searches that fell back to the database after an Elasticsearch error",
		},
		[]string{"index"},
	)
)

// RecordSearch records a completed search
func RecordSearch(index, backend string, started time.Time) {
	SearchQueriesTotal.WithLabelValues(index, backend).Inc()
	SearchQueryDuration.WithLabelValues(index, backend).Observe(time.Since(started).Seconds())
}

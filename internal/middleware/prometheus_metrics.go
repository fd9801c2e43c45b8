package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/puffbuddy/backend/internal/metrics"
)

// MetricsMiddleware collects HTTP metrics for Prometheus
func MetricsMiddleware() gin.HandlerFunc {
	m := metrics.Get()

	return func(c *gin.Context) {
		m.HTTPActiveConnections.Inc()
		defer m.HTTPActiveConnections.Dec()

		startTime := time.Now()
		c.Next()

		// Route templates keep label cardinality bounded; unmatched paths share one label
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		// Numeric status lets dashboards match status=~"5.."
		status := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(startTime).Seconds())
		if size := c.Writer.Size(); size > 0 {
			m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}

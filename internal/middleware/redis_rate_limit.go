package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/puffbuddy/backend/internal/cache"
	"github.com/puffbuddy/backend/internal/errors"
	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/metrics"
	"github.com/puffbuddy/backend/internal/util"
	"go.uber.org/zap"
)

// RedisRateLimitMiddleware is a fixed-window limiter shared by every server
// instance. A nil store disables it. When the store fails the request is
// rejected so a broken limiter cannot be used to flood the endpoint.
func RedisRateLimitMiddleware(store cache.Store, name string, maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		key := fmt.Sprintf("rate_limit:%s:%s", name, clientIP)
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		count, err := store.IncrWindow(ctx, key, window)
		if err != nil {
			logger.Log.Error("Rate limit check failed, rejecting request",
				logger.WithIP(clientIP),
				zap.Error(err),
			)
			util.RespondWithAPIError(c, errors.ServiceUnavailable("rate limiter"))
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		remaining := int64(maxRequests) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(maxRequests) {
			logger.Log.Warn("Rate limit exceeded",
				logger.WithIP(clientIP),
				zap.String("limiter", name),
				zap.Int64("current_requests", count),
			)
			metrics.Get().RateLimitExceededTotal.WithLabelValues(name, c.FullPath()).Inc()
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			util.RespondWithAPIError(c, errors.RateLimited("").WithDetails("retry_after", window.Seconds()))
			return
		}

		c.Next()
	}
}

package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/puffbuddy/backend/internal/errors"
	"github.com/puffbuddy/backend/internal/metrics"
	"github.com/puffbuddy/backend/internal/util"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Name labels the limiter in metrics
	Name string
	// Requests per window
	Limit int
	// Window duration
	Window time.Duration
	// KeyFunc picks the bucket for a request; defaults to the client IP
	KeyFunc func(c *gin.Context) string
}

// DefaultRateLimitConfig returns the general API limit
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Name:   "api",
		Limit:  100,
		Window: time.Minute,
	}
}

// AuthRateLimitConfig returns stricter limits for auth endpoints
func AuthRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Name:   "auth",
		Limit:  10,
		Window: time.Minute,
	}
}

// UploadRateLimitConfig returns limits for upload endpoints
func UploadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Name:   "upload",
		Limit:  20,
		Window: time.Minute,
	}
}

// TokenBucket for rate limiting
type TokenBucket struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// NewTokenBucket creates a new token bucket
func NewTokenBucket(maxTokens float64, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow takes a token if one is available
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(time.Now())
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = min(tb.maxTokens, tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now
}

// GetRetryAfter returns seconds to wait before next request
func (tb *TokenBucket) GetRetryAfter() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.tokens < 1 {
		return int((1-tb.tokens)/tb.refillRate) + 1
	}
	return 0
}

// full reports whether the bucket has refilled completely
func (tb *TokenBucket) full(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill(now)
	return tb.tokens >= tb.maxTokens
}

// RateLimiter keeps one token bucket per key
type RateLimiter struct {
	buckets map[string]*TokenBucket
	config  RateLimitConfig
	mu      sync.Mutex
}

// NewRateLimiter creates a new rate limiting middleware
func NewRateLimiter(config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if config.Name == "" {
		config.Name = "api"
	}
	rl := &RateLimiter{
		buckets: make(map[string]*TokenBucket),
		config:  config,
	}
	go rl.cleanupRoutine(time.Minute)

	return func(c *gin.Context) {
		key := config.KeyFunc(c)
		if !rl.Allow(key) {
			retryAfter := rl.GetRetryAfter(key)
			metrics.Get().RateLimitExceededTotal.WithLabelValues(config.Name, c.FullPath()).Inc()
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
			c.Header("X-RateLimit-Remaining", "0")
			util.RespondWithAPIError(c, errors.RateLimited("").WithDetails("retry_after", retryAfter))
			return
		}
		c.Next()
	}
}

// Allow checks if key is allowed to make a request
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	bucket, exists := rl.buckets[key]
	if !exists {
		refillRate := float64(rl.config.Limit) / rl.config.Window.Seconds()
		bucket = NewTokenBucket(float64(rl.config.Limit), refillRate)
		rl.buckets[key] = bucket
	}
	rl.mu.Unlock()

	return bucket.Allow()
}

// GetRetryAfter gets retry-after seconds for key
func (rl *RateLimiter) GetRetryAfter(key string) int {
	rl.mu.Lock()
	bucket, exists := rl.buckets[key]
	rl.mu.Unlock()
	if !exists {
		return 1
	}
	return bucket.GetRetryAfter()
}

// cleanupRoutine drops buckets that have fully refilled
func (rl *RateLimiter) cleanupRoutine(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for now := range ticker.C {
		rl.mu.Lock()
		for key, bucket := range rl.buckets {
			if bucket.full(now) {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit returns a middleware with default configuration
func RateLimit() gin.HandlerFunc {
	return NewRateLimiter(DefaultRateLimitConfig())
}

// RateLimitAuth returns a middleware for auth endpoints
func RateLimitAuth() gin.HandlerFunc {
	return NewRateLimiter(AuthRateLimitConfig())
}

// RateLimitUpload returns a middleware for upload endpoints
func RateLimitUpload() gin.HandlerFunc {
	return NewRateLimiter(UploadRateLimitConfig())
}

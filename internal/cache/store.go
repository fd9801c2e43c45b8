package cache

import (
	"context"
	"time"

	"github.com/puffbuddy/backend/internal/logger"
	"github.com/puffbuddy/backend/internal/metrics"
	"go.uber.org/zap"
)

// Store is the key/value cache used by handlers and middleware
type Store interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// TTLs
const (
	FeedTTL        = 30 * time.Second
	LeaderboardTTL = 60 * time.Second
)

// FeedKey is the cache key of a user's feed
func FeedKey(userID string) string {
	return "feed:" + userID
}

// LeaderboardKey is the cache key of the weekly leaderboard
const LeaderboardKey = "leaderboard:weekly"

// Remember returns the cached value for key or fills it from load.
// A nil store or a cache failure falls through to load.
func Remember[T any](ctx context.Context, s Store, name, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	if s == nil {
		return load()
	}

	var cached T
	hit, err := s.GetJSON(ctx, key, &cached)
	if err != nil {
		logger.WarnWithFields("cache read failed", err, zap.String("key", key))
	}
	if hit {
		metrics.Get().CacheHitsTotal.WithLabelValues(name).Inc()
		return cached, nil
	}
	metrics.Get().CacheMissesTotal.WithLabelValues(name).Inc()

	value, err := load()
	if err != nil {
		return value, err
	}
	if err := s.SetJSON(ctx, key, value, ttl); err != nil {
		logger.WarnWithFields("cache write failed", err, zap.String("key", key))
	}
	return value, nil
}

// Invalidate deletes keys, logging failures
func Invalidate(ctx context.Context, s Store, keys ...string) {
	if s == nil {
		return
	}
	if err := s.Del(ctx, keys...); err != nil {
		logger.WarnWithFields("cache invalidation failed", err, zap.Strings("keys", keys))
	}
}

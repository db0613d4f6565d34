package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/calshare/server/internal/port/outbound"
)

const rateLimitKeyPrefix = "calshare:ratelimit:"

// rateLimiter implements outbound.RateLimiterPort with a sliding window
// kept in a sorted set scored by request time.
type rateLimiter struct {
	client redis.UniversalClient
}

// NewRateLimiter creates a new rate limiter adapter.
func NewRateLimiter(client redis.UniversalClient) outbound.RateLimiterPort {
	return &rateLimiter{client: client}
}

// count drops entries older than the window and returns what is left.
func (r *rateLimiter) count(ctx context.Context, key string, now time.Time, window time.Duration) (int64, error) {
	windowStart := now.Add(-window).UnixNano()

	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
	card := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return card.Val(), nil
}

func (r *rateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	fullKey := rateLimitKeyPrefix + key
	now := time.Now()

	current, err := r.count(ctx, fullKey, now, window)
	if err != nil {
		return false, err
	}
	if current >= int64(limit) {
		return false, nil
	}

	pipe := r.client.TxPipeline()
	pipe.ZAdd(ctx, fullKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	pipe.Expire(ctx, fullKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (r *rateLimiter) GetRemaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	current, err := r.count(ctx, rateLimitKeyPrefix+key, time.Now(), window)
	if err != nil {
		return 0, err
	}
	return max(limit-int(current), 0), nil
}

// Compile-time check
var _ outbound.RateLimiterPort = (*rateLimiter)(nil)

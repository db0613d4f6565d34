package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calshare/server/internal/port/outbound"
)

// unreachableClient points at a port nothing listens on so every command fails fast.
func unreachableClient(t *testing.T) redis.UniversalClient {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestLock_BreakerOpensOnRedisErrors(t *testing.T) {
	lock := NewLock(unreachableClient(t), LockConfig{FailureThreshold: 2, OpenTimeout: time.Minute}, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		release, err := lock.Acquire(ctx, "calendar:1", time.Second)
		require.Error(t, err)
		assert.Nil(t, release)
		assert.NotErrorIs(t, err, outbound.ErrLockNotAcquired)
	}

	_, err := lock.Acquire(ctx, "calendar:1", time.Second)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestLock_ContentionDoesNotTripBreaker(t *testing.T) {
	l := NewLock(unreachableClient(t), DefaultLockConfig(), zap.NewNop()).(*aggregateLock)

	for i := 0; i < 10; i++ {
		_, err := l.breaker.Execute(func() (bool, error) {
			return false, outbound.ErrLockNotAcquired
		})
		assert.ErrorIs(t, err, outbound.ErrLockNotAcquired)
	}
	assert.Equal(t, gobreaker.StateClosed, l.breaker.State())
}

func TestRateLimiter_RedisDown(t *testing.T) {
	limiter := NewRateLimiter(unreachableClient(t))

	allowed, err := limiter.Allow(context.Background(), "user:1", 10, time.Minute)
	assert.Error(t, err)
	assert.False(t, allowed)
}

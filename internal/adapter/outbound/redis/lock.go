package redis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/calshare/server/internal/port/outbound"
)

const lockKeyPrefix = "calshare:lock:"

// releaseScript deletes the lock only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// LockConfig configures the aggregate lock's circuit breaker.
type LockConfig struct {
	// FailureThreshold is the number of consecutive Redis errors that opens the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
}

// DefaultLockConfig returns the default lock configuration.
func DefaultLockConfig() LockConfig {
	return LockConfig{
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// aggregateLock implements outbound.LockPort on SET NX. Redis errors are
// counted by a circuit breaker; while it is open Acquire fails fast with
// gobreaker.ErrOpenState and callers run unlocked.
type aggregateLock struct {
	client  redis.UniversalClient
	breaker *gobreaker.CircuitBreaker[bool]
	logger  *zap.Logger
}

// NewLock creates a new aggregate lock adapter.
func NewLock(client redis.UniversalClient, cfg LockConfig, logger *zap.Logger) outbound.LockPort {
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = DefaultLockConfig().FailureThreshold
	}

	settings := gobreaker.Settings{
		Name:        "redis-lock",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Contention is a healthy answer from Redis.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, outbound.ErrLockNotAcquired)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("lock circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &aggregateLock{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[bool](settings),
		logger:  logger,
	}
}

func (l *aggregateLock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	fullKey := lockKeyPrefix + key
	token := uuid.NewString()

	_, err := l.breaker.Execute(func() (bool, error) {
		ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, outbound.ErrLockNotAcquired
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	release := func() {
		// The caller's ctx may already be cancelled; release on a fresh one.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{fullKey}, token).Err(); err != nil {
			l.logger.Warn("release lock", zap.String("key", key), zap.Error(err))
		}
	}
	return release, nil
}

// Compile-time check
var _ outbound.LockPort = (*aggregateLock)(nil)

package outbound

import (
	"context"
	"errors"
	"time"
)

// ErrLockNotAcquired is returned when an aggregate lock is held elsewhere.
var ErrLockNotAcquired = errors.New("lock not acquired")

// LockPort serializes writers of the same aggregate across processes.
type LockPort interface {
	// Acquire takes the lock for key and returns a release func.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// RateLimiterPort defines rate limiting operations.
type RateLimiterPort interface {
	// Allow checks if a request is allowed within rate limits.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// GetRemaining returns the remaining requests in the current window.
	GetRemaining(ctx context.Context, key string, limit int, window time.Duration) (int, error)
}

package memory

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/calshare/server/internal/port/outbound"
)

// RateLimiter implements outbound.RateLimiterPort with one token bucket
// per key. It is used when no Redis is configured, so limits are per
// process.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewRateLimiter creates an in-process rate limiter.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{limiters: make(map[string]*rate.Limiter)}
}

// bucket refills limit tokens per window with a burst of limit.
func (r *RateLimiter) bucket(key string, limit int, window time.Duration) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.limiters[key]
	if !ok {
		l = rate.NewLimiter(rate.Every(window/time.Duration(max(limit, 1))), limit)
		r.limiters[key] = l
	}
	return l
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return r.bucket(key, limit, window).Allow(), nil
}

func (r *RateLimiter) GetRemaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	return max(int(r.bucket(key, limit, window).Tokens()), 0), nil
}

var _ outbound.RateLimiterPort = (*RateLimiter)(nil)

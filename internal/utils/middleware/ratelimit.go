package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/calshare/server/internal/port/outbound"
	apperrors "github.com/calshare/server/internal/utils/errors"
	"github.com/calshare/server/internal/utils/metrics"
)

const (
	// RateLimitRemaining is the header for remaining requests.
	RateLimitRemaining = "X-RateLimit-Remaining"
	// RateLimitLimit is the header for the limit.
	RateLimitLimit = "X-RateLimit-Limit"
	// RetryAfter is the header for retry time.
	RetryAfter = "Retry-After"
)

// RateLimitConfig holds rate limit configuration.
type RateLimitConfig struct {
	// Limit is the maximum number of requests per window.
	Limit int
	// Window is the time window.
	Window time.Duration
	// KeyFunc generates the rate limit key from request.
	// Default keys by user when authenticated, otherwise by client IP.
	KeyFunc func(*gin.Context) string
}

// DefaultRateLimitConfig returns the default rate limit configuration.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:  120,
		Window: time.Minute,
	}
}

// ByUserOrIP keys authenticated requests by user and the rest by IP.
func ByUserOrIP(c *gin.Context) string {
	if actor, ok := GetActor(c); ok {
		return "user:" + actor.UserID().String()
	}
	return "ip:" + c.ClientIP()
}

// RateLimit returns a middleware that limits requests using the given
// limiter. Limiter errors let the request through.
func RateLimit(limiter outbound.RateLimiterPort, cfg RateLimitConfig, m *metrics.Metrics, log *zap.Logger) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ByUserOrIP
	}
	if log == nil {
		log = zap.NewNop()
	}
	record := func(result string) {
		if m != nil {
			m.RecordRateLimit(result)
		}
	}

	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := cfg.KeyFunc(c)
		ctx := c.Request.Context()

		allowed, err := limiter.Allow(ctx, key, cfg.Limit, cfg.Window)
		if err != nil {
			log.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
			record("error")
			c.Next()
			return
		}

		remaining, err := limiter.GetRemaining(ctx, key, cfg.Limit, cfg.Window)
		if err == nil {
			c.Header(RateLimitRemaining, strconv.Itoa(remaining))
		}
		c.Header(RateLimitLimit, strconv.Itoa(cfg.Limit))

		if !allowed {
			record("rejected")
			c.Header(RetryAfter, strconv.Itoa(int(cfg.Window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apperrors.RateLimited("").ToResponse())
			return
		}

		record("allowed")
		c.Next()
	}
}

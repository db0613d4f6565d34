package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/calshare/server/cmd/server/docs" // swagger docs
	"github.com/calshare/server/internal/domain"
	"github.com/calshare/server/internal/infra/config"
	"github.com/calshare/server/internal/port/outbound"
	"github.com/calshare/server/internal/utils/metrics"
	"github.com/calshare/server/internal/utils/middleware"
)

// ProvideRouter creates and configures the Gin router.
func ProvideRouter(
	cfg *config.Config,
	log *zap.Logger,
	m *metrics.Metrics,
	reg *prometheus.Registry,
	limiter outbound.RateLimiterPort,
	storage *Storage,
	d *domain.Domain,
	h *Handlers,
) *gin.Engine {
	if cfg.Server.Mode == gin.DebugMode {
		gin.SetMode(gin.DebugMode)
	} else if cfg.Server.Mode == gin.TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Apply global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logging(log))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))

	r.GET("/health", healthHandler(storage))
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	v1 := r.Group("/api/v1")

	// Protected routes authenticate before the limiter so callers are
	// limited per user; public routes are limited per client IP.
	auth := middleware.RequireAuth(d.Identity)
	public := v1.Group("")
	protected := []gin.HandlerFunc{auth}
	if cfg.RateLimit.Enabled {
		limit := middleware.RateLimit(limiter, middleware.RateLimitConfig{
			Limit:  cfg.RateLimit.Limit,
			Window: cfg.RateLimit.Window,
		}, m, log)
		public.Use(limit)
		protected = append(protected, limit)
	}

	h.Identity.RegisterRoutes(public, auth)
	h.Calendar.RegisterRoutes(v1, protected...)
	h.Invitation.RegisterRoutes(v1, protected...)
	h.Activity.RegisterRoutes(v1, protected...)

	return r
}

func healthHandler(storage *Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := storage.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

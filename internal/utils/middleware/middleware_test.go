package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/calshare/server/internal/port/inbound"
	apperrors "github.com/calshare/server/internal/utils/errors"
	"github.com/calshare/server/internal/utils/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Test helpers

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (*inbound.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inbound.Identity), args.Error(1)
}

type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockRateLimiter) GetRemaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Int(0), args.Error(1)
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorDetail {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestRequestID(t *testing.T) {
	newRouter := func() *gin.Engine {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, GetRequestID(c))
		})
		return router
	}

	t.Run("generates_new_request_id", func(t *testing.T) {
		w := serve(newRouter(), httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		headerID := w.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, headerID)
		assert.Equal(t, headerID, w.Body.String())
	})

	t.Run("keeps_incoming_request_id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "existing-request-id-123")

		w := serve(newRouter(), req)

		assert.Equal(t, "existing-request-id-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "existing-request-id-123", w.Body.String())
	})
}

func TestRequireAuth(t *testing.T) {
	userID := uuid.New()

	newRouter := func(auth Authenticator) *gin.Engine {
		router := gin.New()
		router.Use(RequestID(), RequireAuth(auth))
		router.GET("/me", func(c *gin.Context) {
			actor, ok := GetActor(c)
			require.True(t, ok)
			c.JSON(http.StatusOK, gin.H{
				"user_id":    actor.UserID(),
				"email":      actor.Email(),
				"request_id": actor.RequestID(),
			})
		})
		return router
	}

	t.Run("valid_token_builds_actor", func(t *testing.T) {
		auth := new(MockAuthenticator)
		auth.On("Authenticate", mock.Anything, "good").
			Return(&inbound.Identity{UserID: userID, Email: "a@example.com"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthorizationHeader, "Bearer good")
		req.Header.Set(RequestIDHeader, "req-1")
		w := serve(newRouter(auth), req)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, userID.String(), body["user_id"])
		assert.Equal(t, "a@example.com", body["email"])
		assert.Equal(t, "req-1", body["request_id"])
		auth.AssertExpectations(t)
	})

	t.Run("missing_header", func(t *testing.T) {
		auth := new(MockAuthenticator)

		w := serve(newRouter(auth), httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, w).Code)
		auth.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
	})

	t.Run("invalid_token", func(t *testing.T) {
		auth := new(MockAuthenticator)
		auth.On("Authenticate", mock.Anything, "bad").Return(nil, errors.New("expired"))

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthorizationHeader, "Bearer bad")
		w := serve(newRouter(auth), req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("non_bearer_scheme", func(t *testing.T) {
		auth := new(MockAuthenticator)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthorizationHeader, "Basic dXNlcjpwYXNz")
		w := serve(newRouter(auth), req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(RequestID(), Logging(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/missing", func(c *gin.Context) { c.String(http.StatusNotFound, "nope") })

	serve(router, httptest.NewRequest(http.MethodGet, "/ok", nil))
	serve(router, httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/ok", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.NotEmpty(t, fields["request_id"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := serve(router, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, w).Code)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestRateLimit(t *testing.T) {
	cfg := RateLimitConfig{Limit: 2, Window: time.Minute}

	newRouter := func(limiter *MockRateLimiter, m *metrics.Metrics) *gin.Engine {
		router := gin.New()
		router.Use(RateLimit(limiter, cfg, m, zap.NewNop()))
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		return router
	}

	t.Run("allowed", func(t *testing.T) {
		limiter := new(MockRateLimiter)
		limiter.On("Allow", mock.Anything, mock.AnythingOfType("string"), 2, time.Minute).Return(true, nil)
		limiter.On("GetRemaining", mock.Anything, mock.AnythingOfType("string"), 2, time.Minute).Return(1, nil)
		m := metrics.New("test", prometheus.NewRegistry())

		w := serve(newRouter(limiter, m), httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "1", w.Header().Get(RateLimitRemaining))
		assert.Equal(t, "2", w.Header().Get(RateLimitLimit))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.RateLimitTotal.WithLabelValues("allowed")))
	})

	t.Run("rejected", func(t *testing.T) {
		limiter := new(MockRateLimiter)
		limiter.On("Allow", mock.Anything, mock.Anything, 2, time.Minute).Return(false, nil)
		limiter.On("GetRemaining", mock.Anything, mock.Anything, 2, time.Minute).Return(0, nil)

		w := serve(newRouter(limiter, nil), httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "60", w.Header().Get(RetryAfter))
		assert.Equal(t, "RATE_LIMITED", decodeError(t, w).Code)
	})

	t.Run("limiter_error_fails_open", func(t *testing.T) {
		limiter := new(MockRateLimiter)
		limiter.On("Allow", mock.Anything, mock.Anything, 2, time.Minute).Return(false, errors.New("redis down"))

		w := serve(newRouter(limiter, nil), httptest.NewRequest(http.MethodGet, "/test", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		limiter.AssertNotCalled(t, "GetRemaining", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestMetrics(t *testing.T) {
	m := metrics.New("test", prometheus.NewRegistry())

	router := gin.New()
	router.Use(Metrics(m))
	router.GET("/calendars/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(router, httptest.NewRequest(http.MethodGet, "/calendars/"+uuid.NewString(), nil))
	serve(router, httptest.NewRequest(http.MethodGet, "/calendars/"+uuid.NewString(), nil))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/calendars/:id", "200")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.HTTPRequestsInFlight))
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"https://app.example.com"}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := serve(router, req)

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/calshare/server/internal/port/inbound"
	apperrors "github.com/calshare/server/internal/utils/errors"
	"github.com/calshare/server/internal/utils/requestctx"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// UserIDKey is the context key for user ID.
	UserIDKey = "user_id"
)

// Authenticator resolves a bearer token to the identity it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*inbound.Identity, error)
}

// RequireAuth returns a middleware that rejects requests without a valid
// bearer token. On success the request context carries an immutable
// requestctx.Actor for the caller.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			abortUnauthorized(c, "authorization header required")
			return
		}

		identity, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		actor := requestctx.NewActor(identity.UserID, identity.Email, GetRequestID(c))
		c.Set(UserIDKey, identity.UserID)
		c.Request = c.Request.WithContext(requestctx.WithActor(c.Request.Context(), actor))

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, apperrors.Unauthorized(message).ToResponse())
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
}

// GetActor returns the authenticated caller of the request.
func GetActor(c *gin.Context) (requestctx.Actor, bool) {
	return requestctx.ActorFrom(c.Request.Context())
}

// GetUserID returns the user ID from context.
// Returns uuid.Nil if not found.
func GetUserID(c *gin.Context) uuid.UUID {
	if val, exists := c.Get(UserIDKey); exists {
		if userID, ok := val.(uuid.UUID); ok {
			return userID
		}
	}
	return uuid.Nil
}

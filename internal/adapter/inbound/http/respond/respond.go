// Package respond holds the helpers shared by the HTTP handlers: caller
// resolution, path parsing, body binding and error rendering.
package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/calshare/server/internal/utils/errors"
	"github.com/calshare/server/internal/utils/middleware"
)

// Error writes err as an AppError JSON body with the status of its kind.
func Error(c *gin.Context, err error) {
	appErr := apperrors.FromError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(appErr.StatusCode, appErr.ToResponse())
}

// Caller returns the authenticated user's id, or writes 401 and reports false.
func Caller(c *gin.Context) (uuid.UUID, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		Error(c, apperrors.Unauthorized(""))
		return uuid.Nil, false
	}
	return actor.UserID(), true
}

// PathID parses the named path parameter as a uuid, or writes 400.
func PathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		Error(c, apperrors.BadRequest("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// Bind decodes the JSON body into dst, or writes 400.
func Bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		Error(c, apperrors.BadRequest("invalid request body").WithDetails(map[string]any{"reason": err.Error()}))
		return false
	}
	return true
}

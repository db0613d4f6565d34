package identityhttp

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calshare/server/internal/adapter/inbound/http/respond"
	"github.com/calshare/server/internal/port/inbound"
)

// Handler handles registration, login and the caller's profile.
type Handler struct {
	domain inbound.IdentityDomain
}

// NewHandler creates a new identity handler.
func NewHandler(domain inbound.IdentityDomain) *Handler {
	return &Handler{domain: domain}
}

// RegisterRoutes registers identity routes. /auth is public.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMiddleware ...gin.HandlerFunc) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
	}

	r.Group("/me", authMiddleware...).GET("", h.GetMe)
}

// Register handles user registration.
//
//	@Summary		Register new user
//	@Description	Create a new user account with email and password
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		inbound.RegisterInput	true	"Registration request"
//	@Success		201		{object}	inbound.AuthOutput
//	@Failure		409		{object}	errors.ErrorResponse
//	@Failure		422		{object}	errors.ErrorResponse
//	@Router			/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var input inbound.RegisterInput
	if !respond.Bind(c, &input) {
		return
	}

	out, err := h.domain.Register(c.Request.Context(), &input)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, out)
}

// Login exchanges credentials for an access token.
//
//	@Summary	Login
//	@Tags		Auth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		inbound.LoginInput	true	"Credentials"
//	@Success	200		{object}	inbound.AuthOutput
//	@Failure	401		{object}	errors.ErrorResponse
//	@Router		/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var input inbound.LoginInput
	if !respond.Bind(c, &input) {
		return
	}

	out, err := h.domain.Login(c.Request.Context(), &input)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// GetMe returns the caller's profile with calendar and invitation ids.
//
//	@Summary	Current user
//	@Tags		Auth
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	model.UserOutput
//	@Router		/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}

	user, err := h.domain.GetMe(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, user.ToOutput())
}

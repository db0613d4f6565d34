package invitationhttp

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/calshare/server/internal/adapter/inbound/http/respond"
	"github.com/calshare/server/internal/model"
	"github.com/calshare/server/internal/port/inbound"
)

// Handler handles invitation HTTP requests.
type Handler struct {
	domain inbound.InvitationDomain
}

// NewHandler creates a new invitation handler.
func NewHandler(domain inbound.InvitationDomain) *Handler {
	return &Handler{domain: domain}
}

// RegisterRoutes registers invitation routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMiddleware ...gin.HandlerFunc) {
	invitations := r.Group("/invitations")
	invitations.Use(authMiddleware...)
	{
		invitations.GET("", h.ListMyInvitations)
		invitations.GET("/:id", h.GetInvitation)
		invitations.POST("/:id/accept", h.Accept)
		invitations.POST("/:id/reject", h.Reject)
		invitations.POST("/:id/visibility", h.ToggleVisible)
	}

	r.Group("/calendars/:id/invitations", authMiddleware...).GET("", h.ListCalendarInvitations)
}

// ListMyInvitations lists the invitations awaiting the caller's answer.
// Hidden invitations are left out unless include_hidden=true.
//
//	@Summary	List my invitations
//	@Tags		Invitation
//	@Produce	json
//	@Security	BearerAuth
//	@Param		include_hidden	query	bool	false	"Include hidden invitations"
//	@Success	200				{array}	model.Invitation
//	@Router		/invitations [get]
func (h *Handler) ListMyInvitations(c *gin.Context) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}
	includeHidden, _ := strconv.ParseBool(c.Query("include_hidden"))

	invitations, err := h.domain.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	out := make([]*model.Invitation, 0, len(invitations))
	for _, inv := range invitations {
		if inv.Visible || includeHidden {
			out = append(out, inv)
		}
	}
	c.JSON(http.StatusOK, out)
}

// GetInvitation returns one invitation to its invitee.
//
//	@Summary	Get invitation
//	@Tags		Invitation
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Invitation ID"
//	@Success	200	{object}	model.Invitation
//	@Failure	403	{object}	errors.ErrorResponse
//	@Failure	404	{object}	errors.ErrorResponse
//	@Router		/invitations/{id} [get]
func (h *Handler) GetInvitation(c *gin.Context) {
	h.answer(c, http.StatusOK, h.domain.Get)
}

// Accept accepts a pending invitation and joins the calendar.
//
//	@Summary	Accept invitation
//	@Tags		Invitation
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Invitation ID"
//	@Success	200	{object}	model.Invitation
//	@Failure	409	{object}	errors.ErrorResponse
//	@Router		/invitations/{id}/accept [post]
func (h *Handler) Accept(c *gin.Context) {
	h.answer(c, http.StatusOK, h.domain.Accept)
}

// Reject declines a pending invitation.
//
//	@Summary	Reject invitation
//	@Tags		Invitation
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Invitation ID"
//	@Success	200	{object}	model.Invitation
//	@Failure	409	{object}	errors.ErrorResponse
//	@Router		/invitations/{id}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	h.answer(c, http.StatusOK, h.domain.Reject)
}

// ToggleVisible hides or unhides an invitation in the caller's list.
//
//	@Summary	Toggle invitation visibility
//	@Tags		Invitation
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Invitation ID"
//	@Success	200	{object}	model.Invitation
//	@Router		/invitations/{id}/visibility [post]
func (h *Handler) ToggleVisible(c *gin.Context) {
	h.answer(c, http.StatusOK, h.domain.ToggleVisible)
}

func (h *Handler) answer(c *gin.Context, status int, op func(ctx context.Context, actorID, invitationID uuid.UUID) (*model.Invitation, error)) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}
	invitationID, ok := respond.PathID(c, "id")
	if !ok {
		return
	}

	invitation, err := op(c.Request.Context(), userID, invitationID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(status, invitation)
}

// ListCalendarInvitations lists every invitation of a calendar. Admins only.
//
//	@Summary	List calendar invitations
//	@Tags		Invitation
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Calendar ID"
//	@Success	200	{array}	model.Invitation
//	@Failure	403	{object}	errors.ErrorResponse
//	@Router		/calendars/{id}/invitations [get]
func (h *Handler) ListCalendarInvitations(c *gin.Context) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}
	calendarID, ok := respond.PathID(c, "id")
	if !ok {
		return
	}

	invitations, err := h.domain.ListForCalendar(c.Request.Context(), userID, calendarID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, invitations)
}

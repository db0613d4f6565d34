package activityhttp

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/calshare/server/internal/adapter/inbound/http/respond"
	"github.com/calshare/server/internal/port/inbound"
)

// Handler handles activity and todo HTTP requests.
type Handler struct {
	domain inbound.ActivityDomain
}

// NewHandler creates a new activity handler.
func NewHandler(domain inbound.ActivityDomain) *Handler {
	return &Handler{domain: domain}
}

// RegisterRoutes registers activity routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMiddleware ...gin.HandlerFunc) {
	activities := r.Group("/activities")
	activities.Use(authMiddleware...)
	{
		activities.GET("", h.ListMyActivities)
		activities.GET("/:id", h.GetActivity)
		activities.PUT("/:id", h.UpdateActivity)
		activities.DELETE("/:id", h.DeleteActivity)
		activities.GET("/:id/todos/:todo_id", h.GetTodo)
		activities.POST("/:id/todos/:todo_id/toggle", h.ToggleDone)
	}

	plans := r.Group("/calendars/:id/activities", authMiddleware...)
	plans.GET("", h.ListCalendarActivities)
	plans.POST("", h.CreateActivity)
}

// CreateActivity plans a week in a calendar. user_id defaults to the caller.
//
//	@Summary	Create activity
//	@Tags		Activity
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string						true	"Calendar ID"
//	@Param		request	body		inbound.CreateActivityInput	true	"Activity"
//	@Success	201		{object}	model.ActivityOutput
//	@Failure	403		{object}	errors.ErrorResponse
//	@Failure	422		{object}	errors.ErrorResponse
//	@Router		/calendars/{id}/activities [post]
func (h *Handler) CreateActivity(c *gin.Context) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}
	calendarID, ok := respond.PathID(c, "id")
	if !ok {
		return
	}

	var input inbound.CreateActivityInput
	if !respond.Bind(c, &input) {
		return
	}
	if input.UserID == uuid.Nil {
		input.UserID = userID
	}

	out, err := h.domain.CreateActivity(c.Request.Context(), userID, calendarID, &input)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, out)
}

// ListCalendarActivities lists every activity of a calendar to its members.
//
//	@Summary	List calendar activities
//	@Tags		Activity
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Calendar ID"
//	@Success	200	{array}	model.ActivityOutput
//	@Router		/calendars/{id}/activities [get]
func (h *Handler) ListCalendarActivities(c *gin.Context) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}
	calendarID, ok := respond.PathID(c, "id")
	if !ok {
		return
	}

	out, err := h.domain.ListActivitiesForCalendar(c.Request.Context(), userID, calendarID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// ListMyActivities lists the caller's activities across calendars.
//
//	@Summary	List my activities
//	@Tags		Activity
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	model.ActivityOutput
//	@Router		/activities [get]
func (h *Handler) ListMyActivities(c *gin.Context) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}

	out, err := h.domain.ListActivitiesForUser(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// GetActivity returns an activity to its owner.
//
//	@Summary	Get activity
//	@Tags		Activity
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Activity ID"
//	@Success	200	{object}	model.ActivityOutput
//	@Router		/activities/{id} [get]
func (h *Handler) GetActivity(c *gin.Context) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}
	activityID, ok := respond.PathID(c, "id")
	if !ok {
		return
	}

	out, err := h.domain.GetActivity(c.Request.Context(), userID, activityID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// UpdateActivity replaces an activity's day buckets.
//
//	@Summary	Update activity
//	@Tags		Activity
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string						true	"Activity ID"
//	@Param		request	body		inbound.UpdateActivityInput	true	"Days"
//	@Success	200		{object}	model.ActivityOutput
//	@Router		/activities/{id} [put]
func (h *Handler) UpdateActivity(c *gin.Context) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}
	activityID, ok := respond.PathID(c, "id")
	if !ok {
		return
	}

	var input inbound.UpdateActivityInput
	if !respond.Bind(c, &input) {
		return
	}

	out, err := h.domain.UpdateActivity(c.Request.Context(), userID, activityID, &input)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// DeleteActivity removes an activity and its todos.
//
//	@Summary	Delete activity
//	@Tags		Activity
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Activity ID"
//	@Success	204
//	@Router		/activities/{id} [delete]
func (h *Handler) DeleteActivity(c *gin.Context) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}
	activityID, ok := respond.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.domain.DeleteActivity(c.Request.Context(), userID, activityID); err != nil {
		respond.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetTodo returns one todo instance.
//
//	@Summary	Get todo
//	@Tags		Activity
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string	true	"Activity ID"
//	@Param		todo_id	path		string	true	"Todo ID"
//	@Success	200		{object}	model.Todo
//	@Router		/activities/{id}/todos/{todo_id} [get]
func (h *Handler) GetTodo(c *gin.Context) {
	userID, activityID, todoID, ok := todoParams(c)
	if !ok {
		return
	}

	todo, err := h.domain.GetTodo(c.Request.Context(), userID, activityID, todoID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, todo)
}

// ToggleDone flips a todo's done flag.
//
//	@Summary	Toggle todo
//	@Tags		Activity
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string	true	"Activity ID"
//	@Param		todo_id	path		string	true	"Todo ID"
//	@Success	200		{object}	model.Todo
//	@Router		/activities/{id}/todos/{todo_id}/toggle [post]
func (h *Handler) ToggleDone(c *gin.Context) {
	userID, activityID, todoID, ok := todoParams(c)
	if !ok {
		return
	}

	todo, err := h.domain.ToggleDone(c.Request.Context(), userID, activityID, todoID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, todo)
}

func todoParams(c *gin.Context) (userID, activityID, todoID uuid.UUID, ok bool) {
	if userID, ok = respond.Caller(c); !ok {
		return
	}
	if activityID, ok = respond.PathID(c, "id"); !ok {
		return
	}
	todoID, ok = respond.PathID(c, "todo_id")
	return
}

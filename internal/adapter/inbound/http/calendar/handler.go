package calendarhttp

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/calshare/server/internal/adapter/inbound/http/respond"
	"github.com/calshare/server/internal/model"
	"github.com/calshare/server/internal/port/inbound"
)

// Handler handles calendar, membership and task catalog HTTP requests.
type Handler struct {
	domain inbound.CalendarDomain
}

// NewHandler creates a new calendar handler.
func NewHandler(domain inbound.CalendarDomain) *Handler {
	return &Handler{domain: domain}
}

// RegisterRoutes registers calendar routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMiddleware ...gin.HandlerFunc) {
	calendars := r.Group("/calendars")
	calendars.Use(authMiddleware...)
	{
		calendars.POST("", h.CreateCalendar)
		calendars.GET("", h.ListMyCalendars)
		calendars.GET("/:id", h.GetCalendar)
		calendars.PATCH("/:id", h.EditCalendar)
		calendars.DELETE("/:id", h.DeleteCalendar)

		// Members
		calendars.POST("/:id/members", h.AddMembers)
		calendars.DELETE("/:id/members", h.DeleteMembers)
		calendars.POST("/:id/admins/:user_id", h.PromoteAdmin)
		calendars.DELETE("/:id/admins/:user_id", h.DemoteAdmin)

		// Task catalog
		calendars.GET("/:id/tasks", h.ListTasks)
		calendars.POST("/:id/tasks", h.CreateTask)
		calendars.PATCH("/:id/tasks/:task_id", h.UpdateTask)
		calendars.DELETE("/:id/tasks/:task_id", h.DeleteTask)
	}
}

// ========== Calendar Handlers ==========

// CreateCalendar handles calendar creation.
//
//	@Summary		Create calendar
//	@Description	Create a calendar founded by the caller
//	@Tags			Calendar
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		inbound.CreateCalendarInput	true	"Calendar"
//	@Success		201		{object}	model.CalendarOutput
//	@Failure		422		{object}	errors.ErrorResponse
//	@Router			/calendars [post]
func (h *Handler) CreateCalendar(c *gin.Context) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}

	var input inbound.CreateCalendarInput
	if !respond.Bind(c, &input) {
		return
	}

	calendar, err := h.domain.CreateCalendar(c.Request.Context(), userID, &input)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, calendar.ToOutput())
}

// ListMyCalendars lists the calendars the caller belongs to.
//
//	@Summary	List my calendars
//	@Tags		Calendar
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	model.CalendarOutput
//	@Router		/calendars [get]
func (h *Handler) ListMyCalendars(c *gin.Context) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}

	calendars, err := h.domain.ListCalendarsForUser(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	out := make([]*model.CalendarOutput, 0, len(calendars))
	for _, calendar := range calendars {
		out = append(out, calendar.ToOutput())
	}
	c.JSON(http.StatusOK, out)
}

// GetCalendar returns a calendar to its members.
//
//	@Summary	Get calendar
//	@Tags		Calendar
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path		string	true	"Calendar ID"
//	@Success	200	{object}	model.CalendarOutput
//	@Failure	403	{object}	errors.ErrorResponse
//	@Failure	404	{object}	errors.ErrorResponse
//	@Router		/calendars/{id} [get]
func (h *Handler) GetCalendar(c *gin.Context) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}
	calendarID, ok := respond.PathID(c, "id")
	if !ok {
		return
	}

	calendar, err := h.domain.GetCalendar(c.Request.Context(), userID, calendarID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, calendar.ToOutput())
}

// EditCalendar renames or redescribes a calendar. Founder only.
//
//	@Summary	Edit calendar
//	@Tags		Calendar
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string						true	"Calendar ID"
//	@Param		request	body		inbound.EditCalendarInput	true	"Calendar"
//	@Success	200		{object}	model.CalendarOutput
//	@Failure	403		{object}	errors.ErrorResponse
//	@Router		/calendars/{id} [patch]
func (h *Handler) EditCalendar(c *gin.Context) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}
	calendarID, ok := respond.PathID(c, "id")
	if !ok {
		return
	}

	var input inbound.EditCalendarInput
	if !respond.Bind(c, &input) {
		return
	}

	calendar, err := h.domain.EditCalendar(c.Request.Context(), userID, calendarID, &input)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, calendar.ToOutput())
}

// DeleteCalendar deletes a calendar and everything hanging off it. Founder only.
//
//	@Summary	Delete calendar
//	@Tags		Calendar
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Calendar ID"
//	@Success	204
//	@Failure	403	{object}	errors.ErrorResponse
//	@Router		/calendars/{id} [delete]
func (h *Handler) DeleteCalendar(c *gin.Context) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}
	calendarID, ok := respond.PathID(c, "id")
	if !ok {
		return
	}

	if err := h.domain.DeleteCalendar(c.Request.Context(), userID, calendarID); err != nil {
		respond.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ========== Member Handlers ==========

// AddMembers invites users into a calendar and reports the outcome per user.
//
//	@Summary	Invite members
//	@Tags		Calendar
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string					true	"Calendar ID"
//	@Param		request	body		inbound.AddMembersInput	true	"Members"
//	@Success	200		{object}	inbound.AddMembersResult
//	@Failure	403		{object}	errors.ErrorResponse
//	@Router		/calendars/{id}/members [post]
func (h *Handler) AddMembers(c *gin.Context) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}
	calendarID, ok := respond.PathID(c, "id")
	if !ok {
		return
	}

	var input inbound.AddMembersInput
	if !respond.Bind(c, &input) {
		return
	}

	result, err := h.domain.AddMembers(c.Request.Context(), userID, calendarID, &input)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteMembers removes members from a calendar. Members may remove themselves.
//
//	@Summary	Remove members
//	@Tags		Calendar
//	@Accept		json
//	@Security	BearerAuth
//	@Param		id		path	string						true	"Calendar ID"
//	@Param		request	body	inbound.DeleteMembersInput	true	"Members"
//	@Success	204
//	@Failure	403	{object}	errors.ErrorResponse
//	@Router		/calendars/{id}/members [delete]
func (h *Handler) DeleteMembers(c *gin.Context) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}
	calendarID, ok := respond.PathID(c, "id")
	if !ok {
		return
	}

	var input inbound.DeleteMembersInput
	if !respond.Bind(c, &input) {
		return
	}

	if err := h.domain.DeleteMembers(c.Request.Context(), userID, calendarID, &input); err != nil {
		respond.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// PromoteAdmin grants admin rights to a member. Founder only.
//
//	@Summary	Promote admin
//	@Tags		Calendar
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string	true	"Calendar ID"
//	@Param		user_id	path		string	true	"User ID"
//	@Success	200		{object}	model.CalendarOutput
//	@Router		/calendars/{id}/admins/{user_id} [post]
func (h *Handler) PromoteAdmin(c *gin.Context) {
	h.changeAdmin(c, h.domain.PromoteAdmin)
}

// DemoteAdmin revokes admin rights from a member. Founder only.
//
//	@Summary	Demote admin
//	@Tags		Calendar
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string	true	"Calendar ID"
//	@Param		user_id	path		string	true	"User ID"
//	@Success	200		{object}	model.CalendarOutput
//	@Router		/calendars/{id}/admins/{user_id} [delete]
func (h *Handler) DemoteAdmin(c *gin.Context) {
	h.changeAdmin(c, h.domain.DemoteAdmin)
}

func (h *Handler) changeAdmin(c *gin.Context, change func(ctx context.Context, actorID, calendarID, userID uuid.UUID) (*model.Calendar, error)) {
	actorID, ok := respond.Caller(c)
	if !ok {
		return
	}
	calendarID, ok := respond.PathID(c, "id")
	if !ok {
		return
	}
	userID, ok := respond.PathID(c, "user_id")
	if !ok {
		return
	}

	calendar, err := change(c.Request.Context(), actorID, calendarID, userID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, calendar.ToOutput())
}

// ========== Task Handlers ==========

// ListTasks lists a calendar's task catalog.
//
//	@Summary	List tasks
//	@Tags		Task
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id	path	string	true	"Calendar ID"
//	@Success	200	{array}	model.Task
//	@Router		/calendars/{id}/tasks [get]
func (h *Handler) ListTasks(c *gin.Context) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}
	calendarID, ok := respond.PathID(c, "id")
	if !ok {
		return
	}

	tasks, err := h.domain.ListTasks(c.Request.Context(), userID, calendarID)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// CreateTask adds a task to the catalog.
//
//	@Summary	Create task
//	@Tags		Task
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string					true	"Calendar ID"
//	@Param		request	body		inbound.CreateTaskInput	true	"Task"
//	@Success	201		{object}	model.Task
//	@Router		/calendars/{id}/tasks [post]
func (h *Handler) CreateTask(c *gin.Context) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}
	calendarID, ok := respond.PathID(c, "id")
	if !ok {
		return
	}

	var input inbound.CreateTaskInput
	if !respond.Bind(c, &input) {
		return
	}

	task, err := h.domain.CreateTask(c.Request.Context(), userID, calendarID, &input)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// UpdateTask patches a catalog task.
//
//	@Summary	Update task
//	@Tags		Task
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		id		path		string					true	"Calendar ID"
//	@Param		task_id	path		string					true	"Task ID"
//	@Param		request	body		inbound.UpdateTaskInput	true	"Task"
//	@Success	200		{object}	model.Task
//	@Router		/calendars/{id}/tasks/{task_id} [patch]
func (h *Handler) UpdateTask(c *gin.Context) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}
	calendarID, ok := respond.PathID(c, "id")
	if !ok {
		return
	}
	taskID, ok := respond.PathID(c, "task_id")
	if !ok {
		return
	}

	var input inbound.UpdateTaskInput
	if !respond.Bind(c, &input) {
		return
	}

	task, err := h.domain.UpdateTask(c.Request.Context(), userID, calendarID, taskID, &input)
	if err != nil {
		respond.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task and strips its todo instances from every activity.
//
//	@Summary	Delete task
//	@Tags		Task
//	@Security	BearerAuth
//	@Param		id		path	string	true	"Calendar ID"
//	@Param		task_id	path	string	true	"Task ID"
//	@Success	204
//	@Router		/calendars/{id}/tasks/{task_id} [delete]
func (h *Handler) DeleteTask(c *gin.Context) {
	userID, ok := respond.Caller(c)
	if !ok {
		return
	}
	calendarID, ok := respond.PathID(c, "id")
	if !ok {
		return
	}
	taskID, ok := respond.PathID(c, "task_id")
	if !ok {
		return
	}

	if err := h.domain.DeleteTask(c.Request.Context(), userID, calendarID, taskID); err != nil {
		respond.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

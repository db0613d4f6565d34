package inbound

import (
	"context"

	"github.com/google/uuid"

	"github.com/calshare/server/internal/model"
)

// --- Request/Response Types ---

// CreateCalendarInput represents a request to create a calendar.
type CreateCalendarInput struct {
	Title       string `json:"title" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// EditCalendarInput represents a request to rename or redescribe a calendar.
type EditCalendarInput struct {
	Title       string `json:"title" validate:"required,min=3,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// AddMembersInput represents a request to invite users into a calendar.
type AddMembersInput struct {
	MemberIDs []uuid.UUID `json:"member_ids" validate:"required,min=1,max=100,dive,required"`
	Message   string      `json:"message" validate:"max=500"`
}

// DeleteMembersInput represents a request to remove users from a calendar.
type DeleteMembersInput struct {
	MemberIDs []uuid.UUID `json:"member_ids" validate:"required,min=1,max=100,dive,required"`
}

// CreateTaskInput represents a request to add a task to the catalog.
type CreateTaskInput struct {
	Title       string   `json:"title" validate:"required,min=1,max=100"`
	Description string   `json:"description" validate:"max=1000"`
	Options     []string `json:"options" validate:"max=20,dive,min=1,max=100"`
}

// UpdateTaskInput represents a partial task update.
type UpdateTaskInput struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=100"`
	Description *string  `json:"description" validate:"omitempty,max=1000"`
	Options     []string `json:"options" validate:"omitempty,max=20,dive,min=1,max=100"`
}

// MemberInviteStatus is the outcome of AddMembers for one target.
type MemberInviteStatus string

const (
	MemberInvited        MemberInviteStatus = "invited"
	MemberSkippedMember  MemberInviteStatus = "skipped_member"
	MemberSkippedPending MemberInviteStatus = "skipped_pending"
	MemberNotFound       MemberInviteStatus = "not_found"
)

// MemberInviteResult reports what happened to one AddMembers target.
type MemberInviteResult struct {
	UserID       uuid.UUID          `json:"user_id"`
	Status       MemberInviteStatus `json:"status"`
	InvitationID *uuid.UUID         `json:"invitation_id,omitempty"`
}

// AddMembersResult is the per-target report of AddMembers.
type AddMembersResult struct {
	CalendarID uuid.UUID             `json:"calendar_id"`
	Results    []*MemberInviteResult `json:"results"`
}

// Invited returns the number of invitations created.
func (r *AddMembersResult) Invited() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == MemberInvited {
			n++
		}
	}
	return n
}

// --- Domain Interface ---

// CalendarDomain defines the calendar registry service interface.
type CalendarDomain interface {
	// Calendar operations
	CreateCalendar(ctx context.Context, founderID uuid.UUID, input *CreateCalendarInput) (*model.Calendar, error)
	EditCalendar(ctx context.Context, actorID, calendarID uuid.UUID, input *EditCalendarInput) (*model.Calendar, error)
	DeleteCalendar(ctx context.Context, actorID, calendarID uuid.UUID) error
	GetCalendar(ctx context.Context, actorID, calendarID uuid.UUID) (*model.Calendar, error)
	ListCalendarsForUser(ctx context.Context, userID uuid.UUID) ([]*model.Calendar, error)

	// Member operations
	AddMembers(ctx context.Context, actorID, calendarID uuid.UUID, input *AddMembersInput) (*AddMembersResult, error)
	DeleteMembers(ctx context.Context, actorID, calendarID uuid.UUID, input *DeleteMembersInput) error
	PromoteAdmin(ctx context.Context, actorID, calendarID, userID uuid.UUID) (*model.Calendar, error)
	DemoteAdmin(ctx context.Context, actorID, calendarID, userID uuid.UUID) (*model.Calendar, error)

	// Task catalog operations
	CreateTask(ctx context.Context, actorID, calendarID uuid.UUID, input *CreateTaskInput) (*model.Task, error)
	UpdateTask(ctx context.Context, actorID, calendarID, taskID uuid.UUID, input *UpdateTaskInput) (*model.Task, error)
	DeleteTask(ctx context.Context, actorID, calendarID, taskID uuid.UUID) error
	ListTasks(ctx context.Context, actorID, calendarID uuid.UUID) ([]*model.Task, error)
}

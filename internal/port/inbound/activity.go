package inbound

import (
	"context"

	"github.com/google/uuid"

	"github.com/calshare/server/internal/model"
)

// CreateActivityInput represents a request to plan a user's week in a calendar.
// Every task id listed in a day bucket becomes its own todo instance.
type CreateActivityInput struct {
	UserID uuid.UUID  `json:"user_id" validate:"required"`
	Days   model.Days `json:"days" validate:"dive,keys,weekday,endkeys,max=50,dive,required"`
}

// UpdateActivityInput replaces an activity's day buckets wholesale.
type UpdateActivityInput struct {
	Days model.Days `json:"days" validate:"dive,keys,weekday,endkeys,max=50,dive,required"`
}

// ActivityDomain defines the activity scheduler service interface.
type ActivityDomain interface {
	CreateActivity(ctx context.Context, actorID, calendarID uuid.UUID, input *CreateActivityInput) (*model.ActivityOutput, error)
	GetActivity(ctx context.Context, actorID, activityID uuid.UUID) (*model.ActivityOutput, error)
	UpdateActivity(ctx context.Context, actorID, activityID uuid.UUID, input *UpdateActivityInput) (*model.ActivityOutput, error)
	DeleteActivity(ctx context.Context, actorID, activityID uuid.UUID) error
	GetTodo(ctx context.Context, actorID, activityID, todoID uuid.UUID) (*model.Todo, error)
	ToggleDone(ctx context.Context, actorID, activityID, todoID uuid.UUID) (*model.Todo, error)
	ListActivitiesForUser(ctx context.Context, userID uuid.UUID) ([]*model.ActivityOutput, error)
	ListActivitiesForCalendar(ctx context.Context, actorID, calendarID uuid.UUID) ([]*model.ActivityOutput, error)
}

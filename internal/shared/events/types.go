package events

import "github.com/google/uuid"

// Aggregate names.
const (
	AggregateCalendar   = "Calendar"
	AggregateInvitation = "Invitation"
	AggregateActivity   = "Activity"
)

// Event type constants.
const (
	CalendarCreatedType    = "CalendarCreated"
	CalendarDeletedType    = "CalendarDeleted"
	MembersRemovedType     = "MembersRemoved"
	InvitationCreatedType  = "InvitationCreated"
	InvitationAcceptedType = "InvitationAccepted"
	InvitationRejectedType = "InvitationRejected"
	ActivityCreatedType    = "ActivityCreated"
	ActivityDeletedType    = "ActivityDeleted"
	TodoToggledType        = "TodoToggled"
)

// CalendarCreatedEvent is emitted when a calendar is founded.
type CalendarCreatedEvent struct {
	BaseEvent
	FounderID uuid.UUID `json:"founder_id"`
}

// CalendarDeletedEvent is emitted after the calendar delete cascade commits.
type CalendarDeletedEvent struct {
	BaseEvent
	ActorID            uuid.UUID   `json:"actor_id"`
	DetachedUserIDs    []uuid.UUID `json:"detached_user_ids"`
	DeletedInvitations int         `json:"deleted_invitations"`
	DeletedActivities  int         `json:"deleted_activities"`
}

// MembersRemovedEvent is emitted when members leave or are removed.
type MembersRemovedEvent struct {
	BaseEvent
	ActorID    uuid.UUID   `json:"actor_id"`
	RemovedIDs []uuid.UUID `json:"removed_ids"`
}

// InvitationCreatedEvent is emitted when an invitation is issued.
type InvitationCreatedEvent struct {
	BaseEvent
	CalendarID uuid.UUID `json:"calendar_id"`
	FromID     uuid.UUID `json:"from_id"`
	ToID       uuid.UUID `json:"to_id"`
}

// InvitationAnsweredEvent is emitted when an invitation reaches a terminal state.
type InvitationAnsweredEvent struct {
	BaseEvent
	CalendarID uuid.UUID `json:"calendar_id"`
	ToID       uuid.UUID `json:"to_id"`
}

// ActivityEvent is emitted on activity lifecycle changes.
type ActivityEvent struct {
	BaseEvent
	UserID     uuid.UUID `json:"user_id"`
	CalendarID uuid.UUID `json:"calendar_id"`
}

// TodoToggledEvent is emitted when a todo's done flag flips.
type TodoToggledEvent struct {
	BaseEvent
	TodoID uuid.UUID `json:"todo_id"`
	Done   bool      `json:"done"`
}

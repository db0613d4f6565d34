package inbound

import (
	"context"

	"github.com/google/uuid"

	"github.com/calshare/server/internal/model"
)

// CreateInvitationInput represents an invitation issued by a calendar admin.
type CreateInvitationInput struct {
	CalendarID uuid.UUID `json:"calendar_id" validate:"required"`
	FromID     uuid.UUID `json:"from_id" validate:"required"`
	ToID       uuid.UUID `json:"to_id" validate:"required"`
	Message    string    `json:"message" validate:"max=500"`
}

// InvitationDomain defines the invitation ledger service interface.
type InvitationDomain interface {
	CreateInvitation(ctx context.Context, input *CreateInvitationInput) (*model.Invitation, error)
	Accept(ctx context.Context, actorID, invitationID uuid.UUID) (*model.Invitation, error)
	Reject(ctx context.Context, actorID, invitationID uuid.UUID) (*model.Invitation, error)
	ToggleVisible(ctx context.Context, actorID, invitationID uuid.UUID) (*model.Invitation, error)
	Get(ctx context.Context, actorID, invitationID uuid.UUID) (*model.Invitation, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Invitation, error)
	ListForCalendar(ctx context.Context, actorID, calendarID uuid.UUID) ([]*model.Invitation, error)
}

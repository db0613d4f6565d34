package model

import (
	"time"

	"github.com/google/uuid"
)

// InvitationStatus represents the status of an invitation.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusRejected InvitationStatus = "rejected"
)

// IsTerminal reports whether no further transition is allowed.
func (s InvitationStatus) IsTerminal() bool {
	return s == InvitationStatusAccepted || s == InvitationStatusRejected
}

// Invitation offers a user membership in a calendar.
type Invitation struct {
	ID           uuid.UUID        `json:"id" gorm:"type:uuid;primaryKey"`
	CalendarID   uuid.UUID        `json:"calendar_id" gorm:"type:uuid;not null;index"`
	CalendarName string           `json:"calendar_name" gorm:"not null"`
	FromID       uuid.UUID        `json:"from_id" gorm:"type:uuid;not null"`
	ToID         uuid.UUID        `json:"to_id" gorm:"type:uuid;not null;index"`
	Message      string           `json:"message"`
	Status       InvitationStatus `json:"status" gorm:"not null;default:pending"`
	Visible      bool             `json:"visible" gorm:"not null;default:true"`
	RespondedAt  *time.Time       `json:"responded_at,omitempty"`

	Version   int64     `json:"-" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Invitation) TableName() string {
	return "invitations"
}

// IsPending returns true if the invitation is still pending.
func (i *Invitation) IsPending() bool {
	return i.Status == InvitationStatusPending
}

// Clone returns a copy of the invitation.
func (i *Invitation) Clone() *Invitation {
	if i == nil {
		return nil
	}
	out := *i
	if i.RespondedAt != nil {
		t := *i.RespondedAt
		out.RespondedAt = &t
	}
	return &out
}

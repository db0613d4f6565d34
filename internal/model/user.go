package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// User represents a registered user.
//
// CalendarIDs mirrors every calendar whose MemberIDs contain the user and
// InvitationIDs lists the invitations still awaiting the user's answer.
// Both arrays are maintained only through the relation helpers.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`

	CalendarIDs   pq.StringArray `json:"calendar_ids" gorm:"type:text[];not null;default:'{}'"`
	InvitationIDs pq.StringArray `json:"invitation_ids" gorm:"type:text[];not null;default:'{}'"`

	Version   int64     `json:"-" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (User) TableName() string {
	return "users"
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.CalendarIDs = cloneIDs(u.CalendarIDs)
	c.InvitationIDs = cloneIDs(u.InvitationIDs)
	return &c
}

// UserOutput is the public view of a user.
type UserOutput struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	CalendarIDs   []string  `json:"calendar_ids"`
	InvitationIDs []string  `json:"invitation_ids"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToOutput converts the user to its public view.
func (u *User) ToOutput() *UserOutput {
	return &UserOutput{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		CalendarIDs:   nonNil(u.CalendarIDs),
		InvitationIDs: nonNil(u.InvitationIDs),
		CreatedAt:     u.CreatedAt,
	}
}

func cloneIDs(ids pq.StringArray) pq.StringArray {
	if ids == nil {
		return pq.StringArray{}
	}
	out := make(pq.StringArray, len(ids))
	copy(out, ids)
	return out
}

func nonNil(ids pq.StringArray) []string {
	if ids == nil {
		return []string{}
	}
	return []string(ids)
}

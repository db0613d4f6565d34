package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Calendar is a shared weekly calendar. The founder is always present in
// both MemberIDs and AdminIDs.
type Calendar struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	FounderID   uuid.UUID `json:"founder_id" gorm:"type:uuid;not null;index"`

	MemberIDs pq.StringArray `json:"member_ids" gorm:"type:text[];not null;default:'{}'"`
	AdminIDs  pq.StringArray `json:"admin_ids" gorm:"type:text[];not null;default:'{}'"`
	TaskIDs   pq.StringArray `json:"task_ids" gorm:"type:text[];not null;default:'{}'"`

	Version   int64     `json:"-" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Calendar) TableName() string {
	return "calendars"
}

// IsFounder reports whether userID founded the calendar.
func (c *Calendar) IsFounder(userID uuid.UUID) bool {
	return c.FounderID == userID
}

// IsAdmin reports whether userID may invite and remove members.
func (c *Calendar) IsAdmin(userID uuid.UUID) bool {
	return c.IsFounder(userID) || Contains(c.AdminIDs, userID)
}

// IsMember reports whether userID has access to the calendar.
func (c *Calendar) IsMember(userID uuid.UUID) bool {
	return c.IsFounder(userID) || Contains(c.MemberIDs, userID)
}

// HasTask reports whether taskID belongs to the calendar's catalog.
func (c *Calendar) HasTask(taskID uuid.UUID) bool {
	return Contains(c.TaskIDs, taskID)
}

// Clone returns a deep copy of the calendar.
func (c *Calendar) Clone() *Calendar {
	if c == nil {
		return nil
	}
	out := *c
	out.MemberIDs = cloneIDs(c.MemberIDs)
	out.AdminIDs = cloneIDs(c.AdminIDs)
	out.TaskIDs = cloneIDs(c.TaskIDs)
	return &out
}

// CalendarOutput is the public view of a calendar.
type CalendarOutput struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FounderID   uuid.UUID `json:"founder_id"`
	MemberIDs   []string  `json:"member_ids"`
	AdminIDs    []string  `json:"admin_ids"`
	TaskIDs     []string  `json:"task_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToOutput converts the calendar to its public view.
func (c *Calendar) ToOutput() *CalendarOutput {
	return &CalendarOutput{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		FounderID:   c.FounderID,
		MemberIDs:   nonNil(c.MemberIDs),
		AdminIDs:    nonNil(c.AdminIDs),
		TaskIDs:     nonNil(c.TaskIDs),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// Task is a reusable activity definition in a calendar's catalog.
type Task struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	CalendarID  uuid.UUID      `json:"calendar_id" gorm:"type:uuid;not null;index"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description"`
	Options     pq.StringArray `json:"options" gorm:"type:text[];not null;default:'{}'"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// TableName returns the database table name.
func (Task) TableName() string {
	return "tasks"
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	out := *t
	out.Options = cloneIDs(t.Options)
	return &out
}

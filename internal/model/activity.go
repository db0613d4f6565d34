package model

import (
	"time"

	"github.com/google/uuid"
)

// Weekday names one of the seven day buckets of an activity.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the day buckets in week order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// IsValid reports whether d names a day bucket.
func (d Weekday) IsValid() bool {
	switch d {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return true
	default:
		return false
	}
}

// Days maps each day bucket to the ordered todo instance ids placed on it.
type Days map[Weekday][]uuid.UUID

// Clone returns a deep copy with every bucket present.
func (d Days) Clone() Days {
	out := make(Days, len(Weekdays))
	for _, day := range Weekdays {
		src := d[day]
		ids := make([]uuid.UUID, len(src))
		copy(ids, src)
		out[day] = ids
	}
	return out
}

// Activity is a user's weekly plan inside one calendar.
type Activity struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	CalendarID uuid.UUID `json:"calendar_id" gorm:"type:uuid;not null;index"`
	Days       Days      `json:"days" gorm:"type:jsonb;serializer:json;not null"`

	Version   int64     `json:"-" gorm:"not null;default:1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Activity) TableName() string {
	return "activities"
}

// Clone returns a deep copy of the activity.
func (a *Activity) Clone() *Activity {
	if a == nil {
		return nil
	}
	out := *a
	out.Days = a.Days.Clone()
	return &out
}

// Todo is one occurrence of a task on a specific day. Two todos may point
// at the same task and still toggle independently.
type Todo struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ActivityID uuid.UUID `json:"activity_id" gorm:"type:uuid;not null;index"`
	TaskID     uuid.UUID `json:"task_id" gorm:"type:uuid;not null;index"`
	Day        Weekday   `json:"day" gorm:"not null"`
	Done       bool      `json:"done" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Todo) TableName() string {
	return "todos"
}

// ActivityOutput is an activity with its todo instances resolved per day.
type ActivityOutput struct {
	ID         uuid.UUID           `json:"id"`
	UserID     uuid.UUID           `json:"user_id"`
	CalendarID uuid.UUID           `json:"calendar_id"`
	Days       map[Weekday][]*Todo `json:"days"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

package outbound

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/calshare/server/internal/model"
)

// ErrVersionConflict is returned by Update methods when the stored version no
// longer matches the version the caller read.
var ErrVersionConflict = errors.New("version conflict")

// ErrRecordNotFound is returned by point lookups when no row matches.
var ErrRecordNotFound = errors.New("record not found")

// ErrDuplicateKey is returned by Create when a unique attribute is taken.
var ErrDuplicateKey = errors.New("duplicate key")

// UserDatabasePort defines user persistence operations.
type UserDatabasePort interface {
	// Create creates a new user.
	Create(ctx context.Context, user *model.User) error

	// FindByID retrieves a user by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)

	// FindByEmail retrieves a user by normalized email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Update saves the user when its version matches and bumps the version.
	Update(ctx context.Context, user *model.User) error
}

// CalendarDatabasePort defines calendar persistence operations.
type CalendarDatabasePort interface {
	// Create creates a new calendar.
	Create(ctx context.Context, calendar *model.Calendar) error

	// FindByID retrieves a calendar by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Calendar, error)

	// FindByIDs retrieves the calendars with the given IDs, skipping missing ones.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Calendar, error)

	// Update saves the calendar when its version matches and bumps the version.
	Update(ctx context.Context, calendar *model.Calendar) error

	// Touch bumps the version when it matches without changing any field.
	// Units that only read a calendar touch it so that they conflict with
	// concurrent writers of that calendar.
	Touch(ctx context.Context, calendar *model.Calendar) error

	// Delete removes the calendar when its version matches.
	Delete(ctx context.Context, calendar *model.Calendar) error
}

// TaskDatabasePort defines task catalog persistence operations.
type TaskDatabasePort interface {
	// Create creates a new task.
	Create(ctx context.Context, task *model.Task) error

	// FindByID retrieves a task by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error)

	// FindByCalendar lists the catalog of a calendar.
	FindByCalendar(ctx context.Context, calendarID uuid.UUID) ([]*model.Task, error)

	// Update saves a task.
	Update(ctx context.Context, task *model.Task) error

	// Delete removes a task.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByCalendar removes a calendar's whole catalog.
	DeleteByCalendar(ctx context.Context, calendarID uuid.UUID) error
}

// InvitationDatabasePort defines invitation persistence operations.
type InvitationDatabasePort interface {
	// Create creates a new invitation.
	Create(ctx context.Context, invitation *model.Invitation) error

	// FindByID retrieves an invitation by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invitation, error)

	// FindByIDs retrieves the invitations with the given IDs, skipping missing ones.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Invitation, error)

	// FindPending retrieves the pending invitation for a calendar and invitee, or nil.
	FindPending(ctx context.Context, calendarID, toID uuid.UUID) (*model.Invitation, error)

	// FindByCalendar lists every invitation of a calendar.
	FindByCalendar(ctx context.Context, calendarID uuid.UUID) ([]*model.Invitation, error)

	// Update saves the invitation when its version matches and bumps the version.
	Update(ctx context.Context, invitation *model.Invitation) error

	// DeleteByCalendar removes every invitation of a calendar.
	DeleteByCalendar(ctx context.Context, calendarID uuid.UUID) error
}

// ActivityDatabasePort defines activity persistence operations.
type ActivityDatabasePort interface {
	// Create creates a new activity.
	Create(ctx context.Context, activity *model.Activity) error

	// FindByID retrieves an activity by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Activity, error)

	// FindByUser lists a user's activities.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*model.Activity, error)

	// FindByCalendar lists a calendar's activities.
	FindByCalendar(ctx context.Context, calendarID uuid.UUID) ([]*model.Activity, error)

	// FindByUserAndCalendar lists a user's activities inside one calendar.
	FindByUserAndCalendar(ctx context.Context, userID, calendarID uuid.UUID) ([]*model.Activity, error)

	// Update saves the activity when its version matches and bumps the version.
	Update(ctx context.Context, activity *model.Activity) error

	// Delete removes an activity.
	Delete(ctx context.Context, id uuid.UUID) error
}

// TodoDatabasePort defines todo instance persistence operations.
type TodoDatabasePort interface {
	// CreateBatch creates todo instances.
	CreateBatch(ctx context.Context, todos []*model.Todo) error

	// FindByID retrieves a todo by ID.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Todo, error)

	// FindByActivity lists the todos of an activity.
	FindByActivity(ctx context.Context, activityID uuid.UUID) ([]*model.Todo, error)

	// SetDone stores the done flag of a todo.
	SetDone(ctx context.Context, id uuid.UUID, done bool) error

	// DeleteByActivity removes every todo of an activity.
	DeleteByActivity(ctx context.Context, activityID uuid.UUID) error

	// DeleteByIDs removes the given todos.
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

// TransactionPort defines transaction support.
type TransactionPort interface {
	// RunInTransaction executes fn within a transaction. Adapters called with
	// the context passed to fn take part in the same transaction.
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

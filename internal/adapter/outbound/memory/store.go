// Package memory implements the outbound database ports on in-process maps.
// It backs the "memory" storage driver and the domain tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/calshare/server/internal/model"
	"github.com/calshare/server/internal/port/outbound"
)

// Store holds every entity table. Transactions are serialized; a failed
// transaction restores the snapshot taken when it began. Reads and writes
// made outside a transaction wait for the running one to finish, so callers
// never observe uncommitted state.
type Store struct {
	txMu sync.RWMutex
	mu   sync.RWMutex

	users       map[uuid.UUID]*model.User
	calendars   map[uuid.UUID]*model.Calendar
	tasks       map[uuid.UUID]*model.Task
	invitations map[uuid.UUID]*model.Invitation
	activities  map[uuid.UUID]*model.Activity
	todos       map[uuid.UUID]*model.Todo

	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:       make(map[uuid.UUID]*model.User),
		calendars:   make(map[uuid.UUID]*model.Calendar),
		tasks:       make(map[uuid.UUID]*model.Task),
		invitations: make(map[uuid.UUID]*model.Invitation),
		activities:  make(map[uuid.UUID]*model.Activity),
		todos:       make(map[uuid.UUID]*model.Todo),
		now:         time.Now,
	}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(bool)
	return ok
}

// write runs fn under the data lock. Writes made outside a transaction
// also take the transaction lock so a concurrent rollback cannot drop them.
func (s *Store) write(ctx context.Context, fn func() error) error {
	if !inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// read runs fn under the shared data lock.
func (s *Store) read(ctx context.Context, fn func()) {
	if !inTx(ctx) {
		s.txMu.RLock()
		defer s.txMu.RUnlock()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

type snapshot struct {
	users       map[uuid.UUID]*model.User
	calendars   map[uuid.UUID]*model.Calendar
	tasks       map[uuid.UUID]*model.Task
	invitations map[uuid.UUID]*model.Invitation
	activities  map[uuid.UUID]*model.Activity
	todos       map[uuid.UUID]*model.Todo
}

func cloneMap[T any](src map[uuid.UUID]*T, clone func(*T) *T) map[uuid.UUID]*T {
	out := make(map[uuid.UUID]*T, len(src))
	for k, v := range src {
		out[k] = clone(v)
	}
	return out
}

func cloneTodo(t *model.Todo) *model.Todo {
	c := *t
	return &c
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		users:       cloneMap(s.users, (*model.User).Clone),
		calendars:   cloneMap(s.calendars, (*model.Calendar).Clone),
		tasks:       cloneMap(s.tasks, (*model.Task).Clone),
		invitations: cloneMap(s.invitations, (*model.Invitation).Clone),
		activities:  cloneMap(s.activities, (*model.Activity).Clone),
		todos:       cloneMap(s.todos, cloneTodo),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = snap.users
	s.calendars = snap.calendars
	s.tasks = snap.tasks
	s.invitations = snap.invitations
	s.activities = snap.activities
	s.todos = snap.todos
}

// RunInTransaction executes fn within a transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	defer func() {
		if r := recover(); r != nil {
			s.restore(snap)
			panic(r)
		}
		if err != nil {
			s.restore(snap)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, true))
}

// Users returns the user table.
func (s *Store) Users() *UserStore { return &UserStore{s: s} }

// Calendars returns the calendar table.
func (s *Store) Calendars() *CalendarStore { return &CalendarStore{s: s} }

// Tasks returns the task table.
func (s *Store) Tasks() *TaskStore { return &TaskStore{s: s} }

// Invitations returns the invitation table.
func (s *Store) Invitations() *InvitationStore { return &InvitationStore{s: s} }

// Activities returns the activity table.
func (s *Store) Activities() *ActivityStore { return &ActivityStore{s: s} }

// Todos returns the todo table.
func (s *Store) Todos() *TodoStore { return &TodoStore{s: s} }

// sortByCreated orders rows oldest first with id as tie breaker.
func sortByCreated[T any](rows []*T, created func(*T) time.Time, id func(*T) uuid.UUID) {
	sort.Slice(rows, func(i, j int) bool {
		ci, cj := created(rows[i]), created(rows[j])
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return id(rows[i]).String() < id(rows[j]).String()
	})
}

var _ outbound.TransactionPort = (*Store)(nil)

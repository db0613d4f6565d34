package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/calshare/server/internal/model"
	"github.com/calshare/server/internal/port/outbound"
)

// ActivityStore implements outbound.ActivityDatabasePort.
type ActivityStore struct{ s *Store }

var _ outbound.ActivityDatabasePort = (*ActivityStore)(nil)

func (r *ActivityStore) Create(ctx context.Context, activity *model.Activity) error {
	return r.s.write(ctx, func() error {
		if _, ok := r.s.activities[activity.ID]; ok {
			return outbound.ErrVersionConflict
		}
		now := r.s.now()
		activity.CreatedAt, activity.UpdatedAt = now, now
		activity.Version = 1
		r.s.activities[activity.ID] = activity.Clone()
		return nil
	})
}

func (r *ActivityStore) FindByID(ctx context.Context, id uuid.UUID) (*model.Activity, error) {
	var out *model.Activity
	r.s.read(ctx, func() { out = r.s.activities[id].Clone() })
	if out == nil {
		return nil, outbound.ErrRecordNotFound
	}
	return out, nil
}

func (r *ActivityStore) filter(ctx context.Context, match func(*model.Activity) bool) []*model.Activity {
	var out []*model.Activity
	r.s.read(ctx, func() {
		for _, a := range r.s.activities {
			if match(a) {
				out = append(out, a.Clone())
			}
		}
	})
	sortByCreated(out, func(a *model.Activity) time.Time { return a.CreatedAt }, func(a *model.Activity) uuid.UUID { return a.ID })
	return out
}

func (r *ActivityStore) FindByUser(ctx context.Context, userID uuid.UUID) ([]*model.Activity, error) {
	return r.filter(ctx, func(a *model.Activity) bool { return a.UserID == userID }), nil
}

func (r *ActivityStore) FindByCalendar(ctx context.Context, calendarID uuid.UUID) ([]*model.Activity, error) {
	return r.filter(ctx, func(a *model.Activity) bool { return a.CalendarID == calendarID }), nil
}

func (r *ActivityStore) FindByUserAndCalendar(ctx context.Context, userID, calendarID uuid.UUID) ([]*model.Activity, error) {
	return r.filter(ctx, func(a *model.Activity) bool { return a.UserID == userID && a.CalendarID == calendarID }), nil
}

func (r *ActivityStore) Update(ctx context.Context, activity *model.Activity) error {
	return r.s.write(ctx, func() error {
		stored, ok := r.s.activities[activity.ID]
		if !ok {
			return outbound.ErrRecordNotFound
		}
		if stored.Version != activity.Version {
			return outbound.ErrVersionConflict
		}
		activity.Version++
		activity.UpdatedAt = r.s.now()
		r.s.activities[activity.ID] = activity.Clone()
		return nil
	})
}

func (r *ActivityStore) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.write(ctx, func() error {
		delete(r.s.activities, id)
		return nil
	})
}

// TodoStore implements outbound.TodoDatabasePort.
type TodoStore struct{ s *Store }

var _ outbound.TodoDatabasePort = (*TodoStore)(nil)

func (r *TodoStore) CreateBatch(ctx context.Context, todos []*model.Todo) error {
	return r.s.write(ctx, func() error {
		now := r.s.now()
		for _, t := range todos {
			t.CreatedAt, t.UpdatedAt = now, now
			r.s.todos[t.ID] = cloneTodo(t)
		}
		return nil
	})
}

func (r *TodoStore) FindByID(ctx context.Context, id uuid.UUID) (*model.Todo, error) {
	var out *model.Todo
	r.s.read(ctx, func() {
		if t, ok := r.s.todos[id]; ok {
			out = cloneTodo(t)
		}
	})
	if out == nil {
		return nil, outbound.ErrRecordNotFound
	}
	return out, nil
}

func (r *TodoStore) FindByActivity(ctx context.Context, activityID uuid.UUID) ([]*model.Todo, error) {
	var out []*model.Todo
	r.s.read(ctx, func() {
		for _, t := range r.s.todos {
			if t.ActivityID == activityID {
				out = append(out, cloneTodo(t))
			}
		}
	})
	sortByCreated(out, func(t *model.Todo) time.Time { return t.CreatedAt }, func(t *model.Todo) uuid.UUID { return t.ID })
	return out, nil
}

func (r *TodoStore) SetDone(ctx context.Context, id uuid.UUID, done bool) error {
	return r.s.write(ctx, func() error {
		t, ok := r.s.todos[id]
		if !ok {
			return outbound.ErrRecordNotFound
		}
		c := cloneTodo(t)
		c.Done = done
		c.UpdatedAt = r.s.now()
		r.s.todos[id] = c
		return nil
	})
}

func (r *TodoStore) DeleteByActivity(ctx context.Context, activityID uuid.UUID) error {
	return r.s.write(ctx, func() error {
		for id, t := range r.s.todos {
			if t.ActivityID == activityID {
				delete(r.s.todos, id)
			}
		}
		return nil
	})
}

func (r *TodoStore) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	return r.s.write(ctx, func() error {
		for _, id := range ids {
			delete(r.s.todos, id)
		}
		return nil
	})
}

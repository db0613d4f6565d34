package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/calshare/server/internal/model"
	"github.com/calshare/server/internal/port/outbound"
)

// CalendarStore implements outbound.CalendarDatabasePort.
type CalendarStore struct{ s *Store }

var _ outbound.CalendarDatabasePort = (*CalendarStore)(nil)

func (r *CalendarStore) Create(ctx context.Context, calendar *model.Calendar) error {
	return r.s.write(ctx, func() error {
		if _, ok := r.s.calendars[calendar.ID]; ok {
			return outbound.ErrVersionConflict
		}
		now := r.s.now()
		calendar.CreatedAt, calendar.UpdatedAt = now, now
		calendar.Version = 1
		r.s.calendars[calendar.ID] = calendar.Clone()
		return nil
	})
}

func (r *CalendarStore) FindByID(ctx context.Context, id uuid.UUID) (*model.Calendar, error) {
	var out *model.Calendar
	r.s.read(ctx, func() { out = r.s.calendars[id].Clone() })
	if out == nil {
		return nil, outbound.ErrRecordNotFound
	}
	return out, nil
}

func (r *CalendarStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Calendar, error) {
	out := make([]*model.Calendar, 0, len(ids))
	r.s.read(ctx, func() {
		for _, id := range ids {
			if c, ok := r.s.calendars[id]; ok {
				out = append(out, c.Clone())
			}
		}
	})
	sortByCreated(out, func(c *model.Calendar) time.Time { return c.CreatedAt }, func(c *model.Calendar) uuid.UUID { return c.ID })
	return out, nil
}

func (r *CalendarStore) Update(ctx context.Context, calendar *model.Calendar) error {
	return r.s.write(ctx, func() error {
		stored, ok := r.s.calendars[calendar.ID]
		if !ok {
			return outbound.ErrRecordNotFound
		}
		if stored.Version != calendar.Version {
			return outbound.ErrVersionConflict
		}
		calendar.Version++
		calendar.UpdatedAt = r.s.now()
		r.s.calendars[calendar.ID] = calendar.Clone()
		return nil
	})
}

func (r *CalendarStore) Touch(ctx context.Context, calendar *model.Calendar) error {
	return r.s.write(ctx, func() error {
		stored, ok := r.s.calendars[calendar.ID]
		if !ok || stored.Version != calendar.Version {
			return outbound.ErrVersionConflict
		}
		stored.Version++
		calendar.Version = stored.Version
		return nil
	})
}

func (r *CalendarStore) Delete(ctx context.Context, calendar *model.Calendar) error {
	return r.s.write(ctx, func() error {
		stored, ok := r.s.calendars[calendar.ID]
		if !ok || stored.Version != calendar.Version {
			return outbound.ErrVersionConflict
		}
		delete(r.s.calendars, calendar.ID)
		return nil
	})
}

// TaskStore implements outbound.TaskDatabasePort.
type TaskStore struct{ s *Store }

var _ outbound.TaskDatabasePort = (*TaskStore)(nil)

func (r *TaskStore) Create(ctx context.Context, task *model.Task) error {
	return r.s.write(ctx, func() error {
		now := r.s.now()
		task.CreatedAt, task.UpdatedAt = now, now
		r.s.tasks[task.ID] = task.Clone()
		return nil
	})
}

func (r *TaskStore) FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var out *model.Task
	r.s.read(ctx, func() { out = r.s.tasks[id].Clone() })
	if out == nil {
		return nil, outbound.ErrRecordNotFound
	}
	return out, nil
}

func (r *TaskStore) FindByCalendar(ctx context.Context, calendarID uuid.UUID) ([]*model.Task, error) {
	var out []*model.Task
	r.s.read(ctx, func() {
		for _, t := range r.s.tasks {
			if t.CalendarID == calendarID {
				out = append(out, t.Clone())
			}
		}
	})
	sortByCreated(out, func(t *model.Task) time.Time { return t.CreatedAt }, func(t *model.Task) uuid.UUID { return t.ID })
	return out, nil
}

func (r *TaskStore) Update(ctx context.Context, task *model.Task) error {
	return r.s.write(ctx, func() error {
		if _, ok := r.s.tasks[task.ID]; !ok {
			return outbound.ErrRecordNotFound
		}
		task.UpdatedAt = r.s.now()
		r.s.tasks[task.ID] = task.Clone()
		return nil
	})
}

func (r *TaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.write(ctx, func() error {
		delete(r.s.tasks, id)
		return nil
	})
}

func (r *TaskStore) DeleteByCalendar(ctx context.Context, calendarID uuid.UUID) error {
	return r.s.write(ctx, func() error {
		for id, t := range r.s.tasks {
			if t.CalendarID == calendarID {
				delete(r.s.tasks, id)
			}
		}
		return nil
	})
}

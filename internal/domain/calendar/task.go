package calendar

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/calshare/server/internal/domain/relation"
	"github.com/calshare/server/internal/model"
	"github.com/calshare/server/internal/port/inbound"
	"github.com/calshare/server/internal/port/outbound"
)

// ========== Task Catalog Operations ==========

// CreateTask adds a task to the calendar's catalog. Admins only.
func (d *Domain) CreateTask(ctx context.Context, actorID, calendarID uuid.UUID, in *inbound.CreateTaskInput) (*model.Task, error) {
	if err := inbound.Validate(in); err != nil {
		return nil, err
	}

	var task *model.Task
	err := d.uow.Run(ctx, "create_task", []string{relation.CalendarKey(calendarID)}, func(ctx context.Context) error {
		calendar, err := d.loadCalendar(ctx, calendarID)
		if err != nil {
			return err
		}
		if !calendar.IsAdmin(actorID) {
			return ErrNotAdmin
		}
		if len(calendar.TaskIDs) >= d.cfg.MaxTasksPerCalendar {
			return ErrTaskLimitReached
		}

		task = &model.Task{
			ID:          uuid.New(),
			CalendarID:  calendarID,
			Title:       in.Title,
			Description: in.Description,
			Options:     pq.StringArray(append([]string{}, in.Options...)),
		}
		if err := d.taskDB.Create(ctx, task); err != nil {
			return fmt.Errorf("create task: %w", err)
		}

		model.AddID(&calendar.TaskIDs, task.ID)
		return d.calendarDB.Update(ctx, calendar)
	})
	if err != nil {
		return nil, err
	}

	d.logger.Info("task created",
		zap.String("calendar_id", calendarID.String()),
		zap.String("task_id", task.ID.String()),
	)
	return task, nil
}

// UpdateTask edits a catalog task. Admins only.
func (d *Domain) UpdateTask(ctx context.Context, actorID, calendarID, taskID uuid.UUID, in *inbound.UpdateTaskInput) (*model.Task, error) {
	if err := inbound.Validate(in); err != nil {
		return nil, err
	}

	var task *model.Task
	err := d.uow.Run(ctx, "update_task", []string{relation.CalendarKey(calendarID)}, func(ctx context.Context) error {
		calendar, err := d.loadCalendar(ctx, calendarID)
		if err != nil {
			return err
		}
		if !calendar.IsAdmin(actorID) {
			return ErrNotAdmin
		}

		task, err = d.loadTask(ctx, calendar, taskID)
		if err != nil {
			return err
		}
		if in.Title != nil {
			task.Title = *in.Title
		}
		if in.Description != nil {
			task.Description = *in.Description
		}
		if in.Options != nil {
			task.Options = pq.StringArray(append([]string{}, in.Options...))
		}
		if err := d.taskDB.Update(ctx, task); err != nil {
			if errors.Is(err, outbound.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("update task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task from the catalog together with every todo
// instance that points at it. Admins only.
func (d *Domain) DeleteTask(ctx context.Context, actorID, calendarID, taskID uuid.UUID) error {
	stripped := 0
	err := d.uow.Run(ctx, "delete_task", []string{relation.CalendarKey(calendarID)}, func(ctx context.Context) error {
		stripped = 0

		calendar, err := d.loadCalendar(ctx, calendarID)
		if err != nil {
			return err
		}
		if !calendar.IsAdmin(actorID) {
			return ErrNotAdmin
		}
		if !calendar.HasTask(taskID) {
			return ErrTaskNotFound
		}

		activities, err := d.activityDB.FindByCalendar(ctx, calendarID)
		if err != nil {
			return fmt.Errorf("list activities: %w", err)
		}
		for _, activity := range activities {
			n, err := d.stripTask(ctx, activity, taskID)
			if err != nil {
				return err
			}
			stripped += n
		}

		if err := d.taskDB.Delete(ctx, taskID); err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		model.RemoveID(&calendar.TaskIDs, taskID)
		return d.calendarDB.Update(ctx, calendar)
	})
	if err != nil {
		return err
	}

	d.logger.Info("task deleted",
		zap.String("calendar_id", calendarID.String()),
		zap.String("task_id", taskID.String()),
		zap.Int("stripped_todos", stripped),
	)
	return nil
}

// stripTask drops the todos of activity that reference taskID.
func (d *Domain) stripTask(ctx context.Context, activity *model.Activity, taskID uuid.UUID) (int, error) {
	todos, err := d.todoDB.FindByActivity(ctx, activity.ID)
	if err != nil {
		return 0, fmt.Errorf("list todos: %w", err)
	}

	drop := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, todo := range todos {
		if todo.TaskID == taskID {
			drop[todo.ID] = true
			ids = append(ids, todo.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}

	days := activity.Days.Clone()
	for day, bucket := range days {
		kept := bucket[:0]
		for _, id := range bucket {
			if !drop[id] {
				kept = append(kept, id)
			}
		}
		days[day] = kept
	}
	activity.Days = days

	if err := d.todoDB.DeleteByIDs(ctx, ids); err != nil {
		return 0, fmt.Errorf("delete todos: %w", err)
	}
	if err := d.activityDB.Update(ctx, activity); err != nil {
		return 0, err
	}
	return len(ids), nil
}

// ListTasks returns the calendar's catalog. Members only.
func (d *Domain) ListTasks(ctx context.Context, actorID, calendarID uuid.UUID) ([]*model.Task, error) {
	calendar, err := d.loadCalendar(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	if !calendar.IsMember(actorID) {
		return nil, ErrNotMember
	}
	return d.taskDB.FindByCalendar(ctx, calendarID)
}

func (d *Domain) loadTask(ctx context.Context, calendar *model.Calendar, taskID uuid.UUID) (*model.Task, error) {
	if !calendar.HasTask(taskID) {
		return nil, ErrTaskNotFound
	}
	task, err := d.taskDB.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, outbound.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task.CalendarID != calendar.ID {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

package activity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/calshare/server/internal/domain/relation"
	"github.com/calshare/server/internal/model"
	"github.com/calshare/server/internal/port/inbound"
	"github.com/calshare/server/internal/port/outbound"
	"github.com/calshare/server/internal/shared/events"
)

// Domain implements the activity scheduler.
type Domain struct {
	calendarDB outbound.CalendarDatabasePort
	activityDB outbound.ActivityDatabasePort
	todoDB     outbound.TodoDatabasePort
	uow        *relation.Coordinator
	logger     *zap.Logger
}

// NewDomain creates a new activity domain.
func NewDomain(
	calendarDB outbound.CalendarDatabasePort,
	activityDB outbound.ActivityDatabasePort,
	todoDB outbound.TodoDatabasePort,
	uow *relation.Coordinator,
	logger *zap.Logger,
) *Domain {
	return &Domain{
		calendarDB: calendarDB,
		activityDB: activityDB,
		todoDB:     todoDB,
		uow:        uow,
		logger:     logger,
	}
}

var _ inbound.ActivityDomain = (*Domain)(nil)

// CreateActivity plans userID's week in a calendar. The actor is the user
// themself or an admin of the calendar.
func (d *Domain) CreateActivity(ctx context.Context, actorID, calendarID uuid.UUID, in *inbound.CreateActivityInput) (*model.ActivityOutput, error) {
	if err := inbound.Validate(in); err != nil {
		return nil, err
	}

	var (
		activity *model.Activity
		todos    []*model.Todo
	)
	keys := []string{relation.CalendarKey(calendarID), relation.UserKey(in.UserID)}
	err := d.uow.Run(ctx, "create_activity", keys, func(ctx context.Context) error {
		calendar, err := d.loadCalendar(ctx, calendarID)
		if err != nil {
			return err
		}
		if !calendar.IsMember(in.UserID) {
			return ErrUserNotMember
		}
		if actorID != in.UserID && !calendar.IsAdmin(actorID) {
			return ErrNotOwner
		}
		if err := checkTasks(calendar, in.Days); err != nil {
			return err
		}
		// membership and catalog were read, not written; pin them
		if err := d.calendarDB.Touch(ctx, calendar); err != nil {
			return err
		}

		activity = &model.Activity{
			ID:         uuid.New(),
			UserID:     in.UserID,
			CalendarID: calendarID,
		}
		todos = materialize(activity, in.Days)

		if err := d.activityDB.Create(ctx, activity); err != nil {
			return fmt.Errorf("create activity: %w", err)
		}
		if err := d.createTodos(ctx, todos); err != nil {
			return err
		}

		d.uow.Emit(ctx, events.ActivityEvent{
			BaseEvent:  events.NewBaseEvent(events.ActivityCreatedType, activity.ID, events.AggregateActivity),
			UserID:     in.UserID,
			CalendarID: calendarID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.logger.Info("activity created",
		zap.String("activity_id", activity.ID.String()),
		zap.String("calendar_id", calendarID.String()),
		zap.String("user_id", in.UserID.String()),
		zap.Int("todos", len(todos)),
	)
	return toOutput(activity, todos), nil
}

// GetActivity returns an activity to its owner.
func (d *Domain) GetActivity(ctx context.Context, actorID, activityID uuid.UUID) (*model.ActivityOutput, error) {
	activity, err := d.loadOwned(ctx, actorID, activityID)
	if err != nil {
		return nil, err
	}
	return d.resolve(ctx, activity)
}

// UpdateActivity replaces the day buckets wholesale. Old todo instances are
// discarded and new ones materialized.
func (d *Domain) UpdateActivity(ctx context.Context, actorID, activityID uuid.UUID, in *inbound.UpdateActivityInput) (*model.ActivityOutput, error) {
	if err := inbound.Validate(in); err != nil {
		return nil, err
	}

	var (
		activity *model.Activity
		todos    []*model.Todo
	)
	err := d.uow.Run(ctx, "update_activity", []string{relation.ActivityKey(activityID)}, func(ctx context.Context) error {
		var err error
		activity, err = d.loadOwned(ctx, actorID, activityID)
		if err != nil {
			return err
		}

		calendar, err := d.loadCalendar(ctx, activity.CalendarID)
		if err != nil {
			return err
		}
		if !calendar.IsMember(activity.UserID) {
			return ErrUserNotMember
		}
		if err := checkTasks(calendar, in.Days); err != nil {
			return err
		}
		if err := d.calendarDB.Touch(ctx, calendar); err != nil {
			return err
		}

		if err := d.todoDB.DeleteByActivity(ctx, activity.ID); err != nil {
			return fmt.Errorf("delete todos: %w", err)
		}
		todos = materialize(activity, in.Days)
		if err := d.activityDB.Update(ctx, activity); err != nil {
			return err
		}
		return d.createTodos(ctx, todos)
	})
	if err != nil {
		return nil, err
	}

	d.logger.Info("activity updated",
		zap.String("activity_id", activityID.String()),
		zap.Int("todos", len(todos)),
	)
	return toOutput(activity, todos), nil
}

// DeleteActivity removes an activity and its todo instances.
func (d *Domain) DeleteActivity(ctx context.Context, actorID, activityID uuid.UUID) error {
	err := d.uow.Run(ctx, "delete_activity", []string{relation.ActivityKey(activityID)}, func(ctx context.Context) error {
		activity, err := d.loadOwned(ctx, actorID, activityID)
		if err != nil {
			return err
		}
		if err := d.todoDB.DeleteByActivity(ctx, activity.ID); err != nil {
			return fmt.Errorf("delete todos: %w", err)
		}
		if err := d.activityDB.Delete(ctx, activity.ID); err != nil {
			return fmt.Errorf("delete activity: %w", err)
		}

		d.uow.Emit(ctx, events.ActivityEvent{
			BaseEvent:  events.NewBaseEvent(events.ActivityDeletedType, activity.ID, events.AggregateActivity),
			UserID:     activity.UserID,
			CalendarID: activity.CalendarID,
		})
		return nil
	})
	if err != nil {
		return err
	}

	d.logger.Info("activity deleted", zap.String("activity_id", activityID.String()))
	return nil
}

// GetTodo returns one todo instance of an owned activity.
func (d *Domain) GetTodo(ctx context.Context, actorID, activityID, todoID uuid.UUID) (*model.Todo, error) {
	if _, err := d.loadOwned(ctx, actorID, activityID); err != nil {
		return nil, err
	}
	return d.loadTodo(ctx, activityID, todoID)
}

// ToggleDone flips a todo's done flag. The owning activity's version is
// bumped so that concurrent toggles of the same week serialize.
func (d *Domain) ToggleDone(ctx context.Context, actorID, activityID, todoID uuid.UUID) (*model.Todo, error) {
	var todo *model.Todo
	err := d.uow.Run(ctx, "toggle_done", []string{relation.ActivityKey(activityID)}, func(ctx context.Context) error {
		activity, err := d.loadOwned(ctx, actorID, activityID)
		if err != nil {
			return err
		}
		todo, err = d.loadTodo(ctx, activityID, todoID)
		if err != nil {
			return err
		}

		todo.Done = !todo.Done
		if err := d.todoDB.SetDone(ctx, todo.ID, todo.Done); err != nil {
			return fmt.Errorf("set done: %w", err)
		}
		if err := d.activityDB.Update(ctx, activity); err != nil {
			return err
		}

		d.uow.Emit(ctx, events.TodoToggledEvent{
			BaseEvent: events.NewBaseEvent(events.TodoToggledType, activity.ID, events.AggregateActivity),
			TodoID:    todo.ID,
			Done:      todo.Done,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.logger.Debug("todo toggled",
		zap.String("activity_id", activityID.String()),
		zap.String("todo_id", todoID.String()),
		zap.Bool("done", todo.Done),
	)
	return todo, nil
}

// ListActivitiesForUser returns every activity of a user.
func (d *Domain) ListActivitiesForUser(ctx context.Context, userID uuid.UUID) ([]*model.ActivityOutput, error) {
	activities, err := d.activityDB.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return d.resolveAll(ctx, activities)
}

// ListActivitiesForCalendar returns every activity of a calendar to its members.
func (d *Domain) ListActivitiesForCalendar(ctx context.Context, actorID, calendarID uuid.UUID) ([]*model.ActivityOutput, error) {
	calendar, err := d.loadCalendar(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	if !calendar.IsMember(actorID) {
		return nil, ErrUserNotMember
	}

	activities, err := d.activityDB.FindByCalendar(ctx, calendarID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return d.resolveAll(ctx, activities)
}

// ========== Helpers ==========

// checkTasks requires every referenced task to be in the calendar's catalog.
func checkTasks(calendar *model.Calendar, days model.Days) error {
	for _, day := range model.Weekdays {
		for _, taskID := range days[day] {
			if !calendar.HasTask(taskID) {
				return fmt.Errorf("%w: %s", ErrUnknownTask, taskID)
			}
		}
	}
	return nil
}

// materialize creates one new todo per bucket entry, even for repeated
// task ids, and points the activity's buckets at them.
func materialize(activity *model.Activity, days model.Days) []*model.Todo {
	buckets := make(model.Days, len(model.Weekdays))
	var todos []*model.Todo
	for _, day := range model.Weekdays {
		ids := make([]uuid.UUID, 0, len(days[day]))
		for _, taskID := range days[day] {
			todo := &model.Todo{
				ID:         uuid.New(),
				ActivityID: activity.ID,
				TaskID:     taskID,
				Day:        day,
				Done:       false,
			}
			todos = append(todos, todo)
			ids = append(ids, todo.ID)
		}
		buckets[day] = ids
	}
	activity.Days = buckets
	return todos
}

func (d *Domain) createTodos(ctx context.Context, todos []*model.Todo) error {
	if len(todos) == 0 {
		return nil
	}
	if err := d.todoDB.CreateBatch(ctx, todos); err != nil {
		return fmt.Errorf("create todos: %w", err)
	}
	return nil
}

func (d *Domain) loadCalendar(ctx context.Context, id uuid.UUID) (*model.Calendar, error) {
	calendar, err := d.calendarDB.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, outbound.ErrRecordNotFound) {
			return nil, ErrCalendarNotFound
		}
		return nil, fmt.Errorf("get calendar: %w", err)
	}
	return calendar, nil
}

func (d *Domain) loadOwned(ctx context.Context, actorID, activityID uuid.UUID) (*model.Activity, error) {
	activity, err := d.activityDB.FindByID(ctx, activityID)
	if err != nil {
		if errors.Is(err, outbound.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("get activity: %w", err)
	}
	if activity.UserID != actorID {
		return nil, ErrNotOwner
	}
	return activity, nil
}

func (d *Domain) loadTodo(ctx context.Context, activityID, todoID uuid.UUID) (*model.Todo, error) {
	todo, err := d.todoDB.FindByID(ctx, todoID)
	if err != nil {
		if errors.Is(err, outbound.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("get todo: %w", err)
	}
	if todo.ActivityID != activityID {
		return nil, ErrTodoNotFound
	}
	return todo, nil
}

func (d *Domain) resolve(ctx context.Context, activity *model.Activity) (*model.ActivityOutput, error) {
	todos, err := d.todoDB.FindByActivity(ctx, activity.ID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return toOutput(activity, todos), nil
}

func (d *Domain) resolveAll(ctx context.Context, activities []*model.Activity) ([]*model.ActivityOutput, error) {
	out := make([]*model.ActivityOutput, 0, len(activities))
	for _, activity := range activities {
		o, err := d.resolve(ctx, activity)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

// toOutput resolves the bucket ids against todos, keeping bucket order.
func toOutput(activity *model.Activity, todos []*model.Todo) *model.ActivityOutput {
	byID := make(map[uuid.UUID]*model.Todo, len(todos))
	for _, t := range todos {
		byID[t.ID] = t
	}

	days := make(map[model.Weekday][]*model.Todo, len(model.Weekdays))
	for _, day := range model.Weekdays {
		resolved := make([]*model.Todo, 0, len(activity.Days[day]))
		for _, id := range activity.Days[day] {
			if t, ok := byID[id]; ok {
				resolved = append(resolved, t)
			}
		}
		days[day] = resolved
	}

	return &model.ActivityOutput{
		ID:         activity.ID,
		UserID:     activity.UserID,
		CalendarID: activity.CalendarID,
		Days:       days,
		CreatedAt:  activity.CreatedAt,
		UpdatedAt:  activity.UpdatedAt,
	}
}

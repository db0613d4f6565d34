package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calshare/server/internal/model"
	"github.com/calshare/server/internal/port/outbound"
)

// ========== Calendar Adapter ==========

// calendarAdapter implements outbound.CalendarDatabasePort.
type calendarAdapter struct {
	db *gorm.DB
}

// NewCalendarAdapter creates a new calendar database adapter.
func NewCalendarAdapter(db *gorm.DB) outbound.CalendarDatabasePort {
	return &calendarAdapter{db: db}
}

func (a *calendarAdapter) Create(ctx context.Context, c *model.Calendar) error {
	c.Version = 1
	return conn(ctx, a.db).Create(c).Error
}

func (a *calendarAdapter) FindByID(ctx context.Context, id uuid.UUID) (*model.Calendar, error) {
	var c model.Calendar
	if err := conn(ctx, a.db).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (a *calendarAdapter) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Calendar, error) {
	calendars := []*model.Calendar{}
	if len(ids) == 0 {
		return calendars, nil
	}
	err := conn(ctx, a.db).
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&calendars).Error
	return calendars, err
}

func (a *calendarAdapter) Update(ctx context.Context, c *model.Calendar) error {
	now := time.Now()
	err := versioned(ctx, a.db, &model.Calendar{}, c.ID, &c.Version, map[string]any{
		"title":       c.Title,
		"description": c.Description,
		"member_ids":  c.MemberIDs,
		"admin_ids":   c.AdminIDs,
		"task_ids":    c.TaskIDs,
		"updated_at":  now,
	})
	if err != nil {
		return err
	}
	c.UpdatedAt = now
	return nil
}

func (a *calendarAdapter) Touch(ctx context.Context, c *model.Calendar) error {
	return versioned(ctx, a.db, &model.Calendar{}, c.ID, &c.Version, map[string]any{})
}

func (a *calendarAdapter) Delete(ctx context.Context, c *model.Calendar) error {
	res := conn(ctx, a.db).
		Where("id = ? AND version = ?", c.ID, c.Version).
		Delete(&model.Calendar{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return outbound.ErrVersionConflict
	}
	return nil
}

// ========== Task Adapter ==========

// taskAdapter implements outbound.TaskDatabasePort.
type taskAdapter struct {
	db *gorm.DB
}

// NewTaskAdapter creates a new task database adapter.
func NewTaskAdapter(db *gorm.DB) outbound.TaskDatabasePort {
	return &taskAdapter{db: db}
}

func (a *taskAdapter) Create(ctx context.Context, t *model.Task) error {
	return conn(ctx, a.db).Create(t).Error
}

func (a *taskAdapter) FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var t model.Task
	if err := conn(ctx, a.db).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (a *taskAdapter) FindByCalendar(ctx context.Context, calendarID uuid.UUID) ([]*model.Task, error) {
	tasks := []*model.Task{}
	err := conn(ctx, a.db).
		Where("calendar_id = ?", calendarID).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

// Update never inserts: a task deleted concurrently stays deleted.
func (a *taskAdapter) Update(ctx context.Context, t *model.Task) error {
	now := time.Now()
	res := conn(ctx, a.db).Model(&model.Task{}).
		Where("id = ?", t.ID).
		Updates(map[string]any{
			"title":       t.Title,
			"description": t.Description,
			"options":     t.Options,
			"updated_at":  now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return outbound.ErrRecordNotFound
	}
	t.UpdatedAt = now
	return nil
}

func (a *taskAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, a.db).Where("id = ?", id).Delete(&model.Task{}).Error
}

func (a *taskAdapter) DeleteByCalendar(ctx context.Context, calendarID uuid.UUID) error {
	return conn(ctx, a.db).Where("calendar_id = ?", calendarID).Delete(&model.Task{}).Error
}

// Compile-time interface checks
var (
	_ outbound.CalendarDatabasePort = (*calendarAdapter)(nil)
	_ outbound.TaskDatabasePort     = (*taskAdapter)(nil)
)

package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calshare/server/internal/model"
	"github.com/calshare/server/internal/port/outbound"
)

// ========== Activity Adapter ==========

// activityAdapter implements outbound.ActivityDatabasePort.
type activityAdapter struct {
	db *gorm.DB
}

// NewActivityAdapter creates a new activity database adapter.
func NewActivityAdapter(db *gorm.DB) outbound.ActivityDatabasePort {
	return &activityAdapter{db: db}
}

func (a *activityAdapter) Create(ctx context.Context, act *model.Activity) error {
	act.Version = 1
	return conn(ctx, a.db).Create(act).Error
}

func (a *activityAdapter) FindByID(ctx context.Context, id uuid.UUID) (*model.Activity, error) {
	var act model.Activity
	if err := conn(ctx, a.db).Where("id = ?", id).First(&act).Error; err != nil {
		return nil, notFound(err)
	}
	return &act, nil
}

func (a *activityAdapter) find(ctx context.Context, query string, args ...any) ([]*model.Activity, error) {
	activities := []*model.Activity{}
	err := conn(ctx, a.db).
		Where(query, args...).
		Order("created_at ASC").
		Find(&activities).Error
	return activities, err
}

func (a *activityAdapter) FindByUser(ctx context.Context, userID uuid.UUID) ([]*model.Activity, error) {
	return a.find(ctx, "user_id = ?", userID)
}

func (a *activityAdapter) FindByCalendar(ctx context.Context, calendarID uuid.UUID) ([]*model.Activity, error) {
	return a.find(ctx, "calendar_id = ?", calendarID)
}

func (a *activityAdapter) FindByUserAndCalendar(ctx context.Context, userID, calendarID uuid.UUID) ([]*model.Activity, error) {
	return a.find(ctx, "user_id = ? AND calendar_id = ?", userID, calendarID)
}

// Update writes the day buckets through the model so the json serializer
// applies, guarded by the version column.
func (a *activityAdapter) Update(ctx context.Context, act *model.Activity) error {
	now := time.Now()
	res := conn(ctx, a.db).Model(&model.Activity{ID: act.ID}).
		Where("version = ?", act.Version).
		Select("days", "version", "updated_at").
		Updates(&model.Activity{Days: act.Days, Version: act.Version + 1, UpdatedAt: now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return outbound.ErrVersionConflict
	}
	act.Version++
	act.UpdatedAt = now
	return nil
}

func (a *activityAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, a.db).Where("id = ?", id).Delete(&model.Activity{}).Error
}

// ========== Todo Adapter ==========

// todoAdapter implements outbound.TodoDatabasePort.
type todoAdapter struct {
	db *gorm.DB
}

// NewTodoAdapter creates a new todo database adapter.
func NewTodoAdapter(db *gorm.DB) outbound.TodoDatabasePort {
	return &todoAdapter{db: db}
}

func (a *todoAdapter) CreateBatch(ctx context.Context, todos []*model.Todo) error {
	if len(todos) == 0 {
		return nil
	}
	// Done is written explicitly; a zero bool would otherwise fall back to the column default.
	return conn(ctx, a.db).Select("*").CreateInBatches(todos, 100).Error
}

func (a *todoAdapter) FindByID(ctx context.Context, id uuid.UUID) (*model.Todo, error) {
	var t model.Todo
	if err := conn(ctx, a.db).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (a *todoAdapter) FindByActivity(ctx context.Context, activityID uuid.UUID) ([]*model.Todo, error) {
	todos := []*model.Todo{}
	err := conn(ctx, a.db).
		Where("activity_id = ?", activityID).
		Order("created_at ASC").
		Find(&todos).Error
	return todos, err
}

func (a *todoAdapter) SetDone(ctx context.Context, id uuid.UUID, done bool) error {
	res := conn(ctx, a.db).Model(&model.Todo{}).
		Where("id = ?", id).
		Updates(map[string]any{"done": done, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return outbound.ErrRecordNotFound
	}
	return nil
}

func (a *todoAdapter) DeleteByActivity(ctx context.Context, activityID uuid.UUID) error {
	return conn(ctx, a.db).Where("activity_id = ?", activityID).Delete(&model.Todo{}).Error
}

func (a *todoAdapter) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return conn(ctx, a.db).Where("id IN ?", ids).Delete(&model.Todo{}).Error
}

// Compile-time interface checks
var (
	_ outbound.ActivityDatabasePort = (*activityAdapter)(nil)
	_ outbound.TodoDatabasePort     = (*todoAdapter)(nil)
)

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calshare/server/internal/model"
	"github.com/calshare/server/internal/port/outbound"
)

// invitationAdapter implements outbound.InvitationDatabasePort.
type invitationAdapter struct {
	db *gorm.DB
}

// NewInvitationAdapter creates a new invitation database adapter.
func NewInvitationAdapter(db *gorm.DB) outbound.InvitationDatabasePort {
	return &invitationAdapter{db: db}
}

// Create inserts an invitation. The partial unique index on pending
// (calendar_id, to_id) rejects a racing duplicate; that surfaces as a
// version conflict so the unit of work retries and observes the winner.
func (a *invitationAdapter) Create(ctx context.Context, inv *model.Invitation) error {
	inv.Version = 1
	err := conn(ctx, a.db).Create(inv).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return outbound.ErrVersionConflict
	}
	return err
}

func (a *invitationAdapter) FindByID(ctx context.Context, id uuid.UUID) (*model.Invitation, error) {
	var inv model.Invitation
	if err := conn(ctx, a.db).Where("id = ?", id).First(&inv).Error; err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

func (a *invitationAdapter) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Invitation, error) {
	invitations := []*model.Invitation{}
	if len(ids) == 0 {
		return invitations, nil
	}
	err := conn(ctx, a.db).
		Where("id IN ?", ids).
		Order("created_at ASC").
		Find(&invitations).Error
	return invitations, err
}

func (a *invitationAdapter) FindPending(ctx context.Context, calendarID, toID uuid.UUID) (*model.Invitation, error) {
	var inv model.Invitation
	err := conn(ctx, a.db).
		Where("calendar_id = ? AND to_id = ? AND status = ?", calendarID, toID, model.InvitationStatusPending).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (a *invitationAdapter) FindByCalendar(ctx context.Context, calendarID uuid.UUID) ([]*model.Invitation, error) {
	invitations := []*model.Invitation{}
	err := conn(ctx, a.db).
		Where("calendar_id = ?", calendarID).
		Order("created_at ASC").
		Find(&invitations).Error
	return invitations, err
}

func (a *invitationAdapter) Update(ctx context.Context, inv *model.Invitation) error {
	now := time.Now()
	err := versioned(ctx, a.db, &model.Invitation{}, inv.ID, &inv.Version, map[string]any{
		"status":       inv.Status,
		"visible":      inv.Visible,
		"responded_at": inv.RespondedAt,
		"updated_at":   now,
	})
	if err != nil {
		return err
	}
	inv.UpdatedAt = now
	return nil
}

func (a *invitationAdapter) DeleteByCalendar(ctx context.Context, calendarID uuid.UUID) error {
	return conn(ctx, a.db).Where("calendar_id = ?", calendarID).Delete(&model.Invitation{}).Error
}

// Compile-time check
var _ outbound.InvitationDatabasePort = (*invitationAdapter)(nil)

package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/calshare/server/internal/model"
	"github.com/calshare/server/internal/port/outbound"
)

// userAdapter implements outbound.UserDatabasePort.
type userAdapter struct {
	db *gorm.DB
}

// NewUserAdapter creates a new user database adapter.
func NewUserAdapter(db *gorm.DB) outbound.UserDatabasePort {
	return &userAdapter{db: db}
}

func (a *userAdapter) Create(ctx context.Context, u *model.User) error {
	u.Version = 1
	err := conn(ctx, a.db).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return outbound.ErrDuplicateKey
	}
	return err
}

func (a *userAdapter) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	if err := conn(ctx, a.db).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (a *userAdapter) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := conn(ctx, a.db).
		Where("email = ?", strings.ToLower(email)).
		First(&u).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (a *userAdapter) Update(ctx context.Context, u *model.User) error {
	now := time.Now()
	err := versioned(ctx, a.db, &model.User{}, u.ID, &u.Version, map[string]any{
		"name":           u.Name,
		"password_hash":  u.PasswordHash,
		"calendar_ids":   u.CalendarIDs,
		"invitation_ids": u.InvitationIDs,
		"updated_at":     now,
	})
	if err != nil {
		return err
	}
	u.UpdatedAt = now
	return nil
}

// Compile-time check
var _ outbound.UserDatabasePort = (*userAdapter)(nil)

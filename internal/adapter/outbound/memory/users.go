package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/calshare/server/internal/model"
	"github.com/calshare/server/internal/port/outbound"
)

// UserStore implements outbound.UserDatabasePort.
type UserStore struct{ s *Store }

var _ outbound.UserDatabasePort = (*UserStore)(nil)

func (r *UserStore) Create(ctx context.Context, user *model.User) error {
	return r.s.write(ctx, func() error {
		if _, ok := r.s.users[user.ID]; ok {
			return outbound.ErrVersionConflict
		}
		for _, u := range r.s.users {
			if strings.EqualFold(u.Email, user.Email) {
				return outbound.ErrDuplicateKey
			}
		}
		now := r.s.now()
		user.CreatedAt, user.UpdatedAt = now, now
		user.Version = 1
		r.s.users[user.ID] = user.Clone()
		return nil
	})
}

func (r *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var out *model.User
	r.s.read(ctx, func() { out = r.s.users[id].Clone() })
	if out == nil {
		return nil, outbound.ErrRecordNotFound
	}
	return out, nil
}

func (r *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var out *model.User
	r.s.read(ctx, func() {
		for _, u := range r.s.users {
			if strings.EqualFold(u.Email, email) {
				out = u.Clone()
				return
			}
		}
	})
	if out == nil {
		return nil, outbound.ErrRecordNotFound
	}
	return out, nil
}

func (r *UserStore) Update(ctx context.Context, user *model.User) error {
	return r.s.write(ctx, func() error {
		stored, ok := r.s.users[user.ID]
		if !ok {
			return outbound.ErrRecordNotFound
		}
		if stored.Version != user.Version {
			return outbound.ErrVersionConflict
		}
		user.Version++
		user.UpdatedAt = r.s.now()
		r.s.users[user.ID] = user.Clone()
		return nil
	})
}

package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/calshare/server/internal/model"
	"github.com/calshare/server/internal/port/outbound"
)

// InvitationStore implements outbound.InvitationDatabasePort.
type InvitationStore struct{ s *Store }

var _ outbound.InvitationDatabasePort = (*InvitationStore)(nil)

func (r *InvitationStore) pendingExists(calendarID, toID, except uuid.UUID) bool {
	for _, inv := range r.s.invitations {
		if inv.ID != except && inv.CalendarID == calendarID && inv.ToID == toID && inv.IsPending() {
			return true
		}
	}
	return false
}

func (r *InvitationStore) Create(ctx context.Context, invitation *model.Invitation) error {
	return r.s.write(ctx, func() error {
		if _, ok := r.s.invitations[invitation.ID]; ok {
			return outbound.ErrVersionConflict
		}
		if invitation.IsPending() && r.pendingExists(invitation.CalendarID, invitation.ToID, invitation.ID) {
			return outbound.ErrVersionConflict
		}
		now := r.s.now()
		invitation.CreatedAt, invitation.UpdatedAt = now, now
		invitation.Version = 1
		r.s.invitations[invitation.ID] = invitation.Clone()
		return nil
	})
}

func (r *InvitationStore) FindByID(ctx context.Context, id uuid.UUID) (*model.Invitation, error) {
	var out *model.Invitation
	r.s.read(ctx, func() { out = r.s.invitations[id].Clone() })
	if out == nil {
		return nil, outbound.ErrRecordNotFound
	}
	return out, nil
}

func (r *InvitationStore) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Invitation, error) {
	out := make([]*model.Invitation, 0, len(ids))
	r.s.read(ctx, func() {
		for _, id := range ids {
			if inv, ok := r.s.invitations[id]; ok {
				out = append(out, inv.Clone())
			}
		}
	})
	sortInvitations(out)
	return out, nil
}

func (r *InvitationStore) FindPending(ctx context.Context, calendarID, toID uuid.UUID) (*model.Invitation, error) {
	var out *model.Invitation
	r.s.read(ctx, func() {
		for _, inv := range r.s.invitations {
			if inv.CalendarID == calendarID && inv.ToID == toID && inv.IsPending() {
				out = inv.Clone()
				return
			}
		}
	})
	return out, nil
}

func (r *InvitationStore) FindByCalendar(ctx context.Context, calendarID uuid.UUID) ([]*model.Invitation, error) {
	var out []*model.Invitation
	r.s.read(ctx, func() {
		for _, inv := range r.s.invitations {
			if inv.CalendarID == calendarID {
				out = append(out, inv.Clone())
			}
		}
	})
	sortInvitations(out)
	return out, nil
}

func (r *InvitationStore) Update(ctx context.Context, invitation *model.Invitation) error {
	return r.s.write(ctx, func() error {
		stored, ok := r.s.invitations[invitation.ID]
		if !ok {
			return outbound.ErrRecordNotFound
		}
		if stored.Version != invitation.Version {
			return outbound.ErrVersionConflict
		}
		invitation.Version++
		invitation.UpdatedAt = r.s.now()
		r.s.invitations[invitation.ID] = invitation.Clone()
		return nil
	})
}

func (r *InvitationStore) DeleteByCalendar(ctx context.Context, calendarID uuid.UUID) error {
	return r.s.write(ctx, func() error {
		for id, inv := range r.s.invitations {
			if inv.CalendarID == calendarID {
				delete(r.s.invitations, id)
			}
		}
		return nil
	})
}

func sortInvitations(rows []*model.Invitation) {
	sortByCreated(rows, func(i *model.Invitation) time.Time { return i.CreatedAt }, func(i *model.Invitation) uuid.UUID { return i.ID })
}

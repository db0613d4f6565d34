package invitation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/calshare/server/internal/domain/relation"
	"github.com/calshare/server/internal/model"
	"github.com/calshare/server/internal/port/inbound"
	"github.com/calshare/server/internal/port/outbound"
	"github.com/calshare/server/internal/shared/events"
)

// Domain implements the invitation ledger.
//
// An invitation starts Pending and moves exactly once, to Accepted or
// Rejected. Accepting is the only way a user joins a calendar.
type Domain struct {
	userDB       outbound.UserDatabasePort
	calendarDB   outbound.CalendarDatabasePort
	invitationDB outbound.InvitationDatabasePort
	uow          *relation.Coordinator
	logger       *zap.Logger
	now          func() time.Time
}

// NewDomain creates a new invitation domain.
func NewDomain(
	userDB outbound.UserDatabasePort,
	calendarDB outbound.CalendarDatabasePort,
	invitationDB outbound.InvitationDatabasePort,
	uow *relation.Coordinator,
	logger *zap.Logger,
) *Domain {
	return &Domain{
		userDB:       userDB,
		calendarDB:   calendarDB,
		invitationDB: invitationDB,
		uow:          uow,
		logger:       logger,
		now:          time.Now,
	}
}

var _ inbound.InvitationDomain = (*Domain)(nil)

// CreateInvitation issues a pending invitation and records it on the invitee.
// The calendar title is copied into the invitation as it is now.
func (d *Domain) CreateInvitation(ctx context.Context, in *inbound.CreateInvitationInput) (*model.Invitation, error) {
	if err := inbound.Validate(in); err != nil {
		return nil, err
	}

	keys := []string{relation.CalendarKey(in.CalendarID), relation.UserKey(in.ToID)}

	var invitation *model.Invitation
	err := d.uow.Run(ctx, "create_invitation", keys, func(ctx context.Context) error {
		calendar, err := d.loadCalendar(ctx, in.CalendarID)
		if err != nil {
			return err
		}
		if !calendar.IsAdmin(in.FromID) {
			return ErrNotCalendarAdmin
		}

		invitee, err := d.loadUser(ctx, in.ToID)
		if err != nil {
			return err
		}
		if calendar.IsMember(invitee.ID) {
			return ErrAlreadyMember
		}
		// conflicts with a concurrent delete of the calendar
		if err := d.calendarDB.Touch(ctx, calendar); err != nil {
			return err
		}

		pending, err := d.invitationDB.FindPending(ctx, calendar.ID, invitee.ID)
		if err != nil {
			return fmt.Errorf("find pending invitation: %w", err)
		}
		if pending != nil {
			return ErrInvitationAlreadyPending
		}

		invitation = &model.Invitation{
			ID:           uuid.New(),
			CalendarID:   calendar.ID,
			CalendarName: calendar.Title,
			FromID:       in.FromID,
			ToID:         invitee.ID,
			Message:      in.Message,
			Status:       model.InvitationStatusPending,
			Visible:      true,
		}
		if err := d.invitationDB.Create(ctx, invitation); err != nil {
			return fmt.Errorf("create invitation: %w", err)
		}

		relation.LinkInvitation(invitee, invitation)
		if err := d.userDB.Update(ctx, invitee); err != nil {
			return fmt.Errorf("update invitee: %w", err)
		}

		d.uow.Emit(ctx, events.InvitationCreatedEvent{
			BaseEvent:  events.NewBaseEvent(events.InvitationCreatedType, invitation.ID, events.AggregateInvitation),
			CalendarID: calendar.ID,
			FromID:     in.FromID,
			ToID:       invitee.ID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.logger.Info("invitation created",
		zap.String("invitation_id", invitation.ID.String()),
		zap.String("calendar_id", in.CalendarID.String()),
		zap.String("to_id", in.ToID.String()),
	)
	return invitation, nil
}

// Accept answers a pending invitation positively; the invitee joins the calendar.
func (d *Domain) Accept(ctx context.Context, actorID, invitationID uuid.UUID) (*model.Invitation, error) {
	var invitation *model.Invitation
	err := d.uow.Run(ctx, "accept_invitation", []string{relation.InvitationKey(invitationID)}, func(ctx context.Context) error {
		var err error
		invitation, err = d.loadPendingForActor(ctx, actorID, invitationID)
		if err != nil {
			return err
		}

		user, err := d.loadUser(ctx, actorID)
		if err != nil {
			return err
		}
		calendar, err := d.loadCalendar(ctx, invitation.CalendarID)
		if err != nil {
			return err
		}

		relation.UnlinkInvitation(user, invitation.ID)
		relation.LinkMembership(user, calendar)
		d.answer(invitation, model.InvitationStatusAccepted)

		if err := d.invitationDB.Update(ctx, invitation); err != nil {
			return err
		}
		if err := d.userDB.Update(ctx, user); err != nil {
			return err
		}
		if err := d.calendarDB.Update(ctx, calendar); err != nil {
			return err
		}

		d.uow.Emit(ctx, events.InvitationAnsweredEvent{
			BaseEvent:  events.NewBaseEvent(events.InvitationAcceptedType, invitation.ID, events.AggregateInvitation),
			CalendarID: calendar.ID,
			ToID:       actorID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.logger.Info("invitation accepted",
		zap.String("invitation_id", invitationID.String()),
		zap.String("calendar_id", invitation.CalendarID.String()),
		zap.String("user_id", actorID.String()),
	)
	return invitation, nil
}

// Reject answers a pending invitation negatively. Membership is untouched.
func (d *Domain) Reject(ctx context.Context, actorID, invitationID uuid.UUID) (*model.Invitation, error) {
	var invitation *model.Invitation
	err := d.uow.Run(ctx, "reject_invitation", []string{relation.InvitationKey(invitationID)}, func(ctx context.Context) error {
		var err error
		invitation, err = d.loadPendingForActor(ctx, actorID, invitationID)
		if err != nil {
			return err
		}

		user, err := d.loadUser(ctx, actorID)
		if err != nil {
			return err
		}

		relation.UnlinkInvitation(user, invitation.ID)
		d.answer(invitation, model.InvitationStatusRejected)

		if err := d.invitationDB.Update(ctx, invitation); err != nil {
			return err
		}
		if err := d.userDB.Update(ctx, user); err != nil {
			return err
		}

		d.uow.Emit(ctx, events.InvitationAnsweredEvent{
			BaseEvent:  events.NewBaseEvent(events.InvitationRejectedType, invitation.ID, events.AggregateInvitation),
			CalendarID: invitation.CalendarID,
			ToID:       actorID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.logger.Info("invitation rejected",
		zap.String("invitation_id", invitationID.String()),
		zap.String("user_id", actorID.String()),
	)
	return invitation, nil
}

// ToggleVisible flips whether the invitee sees the invitation in their list.
// It is independent of the invitation status.
func (d *Domain) ToggleVisible(ctx context.Context, actorID, invitationID uuid.UUID) (*model.Invitation, error) {
	var invitation *model.Invitation
	err := d.uow.Run(ctx, "toggle_invitation_visibility", []string{relation.InvitationKey(invitationID)}, func(ctx context.Context) error {
		var err error
		invitation, err = d.Get(ctx, actorID, invitationID)
		if err != nil {
			return err
		}
		invitation.Visible = !invitation.Visible
		return d.invitationDB.Update(ctx, invitation)
	})
	if err != nil {
		return nil, err
	}
	return invitation, nil
}

// Get returns an invitation to its invitee.
func (d *Domain) Get(ctx context.Context, actorID, invitationID uuid.UUID) (*model.Invitation, error) {
	invitation, err := d.invitationDB.FindByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, outbound.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("get invitation: %w", err)
	}
	if invitation.ToID != actorID {
		return nil, ErrNotInvitee
	}
	return invitation, nil
}

// ListForUser returns the invitations still awaiting the user's answer.
func (d *Domain) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Invitation, error) {
	user, err := d.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return d.invitationDB.FindByIDs(ctx, model.ParseIDs(user.InvitationIDs))
}

// ListForCalendar returns every invitation of a calendar. Admins only.
func (d *Domain) ListForCalendar(ctx context.Context, actorID, calendarID uuid.UUID) ([]*model.Invitation, error) {
	calendar, err := d.loadCalendar(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	if !calendar.IsAdmin(actorID) {
		return nil, ErrNotCalendarAdmin
	}
	return d.invitationDB.FindByCalendar(ctx, calendarID)
}

// loadPendingForActor enforces the invitee check before the state check so
// strangers cannot probe an invitation's status.
func (d *Domain) loadPendingForActor(ctx context.Context, actorID, invitationID uuid.UUID) (*model.Invitation, error) {
	invitation, err := d.Get(ctx, actorID, invitationID)
	if err != nil {
		return nil, err
	}
	if invitation.Status.IsTerminal() {
		return nil, ErrInvitationAlreadyProcessed
	}
	return invitation, nil
}

func (d *Domain) answer(invitation *model.Invitation, status model.InvitationStatus) {
	now := d.now()
	invitation.Status = status
	invitation.RespondedAt = &now
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

func (d *Domain) loadUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := d.userDB.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, outbound.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

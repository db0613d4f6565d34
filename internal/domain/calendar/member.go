package calendar

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

// ========== Member Operations ==========

// AddMembers invites each target into the calendar. Admins and the founder only.
//
// Targets are handled one by one. A target that does not exist is reported
// as not found without failing the batch; targets that are already members
// or already hold a pending invitation are skipped.
func (d *Domain) AddMembers(ctx context.Context, actorID, calendarID uuid.UUID, in *inbound.AddMembersInput) (*inbound.AddMembersResult, error) {
	if err := inbound.Validate(in); err != nil {
		return nil, err
	}

	var result *inbound.AddMembersResult
	err := d.uow.Run(ctx, "add_members", []string{relation.CalendarKey(calendarID)}, func(ctx context.Context) error {
		result = &inbound.AddMembersResult{CalendarID: calendarID}

		calendar, err := d.loadCalendar(ctx, calendarID)
		if err != nil {
			return err
		}
		if !calendar.IsAdmin(actorID) {
			return ErrNotAdmin
		}

		for _, targetID := range in.MemberIDs {
			res, err := d.inviteOne(ctx, calendar, actorID, targetID, in.Message)
			if err != nil {
				return err
			}
			result.Results = append(result.Results, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.logger.Info("members invited",
		zap.String("calendar_id", calendarID.String()),
		zap.String("actor_id", actorID.String()),
		zap.Int("targets", len(in.MemberIDs)),
		zap.Int("invited", result.Invited()),
	)
	return result, nil
}

func (d *Domain) inviteOne(ctx context.Context, calendar *model.Calendar, actorID, targetID uuid.UUID, message string) (*inbound.MemberInviteResult, error) {
	res := &inbound.MemberInviteResult{UserID: targetID}

	if _, err := d.userDB.FindByID(ctx, targetID); err != nil {
		if errors.Is(err, outbound.ErrRecordNotFound) {
			res.Status = inbound.MemberNotFound
			return res, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if calendar.IsMember(targetID) {
		res.Status = inbound.MemberSkippedMember
		return res, nil
	}

	pending, err := d.invitationDB.FindPending(ctx, calendar.ID, targetID)
	if err != nil {
		return nil, fmt.Errorf("find pending invitation: %w", err)
	}
	if pending != nil {
		res.Status = inbound.MemberSkippedPending
		return res, nil
	}

	invitation, err := d.invitations.CreateInvitation(ctx, &inbound.CreateInvitationInput{
		CalendarID: calendar.ID,
		FromID:     actorID,
		ToID:       targetID,
		Message:    message,
	})
	if err != nil {
		return nil, err
	}

	res.Status = inbound.MemberInvited
	res.InvitationID = &invitation.ID
	return res, nil
}

// DeleteMembers removes members from the calendar. Admins and the founder may
// remove anyone but the founder; any member may remove themself.
func (d *Domain) DeleteMembers(ctx context.Context, actorID, calendarID uuid.UUID, in *inbound.DeleteMembersInput) error {
	if err := inbound.Validate(in); err != nil {
		return err
	}

	var removed []uuid.UUID
	err := d.uow.Run(ctx, "delete_members", []string{relation.CalendarKey(calendarID)}, func(ctx context.Context) error {
		removed = nil

		calendar, err := d.loadCalendar(ctx, calendarID)
		if err != nil {
			return err
		}
		if !calendar.IsAdmin(actorID) && !onlySelf(actorID, in.MemberIDs) {
			return ErrNotAdmin
		}
		for _, id := range in.MemberIDs {
			if calendar.IsFounder(id) {
				return ErrFounderProtected
			}
		}

		users := newUserSet(d.userDB)
		for _, targetID := range in.MemberIDs {
			if !calendar.IsMember(targetID) {
				continue
			}

			user, err := users.get(ctx, targetID)
			if err != nil {
				return err
			}
			if user == nil {
				// dangling member id; only the calendar side exists
				user = &model.User{ID: targetID}
				relation.UnlinkMembership(user, calendar)
			} else if relation.UnlinkMembership(user, calendar) {
				users.markDirty(targetID)
			}

			activities, err := d.activityDB.FindByUserAndCalendar(ctx, targetID, calendarID)
			if err != nil {
				return fmt.Errorf("list activities: %w", err)
			}
			for _, activity := range activities {
				if err := d.deleteActivity(ctx, activity.ID); err != nil {
					return err
				}
			}
			removed = append(removed, targetID)
		}

		if len(removed) == 0 {
			return nil
		}
		if err := d.calendarDB.Update(ctx, calendar); err != nil {
			return err
		}
		if err := users.save(ctx); err != nil {
			return err
		}

		d.uow.Emit(ctx, events.MembersRemovedEvent{
			BaseEvent:  events.NewBaseEvent(events.MembersRemovedType, calendarID, events.AggregateCalendar),
			ActorID:    actorID,
			RemovedIDs: removed,
		})
		return nil
	})
	if err != nil {
		return err
	}

	d.logger.Info("members removed",
		zap.String("calendar_id", calendarID.String()),
		zap.String("actor_id", actorID.String()),
		zap.Int("removed", len(removed)),
	)
	return nil
}

func onlySelf(actorID uuid.UUID, targets []uuid.UUID) bool {
	for _, id := range targets {
		if id != actorID {
			return false
		}
	}
	return len(targets) > 0
}

// PromoteAdmin grants admin rights to a member. Founder only.
func (d *Domain) PromoteAdmin(ctx context.Context, actorID, calendarID, userID uuid.UUID) (*model.Calendar, error) {
	return d.changeAdmin(ctx, "promote_admin", actorID, calendarID, userID, func(calendar *model.Calendar) (bool, error) {
		if !calendar.IsMember(userID) {
			return false, ErrTargetNotMember
		}
		return relation.GrantAdmin(calendar, userID), nil
	})
}

// DemoteAdmin revokes admin rights. Founder only; the founder stays admin.
func (d *Domain) DemoteAdmin(ctx context.Context, actorID, calendarID, userID uuid.UUID) (*model.Calendar, error) {
	return d.changeAdmin(ctx, "demote_admin", actorID, calendarID, userID, func(calendar *model.Calendar) (bool, error) {
		if calendar.IsFounder(userID) {
			return false, ErrFounderProtected
		}
		return relation.RevokeAdmin(calendar, userID), nil
	})
}

func (d *Domain) changeAdmin(
	ctx context.Context,
	op string,
	actorID, calendarID, userID uuid.UUID,
	apply func(*model.Calendar) (bool, error),
) (*model.Calendar, error) {
	var calendar *model.Calendar
	err := d.uow.Run(ctx, op, []string{relation.CalendarKey(calendarID)}, func(ctx context.Context) error {
		var err error
		calendar, err = d.loadCalendar(ctx, calendarID)
		if err != nil {
			return err
		}
		if !calendar.IsFounder(actorID) {
			return ErrNotFounder
		}

		changed, err := apply(calendar)
		if err != nil || !changed {
			return err
		}
		return d.calendarDB.Update(ctx, calendar)
	})
	if err != nil {
		return nil, err
	}

	d.logger.Info("calendar admins changed",
		zap.String("calendar_id", calendarID.String()),
		zap.String("operation", op),
		zap.String("user_id", userID.String()),
	)
	return calendar, nil
}

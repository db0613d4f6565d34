package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/calshare/server/internal/domain/relation"
	"github.com/calshare/server/internal/model"
	"github.com/calshare/server/internal/port/inbound"
	"github.com/calshare/server/internal/port/outbound"
	"github.com/calshare/server/internal/shared/events"
)

// InvitationIssuer creates invitations on behalf of the registry.
type InvitationIssuer interface {
	CreateInvitation(ctx context.Context, input *inbound.CreateInvitationInput) (*model.Invitation, error)
}

// Domain implements the calendar registry.
type Domain struct {
	userDB       outbound.UserDatabasePort
	calendarDB   outbound.CalendarDatabasePort
	taskDB       outbound.TaskDatabasePort
	invitationDB outbound.InvitationDatabasePort
	activityDB   outbound.ActivityDatabasePort
	todoDB       outbound.TodoDatabasePort
	invitations  InvitationIssuer
	uow          *relation.Coordinator
	cfg          *Config
	logger       *zap.Logger
}

// NewDomain creates a new calendar domain.
func NewDomain(
	userDB outbound.UserDatabasePort,
	calendarDB outbound.CalendarDatabasePort,
	taskDB outbound.TaskDatabasePort,
	invitationDB outbound.InvitationDatabasePort,
	activityDB outbound.ActivityDatabasePort,
	todoDB outbound.TodoDatabasePort,
	invitations InvitationIssuer,
	uow *relation.Coordinator,
	cfg *Config,
	logger *zap.Logger,
) *Domain {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	_ = cfg.Validate()

	return &Domain{
		userDB:       userDB,
		calendarDB:   calendarDB,
		taskDB:       taskDB,
		invitationDB: invitationDB,
		activityDB:   activityDB,
		todoDB:       todoDB,
		invitations:  invitations,
		uow:          uow,
		cfg:          cfg,
		logger:       logger,
	}
}

var _ inbound.CalendarDomain = (*Domain)(nil)

// normalizeTitle trims the title; stored titles are lowercased.
func normalizeTitle(title string) string {
	return strings.TrimSpace(title)
}

// ========== Calendar Operations ==========

// CreateCalendar founds a calendar with the founder as its sole member and admin.
func (d *Domain) CreateCalendar(ctx context.Context, founderID uuid.UUID, in *inbound.CreateCalendarInput) (*model.Calendar, error) {
	input := *in
	input.Title = normalizeTitle(input.Title)
	if err := inbound.Validate(&input); err != nil {
		return nil, err
	}

	var calendar *model.Calendar
	err := d.uow.Run(ctx, "create_calendar", []string{relation.UserKey(founderID)}, func(ctx context.Context) error {
		founder, err := d.loadUser(ctx, founderID)
		if err != nil {
			return err
		}

		calendar = &model.Calendar{
			ID:          uuid.New(),
			Title:       strings.ToLower(input.Title),
			Description: input.Description,
		}
		relation.FoundCalendar(founder, calendar)

		if err := d.calendarDB.Create(ctx, calendar); err != nil {
			return fmt.Errorf("create calendar: %w", err)
		}
		if err := d.userDB.Update(ctx, founder); err != nil {
			return fmt.Errorf("update founder: %w", err)
		}

		d.uow.Emit(ctx, events.CalendarCreatedEvent{
			BaseEvent: events.NewBaseEvent(events.CalendarCreatedType, calendar.ID, events.AggregateCalendar),
			FounderID: founderID,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.logger.Info("calendar created",
		zap.String("calendar_id", calendar.ID.String()),
		zap.String("founder_id", founderID.String()),
		zap.String("title", calendar.Title),
	)

	return calendar, nil
}

// EditCalendar renames a calendar. Founder only.
func (d *Domain) EditCalendar(ctx context.Context, actorID, calendarID uuid.UUID, in *inbound.EditCalendarInput) (*model.Calendar, error) {
	input := *in
	input.Title = normalizeTitle(input.Title)
	if err := inbound.Validate(&input); err != nil {
		return nil, err
	}

	var calendar *model.Calendar
	err := d.uow.Run(ctx, "edit_calendar", []string{relation.CalendarKey(calendarID)}, func(ctx context.Context) error {
		var err error
		calendar, err = d.loadCalendar(ctx, calendarID)
		if err != nil {
			return err
		}
		if !calendar.IsFounder(actorID) {
			return ErrNotFounder
		}

		calendar.Title = strings.ToLower(input.Title)
		calendar.Description = input.Description
		return d.calendarDB.Update(ctx, calendar)
	})
	if err != nil {
		return nil, err
	}

	d.logger.Info("calendar edited",
		zap.String("calendar_id", calendarID.String()),
		zap.String("title", calendar.Title),
	)
	return calendar, nil
}

// GetCalendar returns a calendar visible to its founder, admins and members.
func (d *Domain) GetCalendar(ctx context.Context, actorID, calendarID uuid.UUID) (*model.Calendar, error) {
	calendar, err := d.loadCalendar(ctx, calendarID)
	if err != nil {
		return nil, err
	}
	if !calendar.IsMember(actorID) && !calendar.IsAdmin(actorID) {
		return nil, ErrNotMember
	}
	return calendar, nil
}

// ListCalendarsForUser returns the calendars a user belongs to.
func (d *Domain) ListCalendarsForUser(ctx context.Context, userID uuid.UUID) ([]*model.Calendar, error) {
	user, err := d.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return d.calendarDB.FindByIDs(ctx, model.ParseIDs(user.CalendarIDs))
}

// DeleteCalendar removes a calendar and everything hanging off it. Founder only.
//
// Every member and admin loses the calendar from their calendar list, every
// invitation of the calendar is deleted and dropped from its invitee, and
// the task catalog, activities and todo instances go with the calendar.
func (d *Domain) DeleteCalendar(ctx context.Context, actorID, calendarID uuid.UUID) error {
	var evt events.CalendarDeletedEvent

	err := d.uow.Run(ctx, "delete_calendar", []string{relation.CalendarKey(calendarID)}, func(ctx context.Context) error {
		calendar, err := d.loadCalendar(ctx, calendarID)
		if err != nil {
			return err
		}
		if !calendar.IsFounder(actorID) {
			return ErrNotFounder
		}

		users := newUserSet(d.userDB)

		var detached []uuid.UUID
		for _, id := range memberAndAdminIDs(calendar) {
			user, err := users.get(ctx, id)
			if err != nil {
				return err
			}
			if user == nil {
				continue
			}
			if relation.DetachCalendar(user, calendarID) {
				users.markDirty(id)
				detached = append(detached, id)
			}
		}

		invitations, err := d.invitationDB.FindByCalendar(ctx, calendarID)
		if err != nil {
			return fmt.Errorf("list invitations: %w", err)
		}
		for _, inv := range invitations {
			user, err := users.get(ctx, inv.ToID)
			if err != nil {
				return err
			}
			if user != nil && relation.UnlinkInvitation(user, inv.ID) {
				users.markDirty(inv.ToID)
			}
		}
		if err := d.invitationDB.DeleteByCalendar(ctx, calendarID); err != nil {
			return fmt.Errorf("delete invitations: %w", err)
		}

		activities, err := d.activityDB.FindByCalendar(ctx, calendarID)
		if err != nil {
			return fmt.Errorf("list activities: %w", err)
		}
		for _, activity := range activities {
			if err := d.deleteActivity(ctx, activity.ID); err != nil {
				return err
			}
		}

		if err := d.taskDB.DeleteByCalendar(ctx, calendarID); err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}
		if err := d.calendarDB.Delete(ctx, calendar); err != nil {
			return fmt.Errorf("delete calendar: %w", err)
		}
		if err := users.save(ctx); err != nil {
			return err
		}

		evt = events.CalendarDeletedEvent{
			BaseEvent:          events.NewBaseEvent(events.CalendarDeletedType, calendarID, events.AggregateCalendar),
			ActorID:            actorID,
			DetachedUserIDs:    detached,
			DeletedInvitations: len(invitations),
			DeletedActivities:  len(activities),
		}
		d.uow.Emit(ctx, evt)
		return nil
	})
	if err != nil {
		return err
	}

	d.logger.Info("calendar deleted",
		zap.String("calendar_id", calendarID.String()),
		zap.Int("detached_users", len(evt.DetachedUserIDs)),
		zap.Int("deleted_invitations", evt.DeletedInvitations),
		zap.Int("deleted_activities", evt.DeletedActivities),
	)
	return nil
}

// ========== Helpers ==========

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

func (d *Domain) deleteActivity(ctx context.Context, activityID uuid.UUID) error {
	if err := d.todoDB.DeleteByActivity(ctx, activityID); err != nil {
		return fmt.Errorf("delete todos: %w", err)
	}
	if err := d.activityDB.Delete(ctx, activityID); err != nil {
		return fmt.Errorf("delete activity: %w", err)
	}
	return nil
}

func memberAndAdminIDs(calendar *model.Calendar) []uuid.UUID {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, id := range append(model.ParseIDs(calendar.MemberIDs), model.ParseIDs(calendar.AdminIDs)...) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// userSet loads each user at most once per unit of work so that several
// edits to the same user end up in a single versioned write.
type userSet struct {
	db    outbound.UserDatabasePort
	users map[uuid.UUID]*model.User
	dirty []uuid.UUID
}

func newUserSet(db outbound.UserDatabasePort) *userSet {
	return &userSet{db: db, users: make(map[uuid.UUID]*model.User)}
}

// get returns nil for ids that no longer resolve to a user.
func (s *userSet) get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if user, ok := s.users[id]; ok {
		return user, nil
	}
	user, err := s.db.FindByID(ctx, id)
	if err != nil && !errors.Is(err, outbound.ErrRecordNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}
	s.users[id] = user
	return user, nil
}

func (s *userSet) markDirty(id uuid.UUID) {
	for _, d := range s.dirty {
		if d == id {
			return
		}
	}
	s.dirty = append(s.dirty, id)
}

func (s *userSet) save(ctx context.Context) error {
	for _, id := range s.dirty {
		if err := s.db.Update(ctx, s.users[id]); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
	}
	return nil
}

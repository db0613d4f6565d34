package calendar

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calshare/server/internal/adapter/outbound/memory"
	"github.com/calshare/server/internal/domain/activity"
	"github.com/calshare/server/internal/domain/invitation"
	"github.com/calshare/server/internal/domain/relation"
	"github.com/calshare/server/internal/model"
	"github.com/calshare/server/internal/port/inbound"
	"github.com/calshare/server/internal/port/outbound"
	"github.com/calshare/server/internal/shared/events"
	apperrors "github.com/calshare/server/internal/utils/errors"
)

// Test helpers

type recordingHandler struct {
	mu   sync.Mutex
	seen []string
}

func (h *recordingHandler) Handles() []string {
	return []string{
		events.CalendarCreatedType,
		events.CalendarDeletedType,
		events.MembersRemovedType,
		events.InvitationCreatedType,
		events.InvitationAcceptedType,
	}
}

func (h *recordingHandler) Handle(event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, event.EventType())
	return nil
}

type fixture struct {
	ctx         context.Context
	store       *memory.Store
	uow         *relation.Coordinator
	calendars   *Domain
	invitations *invitation.Domain
	activities  *activity.Domain
	events      *recordingHandler
}

func setupDomain(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	bus := events.NewBus(zap.NewNop())
	recorder := &recordingHandler{}
	bus.Register(recorder)

	uow := relation.NewCoordinator(store, nil, bus, nil, relation.DefaultConfig(), zap.NewNop())
	invitations := invitation.NewDomain(store.Users(), store.Calendars(), store.Invitations(), uow, zap.NewNop())

	return &fixture{
		ctx:   context.Background(),
		store: store,
		uow:   uow,
		calendars: NewDomain(
			store.Users(), store.Calendars(), store.Tasks(), store.Invitations(),
			store.Activities(), store.Todos(), invitations, uow, DefaultConfig(), zap.NewNop(),
		),
		invitations: invitations,
		activities:  activity.NewDomain(store.Calendars(), store.Activities(), store.Todos(), uow, zap.NewNop()),
		events:      recorder,
	}
}

func (f *fixture) newUser(t *testing.T, name string) uuid.UUID {
	t.Helper()
	user := &model.User{ID: uuid.New(), Name: name, Email: name + "@example.com"}
	require.NoError(t, f.store.Users().Create(f.ctx, user))
	return user.ID
}

func (f *fixture) user(t *testing.T, id uuid.UUID) *model.User {
	t.Helper()
	user, err := f.store.Users().FindByID(f.ctx, id)
	require.NoError(t, err)
	return user
}

func (f *fixture) calendar(t *testing.T, id uuid.UUID) *model.Calendar {
	t.Helper()
	calendar, err := f.store.Calendars().FindByID(f.ctx, id)
	require.NoError(t, err)
	return calendar
}

func (f *fixture) newCalendar(t *testing.T, founderID uuid.UUID) uuid.UUID {
	t.Helper()
	calendar, err := f.calendars.CreateCalendar(f.ctx, founderID, &inbound.CreateCalendarInput{Title: "Family"})
	require.NoError(t, err)
	return calendar.ID
}

func (f *fixture) invite(t *testing.T, actorID, calendarID, targetID uuid.UUID) uuid.UUID {
	t.Helper()
	result, err := f.calendars.AddMembers(f.ctx, actorID, calendarID, &inbound.AddMembersInput{
		MemberIDs: []uuid.UUID{targetID},
		Message:   "join us",
	})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	require.Equal(t, inbound.MemberInvited, result.Results[0].Status)
	return *result.Results[0].InvitationID
}

func (f *fixture) join(t *testing.T, actorID, calendarID, targetID uuid.UUID) {
	t.Helper()
	invitationID := f.invite(t, actorID, calendarID, targetID)
	_, err := f.invitations.Accept(f.ctx, targetID, invitationID)
	require.NoError(t, err)
}

// Scenarios

func TestScenario_CalendarLifecycle(t *testing.T) {
	f := setupDomain(t)
	founder := f.newUser(t, "founder")
	userA := f.newUser(t, "alice")

	// 1. create
	calendar, err := f.calendars.CreateCalendar(f.ctx, founder, &inbound.CreateCalendarInput{Title: "Title1"})
	require.NoError(t, err)
	assert.Equal(t, "title1", calendar.Title)
	assert.Equal(t, founder, calendar.FounderID)
	assert.Equal(t, []string{founder.String()}, []string(calendar.MemberIDs))
	assert.Equal(t, []string{founder.String()}, []string(calendar.AdminIDs))
	assert.Equal(t, []string{calendar.ID.String()}, []string(f.user(t, founder).CalendarIDs))

	// 2. invite
	invitationID := f.invite(t, founder, calendar.ID, userA)
	pending, err := f.store.Invitations().FindByCalendar(f.ctx, calendar.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, model.InvitationStatusPending, pending[0].Status)
	assert.Equal(t, userA, pending[0].ToID)
	assert.Equal(t, "title1", pending[0].CalendarName)
	assert.True(t, pending[0].Visible)
	assert.Len(t, f.user(t, userA).InvitationIDs, 1)

	// 4. repeat while pending
	result, err := f.calendars.AddMembers(f.ctx, founder, calendar.ID, &inbound.AddMembersInput{MemberIDs: []uuid.UUID{userA}})
	require.NoError(t, err)
	assert.Equal(t, inbound.MemberSkippedPending, result.Results[0].Status)
	all, _ := f.store.Invitations().FindByCalendar(f.ctx, calendar.ID)
	assert.Len(t, all, 1)
	assert.Len(t, f.user(t, userA).InvitationIDs, 1)

	// 3. accept
	accepted, err := f.invitations.Accept(f.ctx, userA, invitationID)
	require.NoError(t, err)
	assert.Equal(t, model.InvitationStatusAccepted, accepted.Status)
	assert.NotNil(t, accepted.RespondedAt)
	assert.Len(t, f.calendar(t, calendar.ID).MemberIDs, 2)
	assert.Len(t, f.user(t, userA).CalendarIDs, 1)
	assert.Empty(t, f.user(t, userA).InvitationIDs)

	// 5. delete
	require.NoError(t, f.calendars.DeleteCalendar(f.ctx, founder, calendar.ID))
	_, err = f.calendars.GetCalendar(f.ctx, founder, calendar.ID)
	assert.ErrorIs(t, err, ErrCalendarNotFound)
	assert.Empty(t, f.user(t, userA).CalendarIDs)
	assert.Empty(t, f.user(t, founder).CalendarIDs)
	remaining, _ := f.store.Invitations().FindByCalendar(f.ctx, calendar.ID)
	assert.Empty(t, remaining)

	assert.Contains(t, f.events.seen, events.CalendarCreatedType)
	assert.Contains(t, f.events.seen, events.InvitationAcceptedType)
	assert.Contains(t, f.events.seen, events.CalendarDeletedType)
}

func TestScenario_TodoInstanceIndependence(t *testing.T) {
	f := setupDomain(t)
	founder := f.newUser(t, "founder")
	userA := f.newUser(t, "alice")
	calendarID := f.newCalendar(t, founder)
	f.join(t, founder, calendarID, userA)

	task, err := f.calendars.CreateTask(f.ctx, founder, calendarID, &inbound.CreateTaskInput{Title: "dishes"})
	require.NoError(t, err)

	// 6. same task twice on monday
	out, err := f.activities.CreateActivity(f.ctx, userA, calendarID, &inbound.CreateActivityInput{
		UserID: userA,
		Days:   model.Days{model.Monday: {task.ID, task.ID}},
	})
	require.NoError(t, err)

	monday := out.Days[model.Monday]
	require.Len(t, monday, 2)
	assert.NotEqual(t, monday[0].ID, monday[1].ID)
	assert.False(t, monday[0].Done)
	assert.False(t, monday[1].Done)
	for _, day := range model.Weekdays[1:] {
		assert.Empty(t, out.Days[day])
	}

	toggled, err := f.activities.ToggleDone(f.ctx, userA, out.ID, monday[0].ID)
	require.NoError(t, err)
	assert.True(t, toggled.Done)

	other, err := f.activities.GetTodo(f.ctx, userA, out.ID, monday[1].ID)
	require.NoError(t, err)
	assert.False(t, other.Done)
}

// Properties

func TestDomain_CreateCalendar(t *testing.T) {
	t.Run("short_title", func(t *testing.T) {
		f := setupDomain(t)
		founder := f.newUser(t, "founder")

		for _, title := range []string{"", "ab", "  ab  "} {
			_, err := f.calendars.CreateCalendar(f.ctx, founder, &inbound.CreateCalendarInput{Title: title})
			assert.True(t, apperrors.IsValidation(err), "title %q", title)
		}
		assert.Empty(t, f.user(t, founder).CalendarIDs)
	})

	t.Run("unknown_founder", func(t *testing.T) {
		f := setupDomain(t)

		_, err := f.calendars.CreateCalendar(f.ctx, uuid.New(), &inbound.CreateCalendarInput{Title: "Family"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestDomain_RoleGating(t *testing.T) {
	f := setupDomain(t)
	founder := f.newUser(t, "founder")
	admin := f.newUser(t, "admin")
	member := f.newUser(t, "member")
	outsider := f.newUser(t, "outsider")
	calendarID := f.newCalendar(t, founder)
	f.join(t, founder, calendarID, admin)
	f.join(t, founder, calendarID, member)
	_, err := f.calendars.PromoteAdmin(f.ctx, founder, calendarID, admin)
	require.NoError(t, err)

	t.Run("edit_and_delete_are_founder_only", func(t *testing.T) {
		for _, actor := range []uuid.UUID{admin, member, outsider} {
			_, err := f.calendars.EditCalendar(f.ctx, actor, calendarID, &inbound.EditCalendarInput{Title: "Renamed"})
			assert.ErrorIs(t, err, ErrNotFounder)
			assert.ErrorIs(t, f.calendars.DeleteCalendar(f.ctx, actor, calendarID), ErrNotFounder)
		}
		assert.Equal(t, "family", f.calendar(t, calendarID).Title)
	})

	t.Run("founder_edits", func(t *testing.T) {
		calendar, err := f.calendars.EditCalendar(f.ctx, founder, calendarID, &inbound.EditCalendarInput{Title: " Home ", Description: "ours"})
		require.NoError(t, err)
		assert.Equal(t, "home", calendar.Title)
		assert.Equal(t, "ours", calendar.Description)
	})

	t.Run("add_members_requires_admin", func(t *testing.T) {
		target := f.newUser(t, "target")
		for _, actor := range []uuid.UUID{member, outsider} {
			_, err := f.calendars.AddMembers(f.ctx, actor, calendarID, &inbound.AddMembersInput{MemberIDs: []uuid.UUID{target}})
			assert.True(t, apperrors.IsForbidden(err))
		}
		assert.Empty(t, f.user(t, target).InvitationIDs)

		f.invite(t, admin, calendarID, target)
	})

	t.Run("delete_members_requires_admin_unless_self", func(t *testing.T) {
		err := f.calendars.DeleteMembers(f.ctx, member, calendarID, &inbound.DeleteMembersInput{MemberIDs: []uuid.UUID{admin}})
		assert.ErrorIs(t, err, ErrNotAdmin)
		assert.True(t, f.calendar(t, calendarID).IsMember(admin))
	})

	t.Run("get_calendar_requires_membership", func(t *testing.T) {
		_, err := f.calendars.GetCalendar(f.ctx, outsider, calendarID)
		assert.ErrorIs(t, err, ErrNotMember)

		_, err = f.calendars.GetCalendar(f.ctx, member, calendarID)
		assert.NoError(t, err)
	})
}

func TestDomain_AddMembers(t *testing.T) {
	t.Run("per_target_outcomes", func(t *testing.T) {
		f := setupDomain(t)
		founder := f.newUser(t, "founder")
		member := f.newUser(t, "member")
		fresh := f.newUser(t, "fresh")
		calendarID := f.newCalendar(t, founder)
		f.join(t, founder, calendarID, member)
		missing := uuid.New()

		result, err := f.calendars.AddMembers(f.ctx, founder, calendarID, &inbound.AddMembersInput{
			MemberIDs: []uuid.UUID{missing, member, fresh, fresh, founder},
		})
		require.NoError(t, err)

		statuses := make([]inbound.MemberInviteStatus, 0, len(result.Results))
		for _, r := range result.Results {
			statuses = append(statuses, r.Status)
		}
		assert.Equal(t, []inbound.MemberInviteStatus{
			inbound.MemberNotFound,
			inbound.MemberSkippedMember,
			inbound.MemberInvited,
			inbound.MemberSkippedPending,
			inbound.MemberSkippedMember,
		}, statuses)
		assert.Equal(t, 1, result.Invited())
		assert.Len(t, f.user(t, fresh).InvitationIDs, 1)
	})

	t.Run("no_duplicate_invitations", func(t *testing.T) {
		f := setupDomain(t)
		founder := f.newUser(t, "founder")
		target := f.newUser(t, "target")
		calendarID := f.newCalendar(t, founder)

		for i := 0; i < 2; i++ {
			_, err := f.calendars.AddMembers(f.ctx, founder, calendarID, &inbound.AddMembersInput{MemberIDs: []uuid.UUID{target}})
			require.NoError(t, err)
		}

		all, _ := f.store.Invitations().FindByCalendar(f.ctx, calendarID)
		assert.Len(t, all, 1)
		assert.Len(t, f.user(t, target).InvitationIDs, 1)
	})

	t.Run("concurrent_invites_create_one_invitation", func(t *testing.T) {
		f := setupDomain(t)
		founder := f.newUser(t, "founder")
		target := f.newUser(t, "target")
		calendarID := f.newCalendar(t, founder)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.calendars.AddMembers(f.ctx, founder, calendarID, &inbound.AddMembersInput{MemberIDs: []uuid.UUID{target}})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		all, _ := f.store.Invitations().FindByCalendar(f.ctx, calendarID)
		assert.Len(t, all, 1)
		assert.Len(t, f.user(t, target).InvitationIDs, 1)
	})

	t.Run("reinvite_after_reject", func(t *testing.T) {
		f := setupDomain(t)
		founder := f.newUser(t, "founder")
		target := f.newUser(t, "target")
		calendarID := f.newCalendar(t, founder)

		first := f.invite(t, founder, calendarID, target)
		_, err := f.invitations.Reject(f.ctx, target, first)
		require.NoError(t, err)

		second := f.invite(t, founder, calendarID, target)
		assert.NotEqual(t, first, second)
		assert.Equal(t, []string{second.String()}, []string(f.user(t, target).InvitationIDs))
	})
}

func TestDomain_DeleteMembers(t *testing.T) {
	t.Run("founder_protection", func(t *testing.T) {
		f := setupDomain(t)
		founder := f.newUser(t, "founder")
		member := f.newUser(t, "member")
		calendarID := f.newCalendar(t, founder)
		f.join(t, founder, calendarID, member)

		err := f.calendars.DeleteMembers(f.ctx, founder, calendarID, &inbound.DeleteMembersInput{MemberIDs: []uuid.UUID{member, founder}})
		assert.ErrorIs(t, err, ErrFounderProtected)
		assert.True(t, apperrors.IsForbidden(err))

		calendar := f.calendar(t, calendarID)
		assert.Len(t, calendar.MemberIDs, 2)
		assert.Len(t, f.user(t, member).CalendarIDs, 1)
	})

	t.Run("admin_removes_member_and_their_activities", func(t *testing.T) {
		f := setupDomain(t)
		founder := f.newUser(t, "founder")
		member := f.newUser(t, "member")
		calendarID := f.newCalendar(t, founder)
		f.join(t, founder, calendarID, member)

		task, err := f.calendars.CreateTask(f.ctx, founder, calendarID, &inbound.CreateTaskInput{Title: "walk"})
		require.NoError(t, err)
		out, err := f.activities.CreateActivity(f.ctx, member, calendarID, &inbound.CreateActivityInput{
			UserID: member,
			Days:   model.Days{model.Friday: {task.ID}},
		})
		require.NoError(t, err)

		err = f.calendars.DeleteMembers(f.ctx, founder, calendarID, &inbound.DeleteMembersInput{MemberIDs: []uuid.UUID{member}})
		require.NoError(t, err)

		assert.False(t, f.calendar(t, calendarID).IsMember(member))
		assert.Empty(t, f.user(t, member).CalendarIDs)
		_, err = f.store.Activities().FindByID(f.ctx, out.ID)
		assert.ErrorIs(t, err, outbound.ErrRecordNotFound)
		todos, _ := f.store.Todos().FindByActivity(f.ctx, out.ID)
		assert.Empty(t, todos)
	})

	t.Run("self_removal", func(t *testing.T) {
		f := setupDomain(t)
		founder := f.newUser(t, "founder")
		member := f.newUser(t, "member")
		calendarID := f.newCalendar(t, founder)
		f.join(t, founder, calendarID, member)

		err := f.calendars.DeleteMembers(f.ctx, member, calendarID, &inbound.DeleteMembersInput{MemberIDs: []uuid.UUID{member}})
		require.NoError(t, err)
		assert.False(t, f.calendar(t, calendarID).IsMember(member))
		assert.Empty(t, f.user(t, member).CalendarIDs)
	})

	t.Run("founder_cannot_leave", func(t *testing.T) {
		f := setupDomain(t)
		founder := f.newUser(t, "founder")
		calendarID := f.newCalendar(t, founder)

		err := f.calendars.DeleteMembers(f.ctx, founder, calendarID, &inbound.DeleteMembersInput{MemberIDs: []uuid.UUID{founder}})
		assert.ErrorIs(t, err, ErrFounderProtected)
	})
}

func TestDomain_DeleteCalendar(t *testing.T) {
	t.Run("cascade_completeness", func(t *testing.T) {
		f := setupDomain(t)
		founder := f.newUser(t, "founder")
		members := []uuid.UUID{f.newUser(t, "m1"), f.newUser(t, "m2")}
		invitees := []uuid.UUID{f.newUser(t, "i1"), f.newUser(t, "i2")}
		calendarID := f.newCalendar(t, founder)
		other := f.newCalendar(t, founder)

		for _, m := range members {
			f.join(t, founder, calendarID, m)
		}
		_, err := f.calendars.PromoteAdmin(f.ctx, founder, calendarID, members[0])
		require.NoError(t, err)
		for _, i := range invitees {
			f.invite(t, founder, calendarID, i)
		}
		otherInvitation := f.invite(t, founder, other, invitees[0])

		task, err := f.calendars.CreateTask(f.ctx, founder, calendarID, &inbound.CreateTaskInput{Title: "cook"})
		require.NoError(t, err)
		_, err = f.activities.CreateActivity(f.ctx, members[1], calendarID, &inbound.CreateActivityInput{
			UserID: members[1],
			Days:   model.Days{model.Tuesday: {task.ID}},
		})
		require.NoError(t, err)

		require.NoError(t, f.calendars.DeleteCalendar(f.ctx, founder, calendarID))

		for _, id := range append([]uuid.UUID{founder}, members...) {
			assert.False(t, model.Contains(f.user(t, id).CalendarIDs, calendarID))
		}
		assert.True(t, model.Contains(f.user(t, founder).CalendarIDs, other))

		remaining, _ := f.store.Invitations().FindByCalendar(f.ctx, calendarID)
		assert.Empty(t, remaining)
		assert.Empty(t, f.user(t, invitees[1]).InvitationIDs)
		assert.Equal(t, []string{otherInvitation.String()}, []string(f.user(t, invitees[0]).InvitationIDs))

		tasks, _ := f.store.Tasks().FindByCalendar(f.ctx, calendarID)
		assert.Empty(t, tasks)
		activities, _ := f.store.Activities().FindByCalendar(f.ctx, calendarID)
		assert.Empty(t, activities)
	})

	t.Run("failure_leaves_no_partial_effect", func(t *testing.T) {
		f := setupDomain(t)
		founder := f.newUser(t, "founder")
		member := f.newUser(t, "member")
		invitee := f.newUser(t, "invitee")
		calendarID := f.newCalendar(t, founder)
		f.join(t, founder, calendarID, member)
		f.invite(t, founder, calendarID, invitee)

		broken := NewDomain(
			&failingUsers{UserDatabasePort: f.store.Users()},
			f.store.Calendars(), f.store.Tasks(), f.store.Invitations(),
			f.store.Activities(), f.store.Todos(), f.invitations, f.uow, nil, zap.NewNop(),
		)

		err := broken.DeleteCalendar(f.ctx, founder, calendarID)
		require.Error(t, err)

		calendar := f.calendar(t, calendarID)
		assert.Len(t, calendar.MemberIDs, 2)
		assert.True(t, model.Contains(f.user(t, member).CalendarIDs, calendarID))
		assert.Len(t, f.user(t, invitee).InvitationIDs, 1)
		remaining, _ := f.store.Invitations().FindByCalendar(f.ctx, calendarID)
		assert.Len(t, remaining, 2)
	})
}

// readCommittedTx runs units without isolation or rollback, so writes
// committed by other units become visible between statements.
type readCommittedTx struct{}

func (readCommittedTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// racingActivities runs race once, right after the first calendar scan.
type racingActivities struct {
	outbound.ActivityDatabasePort
	race func()
}

func (r *racingActivities) FindByCalendar(ctx context.Context, calendarID uuid.UUID) ([]*model.Activity, error) {
	activities, err := r.ActivityDatabasePort.FindByCalendar(ctx, calendarID)
	if race := r.race; race != nil {
		r.race = nil
		race()
	}
	return activities, err
}

// racingTasks runs race once, right after the first task read.
type racingTasks struct {
	outbound.TaskDatabasePort
	race func()
}

func (r *racingTasks) FindByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	task, err := r.TaskDatabasePort.FindByID(ctx, id)
	if race := r.race; race != nil {
		r.race = nil
		race()
	}
	return task, err
}

func TestDomain_DeleteCalendar_ActivityCreatedConcurrently(t *testing.T) {
	f := setupDomain(t)
	founder := f.newUser(t, "founder")
	member := f.newUser(t, "member")
	calendarID := f.newCalendar(t, founder)
	f.join(t, founder, calendarID, member)
	task, err := f.calendars.CreateTask(f.ctx, founder, calendarID, &inbound.CreateTaskInput{Title: "cook"})
	require.NoError(t, err)

	activities := &racingActivities{ActivityDatabasePort: f.store.Activities()}
	activities.race = func() {
		_, err := f.activities.CreateActivity(f.ctx, member, calendarID, &inbound.CreateActivityInput{
			UserID: member,
			Days:   model.Days{model.Sunday: {task.ID}},
		})
		require.NoError(t, err)
	}
	uow := relation.NewCoordinator(readCommittedTx{}, nil, nil, nil, relation.DefaultConfig(), zap.NewNop())
	racing := NewDomain(
		f.store.Users(), f.store.Calendars(), f.store.Tasks(), f.store.Invitations(),
		activities, f.store.Todos(), f.invitations, uow, nil, zap.NewNop(),
	)

	require.NoError(t, racing.DeleteCalendar(f.ctx, founder, calendarID))

	_, err = f.store.Calendars().FindByID(f.ctx, calendarID)
	assert.ErrorIs(t, err, outbound.ErrRecordNotFound)
	remaining, err := f.store.Activities().FindByUser(f.ctx, member)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDomain_UpdateTask_DeletedConcurrently(t *testing.T) {
	f := setupDomain(t)
	founder := f.newUser(t, "founder")
	calendarID := f.newCalendar(t, founder)
	task, err := f.calendars.CreateTask(f.ctx, founder, calendarID, &inbound.CreateTaskInput{Title: "cook"})
	require.NoError(t, err)

	tasks := &racingTasks{TaskDatabasePort: f.store.Tasks()}
	tasks.race = func() {
		require.NoError(t, f.calendars.DeleteTask(f.ctx, founder, calendarID, task.ID))
	}
	uow := relation.NewCoordinator(readCommittedTx{}, nil, nil, nil, relation.DefaultConfig(), zap.NewNop())
	racing := NewDomain(
		f.store.Users(), f.store.Calendars(), tasks, f.store.Invitations(),
		f.store.Activities(), f.store.Todos(), f.invitations, uow, nil, zap.NewNop(),
	)

	title := "bake"
	_, err = racing.UpdateTask(f.ctx, founder, calendarID, task.ID, &inbound.UpdateTaskInput{Title: &title})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = f.store.Tasks().FindByID(f.ctx, task.ID)
	assert.ErrorIs(t, err, outbound.ErrRecordNotFound)
	assert.False(t, f.calendar(t, calendarID).HasTask(task.ID))
}

type failingUsers struct {
	outbound.UserDatabasePort
}

func (f *failingUsers) Update(ctx context.Context, user *model.User) error {
	return errors.New("disk full")
}

func TestDomain_Admins(t *testing.T) {
	f := setupDomain(t)
	founder := f.newUser(t, "founder")
	member := f.newUser(t, "member")
	outsider := f.newUser(t, "outsider")
	calendarID := f.newCalendar(t, founder)
	f.join(t, founder, calendarID, member)

	_, err := f.calendars.PromoteAdmin(f.ctx, member, calendarID, member)
	assert.ErrorIs(t, err, ErrNotFounder)

	_, err = f.calendars.PromoteAdmin(f.ctx, founder, calendarID, outsider)
	assert.ErrorIs(t, err, ErrTargetNotMember)

	calendar, err := f.calendars.PromoteAdmin(f.ctx, founder, calendarID, member)
	require.NoError(t, err)
	assert.True(t, calendar.IsAdmin(member))

	_, err = f.calendars.DemoteAdmin(f.ctx, founder, calendarID, founder)
	assert.ErrorIs(t, err, ErrFounderProtected)

	calendar, err = f.calendars.DemoteAdmin(f.ctx, founder, calendarID, member)
	require.NoError(t, err)
	assert.False(t, calendar.IsAdmin(member))
	assert.True(t, calendar.IsMember(member))
}

func TestDomain_Tasks(t *testing.T) {
	f := setupDomain(t)
	founder := f.newUser(t, "founder")
	member := f.newUser(t, "member")
	calendarID := f.newCalendar(t, founder)
	f.join(t, founder, calendarID, member)

	t.Run("members_cannot_edit_catalog", func(t *testing.T) {
		_, err := f.calendars.CreateTask(f.ctx, member, calendarID, &inbound.CreateTaskInput{Title: "nap"})
		assert.ErrorIs(t, err, ErrNotAdmin)
	})

	t.Run("update_task", func(t *testing.T) {
		task, err := f.calendars.CreateTask(f.ctx, founder, calendarID, &inbound.CreateTaskInput{Title: "laundry", Options: []string{"whites"}})
		require.NoError(t, err)

		title := "washing"
		updated, err := f.calendars.UpdateTask(f.ctx, founder, calendarID, task.ID, &inbound.UpdateTaskInput{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, "washing", updated.Title)
		assert.Equal(t, []string{"whites"}, []string(updated.Options))

		_, err = f.calendars.UpdateTask(f.ctx, founder, calendarID, uuid.New(), &inbound.UpdateTaskInput{Title: &title})
		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("delete_task_strips_todos", func(t *testing.T) {
		keep, err := f.calendars.CreateTask(f.ctx, founder, calendarID, &inbound.CreateTaskInput{Title: "keep"})
		require.NoError(t, err)
		drop, err := f.calendars.CreateTask(f.ctx, founder, calendarID, &inbound.CreateTaskInput{Title: "drop"})
		require.NoError(t, err)

		out, err := f.activities.CreateActivity(f.ctx, member, calendarID, &inbound.CreateActivityInput{
			UserID: member,
			Days: model.Days{
				model.Monday:   {keep.ID, drop.ID},
				model.Thursday: {drop.ID},
			},
		})
		require.NoError(t, err)

		require.NoError(t, f.calendars.DeleteTask(f.ctx, founder, calendarID, drop.ID))

		after, err := f.activities.GetActivity(f.ctx, member, out.ID)
		require.NoError(t, err)
		require.Len(t, after.Days[model.Monday], 1)
		assert.Equal(t, keep.ID, after.Days[model.Monday][0].TaskID)
		assert.Empty(t, after.Days[model.Thursday])
		assert.False(t, f.calendar(t, calendarID).HasTask(drop.ID))

		tasks, err := f.calendars.ListTasks(f.ctx, member, calendarID)
		require.NoError(t, err)
		for _, task := range tasks {
			assert.NotEqual(t, drop.ID, task.ID)
		}
	})
}

func TestDomain_ListCalendarsForUser(t *testing.T) {
	f := setupDomain(t)
	founder := f.newUser(t, "founder")
	first := f.newCalendar(t, founder)
	second := f.newCalendar(t, founder)

	calendars, err := f.calendars.ListCalendarsForUser(f.ctx, founder)
	require.NoError(t, err)
	require.Len(t, calendars, 2)

	ids := []uuid.UUID{calendars[0].ID, calendars[1].ID}
	assert.ElementsMatch(t, []uuid.UUID{first, second}, ids)
}

package relation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calshare/server/internal/port/outbound"
	"github.com/calshare/server/internal/shared/events"
	apperrors "github.com/calshare/server/internal/utils/errors"
)

// Mock implementations

type mockTransaction struct {
	mock.Mock
}

func (m *mockTransaction) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

type mockLock struct {
	mock.Mock
	released []string
}

func (m *mockLock) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	args := m.Called(ctx, key, ttl)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return func() { m.released = append(m.released, key) }, nil
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(event events.Event) {
	m.Called(event)
}

type mockObserver struct {
	mock.Mock
}

func (m *mockObserver) ObserveUnit(operation, outcome string, attempts int) {
	m.Called(operation, outcome, attempts)
}

func (m *mockObserver) ObserveLock(result string) {
	m.Called(result)
}

// Test helper

func setupCoordinator(lock outbound.LockPort) (*Coordinator, *mockTransaction, *mockPublisher, *mockObserver) {
	txPort := new(mockTransaction)
	publisher := new(mockPublisher)
	observer := new(mockObserver)

	cfg := DefaultConfig()
	cfg.MaxAttempts = 3

	c := NewCoordinator(txPort, lock, publisher, observer, cfg, zap.NewNop())
	c.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return c, txPort, publisher, observer
}

func testEvent() events.Event {
	return events.ActivityEvent{BaseEvent: events.NewBaseEvent(events.ActivityCreatedType, uuid.New(), events.AggregateActivity)}
}

func TestCoordinator_Run(t *testing.T) {
	t.Run("commits_and_publishes_after_commit", func(t *testing.T) {
		c, txPort, publisher, observer := setupCoordinator(nil)
		ctx := context.Background()
		evt := testEvent()

		txPort.On("RunInTransaction", mock.Anything).Return(nil).Once()
		observer.On("ObserveUnit", "create_activity", OutcomeCommitted, 1).Return()
		publisher.On("Publish", evt).Return().Once()

		err := c.Run(ctx, "create_activity", nil, func(ctx context.Context) error {
			assert.True(t, InUnit(ctx))
			c.Emit(ctx, evt)
			publisher.AssertNotCalled(t, "Publish", evt)
			return nil
		})

		require.NoError(t, err)
		publisher.AssertExpectations(t)
		observer.AssertExpectations(t)
	})

	t.Run("retries_on_version_conflict", func(t *testing.T) {
		c, txPort, publisher, observer := setupCoordinator(nil)
		evt := testEvent()

		txPort.On("RunInTransaction", mock.Anything).Return(nil)
		observer.On("ObserveUnit", "accept_invitation", OutcomeCommitted, 2).Return()
		publisher.On("Publish", evt).Return().Once()

		calls := 0
		err := c.Run(context.Background(), "accept_invitation", nil, func(ctx context.Context) error {
			calls++
			c.Emit(ctx, evt)
			if calls == 1 {
				return outbound.ErrVersionConflict
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 2, calls)
		// events of the failed attempt are discarded
		publisher.AssertNumberOfCalls(t, "Publish", 1)
	})

	t.Run("exhausted_retries_surface_conflict", func(t *testing.T) {
		c, txPort, publisher, observer := setupCoordinator(nil)

		txPort.On("RunInTransaction", mock.Anything).Return(nil)
		observer.On("ObserveUnit", "add_members", OutcomeExhausted, 3).Return()

		calls := 0
		err := c.Run(context.Background(), "add_members", nil, func(ctx context.Context) error {
			calls++
			c.Emit(ctx, testEvent())
			return outbound.ErrVersionConflict
		})

		assert.ErrorIs(t, err, ErrConcurrentModification)
		assert.True(t, apperrors.IsConflict(err))
		assert.Equal(t, 3, calls)
		publisher.AssertNotCalled(t, "Publish", mock.Anything)
	})

	t.Run("other_errors_roll_back_without_retry", func(t *testing.T) {
		c, txPort, publisher, observer := setupCoordinator(nil)
		boom := errors.New("boom")

		txPort.On("RunInTransaction", mock.Anything).Return(nil)
		observer.On("ObserveUnit", "delete_calendar", OutcomeRolledBack, 1).Return()

		calls := 0
		err := c.Run(context.Background(), "delete_calendar", nil, func(ctx context.Context) error {
			calls++
			c.Emit(ctx, testEvent())
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
		publisher.AssertNotCalled(t, "Publish", mock.Anything)
	})

	t.Run("nested_run_joins_outer_unit", func(t *testing.T) {
		c, txPort, publisher, observer := setupCoordinator(nil)
		inner := testEvent()

		txPort.On("RunInTransaction", mock.Anything).Return(nil).Once()
		observer.On("ObserveUnit", "add_members", OutcomeCommitted, 1).Return()
		publisher.On("Publish", inner).Return().Once()

		err := c.Run(context.Background(), "add_members", nil, func(ctx context.Context) error {
			return c.Run(ctx, "create_invitation", nil, func(ctx context.Context) error {
				c.Emit(ctx, inner)
				return nil
			})
		})

		require.NoError(t, err)
		txPort.AssertNumberOfCalls(t, "RunInTransaction", 1)
		publisher.AssertExpectations(t)
	})

	t.Run("publish_panic_reports_partial_failure", func(t *testing.T) {
		c, txPort, publisher, observer := setupCoordinator(nil)
		evt := testEvent()

		txPort.On("RunInTransaction", mock.Anything).Return(nil)
		observer.On("ObserveUnit", "toggle_done", OutcomeCommitted, 1).Return()
		publisher.On("Publish", evt).Run(func(mock.Arguments) { panic("subscriber crashed") })

		err := c.Run(context.Background(), "toggle_done", nil, func(ctx context.Context) error {
			c.Emit(ctx, evt)
			return nil
		})

		var partial *apperrors.PartialFailureError
		require.ErrorAs(t, err, &partial)
		assert.Equal(t, "toggle_done", partial.Operation)
	})
}

func TestCoordinator_Locks(t *testing.T) {
	calendarID := uuid.New()
	userID := uuid.New()

	t.Run("acquires_sorted_and_releases", func(t *testing.T) {
		lock := new(mockLock)
		c, txPort, _, observer := setupCoordinator(lock)
		keys := []string{UserKey(userID), CalendarKey(calendarID)}

		lock.On("Acquire", mock.Anything, mock.Anything, mock.Anything).Return(nil)
		txPort.On("RunInTransaction", mock.Anything).Return(nil)
		observer.On("ObserveLock", "acquired").Return()
		observer.On("ObserveUnit", "accept_invitation", OutcomeCommitted, 1).Return()

		err := c.Run(context.Background(), "accept_invitation", keys, func(ctx context.Context) error {
			assert.Empty(t, lock.released)
			return nil
		})

		require.NoError(t, err)
		// released in reverse acquisition order
		assert.Equal(t, []string{UserKey(userID), CalendarKey(calendarID)}, lock.released)
		assert.Equal(t, CalendarKey(calendarID), lock.Calls[0].Arguments.String(1))
	})

	t.Run("contended_lock_gives_up", func(t *testing.T) {
		lock := new(mockLock)
		c, txPort, _, observer := setupCoordinator(lock)

		lock.On("Acquire", mock.Anything, CalendarKey(calendarID), mock.Anything).Return(outbound.ErrLockNotAcquired)
		observer.On("ObserveLock", "contended").Return()

		err := c.Run(context.Background(), "delete_calendar", []string{CalendarKey(calendarID)}, func(ctx context.Context) error {
			t.Fatal("unit must not run")
			return nil
		})

		assert.ErrorIs(t, err, ErrConcurrentModification)
		lock.AssertNumberOfCalls(t, "Acquire", 3)
		txPort.AssertNotCalled(t, "RunInTransaction", mock.Anything)
	})

	t.Run("unavailable_lock_degrades_to_version_checks", func(t *testing.T) {
		lock := new(mockLock)
		c, txPort, _, observer := setupCoordinator(lock)

		lock.On("Acquire", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("circuit breaker is open"))
		txPort.On("RunInTransaction", mock.Anything).Return(nil)
		observer.On("ObserveLock", "degraded").Return()
		observer.On("ObserveUnit", "edit_calendar", OutcomeCommitted, 1).Return()

		ran := false
		err := c.Run(context.Background(), "edit_calendar", []string{CalendarKey(calendarID)}, func(ctx context.Context) error {
			ran = true
			return nil
		})

		require.NoError(t, err)
		assert.True(t, ran)
	})
}

func TestCoordinator_Backoff(t *testing.T) {
	c := NewCoordinator(nil, nil, nil, nil, &Config{MaxAttempts: 5, BaseBackoff: 10 * time.Millisecond, MaxBackoff: 30 * time.Millisecond}, nil)

	assert.Equal(t, 10*time.Millisecond, c.backoff(1))
	assert.Equal(t, 20*time.Millisecond, c.backoff(2))
	assert.Equal(t, 30*time.Millisecond, c.backoff(3))
	assert.Equal(t, 30*time.Millisecond, c.backoff(10))
}

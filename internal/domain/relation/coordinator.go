package relation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/calshare/server/internal/port/outbound"
	"github.com/calshare/server/internal/shared/events"
	apperrors "github.com/calshare/server/internal/utils/errors"
)

// Config holds unit of work settings.
type Config struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	LockTTL     time.Duration
}

// DefaultConfig returns default unit of work settings.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 5,
		BaseBackoff: 10 * time.Millisecond,
		MaxBackoff:  200 * time.Millisecond,
		LockTTL:     5 * time.Second,
	}
}

// Observer receives unit of work outcomes.
type Observer interface {
	ObserveUnit(operation, outcome string, attempts int)
	ObserveLock(result string)
}

// Unit outcomes reported to the Observer.
const (
	OutcomeCommitted  = "committed"
	OutcomeRolledBack = "rolled_back"
	OutcomeExhausted  = "exhausted"
)

// Coordinator runs multi-aggregate mutations as a single unit of work.
//
// A unit runs inside one storage transaction. Adapters reject writes whose
// version no longer matches with outbound.ErrVersionConflict; the coordinator
// then rolls back and re-runs the whole unit against fresh state. When a
// LockPort is configured the unit also holds per-aggregate locks, which
// narrows the race window but is never required for correctness.
type Coordinator struct {
	txPort    outbound.TransactionPort
	lock      outbound.LockPort
	publisher events.Publisher
	observer  Observer
	cfg       *Config
	logger    *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// NewCoordinator creates a new coordinator. lock, publisher and observer may be nil.
func NewCoordinator(
	txPort outbound.TransactionPort,
	lock outbound.LockPort,
	publisher events.Publisher,
	observer Observer,
	cfg *Config,
	logger *zap.Logger,
) *Coordinator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		txPort:    txPort,
		lock:      lock,
		publisher: publisher,
		observer:  observer,
		cfg:       cfg,
		logger:    logger,
		sleep:     sleepCtx,
	}
}

type unitKey struct{}

type unit struct {
	events []events.Event
}

func unitFrom(ctx context.Context) *unit {
	u, _ := ctx.Value(unitKey{}).(*unit)
	return u
}

// InUnit reports whether ctx belongs to a running unit of work.
func InUnit(ctx context.Context) bool {
	return unitFrom(ctx) != nil
}

// Run executes fn as a unit of work named op, holding the aggregate locks
// named by keys. A Run nested inside another unit joins the outer one.
func (c *Coordinator) Run(ctx context.Context, op string, keys []string, fn func(ctx context.Context) error) error {
	if InUnit(ctx) {
		return fn(ctx)
	}

	release, err := c.acquire(ctx, op, keys)
	if err != nil {
		return err
	}
	defer release()

	for attempt := 1; ; attempt++ {
		u := &unit{}
		err := c.txPort.RunInTransaction(context.WithValue(ctx, unitKey{}, u), fn)
		if err == nil {
			c.observe(op, OutcomeCommitted, attempt)
			return c.publish(op, u.events)
		}

		if !errors.Is(err, outbound.ErrVersionConflict) {
			c.observe(op, OutcomeRolledBack, attempt)
			return err
		}

		if attempt >= c.cfg.MaxAttempts {
			c.observe(op, OutcomeExhausted, attempt)
			c.logger.Warn("unit of work retry budget exhausted",
				zap.String("operation", op),
				zap.Int("attempts", attempt),
			)
			return fmt.Errorf("%s: %w", op, ErrConcurrentModification)
		}

		c.logger.Debug("version conflict, retrying unit of work",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
		)
		if err := c.sleep(ctx, c.backoff(attempt)); err != nil {
			return err
		}
	}
}

// Emit queues an event for publication after the surrounding unit commits.
// Outside a unit the event is published immediately.
func (c *Coordinator) Emit(ctx context.Context, event events.Event) {
	if u := unitFrom(ctx); u != nil {
		u.events = append(u.events, event)
		return
	}
	if c.publisher != nil {
		c.publisher.Publish(event)
	}
}

func (c *Coordinator) publish(op string, evts []events.Event) (err error) {
	if c.publisher == nil || len(evts) == 0 {
		return nil
	}

	published := 0
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("event dispatch failed after commit",
				zap.String("operation", op),
				zap.Int("published", published),
				zap.Int("pending", len(evts)-published),
				zap.Any("panic", r),
			)
			err = &apperrors.PartialFailureError{
				Operation: op,
				Committed: []string{"storage"},
				Err:       fmt.Errorf("event dispatch: %v", r),
			}
		}
	}()

	for _, evt := range evts {
		c.publisher.Publish(evt)
		published++
	}
	return nil
}

func (c *Coordinator) acquire(ctx context.Context, op string, keys []string) (func(), error) {
	if c.lock == nil || len(keys) == 0 {
		return func() {}, nil
	}

	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	var releases []func()
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}

	for _, key := range sorted {
		release, err := c.acquireOne(ctx, op, key)
		if err != nil {
			releaseAll()
			return nil, err
		}
		if release != nil {
			releases = append(releases, release)
		}
	}
	return releaseAll, nil
}

// acquireOne returns a nil release when the lock backend is unavailable;
// the unit then relies on version checks alone.
func (c *Coordinator) acquireOne(ctx context.Context, op, key string) (func(), error) {
	for attempt := 1; ; attempt++ {
		release, err := c.lock.Acquire(ctx, key, c.cfg.LockTTL)
		switch {
		case err == nil:
			c.observeLock("acquired")
			return release, nil
		case errors.Is(err, outbound.ErrLockNotAcquired):
			c.observeLock("contended")
			if attempt >= c.cfg.MaxAttempts {
				return nil, fmt.Errorf("%s: %w", op, ErrConcurrentModification)
			}
			if err := c.sleep(ctx, c.backoff(attempt)); err != nil {
				return nil, err
			}
		default:
			c.observeLock("degraded")
			c.logger.Warn("aggregate lock unavailable, continuing without it",
				zap.String("operation", op),
				zap.String("key", key),
				zap.Error(err),
			)
			return nil, nil
		}
	}
}

func (c *Coordinator) backoff(attempt int) time.Duration {
	d := c.cfg.BaseBackoff << (attempt - 1)
	if c.cfg.MaxBackoff > 0 && (d > c.cfg.MaxBackoff || d <= 0) {
		d = c.cfg.MaxBackoff
	}
	return d
}

func (c *Coordinator) observe(op, outcome string, attempts int) {
	if c.observer != nil {
		c.observer.ObserveUnit(op, outcome, attempts)
	}
}

func (c *Coordinator) observeLock(result string) {
	if c.observer != nil {
		c.observer.ObserveLock(result)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Lock keys.

func CalendarKey(id uuid.UUID) string   { return "calendar:" + id.String() }
func UserKey(id uuid.UUID) string       { return "user:" + id.String() }
func InvitationKey(id uuid.UUID) string { return "invitation:" + id.String() }
func ActivityKey(id uuid.UUID) string   { return "activity:" + id.String() }

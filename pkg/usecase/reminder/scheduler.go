package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"superbot/pkg/model"
)

const (
	// DefaultFloor is the minimum armed delay. Past-due records fire after
	// this interval instead of being dropped.
	DefaultFloor = time.Second
	// DefaultCeiling is the maximum armed delay (one year)
	DefaultCeiling = 365 * 24 * time.Hour
)

var ErrDelayTooLong = goerr.New("reminder delay exceeds ceiling")

// FireFunc is invoked exactly once when a reminder's timer expires
type FireFunc func(ctx context.Context, rec *model.Reminder)

// Scheduler arms one timer per reminder, keyed by id so timers can be
// cancelled by name. Cancellation after a timer fired is a silent no-op.
type Scheduler struct {
	mu      sync.Mutex
	timers  map[model.ReminderID]*time.Timer
	floor   time.Duration
	ceiling time.Duration
	now     func() time.Time
	fire    FireFunc
}

// SchedulerOption configures a Scheduler
type SchedulerOption func(*Scheduler)

// WithFloor sets the minimum armed delay
func WithFloor(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.floor = d
	}
}

// WithCeiling sets the maximum armed delay
func WithCeiling(d time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.ceiling = d
	}
}

// WithClock overrides the clock (used in tests)
func WithClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.now = now
	}
}

// NewScheduler creates a scheduler that calls fire on expiry
func NewScheduler(fire FireFunc, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		timers:  make(map[model.ReminderID]*time.Timer),
		floor:   DefaultFloor,
		ceiling: DefaultCeiling,
		now:     time.Now,
		fire:    fire,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register arms a timer for the record. The delay is floored so past-due
// records fire almost immediately; delays over the ceiling are refused and
// the record stays persisted but unarmed.
func (s *Scheduler) Register(rec *model.Reminder) error {
	delay := rec.FireAt().Sub(s.now())
	if delay < s.floor {
		delay = s.floor
	}
	if delay > s.ceiling {
		return goerr.Wrap(ErrDelayTooLong, "refusing to arm reminder",
			goerr.V("id", rec.ID), goerr.V("delay", delay))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-registering the same id replaces the armed timer
	if t, ok := s.timers[rec.ID]; ok {
		t.Stop()
	}

	s.timers[rec.ID] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, rec.ID)
		s.mu.Unlock()

		s.fire(context.Background(), rec)
	})

	return nil
}

// Cancel disarms the timer for id and reports whether one was armed. A
// reminder that already fired is simply gone from the table.
func (s *Scheduler) Cancel(id model.ReminderID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[id]
	if !ok {
		return false
	}

	t.Stop()
	delete(s.timers, id)
	return true
}

// Armed returns the number of currently armed timers
func (s *Scheduler) Armed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop disarms every timer
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// Package reminder implements the reminder lifecycle: parse results come
// in, records are persisted, timers are armed, and fired reminders are
// delivered and removed.
package reminder

import (
	"sync"
	"time"

	"superbot/pkg/adapter"
	"superbot/pkg/repository"
)

// UseCase provides reminder operations over the persistent store and the
// chat transport. A single mutex serializes load-modify-save cycles so a
// firing timer never races a command handler on the store file.
type UseCase struct {
	mu        sync.Mutex
	repo      repository.Reminders
	transport adapter.Transport
	scheduler *Scheduler
	now       func() time.Time
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithNow overrides the clock (used in tests)
func WithNow(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// New creates a reminder UseCase. Scheduler options control the timer
// floor and ceiling.
func New(repo repository.Reminders, transport adapter.Transport, schedOpts []SchedulerOption, opts ...Option) *UseCase {
	uc := &UseCase{
		repo:      repo,
		transport: transport,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	schedOpts = append([]SchedulerOption{WithClock(uc.now)}, schedOpts...)
	uc.scheduler = NewScheduler(uc.fire, schedOpts...)

	return uc
}

// Stop disarms all timers (process shutdown)
func (u *UseCase) Stop() {
	u.scheduler.Stop()
}

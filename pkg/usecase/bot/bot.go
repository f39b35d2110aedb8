// Package bot runs the update loop and routes inbound messages to the
// reminder and file usecases. Updates are handled one at a time, so store
// mutations from command handlers never overlap.
package bot

import (
	"context"
	"time"

	"superbot/pkg/adapter"
	"superbot/pkg/usecase/files"
	"superbot/pkg/usecase/reminder"
	"superbot/pkg/utils/logging"
)

const (
	defaultPollTimeout = 30 * time.Second
	pollRetryDelay     = 3 * time.Second
)

// Bot wires the chat transport to the usecases
type Bot struct {
	transport   adapter.Transport
	reminders   *reminder.UseCase
	files       *files.UseCase
	pollTimeout time.Duration
	now         func() time.Time
	offset      int64
}

// Option is a functional option for Bot
type Option func(*Bot)

// WithPollTimeout sets the long-poll timeout for GetUpdates
func WithPollTimeout(d time.Duration) Option {
	return func(b *Bot) {
		b.pollTimeout = d
	}
}

// WithNow overrides the clock (used in tests)
func WithNow(now func() time.Time) Option {
	return func(b *Bot) {
		b.now = now
	}
}

// New creates a Bot
func New(transport adapter.Transport, reminders *reminder.UseCase, fileStore *files.UseCase, opts ...Option) *Bot {
	b := &Bot{
		transport:   transport,
		reminders:   reminders,
		files:       fileStore,
		pollTimeout: defaultPollTimeout,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Run long-polls for updates until the context is cancelled. Poll errors
// are logged and retried after a short delay.
func (b *Bot) Run(ctx context.Context) error {
	logger := logging.From(ctx)
	logger.Info("bot is running")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		updates, err := b.transport.GetUpdates(ctx, b.offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("failed to fetch updates", "error", err)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollRetryDelay):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= b.offset {
				b.offset = u.UpdateID + 1
			}
			b.HandleUpdate(ctx, u)
		}
	}
}

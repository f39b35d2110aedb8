package reminder

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"superbot/pkg/model"
	"superbot/pkg/service/ops"
	"superbot/pkg/utils/logging"
)

// Create persists a new reminder and arms its timer. A storage failure is
// returned to the caller so the user can be told the reminder was not
// saved. A scheduling refusal is only logged: the record stays persisted.
func (u *UseCase) Create(ctx context.Context, chatID int64, userID, task string, fireAt time.Time) (*model.Reminder, error) {
	rec := &model.Reminder{
		ID:        model.NewReminderID(),
		ChatID:    chatID,
		UserID:    userID,
		Task:      task,
		WhenTS:    fireAt.Unix(),
		CreatedAt: u.now().UTC(),
	}

	u.mu.Lock()
	reminders, err := u.repo.Load(ctx)
	if err == nil {
		reminders[rec.ID] = rec
		err = u.repo.Save(ctx, reminders)
	}
	u.mu.Unlock()

	if err != nil {
		return nil, goerr.Wrap(err, "failed to persist reminder", goerr.V("id", rec.ID))
	}

	if err := u.scheduler.Register(rec); err != nil {
		logging.From(ctx).Warn("reminder persisted but not armed",
			"id", rec.ID, "error", err)
	}

	ops.RemindersCreated.Inc()
	return rec, nil
}

package reminder

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"superbot/pkg/model"
	"superbot/pkg/service/ops"
)

// Cancel removes a pending reminder and disarms its timer. An unknown id
// yields model.ErrReminderNotFound so the caller can tell the user; the
// timer cancellation itself is best-effort (the timer may already have
// fired).
func (u *UseCase) Cancel(ctx context.Context, id model.ReminderID) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	reminders, err := u.repo.Load(ctx)
	if err != nil {
		return err
	}

	if _, ok := reminders[id]; !ok {
		return goerr.Wrap(model.ErrReminderNotFound, "cannot cancel", goerr.V("id", id))
	}

	u.scheduler.Cancel(id)

	delete(reminders, id)
	if err := u.repo.Save(ctx, reminders); err != nil {
		return goerr.Wrap(err, "failed to persist cancellation", goerr.V("id", id))
	}

	ops.RemindersCancelled.Inc()
	return nil
}

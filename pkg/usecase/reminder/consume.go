package reminder

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"

	"superbot/pkg/model"
	"superbot/pkg/service/ops"
	"superbot/pkg/utils/logging"
)

// Consume deletes a record after its timer fired. It is idempotent: the
// record may already be gone if it was cancelled while the firing was in
// flight, and that is not an error.
func (u *UseCase) Consume(ctx context.Context, id model.ReminderID) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	reminders, err := u.repo.Load(ctx)
	if err != nil {
		return err
	}

	if _, ok := reminders[id]; !ok {
		return nil
	}

	delete(reminders, id)
	if err := u.repo.Save(ctx, reminders); err != nil {
		return goerr.Wrap(err, "failed to remove fired reminder", goerr.V("id", id))
	}

	return nil
}

// fire delivers the reminder and removes its record. Delivery is
// at-most-once: a failed send is logged but the record is consumed anyway.
func (u *UseCase) fire(ctx context.Context, rec *model.Reminder) {
	logger := logging.From(ctx)

	text := fmt.Sprintf("⏰ REMINDER: %s\n(ID: %s)", rec.Task, rec.ID)
	if _, err := u.transport.SendMessage(ctx, rec.ChatID, text); err != nil {
		ops.DeliveryFailures.Inc()
		logger.Error("failed to deliver reminder", "id", rec.ID, "chat_id", rec.ChatID, "error", err)
	}

	ops.RemindersFired.Inc()

	if err := u.Consume(ctx, rec.ID); err != nil {
		logger.Error("failed to remove fired reminder", "id", rec.ID, "error", err)
	}
}

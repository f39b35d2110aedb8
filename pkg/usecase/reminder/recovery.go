package reminder

import (
	"context"

	"superbot/pkg/utils/logging"
)

// Restore re-arms every persisted reminder after a restart. Past-due
// records get the floor delay so they fire almost immediately instead of
// being dropped. A record that cannot be armed is logged and skipped; it
// does not abort the rest. Returns the number of re-armed reminders.
func (u *UseCase) Restore(ctx context.Context) (int, error) {
	u.mu.Lock()
	reminders, err := u.repo.Load(ctx)
	u.mu.Unlock()
	if err != nil {
		return 0, err
	}

	logger := logging.From(ctx)
	restored := 0
	for id, rec := range reminders {
		if err := u.scheduler.Register(rec); err != nil {
			logger.Warn("skipping reminder that could not be re-armed", "id", id, "error", err)
			continue
		}
		restored++
	}

	if restored > 0 {
		logger.Info("restored persisted reminders", "count", restored)
	}

	return restored, nil
}

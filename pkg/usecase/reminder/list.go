package reminder

import (
	"context"
	"sort"

	"superbot/pkg/model"
)

// ListFor returns the user's pending reminders ordered by fire time
// ascending. No reminders is an empty slice, not an error.
func (u *UseCase) ListFor(ctx context.Context, userID string) ([]*model.Reminder, error) {
	u.mu.Lock()
	reminders, err := u.repo.Load(ctx)
	u.mu.Unlock()
	if err != nil {
		return nil, err
	}

	result := make([]*model.Reminder, 0, len(reminders))
	for _, rec := range reminders {
		if rec.UserID == userID {
			result = append(result, rec)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].WhenTS != result[j].WhenTS {
			return result[i].WhenTS < result[j].WhenTS
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// Package files keeps per-user records of uploaded files. The store is
// append-only; there is no delete operation.
package files

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"superbot/pkg/model"
	"superbot/pkg/repository"
	"superbot/pkg/service/ops"
)

// UseCase provides file-record operations
type UseCase struct {
	mu   sync.Mutex
	repo repository.Files
	now  func() time.Time
}

// Option is a functional option for UseCase
type Option func(*UseCase)

// WithNow overrides the clock (used in tests)
func WithNow(now func() time.Time) Option {
	return func(uc *UseCase) {
		uc.now = now
	}
}

// New creates a file UseCase
func New(repo repository.Files, opts ...Option) *UseCase {
	uc := &UseCase{
		repo: repo,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Save appends a record of an uploaded file for the user
func (u *UseCase) Save(ctx context.Context, userID, name, fileID string) (*model.FileRecord, error) {
	rec := &model.FileRecord{
		ID:     uuid.New().String(),
		Name:   name,
		FileID: fileID,
		Date:   u.now().UTC(),
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	records, err := u.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	records[userID] = append(records[userID], rec)
	if err := u.repo.Save(ctx, records); err != nil {
		return nil, goerr.Wrap(err, "failed to persist file record",
			goerr.V("user_id", userID), goerr.V("name", name))
	}

	ops.FilesSaved.Inc()
	return rec, nil
}

// ListFor returns the user's file records in the order they were saved
func (u *UseCase) ListFor(ctx context.Context, userID string) ([]*model.FileRecord, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	records, err := u.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	return records[userID], nil
}

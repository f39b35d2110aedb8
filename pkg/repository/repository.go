package repository

import (
	"context"

	"superbot/pkg/model"
)

// Reminders defines persistence for reminder records. Save replaces the
// whole document; callers do load-modify-save and are expected to be the
// only writer at a time.
type Reminders interface {
	// Load reads all persisted reminders. A missing or unreadable file
	// yields an empty map, never an error.
	Load(ctx context.Context) (map[model.ReminderID]*model.Reminder, error)

	// Save atomically replaces the persisted document
	Save(ctx context.Context, reminders map[model.ReminderID]*model.Reminder) error
}

// Files defines persistence for per-user file records, keyed by the
// stringified user id. The record lists are append-only.
type Files interface {
	// Load reads all persisted file records
	Load(ctx context.Context) (map[string][]*model.FileRecord, error)

	// Save atomically replaces the persisted document
	Save(ctx context.Context, files map[string][]*model.FileRecord) error
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"

	"superbot/pkg/model"
	"superbot/pkg/utils/logging"
)

// jsonReminders implements Reminders on a single JSON file
type jsonReminders struct {
	path string
}

// NewReminderFile creates a reminder store backed by the JSON file at path
func NewReminderFile(path string) Reminders {
	return &jsonReminders{path: path}
}

func (r *jsonReminders) Load(ctx context.Context) (map[model.ReminderID]*model.Reminder, error) {
	reminders := make(map[model.ReminderID]*model.Reminder)
	loadJSON(ctx, r.path, &reminders)
	return reminders, nil
}

func (r *jsonReminders) Save(ctx context.Context, reminders map[model.ReminderID]*model.Reminder) error {
	return writeAtomic(r.path, reminders)
}

// jsonFiles implements Files on a single JSON file
type jsonFiles struct {
	path string
}

// NewFileStore creates a file-record store backed by the JSON file at path
func NewFileStore(path string) Files {
	return &jsonFiles{path: path}
}

func (f *jsonFiles) Load(ctx context.Context) (map[string][]*model.FileRecord, error) {
	files := make(map[string][]*model.FileRecord)
	loadJSON(ctx, f.path, &files)
	return files, nil
}

func (f *jsonFiles) Save(ctx context.Context, files map[string][]*model.FileRecord) error {
	return writeAtomic(f.path, files)
}

// loadJSON fills dst from the file at path. A missing file is normal
// (first run); read or decode failures are logged and leave dst empty so
// corruption never crashes the caller.
func loadJSON(ctx context.Context, path string, dst any) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.From(ctx).Warn("failed to read store file, starting empty",
				"path", path, "error", err)
		}
		return
	}

	if err := json.Unmarshal(data, dst); err != nil {
		logging.From(ctx).Warn("store file is corrupt, starting empty",
			"path", path, "error", err)
	}
}

// writeAtomic writes v as indented JSON to a temporary file in the same
// directory and renames it over path, so a reader never observes a partial
// document.
func writeAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to encode store document", goerr.V("path", path))
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp file", goerr.V("dir", dir))
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return goerr.Wrap(err, "failed to write temp file", goerr.V("path", tmpPath))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return goerr.Wrap(err, "failed to close temp file", goerr.V("path", tmpPath))
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return goerr.Wrap(err, "failed to replace store file", goerr.V("path", path))
	}

	return nil
}

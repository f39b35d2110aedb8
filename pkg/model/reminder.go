package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrReminderNotFound = goerr.New("reminder not found")
)

type ReminderID string

// NewReminderID generates a new unique ReminderID
func NewReminderID() ReminderID {
	return ReminderID(uuid.New().String())
}

// Reminder is a persisted one-shot notification. All fields are immutable
// after creation; cancellation deletes the record, it never modifies it.
type Reminder struct {
	ID        ReminderID `json:"id"`
	ChatID    int64      `json:"chat_id"`
	UserID    string     `json:"user_id"`
	Task      string     `json:"task"`
	WhenTS    int64      `json:"when_ts"`
	CreatedAt time.Time  `json:"created_at"`
}

// FireAt returns the scheduled delivery time.
func (r *Reminder) FireAt() time.Time {
	return time.Unix(r.WhenTS, 0).UTC()
}

// Validate checks if the reminder has all required fields
func (r *Reminder) Validate() error {
	if r.ID == "" {
		return goerr.New("reminder ID is empty")
	}
	if r.ChatID == 0 {
		return goerr.New("chat ID is empty", goerr.V("id", r.ID))
	}
	if r.WhenTS == 0 {
		return goerr.New("reminder has no fire time", goerr.V("id", r.ID))
	}
	return nil
}

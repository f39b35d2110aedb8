package model

import "time"

// FileRecord is one stored file entry. Records are grouped per user in the
// store and are append-only; there is no delete operation.
type FileRecord struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	FileID string    `json:"file_id"`
	Date   time.Time `json:"date"`
}

// Package activity records file operations per container for the tenant
// activity feed. Writes are best effort; a failed record never fails the
// file operation that produced it.
package activity

import "time"

// Action is the file operation being recorded.
type Action string

const (
	ActionUpload   Action = "Upload"
	ActionDownload Action = "Download"
	ActionDelete   Action = "Delete"
)

// Record is one activity entry for a container.
type Record struct {
	Container     string
	Action        Action
	FileName      string
	Directory     string
	UserID        string
	SizeBytes     int64
	CorrelationID string
	OccurredAt    time.Time
}

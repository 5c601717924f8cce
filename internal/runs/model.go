package runs

import (
	"time"

	"resighting-export/internal/export"
)

// Status is the lifecycle state of an export run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusEmpty     Status = "empty"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Run is the history entry for one export.
type Run struct {
	ID            string
	StartDate     string
	EndDate       string
	SchemaVersion string
	Status        Status
	Records       int
	Unrecognized  int
	Failures      int
	FileName      string
	StorageKey    string
	SizeBytes     int64
	ErrorKind     string
	ErrorMessage  string
	Report        export.Report
	CreatedAt     time.Time
	CompletedAt   *time.Time
}

package runs

import "errors"

var (
	// ErrNotFound indicates no run carries the requested id.
	ErrNotFound = errors.New("export run not found")

	// ErrNoDocument indicates the run produced no downloadable workbook.
	ErrNoDocument = errors.New("export run has no document")
)

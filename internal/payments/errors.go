package payments

import "errors"

var (
	// ErrNotFound is returned when no record carries the requested id.
	ErrNotFound = errors.New("transaction not found")

	// ErrNoMoreRecords is returned when the requested page is past the end
	// of the filtered sequence.
	ErrNoMoreRecords = errors.New("no more records")
)

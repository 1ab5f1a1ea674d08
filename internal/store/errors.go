package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no recording exists for the given id.
	ErrNotFound = errors.New("recording not found")

	// ErrInvalidName rejects empty or whitespace-only rename targets.
	ErrInvalidName = errors.New("invalid recording name")
)

// WriteError reports a failed or partial persistence operation.
type WriteError struct {
	Op  string
	ID  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

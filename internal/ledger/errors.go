package ledger

import (
	"errors"
	"fmt"
)

// ErrPersist wraps every failure reported by the Store. The in-memory
// mutation that triggered the save is kept.
var ErrPersist = errors.New("persist ledger")

// ErrStale is returned by a Store whose record was written by someone else
// since the ledger last loaded or saved it.
var ErrStale = errors.New("store changed since last load")

// MalformedRecordError describes a persisted record that could not be restored.
type MalformedRecordError struct {
	Index int
	ID    string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("record %d (id %s): %v", e.Index, e.ID, e.Err)
	}
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

func persistError(err error) error {
	return fmt.Errorf("%w: %w", ErrPersist, err)
}

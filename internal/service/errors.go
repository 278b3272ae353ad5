package service

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadySyncing     = errors.New("sync already in progress")
	ErrSyncDisabled       = errors.New("sync is disabled")
	ErrNoPendingConflicts = errors.New("no conflicts pending resolution")
	ErrUnknownChoice      = errors.New("unknown resolution choice")
	ErrConnection         = errors.New("remote connection failed")

	ErrInvalidSyncConfig = errors.New("invalid sync configuration")
)

// ApplyError is a per-record application failure. One failing record never
// aborts its siblings; the orchestrator collects these and the record stays
// unresolved until the next round.
type ApplyError struct {
	ID    string
	Cause error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("apply record %s: %v", e.ID, e.Cause)
}

func (e *ApplyError) Unwrap() error {
	return e.Cause
}

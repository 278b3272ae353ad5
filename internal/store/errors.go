package store

import "errors"

var (
	// ErrRecordNotFound is returned when a record id has no row.
	ErrRecordNotFound = errors.New("record not found")
	// ErrSettingNotFound is returned when a settings key has no row.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrManifestCommit wraps any failure of a round's atomic manifest
	// commit. Callers treat it as fatal for the round: nothing is
	// confirmed, everything is re-evaluated next time.
	ErrManifestCommit = errors.New("manifest commit failed")
)

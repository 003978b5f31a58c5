package models

import "errors"

var (
	// ErrEntryNotFound is returned when a schedule entry id is unknown to the store.
	ErrEntryNotFound = errors.New("schedule entry not found")
	// ErrVersionMismatch is returned when a patch targets an outdated version of an entry.
	ErrVersionMismatch = errors.New("schedule entry version mismatch")
)

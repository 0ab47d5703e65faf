package database

import "errors"

var (
	// ErrNotFound is returned when a lookup or update matches no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey is returned when a write collides with a unique column
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrTxConflict wraps serialization failures that persisted through every retry.
	// The operation is safe to retry from scratch.
	ErrTxConflict = errors.New("transaction conflict")
)

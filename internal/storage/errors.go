package storage

import "errors"

// Sentinel errors shared by all store implementations. Both the event log
// and the feature table are append-only.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when an insert collides with an
	// existing key. Rows are never updated in place.
	ErrDuplicateKey = errors.New("duplicate key in append-only store")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)

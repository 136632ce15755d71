package photoindex

import "errors"

var (
	// ErrNotFound is returned when a filename is not in the index.
	ErrNotFound = errors.New("photo not found")

	// ErrValidation is returned for malformed mutation arguments.
	ErrValidation = errors.New("invalid request")

	// ErrPersistence is returned when a mutation was applied in memory but
	// could not be written to disk. The mutation is kept and written by the
	// next successful persist.
	ErrPersistence = errors.New("failed to persist index")

	// ErrClosed is returned for mutations after Close.
	ErrClosed = errors.New("index store is closed")
)

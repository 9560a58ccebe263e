package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrVersionMismatch means the document exists but its version no longer
	// matches the caller's expected version.
	ErrVersionMismatch = errors.New("booking version mismatch")
)

package errors

import "errors"

var (
	ErrNotFound = errors.New("worker not found")

	ErrInvalidID = errors.New("invalid worker ID format")
)

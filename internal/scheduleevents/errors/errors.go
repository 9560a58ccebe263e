package errors

import "errors"

var (
	ErrNotFound = errors.New("schedule event not found")

	ErrInvalidID = errors.New("invalid schedule event ID format")
)

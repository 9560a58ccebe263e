package errors

import "errors"

var (
	ErrNotFound = errors.New("working hours not found")

	ErrInvalidID = errors.New("invalid working hours ID format")

	ErrInvalidTimeRange = errors.New("end time must be after start time")
)

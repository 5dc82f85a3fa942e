package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrRecordNotFound = errors.New("reservation record not found")

	ErrConflict = errors.New("interval overlaps an active reservation")

	ErrAlreadyExpired = errors.New("reservation hold already expired")

	ErrLockTimeout = errors.New("timed out waiting for property lock")

	ErrInvalidInterval = errors.New("end date must be after start date")
)

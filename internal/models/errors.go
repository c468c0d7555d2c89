package models

import "errors"

var (
	// Lookup errors
	ErrNotFound = errors.New("not found")

	// User errors
	ErrUserExists         = errors.New("user already exists with this email or phone number")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Booking errors
	ErrInvalidTimeWindow = errors.New("end time must be after start time")
	ErrCapacityExceeded  = errors.New("spot not available for the given time range")
	ErrDuplicateBooking  = errors.New("a similar booking already exists")
	ErrInvalidTransition = errors.New("this booking cannot be cancelled")

	// Lock errors
	ErrLockTimeout = errors.New("timed out waiting for slot lock")
)

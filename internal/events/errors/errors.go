package errors

import "errors"

var (
	ErrNotFound = errors.New("event not found")

	ErrInvalidID = errors.New("invalid event ID format")

	ErrNotPending = errors.New("event is not pending")

	ErrAlreadyApproved = errors.New("event is already approved")

	ErrStoreUnavailable = errors.New("event store unavailable")
)

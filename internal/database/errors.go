package database

import "errors"

// Business-rule violations surfaced by the shift ledger and break tracker.
// These are synchronous caller errors, never retried automatically.
var (
	ErrDuplicateActiveShift  = errors.New("worker already has an active shift")
	ErrNoActiveShift         = errors.New("worker has no active shift")
	ErrAlreadyOnBreak        = errors.New("worker is already on break")
	ErrNoActiveBreak         = errors.New("worker has no active break")
	ErrNotFound              = errors.New("record not found")
	ErrDuplicateEmail        = errors.New("email is already registered")
	ErrInvalidLocationSample = errors.New("invalid location sample")
)

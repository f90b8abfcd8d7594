package domain

import "errors"

var (
	// ErrValidation rejects input outside the allowed domain before any mutation.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the acting party is not the pairing's payee.
	ErrUnauthorized = errors.New("acting user is not the designated payee")

	// ErrAlreadyConfirmed means the pairing's payment was already marked paid.
	ErrAlreadyConfirmed = errors.New("payment already confirmed")

	// ErrIllegalState rejects a transition the state machine does not allow.
	ErrIllegalState = errors.New("illegal state transition")

	// ErrConflict signals lost lock/version contention during a sweep. Callers
	// retry the affected record on the next cycle, never surface it as fatal.
	ErrConflict = errors.New("concurrent update conflict")
)

package errors

import "fmt"

// Categories. Every error returned by the services wraps one of them.
var (
	ErrValidation   = fmt.Errorf("validation failed")
	ErrConflict     = fmt.Errorf("conflict")
	ErrNotFound     = fmt.Errorf("not found")
	ErrUnauthorized = fmt.Errorf("unauthorized")
	ErrStorage      = fmt.Errorf("storage failure")
)

var (
	ErrInvalidName    = fmt.Errorf("%w: invalid participant name", ErrValidation)
	ErrInvalidMessage = fmt.Errorf("%w: invalid message", ErrValidation)
	ErrInvalidLimit   = fmt.Errorf("%w: limit must be a positive integer", ErrValidation)

	ErrNameTaken = fmt.Errorf("%w: participant name already in use", ErrConflict)

	ErrParticipantNotFound = fmt.Errorf("%w: participant", ErrNotFound)
	ErrMessageNotFound     = fmt.Errorf("%w: message", ErrNotFound)

	ErrSenderOffline   = fmt.Errorf("%w: sender is not online", ErrUnauthorized)
	ErrNotMessageOwner = fmt.Errorf("%w: requester did not send this message", ErrUnauthorized)

	ErrWorkerPanic = fmt.Errorf("worker panic")
)

// Storage wraps an I/O failure coming from the store so that callers can
// match it with ErrStorage while keeping the cause.
func Storage(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}

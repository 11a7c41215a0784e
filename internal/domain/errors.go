package domain

import "errors"

var (
	// ErrInvalidRange indicates a malformed value: a window whose start is
	// not before its end, an out-of-range clock minute, a missing required
	// field.
	ErrInvalidRange = errors.New("value out of range")

	// ErrInvalidTimezone indicates a zone identifier that is not a known
	// IANA timezone.
	ErrInvalidTimezone = errors.New("unknown IANA timezone")

	// ErrInvalidCoordinates indicates a latitude outside [-90,90] or a
	// longitude outside [-180,180].
	ErrInvalidCoordinates = errors.New("coordinates out of range")

	// ErrInvalidTransition indicates a status change the state machine
	// does not permit.
	ErrInvalidTransition = errors.New("status transition not allowed")

	// ErrWindowLocked indicates an attempt to edit the time slot of a
	// completed or cancelled assignment.
	ErrWindowLocked = errors.New("assignment window is locked in a terminal state")

	// ErrInvalidConfig indicates scoring weights or rotation settings out
	// of range at load time.
	ErrInvalidConfig = errors.New("configuration out of range")
)

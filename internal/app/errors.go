package app

import (
	"errors"
	"fmt"

	"github.com/dispatchly/smartsched/internal/domain"
)

type ErrorCode string

const (
	CodeNotFound              ErrorCode = "NOT_FOUND"
	CodeInvalidArgument       ErrorCode = "INVALID_ARGUMENT"
	CodeInvalidState          ErrorCode = "INVALID_STATE"
	CodeNotAvailable          ErrorCode = "NOT_AVAILABLE"
	CodeConflictingAssignment ErrorCode = "CONFLICTING_ASSIGNMENT"
	CodeInvalidConfig         ErrorCode = "INVALID_CONFIG"
	CodeUpstreamUnavailable   ErrorCode = "UPSTREAM_UNAVAILABLE"
	CodeVersionConflict       ErrorCode = "VERSION_CONFLICT"
)

// Error is the typed failure every use case surfaces. Callers branch on Code,
// never on message text.
type Error struct {
	Code    ErrorCode
	Message string

	// ConflictingAssignmentID is set when Code is CONFLICTING_ASSIGNMENT.
	ConflictingAssignmentID string

	cause error
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func NotFound(entity, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

func InvalidArgument(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

func InvalidState(format string, args ...any) *Error {
	return &Error{Code: CodeInvalidState, Message: fmt.Sprintf(format, args...)}
}

// NotAvailable carries the engine's human-readable rejection reason.
func NotAvailable(reason string) *Error {
	return &Error{Code: CodeNotAvailable, Message: reason}
}

// ConflictingAssignment carries the ID of the assignment the requested window
// overlaps, so clients can surface or resolve the collision.
func ConflictingAssignment(assignmentID string) *Error {
	return &Error{
		Code:                    CodeConflictingAssignment,
		Message:                 fmt.Sprintf("window overlaps assignment %s", assignmentID),
		ConflictingAssignmentID: assignmentID,
	}
}

func InvalidConfig(err error) *Error {
	return &Error{Code: CodeInvalidConfig, Message: err.Error(), cause: err}
}

func UpstreamUnavailable(service string, err error) *Error {
	return &Error{
		Code:    CodeUpstreamUnavailable,
		Message: fmt.Sprintf("%s unavailable: %v", service, err),
		cause:   err,
	}
}

// VersionConflict reports a lost optimistic-concurrency update; the client
// should re-read and retry.
func VersionConflict(entity, id string) *Error {
	return &Error{Code: CodeVersionConflict, Message: fmt.Sprintf("%s %s was modified concurrently", entity, id)}
}

// CodeOf extracts the taxonomy code from any error in the chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// FromDomain maps domain sentinels onto the taxonomy. Unknown errors pass
// through unchanged so unexpected failures stay visible.
func FromDomain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrInvalidRange),
		errors.Is(err, domain.ErrInvalidTimezone),
		errors.Is(err, domain.ErrInvalidCoordinates):
		return &Error{Code: CodeInvalidArgument, Message: err.Error(), cause: err}
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrWindowLocked):
		return &Error{Code: CodeInvalidState, Message: err.Error(), cause: err}
	case errors.Is(err, domain.ErrInvalidConfig):
		return &Error{Code: CodeInvalidConfig, Message: err.Error(), cause: err}
	default:
		return err
	}
}

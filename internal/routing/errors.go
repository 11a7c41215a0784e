package routing

import "errors"

var (
	// ErrUnavailable indicates the routing service is unreachable or its
	// circuit breaker is open.
	ErrUnavailable = errors.New("routing service unavailable")

	// ErrTimeout indicates the routing request exceeded the configured timeout.
	ErrTimeout = errors.New("routing request timed out")

	// ErrBadResponse indicates the routing response could not be parsed or
	// did not cover the requested legs.
	ErrBadResponse = errors.New("invalid routing response")

	// ErrRetryExhausted indicates every configured attempt failed.
	ErrRetryExhausted = errors.New("routing retry attempts exhausted")
)

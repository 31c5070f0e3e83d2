package gateway

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a gateway failure.
type ErrorKind string

const (
	// KindTransport means the request never produced an authoritative
	// answer: connection failures, timeouts, 5xx. Safe to retry.
	KindTransport ErrorKind = "transport"
	// KindUnauthorized means the session token is no longer valid.
	// This is a process-wide signal, not a per-operation condition.
	KindUnauthorized ErrorKind = "unauthorized"
	// KindValidation means the authority rejected the payload.
	KindValidation ErrorKind = "validation"
	// KindNotFound means the target entity vanished server-side.
	KindNotFound ErrorKind = "not_found"
	// KindConflict means the request collided with concurrent state.
	KindConflict ErrorKind = "conflict"
)

// Error is the typed failure returned by every gateway operation.
type Error struct {
	Kind    ErrorKind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Op, e.Message, e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the error kind, or KindTransport for any error that
// is not a gateway error (the conservative, retryable classification).
func KindOf(err error) ErrorKind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindTransport
}

// IsRetryable reports whether the failure is transient.
func IsRetryable(err error) bool {
	return KindOf(err) == KindTransport
}

// IsUnauthorized reports whether the failure invalidates the session.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

// IsNotFound reports whether the target no longer exists server-side.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

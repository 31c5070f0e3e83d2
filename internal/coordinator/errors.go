package coordinator

import "fmt"

// ValidationError is a client-side precondition failure, rejected
// before any optimistic apply or network dispatch.
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// NotInStoreError means the mutation targets an entity the store does
// not hold, so there is nothing to apply the change to.
type NotInStoreError struct {
	Kind string
	ID   int64
}

func (e *NotInStoreError) Error() string {
	return fmt.Sprintf("%s %d not loaded", e.Kind, e.ID)
}

func validationErr(op, reason string) error {
	return &ValidationError{Op: op, Reason: reason}
}

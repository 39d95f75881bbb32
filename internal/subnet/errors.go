package subnet

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no subnet matches a lookup.
	ErrNotFound = errors.New("subnet not found")

	// ErrConflict is returned when a guarded update finds the record in a
	// different status than expected.
	ErrConflict = errors.New("subnet status changed concurrently")
)

// InvariantViolation signals a logic or data bug: an illegal transition, a
// deploy while another subnet is active, or a record missing fields its
// status requires. It is never retried.
type InvariantViolation struct {
	SubnetID string
	Reason   string
}

func (e *InvariantViolation) Error() string {
	if e.SubnetID == "" {
		return "invariant violation: " + e.Reason
	}
	return fmt.Sprintf("invariant violation on subnet %s: %s", e.SubnetID, e.Reason)
}

// IsInvariantViolation reports whether err is or wraps an InvariantViolation.
func IsInvariantViolation(err error) bool {
	var iv *InvariantViolation
	return errors.As(err, &iv)
}

// Transient is implemented by errors from external collaborators that are
// safe to retry on the next scheduled Advance.
type Transient interface {
	error
	Transient() bool
}

// IsTransient reports whether err, or any error it wraps, is transient.
func IsTransient(err error) bool {
	var t Transient
	if errors.As(err, &t) {
		return t.Transient()
	}
	return false
}

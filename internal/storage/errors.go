package storage

import "fmt"

// Error wraps a database failure.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Transient reports true: the next poll retries against the database.
func (e *Error) Transient() bool { return true }

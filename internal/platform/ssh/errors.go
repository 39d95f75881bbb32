package ssh

import "fmt"

// ConnectionError means the host could not be reached or refused to log us in.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("ssh connect to %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// Transient reports true: instances accept SSH some time after boot.
func (e *ConnectionError) Transient() bool { return true }

// ExecutionError means the command could not be run or its session broke.
// ExitStatus is set only when FirstOutput saw the command fail silently.
type ExecutionError struct {
	Host       string
	Command    string
	ExitStatus int
	Err        error
}

func (e *ExecutionError) Error() string {
	if e.ExitStatus != 0 {
		return fmt.Sprintf("ssh exec on %s: %q exited with status %d", e.Host, e.Command, e.ExitStatus)
	}
	return fmt.Sprintf("ssh exec on %s: %q: %v", e.Host, e.Command, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Transient reports true.
func (e *ExecutionError) Transient() bool { return true }

package subnet

import "fmt"

// Status is the lifecycle state of a subnet.
type Status string

// Lifecycle states in forward order, followed by the absorbing DELETED state.
const (
	StatusDeploying Status = "DEPLOYING"
	StatusDeployed  Status = "DEPLOYED"
	StatusLaunching Status = "LAUNCHING"
	StatusRunning   Status = "RUNNING"
	StatusDeleted   Status = "DELETED"
)

// forwardOrder ranks the non-terminal states. DELETED has no rank.
var forwardOrder = map[Status]int{
	StatusDeploying: 0,
	StatusDeployed:  1,
	StatusLaunching: 2,
	StatusRunning:   3,
}

// AllStatuses lists every status, forward order first.
var AllStatuses = []Status{StatusDeploying, StatusDeployed, StatusLaunching, StatusRunning, StatusDeleted}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := forwardOrder[s]
	return ok || s == StatusDeleted
}

// Active reports whether the status counts towards the single-active-subnet rule.
func (s Status) Active() bool {
	return s.Valid() && s != StatusDeleted
}

// Next returns the state that follows s in the forward lifecycle.
// RUNNING and DELETED have no successor.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusDeploying:
		return StatusDeployed, true
	case StatusDeployed:
		return StatusLaunching, true
	case StatusLaunching:
		return StatusRunning, true
	default:
		return "", false
	}
}

// CanTransition reports whether moving from -> to is legal: exactly one step
// forward, or any non-terminal state to DELETED.
func CanTransition(from, to Status) bool {
	if to == StatusDeleted {
		return from.Active()
	}
	next, ok := from.Next()
	return ok && next == to
}

// CheckTransition returns an InvariantViolation for subnet id when
// from -> to is illegal.
func CheckTransition(id string, from, to Status) error {
	if CanTransition(from, to) {
		return nil
	}
	return &InvariantViolation{SubnetID: id, Reason: fmt.Sprintf("illegal status transition %s -> %s", from, to)}
}

func (s Status) String() string {
	return string(s)
}

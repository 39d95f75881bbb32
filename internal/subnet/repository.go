package subnet

import (
	"context"

	"github.com/imamik/subnetctl/internal/util/ptr"
)

// Repository persists subnets. Implementations must apply Update as a
// partial write of the named fields only.
type Repository interface {
	// Insert stores s, assigning ID and CreatedTime when they are empty.
	Insert(ctx context.Context, s *Subnet) (string, error)
	// FindByID returns ErrNotFound for unknown ids.
	FindByID(ctx context.Context, id string) (*Subnet, error)
	// FindMostRecentActive returns the newest subnet whose status is not
	// DELETED, or ErrNotFound.
	FindMostRecentActive(ctx context.Context) (*Subnet, error)
	// UpdateFields applies u to the subnet with the given id. It returns
	// ErrNotFound for unknown ids and ErrConflict when u.IfStatus is set and
	// the stored status differs.
	UpdateFields(ctx context.Context, id string, u Update) error
	// List returns subnets newest first. Zero limit means no limit.
	List(ctx context.Context, includeDeleted bool, limit int) ([]*Subnet, error)
}

// Update names the fields to change. Nil fields are left untouched.
type Update struct {
	Status     *Status
	ServerIP   *string
	Validators []Validator

	// IfStatus, when set, makes the write conditional on the stored status.
	IfStatus Status
}

// Empty reports whether u changes nothing.
func (u Update) Empty() bool {
	return u.Status == nil && u.ServerIP == nil && u.Validators == nil
}

// Transition builds the guarded update that moves a subnet from -> to.
func Transition(from, to Status) Update {
	return Update{Status: ptr.To(to), IfStatus: from}
}

// WithServerIP also sets the server address and mirrors it onto the first
// validator, which describes the same machine.
func (u Update) WithServerIP(ip string, validators []Validator) Update {
	u.ServerIP = ptr.To(ip)
	synced := make([]Validator, len(validators))
	copy(synced, validators)
	if len(synced) > 0 {
		synced[0].IP = ip
	}
	u.Validators = synced
	return u
}

package hcloud

import (
	"context"
)

// LifecycleState is the provider-independent lifecycle of an instance.
type LifecycleState string

const (
	LifecyclePending  LifecycleState = "pending"
	LifecycleActive   LifecycleState = "active"
	LifecycleDeleting LifecycleState = "deleting"
)

// HealthState reports whether an instance is reachable.
type HealthState string

const (
	HealthPending HealthState = "pending"
	HealthOK      HealthState = "ok"
)

// InstanceSpec holds all parameters for creating an instance.
type InstanceSpec struct {
	Name       string
	Image      string
	ServerType string
	Location   string
	// SSHKeys are provider SSH key names or IDs installed for root.
	SSHKeys []string
	Labels  map[string]string
}

// CreatedInstance is what the provider returns for an accepted create.
type CreatedInstance struct {
	ID   string
	Name string
	// DefaultCredential is the generated root password. The provider omits
	// it when SSH keys were supplied.
	DefaultCredential string
}

// Instance is a point-in-time view of a provisioned instance.
type Instance struct {
	ID             string
	Name           string
	LifecycleState LifecycleState
	HealthState    HealthState
	// MainIP is the public IPv4 address, empty until assigned.
	MainIP string
	Labels map[string]string
}

// Ready reports whether the instance is active, healthy, and addressable.
func (i *Instance) Ready() bool {
	return i.LifecycleState == LifecycleActive && i.HealthState == HealthOK && i.MainIP != ""
}

// InstanceProvider defines the interface for provisioning instances.
type InstanceProvider interface {
	CreateInstance(ctx context.Context, req InstanceSpec) (*CreatedInstance, error)
	GetInstance(ctx context.Context, id string) (*Instance, error)
	// DeleteInstance succeeds when the instance is already gone.
	DeleteInstance(ctx context.Context, id string) error
}

// SSHKeyManager defines the interface for managing SSH keys.
type SSHKeyManager interface {
	CreateSSHKey(ctx context.Context, name, publicKey string, labels map[string]string) (string, error)
	DeleteSSHKey(ctx context.Context, name string) error
}

// Provider combines everything the orchestrator needs from the cloud.
type Provider interface {
	InstanceProvider
	SSHKeyManager
}

var _ Provider = (*RealClient)(nil)

package subnet

import (
	"fmt"
	"strings"
	"time"
)

// Subnet is the single persisted entity: one validator deployment and the
// cloud instance backing it.
type Subnet struct {
	ID          string      `json:"id" yaml:"id"`
	Status      Status      `json:"status" yaml:"status"`
	CreatedTime time.Time   `json:"createdTime" yaml:"createdTime"`
	Label       string      `json:"label" yaml:"label"`
	Server      Server      `json:"server" yaml:"server"`
	Network     Network     `json:"network" yaml:"network"`
	Creator     Creator     `json:"creator" yaml:"creator"`
	Validators  []Validator `json:"validators" yaml:"validators"`
}

// Server holds identity and access data for the backing compute instance.
// IP stays empty until the provider reports the instance active.
type Server struct {
	ProviderInstanceID string `json:"providerInstanceId" yaml:"providerInstanceId"`
	IP                 string `json:"ip,omitempty" yaml:"ip,omitempty"`
	SSHUsername        string `json:"sshUsername" yaml:"sshUsername"`
	SSHCredential      string `json:"-" yaml:"-"`
	SSHKeyName         string `json:"sshKeyName,omitempty" yaml:"sshKeyName,omitempty"`
}

// Network is fixed at creation from configuration.
type Network struct {
	RPCPort int    `json:"rpcPort" yaml:"rpcPort"`
	ChainID uint64 `json:"chainId" yaml:"chainId"`
}

// Creator is the genesis validator/owner account of the chain.
type Creator struct {
	Address           string `json:"address" yaml:"address"`
	PublicKey         string `json:"publicKey" yaml:"publicKey"`
	PrivateCredential string `json:"-" yaml:"-"`
}

// Validator describes one validator node of the subnet.
type Validator struct {
	IP           string `json:"ip,omitempty" yaml:"ip,omitempty"`
	OwnerAddress string `json:"ownerAddress" yaml:"ownerAddress"`
}

// HasIP reports whether the provider has assigned the instance address.
func (s *Subnet) HasIP() bool {
	return s.Server.IP != ""
}

// RequireIP returns an InvariantViolation when a state that needs the
// instance address is reached without one.
func (s *Subnet) RequireIP() error {
	if s.HasIP() {
		return nil
	}
	return &InvariantViolation{
		SubnetID: s.ID,
		Reason:   fmt.Sprintf("status %s requires server ip", s.Status),
	}
}

// RequireSSHAccess returns an InvariantViolation unless the server address
// and login are recorded.
func (s *Subnet) RequireSSHAccess() error {
	var missing []string
	if !s.HasIP() {
		missing = append(missing, "server ip")
	}
	if s.Server.SSHUsername == "" {
		missing = append(missing, "ssh username")
	}
	if s.Server.SSHCredential == "" {
		missing = append(missing, "ssh credential")
	}
	if len(missing) == 0 {
		return nil
	}
	return &InvariantViolation{
		SubnetID: s.ID,
		Reason:   fmt.Sprintf("status %s requires %s", s.Status, strings.Join(missing, ", ")),
	}
}

// RPCEndpoint returns the Ethereum-style JSON-RPC endpoint of the subnet, or
// an empty string when no address is assigned yet.
func (s *Subnet) RPCEndpoint() string {
	if !s.HasIP() {
		return ""
	}
	return fmt.Sprintf("http://%s:%d", s.Server.IP, s.Network.RPCPort)
}

// Age returns how long ago the subnet was created.
func (s *Subnet) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedTime)
}

package storage

import (
	"time"

	"github.com/imamik/subnetctl/internal/subnet"
)

// record is the row layout of a subnet.
type record struct {
	ID          string         `gorm:"primaryKey;size:36"`
	Status      string         `gorm:"size:16;not null;index"`
	CreatedTime time.Time      `gorm:"not null;index"`
	Label       string         `gorm:"size:64;not null"`
	Server      serverColumns  `gorm:"embedded;embeddedPrefix:server_"`
	Network     networkColumns `gorm:"embedded;embeddedPrefix:network_"`
	Creator     creatorColumns `gorm:"embedded;embeddedPrefix:creator_"`
	// Validators is an ordered JSON list.
	Validators []subnet.Validator `gorm:"type:text;serializer:json"`
	UpdatedAt  time.Time
}

type serverColumns struct {
	ProviderInstanceID string `gorm:"size:64"`
	IP                 string `gorm:"size:45"`
	SSHUsername        string `gorm:"size:64"`
	SSHCredential      string `gorm:"type:text"`
	SSHKeyName         string `gorm:"size:128"`
}

type networkColumns struct {
	RPCPort int
	ChainID uint64
}

type creatorColumns struct {
	Address           string `gorm:"size:42"`
	PublicKey         string `gorm:"size:132"`
	PrivateCredential string `gorm:"size:66"`
}

func recordFromSubnet(s *subnet.Subnet) *record {
	return &record{
		ID:          s.ID,
		Status:      string(s.Status),
		CreatedTime: s.CreatedTime,
		Label:       s.Label,
		Server: serverColumns{
			ProviderInstanceID: s.Server.ProviderInstanceID,
			IP:                 s.Server.IP,
			SSHUsername:        s.Server.SSHUsername,
			SSHCredential:      s.Server.SSHCredential,
			SSHKeyName:         s.Server.SSHKeyName,
		},
		Network: networkColumns{
			RPCPort: s.Network.RPCPort,
			ChainID: s.Network.ChainID,
		},
		Creator: creatorColumns{
			Address:           s.Creator.Address,
			PublicKey:         s.Creator.PublicKey,
			PrivateCredential: s.Creator.PrivateCredential,
		},
		Validators: append([]subnet.Validator{}, s.Validators...),
	}
}

func (r *record) toSubnet() *subnet.Subnet {
	validators := r.Validators
	if validators == nil {
		validators = []subnet.Validator{}
	}
	return &subnet.Subnet{
		ID:          r.ID,
		Status:      subnet.Status(r.Status),
		CreatedTime: r.CreatedTime.UTC(),
		Label:       r.Label,
		Server: subnet.Server{
			ProviderInstanceID: r.Server.ProviderInstanceID,
			IP:                 r.Server.IP,
			SSHUsername:        r.Server.SSHUsername,
			SSHCredential:      r.Server.SSHCredential,
			SSHKeyName:         r.Server.SSHKeyName,
		},
		Network: subnet.Network{
			RPCPort: r.Network.RPCPort,
			ChainID: r.Network.ChainID,
		},
		Creator: subnet.Creator{
			Address:           r.Creator.Address,
			PublicKey:         r.Creator.PublicKey,
			PrivateCredential: r.Creator.PrivateCredential,
		},
		Validators: validators,
	}
}

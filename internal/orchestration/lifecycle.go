package orchestration

import (
	"context"
	"errors"
	"fmt"

	"github.com/imamik/subnetctl/internal/chain"
	"github.com/imamik/subnetctl/internal/logging"
	"github.com/imamik/subnetctl/internal/platform/hcloud"
	"github.com/imamik/subnetctl/internal/subnet"
	"github.com/imamik/subnetctl/internal/util/keygen"
	"github.com/imamik/subnetctl/internal/util/labels"
	"github.com/imamik/subnetctl/internal/util/naming"
	"github.com/imamik/subnetctl/internal/util/ptr"
)

// ErrInvalidLabel is returned by Deploy for labels outside 2 to 64 characters.
var ErrInvalidLabel = errors.New("invalid subnet label")

const labelRule = "min=2,max=64"

func isNotFound(err error) bool {
	return errors.Is(err, subnet.ErrNotFound)
}

// Deploy creates the backing instance and records a new DEPLOYING subnet.
// An empty label falls back to the configured instance label. Deploy fails
// with an InvariantViolation while another subnet is active.
func (o *Orchestrator) Deploy(ctx context.Context, label string) (*subnet.Subnet, error) {
	logger := logging.FromContext(ctx)

	if label == "" {
		label = o.cfg.Machine.InstanceLabel
	}
	if err := o.validate.Var(label, labelRule); err != nil {
		return nil, fmt.Errorf("%w %q: must be 2 to 64 characters", ErrInvalidLabel, label)
	}

	active, err := o.repo.FindMostRecentActive(ctx)
	switch {
	case err == nil:
		return nil, &subnet.InvariantViolation{
			SubnetID: active.ID,
			Reason:   fmt.Sprintf("cannot deploy while subnet is %s", active.Status),
		}
	case !isNotFound(err):
		return nil, fmt.Errorf("failed to check for an active subnet: %w", err)
	}

	creator, err := o.newCreator()
	if err != nil {
		return nil, err
	}

	token := naming.DeploymentToken()
	serverName := naming.Server(token)
	logger = logger.WithValues("instance", serverName)

	req := hcloud.InstanceSpec{
		Name:       serverName,
		Image:      o.cfg.Machine.Image,
		ServerType: o.cfg.Machine.ServerType,
		Location:   o.cfg.Machine.Location,
		Labels:     labels.NewLabelBuilder(token).WithRole(labels.RoleValidator).WithName(label).Build(),
	}

	var keyName, credential string
	if o.cfg.Access.GenerateKey {
		keyName, credential, err = o.registerSSHKey(ctx, token)
		if err != nil {
			return nil, err
		}
		req.SSHKeys = []string{keyName}
	}

	var created *hcloud.CreatedInstance
	err = o.callProvider(hcloud.OpCreateInstance, func() error {
		var cerr error
		created, cerr = o.provider.CreateInstance(ctx, req)
		return cerr
	})
	if err != nil {
		o.cleanupSSHKey(ctx, keyName)
		return nil, err
	}
	logger.Info("instance created", "id", created.ID)

	if credential == "" {
		credential = created.DefaultCredential
	}
	if credential == "" {
		o.cleanupInstance(ctx, created.ID)
		o.cleanupSSHKey(ctx, keyName)
		return nil, fmt.Errorf("provider returned no credential for instance %s", created.ID)
	}

	sn := newSubnetRecord(label, creator)
	sn.Server = subnet.Server{
		ProviderInstanceID: created.ID,
		SSHUsername:        o.cfg.Access.User,
		SSHCredential:      credential,
		SSHKeyName:         keyName,
	}
	sn.Network = subnet.Network{
		RPCPort: o.cfg.Network.RPCPort,
		ChainID: o.cfg.Network.ChainID,
	}

	if _, err := o.repo.Insert(ctx, sn); err != nil {
		logger.Error(err, "failed to record subnet, releasing instance")
		o.cleanupInstance(ctx, created.ID)
		o.cleanupSSHKey(ctx, keyName)
		return nil, fmt.Errorf("failed to record subnet: %w", err)
	}

	if err := o.settleOverlap(ctx, sn); err != nil {
		return nil, err
	}

	o.recordStatus(sn.Status)
	logger.Info("subnet deployed", "subnet", sn.ID, "status", sn.Status)
	return sn, nil
}

// settleOverlap re-reads the active subnets once sn is recorded. Deploys
// that overlap all pass the initial check, so the oldest active record wins
// and every other one is marked DELETED with its instance and key released.
func (o *Orchestrator) settleOverlap(ctx context.Context, sn *subnet.Subnet) error {
	logger := logging.FromContext(ctx).WithValues("subnet", sn.ID)

	active, err := o.repo.List(ctx, false, 0)
	if err != nil {
		logger.Error(err, "failed to re-check active subnets, keeping record")
		return nil
	}
	if len(active) == 0 {
		return nil
	}
	oldest := active[len(active)-1]
	if oldest.ID == sn.ID {
		return nil
	}

	logger.Info("overlapping deploy lost, releasing instance", "active", oldest.ID)
	if err := o.repo.UpdateFields(ctx, sn.ID, subnet.Update{Status: ptr.To(subnet.StatusDeleted)}); err != nil {
		logger.Error(err, "failed to mark overlapping subnet deleted")
	}
	o.cleanupInstance(ctx, sn.Server.ProviderInstanceID)
	o.cleanupSSHKey(ctx, sn.Server.SSHKeyName)

	return &subnet.InvariantViolation{
		SubnetID: oldest.ID,
		Reason:   fmt.Sprintf("cannot deploy while subnet is %s", oldest.Status),
	}
}

func newSubnetRecord(label string, creator *chain.Creator) *subnet.Subnet {
	owner := creator.Address.Hex()
	return &subnet.Subnet{
		Status: subnet.StatusDeploying,
		Label:  label,
		Creator: subnet.Creator{
			Address:           owner,
			PublicKey:         creator.PublicKey,
			PrivateCredential: creator.PrivateKey,
		},
		Validators: []subnet.Validator{{OwnerAddress: owner}},
	}
}

// registerSSHKey generates a key pair and uploads its public half. It
// returns the provider key name and the private key.
func (o *Orchestrator) registerSSHKey(ctx context.Context, token string) (string, string, error) {
	name := naming.SSHKey(token)
	pair, err := keygen.GenerateEd25519(name)
	if err != nil {
		return "", "", err
	}

	keyLabels := labels.NewLabelBuilder(token).WithRole(labels.RoleAccess).Build()
	err = o.callProvider(hcloud.OpCreateSSHKey, func() error {
		_, cerr := o.provider.CreateSSHKey(ctx, name, pair.AuthorizedKey(), keyLabels)
		return cerr
	})
	if err != nil {
		return "", "", err
	}
	logging.FromContext(ctx).V(1).Info("ssh key registered", "key", name, "fingerprint", pair.Fingerprint)
	return name, string(pair.PrivateKey), nil
}

func (o *Orchestrator) cleanupInstance(ctx context.Context, id string) {
	if id == "" {
		return
	}
	err := o.callProvider(hcloud.OpDeleteInstance, func() error {
		return o.provider.DeleteInstance(ctx, id)
	})
	if err != nil {
		logging.FromContext(ctx).Error(err, "failed to delete instance", "id", id)
	}
}

func (o *Orchestrator) cleanupSSHKey(ctx context.Context, name string) {
	if name == "" {
		return
	}
	err := o.callProvider(hcloud.OpDeleteSSHKey, func() error {
		return o.provider.DeleteSSHKey(ctx, name)
	})
	if err != nil {
		logging.FromContext(ctx).Error(err, "failed to delete ssh key", "key", name)
	}
}

// Delete releases the backing instance and marks the subnet DELETED.
// Provider failures are logged, not returned. Deleting a DELETED subnet is
// a no-op; an unknown id returns subnet.ErrNotFound.
func (o *Orchestrator) Delete(ctx context.Context, id string) error {
	logger := logging.FromContext(ctx).WithValues("subnet", id)

	sn, err := o.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if sn.Status == subnet.StatusDeleted {
		logger.Info("subnet already deleted")
		return nil
	}

	if err := subnet.CheckTransition(id, sn.Status, subnet.StatusDeleted); err != nil {
		return err
	}

	o.cleanupInstance(ctx, sn.Server.ProviderInstanceID)
	o.cleanupSSHKey(ctx, sn.Server.SSHKeyName)

	if err := o.repo.UpdateFields(ctx, id, subnet.Update{Status: ptr.To(subnet.StatusDeleted)}); err != nil {
		return fmt.Errorf("failed to mark subnet deleted: %w", err)
	}

	o.recordTransition(sn.Status, subnet.StatusDeleted)
	logger.Info("subnet deleted", "status", subnet.StatusDeleted, "previous", sn.Status)
	return nil
}

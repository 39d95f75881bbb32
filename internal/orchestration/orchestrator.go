package orchestration

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/imamik/subnetctl/internal/chain"
	"github.com/imamik/subnetctl/internal/config"
	"github.com/imamik/subnetctl/internal/platform/hcloud"
	"github.com/imamik/subnetctl/internal/platform/ssh"
	"github.com/imamik/subnetctl/internal/subnet"
	"github.com/imamik/subnetctl/internal/util/async"
)

// Orchestrator owns the lifecycle of the single active subnet.
type Orchestrator struct {
	cfg      *config.Config
	repo     subnet.Repository
	provider hcloud.Provider
	executor ssh.Executor
	probe    chain.Probe

	validate      *validator.Validate
	enableMetrics bool
	newCreator    func() (*chain.Creator, error)
	now           func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMetrics enables or disables Prometheus metrics. Enabled by default.
func WithMetrics(enabled bool) Option {
	return func(o *Orchestrator) {
		o.enableMetrics = enabled
	}
}

// WithCreatorSource overrides how the genesis account of a new subnet is
// obtained.
func WithCreatorSource(fn func() (*chain.Creator, error)) Option {
	return func(o *Orchestrator) {
		o.newCreator = fn
	}
}

// New creates an Orchestrator.
func New(
	cfg *config.Config,
	repo subnet.Repository,
	provider hcloud.Provider,
	executor ssh.Executor,
	probe chain.Probe,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		cfg:           cfg,
		repo:          repo,
		provider:      provider,
		executor:      executor,
		probe:         probe,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		enableMetrics: true,
		now:           time.Now,
	}
	o.newCreator = o.defaultCreator
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// defaultCreator loads the configured genesis key or generates a new one.
func (o *Orchestrator) defaultCreator() (*chain.Creator, error) {
	if o.cfg.CreatorPrivateKey != "" {
		return chain.CreatorFromHex(o.cfg.CreatorPrivateKey)
	}
	return chain.NewCreator()
}

// sshTarget describes how to reach the instance backing sn.
func (o *Orchestrator) sshTarget(sn *subnet.Subnet) ssh.Target {
	return ssh.Target{
		Host:       sn.Server.IP,
		Port:       o.cfg.Access.Port,
		User:       sn.Server.SSHUsername,
		Credential: sn.Server.SSHCredential,
	}
}

// callProvider runs fn and records it as one provider API call.
func (o *Orchestrator) callProvider(operation string, fn func() error) error {
	start := o.now()
	err := fn()
	o.recordProviderAPICall(operation, err, o.now().Sub(start).Seconds())
	return err
}

// GetMostRecentSubnet returns the current subnet, or nil when none is active.
func (o *Orchestrator) GetMostRecentSubnet(ctx context.Context) (*subnet.Subnet, error) {
	sn, err := o.repo.FindMostRecentActive(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return sn, nil
}

// ListSubnets returns recorded subnets newest first, deleted ones included
// when all is set.
func (o *Orchestrator) ListSubnets(ctx context.Context, all bool, limit int) ([]*subnet.Subnet, error) {
	return o.repo.List(ctx, all, limit)
}

// GetRecentBlocks returns the latest count blocks of the subnet's chain,
// newest first. A count of zero or less means chain.DefaultRecentBlocks.
func (o *Orchestrator) GetRecentBlocks(ctx context.Context, sn *subnet.Subnet, count int) ([]*chain.Block, error) {
	if sn == nil {
		return nil, subnet.ErrNotFound
	}
	if err := sn.RequireIP(); err != nil {
		return nil, err
	}
	if count <= 0 {
		count = chain.DefaultRecentBlocks
	}
	return o.probe.RecentBlocks(ctx, sn.RPCEndpoint(), count)
}

// HealthReport is the block-height view of a subnet's chain.
type HealthReport struct {
	LatestBlock    uint64 `json:"latestBlock" yaml:"latestBlock"`
	ChainID        uint64 `json:"chainId" yaml:"chainId"`
	ChainIDMatches bool   `json:"chainIdMatches" yaml:"chainIdMatches"`
	// Producing is set once the chain is past genesis.
	Producing bool `json:"producing" yaml:"producing"`
}

// Healthy reports whether the chain answers with the expected id and is
// producing blocks.
func (h *HealthReport) Healthy() bool {
	return h.ChainIDMatches && h.Producing
}

// Health confirms that the subnet's chain endpoint answers and produces
// blocks.
func (o *Orchestrator) Health(ctx context.Context, sn *subnet.Subnet) (*HealthReport, error) {
	if sn == nil {
		return nil, subnet.ErrNotFound
	}
	if err := sn.RequireIP(); err != nil {
		return nil, err
	}
	endpoint := sn.RPCEndpoint()

	var latest, chainID uint64
	err := async.RunParallel(ctx, []async.Task{
		{Name: "latest block", Func: func(ctx context.Context) (err error) {
			latest, err = o.probe.LatestBlockNumber(ctx, endpoint)
			return err
		}},
		{Name: "chain id", Func: func(ctx context.Context) (err error) {
			chainID, err = o.probe.ChainID(ctx, endpoint)
			return err
		}},
	})
	if err != nil {
		return nil, err
	}
	return &HealthReport{
		LatestBlock:    latest,
		ChainID:        chainID,
		ChainIDMatches: chainID == sn.Network.ChainID,
		Producing:      latest > 0,
	}, nil
}

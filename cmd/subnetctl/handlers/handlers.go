// Package handlers implements the business logic for CLI commands.
//
// Every handler loads the environment configuration, builds the
// orchestrator on top of the subnet store, the Hetzner Cloud client, the
// SSH executor and the chain probe, and runs one lifecycle operation.
// Construction goes through package-level factory variables so tests can
// replace the whole stack with a fake Service.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/imamik/subnetctl/internal/chain"
	"github.com/imamik/subnetctl/internal/config"
	"github.com/imamik/subnetctl/internal/logging"
	"github.com/imamik/subnetctl/internal/orchestration"
	"github.com/imamik/subnetctl/internal/platform/hcloud"
	"github.com/imamik/subnetctl/internal/platform/ssh"
	"github.com/imamik/subnetctl/internal/storage"
	"github.com/imamik/subnetctl/internal/subnet"
)

// Service is the lifecycle surface the commands drive. It is implemented by
// *orchestration.Orchestrator.
type Service interface {
	Deploy(ctx context.Context, label string) (*subnet.Subnet, error)
	Delete(ctx context.Context, id string) error
	Advance(ctx context.Context, id string) error
	GetMostRecentSubnet(ctx context.Context) (*subnet.Subnet, error)
	ListSubnets(ctx context.Context, all bool, limit int) ([]*subnet.Subnet, error)
	GetRecentBlocks(ctx context.Context, sn *subnet.Subnet, count int) ([]*chain.Block, error)
	Health(ctx context.Context, sn *subnet.Subnet) (*orchestration.HealthReport, error)
}

var _ Service = (*orchestration.Orchestrator)(nil)

// ErrNoActiveSubnet is returned when a command needs the current subnet and
// none is active.
var ErrNoActiveSubnet = errors.New("no active subnet")

// Factory function variables - can be replaced in tests.
var (
	// loadConfig reads the environment (and .env) configuration.
	loadConfig = config.Load

	// newLogger builds the process logger.
	newLogger = logging.New

	// newService wires the orchestrator and returns a closer for the store.
	newService = buildService

	// stdout receives command output.
	stdout io.Writer = os.Stdout

	// isInteractive reports whether prompts can be shown.
	isInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}
)

// session is the per-command runtime: configuration, a context carrying the
// logger, and the wired Service.
type session struct {
	ctx   context.Context
	cfg   *config.Config
	svc   Service
	close func() error
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(logging.Options{Level: cfg.LogLevel, Development: cfg.LogDevelopment})
	if err != nil {
		return nil, err
	}
	ctx = logging.IntoContext(ctx, logger)

	svc, closeFn, err := newService(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &session{ctx: ctx, cfg: cfg, svc: svc, close: closeFn}, nil
}

func (s *session) Close() {
	if s.close == nil {
		return
	}
	if err := s.close(); err != nil {
		logging.FromContext(s.ctx).Error(err, "failed to close subnet store")
	}
}

// current returns the most recent active subnet or ErrNoActiveSubnet.
func (s *session) current() (*subnet.Subnet, error) {
	sn, err := s.svc.GetMostRecentSubnet(s.ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to look up current subnet: %w", err)
	}
	if sn == nil {
		return nil, ErrNoActiveSubnet
	}
	return sn, nil
}

// resolveID returns id, or the current subnet's id when id is empty.
func (s *session) resolveID(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	sn, err := s.current()
	if err != nil {
		return "", err
	}
	return sn.ID, nil
}

func buildService(ctx context.Context, cfg *config.Config) (Service, func() error, error) {
	store, err := storage.Open(ctx, storage.Options{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		Table:  cfg.Database.Table,
		Logger: logging.FromContext(ctx),
	})
	if err != nil {
		return nil, nil, err
	}

	provider := hcloud.NewRealClient(cfg.HCloudToken, hcloud.WithTimeouts(&cfg.Timeouts))
	executor := ssh.NewClient(&ssh.Config{
		DialTimeout:    cfg.Timeouts.SSHDial,
		CommandTimeout: cfg.Timeouts.SSHCommand,
	})
	probe := chain.NewClient(chain.WithTimeout(cfg.Timeouts.RPC))

	return orchestration.New(cfg, store, provider, executor, probe), store.Close, nil
}

package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/imamik/subnetctl/internal/logging"
	"github.com/imamik/subnetctl/internal/subnet"
)

// Deploy handles the deploy command.
//
// It creates the server and the DEPLOYING record. With wait set it keeps
// advancing the new subnet at the configured poll interval until it is
// RUNNING, or until interrupted.
func Deploy(ctx context.Context, label string, wait bool, output string) error {
	if err := validateOutput(output); err != nil {
		return err
	}

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	logger := logging.FromContext(s.ctx)

	sn, err := s.svc.Deploy(s.ctx, label)
	if err != nil {
		return fmt.Errorf("deploy failed: %w", err)
	}
	logger.Info("subnet deployment started", "subnet", sn.ID, "label", sn.Label, "instance", sn.Server.ProviderInstanceID)

	if wait {
		waitCtx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		sn, err = waitForRunning(waitCtx, s.svc, sn.ID, s.cfg.PollInterval)
		if err != nil {
			return err
		}
		logger.Info("subnet is running", "subnet", sn.ID, "ip", sn.Server.IP)
	}

	return writeStatus(stdout, output, sn, nil, time.Now())
}

// waitForRunning advances id until it reaches RUNNING.
func waitForRunning(ctx context.Context, svc Service, id string, interval time.Duration) (*subnet.Subnet, error) {
	logger := logging.FromContext(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := subnet.Status("")
	for {
		if err := svc.Advance(ctx, id); err != nil {
			return nil, fmt.Errorf("advance failed: %w", err)
		}

		sn, err := svc.GetMostRecentSubnet(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to look up subnet: %w", err)
		}
		if sn == nil || sn.ID != id {
			return nil, fmt.Errorf("subnet %s is no longer active", id)
		}
		if sn.Status == subnet.StatusRunning {
			return sn, nil
		}
		if sn.Status != last {
			logger.Info("waiting for subnet", "subnet", id, "status", sn.Status)
			last = sn.Status
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("stopped waiting for subnet %s in %s: %w", id, sn.Status, ctx.Err())
		case <-ticker.C:
		}
	}
}

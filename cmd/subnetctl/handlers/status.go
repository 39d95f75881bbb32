package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/imamik/subnetctl/internal/logging"
	"github.com/imamik/subnetctl/internal/orchestration"
	"github.com/imamik/subnetctl/internal/subnet"
)

// Status handles the status command.
//
// Without all it shows the current subnet, plus a chain health check once
// the subnet is RUNNING. With all it lists recorded subnets newest first,
// deleted ones included.
func Status(ctx context.Context, all bool, limit int, output string) error {
	if err := validateOutput(output); err != nil {
		return err
	}

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if all {
		subnets, err := s.svc.ListSubnets(s.ctx, true, limit)
		if err != nil {
			return fmt.Errorf("failed to list subnets: %w", err)
		}
		return writeSubnets(stdout, output, subnets, time.Now())
	}

	sn, err := s.svc.GetMostRecentSubnet(s.ctx)
	if err != nil {
		return fmt.Errorf("failed to look up current subnet: %w", err)
	}
	return writeStatus(stdout, output, sn, s.health(sn), time.Now())
}

// health probes a RUNNING subnet. Probe failures are logged, not returned:
// the record is still worth showing.
func (s *session) health(sn *subnet.Subnet) *orchestration.HealthReport {
	if sn == nil || sn.Status != subnet.StatusRunning {
		return nil
	}
	report, err := s.svc.Health(s.ctx, sn)
	if err != nil {
		logging.FromContext(s.ctx).Error(err, "chain health check failed", "subnet", sn.ID, "endpoint", sn.RPCEndpoint())
		return nil
	}
	return report
}

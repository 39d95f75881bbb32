package handlers

import (
	"context"
	"fmt"
	"time"
)

// Advance handles the advance command.
//
// It runs one lifecycle step for the subnet (the current one when id is
// empty) and prints the resulting state.
func Advance(ctx context.Context, id, output string) error {
	if err := validateOutput(output); err != nil {
		return err
	}

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err = s.resolveID(id)
	if err != nil {
		return err
	}

	if err := s.svc.Advance(s.ctx, id); err != nil {
		return fmt.Errorf("advance failed: %w", err)
	}

	sn, err := s.svc.GetMostRecentSubnet(s.ctx)
	if err != nil {
		return fmt.Errorf("failed to look up subnet: %w", err)
	}
	if sn == nil || sn.ID != id {
		_, err = fmt.Fprintf(stdout, "Subnet %s is not active\n", id)
		return err
	}
	return writeStatus(stdout, output, sn, nil, time.Now())
}

package handlers

import (
	"context"
	"fmt"
)

// Blocks handles the blocks command by printing the latest count blocks of
// the current subnet's chain.
func Blocks(ctx context.Context, count int, output string) error {
	if err := validateOutput(output); err != nil {
		return err
	}

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	sn, err := s.current()
	if err != nil {
		return err
	}

	blocks, err := s.svc.GetRecentBlocks(s.ctx, sn, count)
	if err != nil {
		return fmt.Errorf("failed to fetch blocks from %s: %w", sn.RPCEndpoint(), err)
	}
	return writeBlocks(stdout, output, blocks)
}

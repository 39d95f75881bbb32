package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/imamik/subnetctl/internal/logging"
)

// ErrConfirmationRequired is returned when delete runs without a terminal
// and without --yes.
var ErrConfirmationRequired = errors.New("refusing to delete without confirmation; pass --yes")

// confirm asks a yes/no question. Replaced in tests.
var confirm = func(ctx context.Context, title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&ok),
		),
	).RunWithContext(ctx)
	return ok, err
}

// Delete handles the delete command.
//
// It releases the server and SSH key of the subnet and marks the record
// DELETED. An empty id selects the current subnet. Unless yes is set the
// operator is asked to confirm.
func Delete(ctx context.Context, id string, yes bool) error {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	logger := logging.FromContext(s.ctx)

	id, err = s.resolveID(id)
	if err != nil {
		return err
	}

	if !yes {
		if !isInteractive() {
			return ErrConfirmationRequired
		}
		ok, err := confirm(s.ctx,
			fmt.Sprintf("Delete subnet %s?", id),
			"The server and its SSH key are released. This cannot be undone.")
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			logger.Info("delete cancelled", "subnet", id)
			return nil
		}
	}

	if err := s.svc.Delete(s.ctx, id); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	_, err = fmt.Fprintf(stdout, "Subnet %s deleted\n", id)
	return err
}

package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/subnetctl/cmd/subnetctl/handlers"
)

// Advance returns the advance command.
func Advance() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "advance [ID]",
		Short: "Run one lifecycle step for a subnet",
		Long: `Advance evaluates the subnet once and moves it at most one state forward:
DEPLOYING -> DEPLOYED -> LAUNCHING -> RUNNING.

A step that is still waiting on the server or the containers leaves the
subnet unchanged. Without an ID the current subnet is advanced.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Advance(cmd.Context(), firstArg(args), output)
		},
	}

	addOutputFlag(cmd, &output)

	return cmd
}

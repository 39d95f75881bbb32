package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/subnetctl/cmd/subnetctl/handlers"
)

// Blocks returns the blocks command.
func Blocks() *cobra.Command {
	var count int
	var output string

	cmd := &cobra.Command{
		Use:   "blocks",
		Short: "Show the latest blocks of the current subnet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Blocks(cmd.Context(), count, output)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 5, "Number of blocks to show")
	addOutputFlag(cmd, &output)

	return cmd
}

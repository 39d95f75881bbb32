package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/subnetctl/cmd/subnetctl/handlers"
)

// Status returns the command for displaying subnet state.
//
// Optional flags:
//
//	--all, -a: List every recorded subnet, deleted ones included
//	--limit: Maximum number of subnets listed with --all
//	--output, -o: text, json or yaml
func Status() *cobra.Command {
	var all bool
	var limit int
	var output string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current subnet",
		Long: `Status shows the current subnet. Once the subnet is RUNNING the chain
endpoint is probed for its latest block and chain ID.

Examples:
  # Show the current subnet
  subnetctl status

  # List all subnets as JSON
  subnetctl status --all -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Status(cmd.Context(), all, limit, output)
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "List every recorded subnet, deleted ones included")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of subnets listed with --all (0 for no limit)")
	addOutputFlag(cmd, &output)

	return cmd
}

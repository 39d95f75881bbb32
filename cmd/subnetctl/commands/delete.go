package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/subnetctl/cmd/subnetctl/handlers"
)

// Delete returns the delete command.
//
// The delete command releases the server and SSH key of a subnet and marks
// it DELETED. Without an ID the current subnet is deleted.
func Delete() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete [ID]",
		Short: "Delete a subnet and release its server",
		Long: `Delete releases the Hetzner Cloud server and SSH key of a subnet and marks
the record DELETED. Resources that are already gone are ignored, so the
command can be repeated.

Without an ID the current subnet is deleted.

Example:
  subnetctl delete --yes

WARNING: This operation is irreversible. The validator's chain data is lost.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handlers.Delete(cmd.Context(), firstArg(args), yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

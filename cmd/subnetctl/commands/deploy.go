package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/subnetctl/cmd/subnetctl/handlers"
)

// Deploy returns the deploy command.
//
// Optional flags:
//
//	--label, -l: Display name of the subnet (default: SUBNET_INSTANCE_LABEL)
//	--wait, -w: Advance until the subnet is RUNNING
//	--output, -o: text, json or yaml
func Deploy() *cobra.Command {
	var label string
	var wait bool
	var output string

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy a new subnet",
		Long: `Deploy creates the validator server on Hetzner Cloud and records the
subnet as DEPLOYING.

Only one subnet can be active at a time; delete the current one first.
Without --wait the subnet is advanced by "subnetctl watch" or
"subnetctl advance".

Examples:
  # Start a deployment and return immediately
  subnetctl deploy --label demo

  # Block until the validator stack is running
  subnetctl deploy --label demo --wait`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Deploy(cmd.Context(), label, wait, output)
		},
	}

	cmd.Flags().StringVarP(&label, "label", "l", "", "Display name of the subnet (default: SUBNET_INSTANCE_LABEL)")
	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Advance until the subnet is RUNNING")
	addOutputFlag(cmd, &output)

	return cmd
}

// addOutputFlag registers --output/-o.
func addOutputFlag(cmd *cobra.Command, output *string) {
	cmd.Flags().StringVarP(output, "output", "o", handlers.OutputText, "Output format: text, json or yaml")
}

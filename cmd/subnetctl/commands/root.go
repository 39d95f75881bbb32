// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the subnetctl CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subnetctl",
		Short: "Provision and supervise an IPC subnet on Hetzner Cloud",
		Long: `subnetctl deploys one validator subnet at a time.

Configuration is read from the environment and an optional .env file in
the working directory. HCLOUD_TOKEN, SUBNET_DATABASE_DSN and
SUBNET_DATABASE_TABLE are required.`,
		SilenceUsage: true,
	}

	// Lifecycle commands
	cmd.AddCommand(Deploy())
	cmd.AddCommand(Advance())
	cmd.AddCommand(Delete())
	cmd.AddCommand(Watch())

	// Inspection commands
	cmd.AddCommand(Status())
	cmd.AddCommand(Blocks())
	cmd.AddCommand(Version())

	return cmd
}

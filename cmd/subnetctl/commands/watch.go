package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/subnetctl/cmd/subnetctl/handlers"
)

// Watch returns the watch command.
//
// The watch command is the long-running supervisor: it advances the
// current subnet every SUBNET_POLL_INTERVAL and serves Prometheus metrics
// on SUBNET_METRICS_ADDR.
func Watch() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Advance the current subnet on an interval and serve metrics",
		Long: `Watch advances the current subnet once right away and then every
SUBNET_POLL_INTERVAL until interrupted with SIGINT or SIGTERM. A tick that
is still running when the next one is due is skipped.

Metrics are served at /metrics on SUBNET_METRICS_ADDR (default :9090).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Watch(cmd.Context())
		},
	}
}

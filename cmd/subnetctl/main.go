// Package main is the entry point for the subnetctl CLI.
//
// subnetctl provisions a single IPC validator subnet on Hetzner Cloud and
// supervises it through its lifecycle: the server is created, the
// validator stack is launched over SSH, and the chain is probed once the
// containers run.
//
// Commands: deploy, delete, advance, status, blocks, watch, version.
//
// For detailed usage information, run:
//
//	subnetctl --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/subnetctl/cmd/subnetctl/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

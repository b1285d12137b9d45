package cli

import (
	"github.com/spf13/cobra"

	configcmd "github.com/coral-mesh/pace/internal/cli/config"
	"github.com/coral-mesh/pace/internal/cli/demo"
	"github.com/coral-mesh/pace/internal/cli/helpers"
	"github.com/coral-mesh/pace/pkg/version"
)

// NewRootCmd creates the pace command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pace",
		Short: "Pace - a sampling call-stack profiler for Go functions",
		Long: `Pace runs a function on its own goroutine, samples that goroutine's
stack at a fixed interval, and reconstructs how long each function stayed
on the stack.

Pipeline:
- Scan: capture the target's stack into a bounded snapshot queue
- Profile: diff consecutive snapshots into START/END events
- Report: replay the events into spans with wall-clock durations

Output is a text report on stdout, with optional folded-stack, pprof and
OTLP/JSON exports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String(helpers.ConfigFlag, "", "Config file (default: $PACE_CONFIG or ./pace.yaml)")
	cmd.PersistentFlags().String(helpers.LogLevelFlag, "info", "Log level (trace, debug, info, warn, error, disabled)")

	cmd.AddCommand(demo.NewDemoCmd())
	cmd.AddCommand(configcmd.NewConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			cmd.Printf("Pace version %s\n", info.Version)
			cmd.Printf("Git commit: %s\n", info.GitCommit)
			cmd.Printf("Build date: %s\n", info.BuildDate)
			cmd.Printf("Go version: %s\n", info.GoVersion)
		},
	}
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

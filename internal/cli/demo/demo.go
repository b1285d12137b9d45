// Package demo implements `pace demo`, which profiles a built-in workload.
package demo

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/pace/internal/cli/helpers"
	"github.com/coral-mesh/pace/internal/constants"
	paceerrors "github.com/coral-mesh/pace/internal/errors"
	"github.com/coral-mesh/pace/internal/workload"
	"github.com/coral-mesh/pace/pkg/sdk"
)

// NewDemoCmd creates the demo command.
func NewDemoCmd() *cobra.Command {
	var (
		name     string
		duration time.Duration
		profile  helpers.ProfileFlags
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Profile a built-in workload",
		Long: `Run one of the built-in workloads under the sampling profiler and print
the captured spans, innermost first.

Every START and END event is kept until the report is written. The event
queue holds --event-capacity events (default 65536); a run that produces
more aborts with exit status 70. A workload whose stack changes on every
sample emits up to 2 x stack depth events per sample, so at the default
25ms interval a fast-alternating workload fills the default queue in about
10 minutes. Raise --event-capacity or --interval for longer runs.

Examples:
  pace demo
  pace demo --workload alternating --duration 5s
  pace demo --workload recursive --interval 5ms --folded-out pace.folded
  pace demo --workload alternating --duration 30m --event-capacity 1048576`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := workload.Get(name, duration)
			if err != nil {
				return err
			}

			cfg, err := helpers.LoadConfig(cmd, &profile)
			if err != nil {
				return err
			}
			logger := helpers.NewLogger(cfg, cmd.ErrOrStderr())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info().
				Str("workload", name).
				Dur("duration", duration).
				Dur("interval", cfg.Sampling.Interval).
				Msg("Profiling workload")

			if _, err := sdk.Profile(ctx, target, sdk.Options{
				Config: cfg,
				Logger: &logger,
				Output: cmd.OutOrStdout(),
			}); err != nil {
				return fmt.Errorf("demo %s: %w", name, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "workload", constants.DefaultWorkload, "Workload to profile")
	cmd.Flags().DurationVar(&duration, "duration", constants.DefaultWorkloadDuration, "How long the workload runs")
	helpers.AddProfileFlags(cmd, &profile)

	paceerrors.Must(cmd.RegisterFlagCompletionFunc("workload", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return workload.Names(), cobra.ShellCompDirectiveNoFileComp
	}), "register --workload completion")

	return cmd
}

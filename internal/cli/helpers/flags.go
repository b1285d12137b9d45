// Package helpers holds flag and config plumbing shared by pace commands.
package helpers

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/coral-mesh/pace/internal/config"
	"github.com/coral-mesh/pace/internal/constants"
	paceerrors "github.com/coral-mesh/pace/internal/errors"
	"github.com/coral-mesh/pace/internal/profiler"
)

// ProfileFlags are the command-line overrides for a profiling run.
type ProfileFlags struct {
	Interval          time.Duration
	Threshold         int
	MaxFrames         int
	Skip              int
	KeepMain          bool
	FilterStdlib      bool
	FilterConventions bool
	Diff              string
	EventCapacity     int
	FoldedOut         string
	PprofOut          string
	OTLPOut           string
}

// AddProfileFlags registers the profiling flags on cmd.
func AddProfileFlags(cmd *cobra.Command, f *ProfileFlags) {
	flags := cmd.Flags()
	flags.DurationVar(&f.Interval, "interval", constants.DefaultInterval, "Sampling interval")
	flags.IntVar(&f.Threshold, "threshold", constants.DefaultThreshold, "Queued snapshots that trigger a profiling pass")
	flags.IntVar(&f.MaxFrames, "max-frames", constants.DefaultMaxFrames, "Maximum frames kept per snapshot")
	flags.IntVar(&f.Skip, "skip", constants.DefaultSkip, "Innermost frames dropped from every snapshot")
	flags.BoolVar(&f.KeepMain, "keep-main", false, "Keep only frames from the main module")
	flags.BoolVar(&f.FilterStdlib, "filter-stdlib", true, "Drop standard library frames")
	flags.BoolVar(&f.FilterConventions, "filter-conventions", true, "Drop compiler-generated frames")
	flags.StringVar(&f.Diff, "diff", constants.DefaultDiff, "Snapshot diff strategy (lockstep, trie)")
	flags.IntVar(&f.EventCapacity, "event-capacity", constants.DefaultEventCapacity,
		"Events buffered until the report (power of two); a run that exceeds it aborts")
	flags.StringVar(&f.FoldedOut, "folded-out", "", "Write folded stacks to this file")
	flags.StringVar(&f.PprofOut, "pprof-out", "", "Write a gzipped pprof profile to this file")
	flags.StringVar(&f.OTLPOut, "otlp-out", "", "Write OTLP/JSON traces to this file")

	paceerrors.Must(cmd.RegisterFlagCompletionFunc("diff", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(profiler.Lockstep), string(profiler.TrieStrategy)}, cobra.ShellCompDirectiveNoFileComp
	}), "register --diff completion")
}

// Apply copies the flags the user actually set onto cfg, so file and
// environment values survive unless overridden on the command line.
func (f *ProfileFlags) Apply(flags *pflag.FlagSet, cfg *config.Config) {
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}

	set("interval", func() { cfg.Sampling.Interval = f.Interval })
	set("threshold", func() { cfg.Sampling.Threshold = f.Threshold })
	set("max-frames", func() { cfg.Capture.MaxFrames = f.MaxFrames })
	set("skip", func() { cfg.Capture.Skip = f.Skip })
	set("keep-main", func() { cfg.Capture.KeepMain = f.KeepMain })
	set("filter-stdlib", func() { cfg.Capture.FilterStdlib = f.FilterStdlib })
	set("filter-conventions", func() { cfg.Capture.FilterConventions = f.FilterConventions })
	set("diff", func() { cfg.Profiler.Diff = f.Diff })
	set("event-capacity", func() { cfg.Profiler.EventCapacity = f.EventCapacity })
	set("folded-out", func() { cfg.Output.Folded = f.FoldedOut })
	set("pprof-out", func() { cfg.Output.Pprof = f.PprofOut })
	set("otlp-out", func() { cfg.Output.OTLP = f.OTLPOut })
}

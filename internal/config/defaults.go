package config

import (
	"github.com/coral-mesh/pace/internal/capture"
	"github.com/coral-mesh/pace/internal/constants"
	"github.com/coral-mesh/pace/internal/profiler"
	"github.com/coral-mesh/pace/internal/scanner"
	"github.com/coral-mesh/pace/internal/session"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Sampling: SamplingConfig{
			Interval:       constants.DefaultInterval,
			Threshold:      constants.DefaultThreshold,
			FrameCapacity:  constants.DefaultFrameCapacity,
			HandoffTimeout: constants.DefaultHandoffTimeout,
		},
		Capture: CaptureConfig{
			MaxFrames:         constants.DefaultMaxFrames,
			Skip:              constants.DefaultSkip,
			FilterStdlib:      true,
			FilterConventions: true,
		},
		Profiler: ProfilerConfig{
			Diff:          constants.DefaultDiff,
			EventCapacity: constants.DefaultEventCapacity,
			StackCapacity: constants.DefaultStackCapacity,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// Flags returns the capture filters selected by c.
func (c *CaptureConfig) Flags() capture.Flags {
	flags := capture.None
	if c.KeepMain {
		flags |= capture.KeepMainOnly
	}
	if c.FilterStdlib {
		flags |= capture.FilterStdlib
	}
	if c.FilterConventions {
		flags |= capture.FilterConventions
	}
	return flags
}

// Session converts c into a run configuration. c must be valid.
func (c *Config) Session() session.Config {
	return session.Config{
		Interval:      c.Sampling.Interval,
		Threshold:     c.Sampling.Threshold,
		FrameCapacity: c.Sampling.FrameCapacity,
		Scanner: scanner.Config{
			Skip:           c.Capture.Skip,
			MaxFrames:      c.Capture.MaxFrames,
			Flags:          c.Capture.Flags(),
			HandoffTimeout: c.Sampling.HandoffTimeout,
		},
		Profiler: profiler.Config{
			EventCapacity: c.Profiler.EventCapacity,
			StackCapacity: c.Profiler.StackCapacity,
			Strategy:      profiler.Strategy(c.Profiler.Diff),
		},
	}
}

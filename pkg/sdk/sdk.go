package sdk

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/pace/internal/capture"
	"github.com/coral-mesh/pace/internal/config"
	"github.com/coral-mesh/pace/internal/export"
	"github.com/coral-mesh/pace/internal/profiler"
	"github.com/coral-mesh/pace/internal/session"
	"github.com/coral-mesh/pace/internal/sys/proc"
)

type (
	// Config is the profiling configuration.
	Config = config.Config
	// Report is the result of a run.
	Report = profiler.Report
	// Span is one function's stay on the stack.
	Span = profiler.Span
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfig loads a YAML config file with PACE_* environment overrides.
// An empty path loads defaults and the environment only.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// Options configures Profile.
type Options struct {
	// Config is the profiling configuration (optional, defaults to DefaultConfig()).
	Config *Config

	// Logger receives diagnostics (optional, defaults to zerolog.Nop()).
	Logger *zerolog.Logger

	// Output receives the text report (optional, defaults to os.Stdout).
	Output io.Writer

	capturer capture.Capturer
}

// Profile runs target to completion under the sampler and returns the report.
// Cancelling ctx ends sampling early; the report then covers the sampled part.
func Profile(ctx context.Context, target func(), opts Options) (*Report, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	capturer := opts.capturer
	if capturer == nil {
		capturer = capture.NewGoroutines(logger)
	}

	s, err := session.New(capturer, logger, cfg.Session(), session.WithOutput(out))
	if err != nil {
		return nil, err
	}

	sampler, err := proc.NewSampler()
	if err != nil {
		logger.Debug().Err(err).Msg("Process usage unavailable")
	}
	var before proc.Usage
	if sampler != nil {
		if before, err = sampler.Sample(ctx); err != nil {
			sampler = nil
		}
	}

	start := time.Now()
	report, err := s.Run(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("profiling failed: %w", err)
	}

	if sampler != nil {
		sampler.LogOverhead(context.WithoutCancel(ctx), logger, before)
	}

	files := export.Files{
		Folded: cfg.Output.Folded,
		Pprof:  cfg.Output.Pprof,
		OTLP:   cfg.Output.OTLP,
	}
	exportOpts := export.Options{
		Start:    start,
		Interval: cfg.Sampling.Interval,
		RunID:    s.ID(),
	}
	if err := files.Write(report, exportOpts, logger); err != nil {
		return report, err
	}

	return report, nil
}

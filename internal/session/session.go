// Package session drives one profiling run: it starts the target, alternates
// sampling, diffing and sleeping, and reports once the target returns.
package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/coral-mesh/pace/internal/capture"
	"github.com/coral-mesh/pace/internal/clock"
	paceerrors "github.com/coral-mesh/pace/internal/errors"
	"github.com/coral-mesh/pace/internal/profiler"
	"github.com/coral-mesh/pace/internal/queue"
	"github.com/coral-mesh/pace/internal/sample"
	"github.com/coral-mesh/pace/internal/scanner"
)

// Config holds run configuration.
type Config struct {
	Interval      time.Duration // THROTTLE sleep (default: 25ms)
	Threshold     int           // Queued frames that trigger a drain (default: 32)
	FrameCapacity int           // Snapshot queue size, a power of two (default: 64)
	Scanner       scanner.Config
	Profiler      profiler.Config
}

// DefaultConfig returns the default run configuration.
func DefaultConfig() Config {
	return Config{
		Interval:      25 * time.Millisecond,
		Threshold:     32,
		FrameCapacity: 64,
		Scanner:       scanner.DefaultConfig(),
		Profiler:      profiler.DefaultConfig(),
	}
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration)

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the run clock.
func WithClock(c *clock.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithSleep replaces the THROTTLE sleep.
func WithSleep(fn SleepFunc) Option {
	return func(s *Session) { s.sleep = fn }
}

// WithOutput sets where the text report is written (default: stdout).
func WithOutput(w io.Writer) Option {
	return func(s *Session) { s.out = w }
}

// Session owns the scanner and profiler for a single run.
type Session struct {
	id     string
	config Config
	logger zerolog.Logger
	clock  *clock.Clock
	sleep  SleepFunc
	out    io.Writer

	scanner  *scanner.Scanner
	profiler *profiler.Profiler

	ctx    context.Context
	report *profiler.Report
	err    error
	ran    bool
}

// New creates a session sampling through capturer.
func New(capturer capture.Capturer, logger zerolog.Logger, config Config, opts ...Option) (*Session, error) {
	if config.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", config.Interval)
	}
	if config.Threshold <= 0 {
		return nil, fmt.Errorf("threshold must be positive, got %d", config.Threshold)
	}
	if config.Threshold > config.FrameCapacity {
		return nil, fmt.Errorf("threshold %d exceeds frame queue capacity %d", config.Threshold, config.FrameCapacity)
	}

	id := uuid.NewString()
	s := &Session{
		id:     id,
		config: config,
		logger: logger.With().Str("component", "session").Str("run_id", id).Logger(),
		clock:  clock.New(),
		sleep:  sleepContext,
		out:    os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}

	frames, err := queue.New[sample.Frame](config.FrameCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create frame queue: %w", err)
	}

	s.scanner, err = scanner.New(capturer, s.clock, frames, logger, config.Scanner)
	if err != nil {
		return nil, fmt.Errorf("failed to create scanner: %w", err)
	}

	s.profiler, err = profiler.New(frames, s.clock, logger, config.Profiler)
	if err != nil {
		return nil, fmt.Errorf("failed to create profiler: %w", err)
	}

	return s, nil
}

// ID returns the run identifier.
func (s *Session) ID() string {
	return s.id
}

// Run profiles target until it returns or ctx is cancelled and returns the
// report. A session runs once.
func (s *Session) Run(ctx context.Context, target func()) (*profiler.Report, error) {
	if s.ran {
		return nil, fmt.Errorf("session %s already ran", s.id)
	}
	s.ran = true
	s.ctx = ctx

	s.clock.Start()
	if err := s.scanner.Start(ctx, target); err != nil {
		s.clock.Stop()
		return nil, err
	}

	s.logger.Info().
		Dur("interval", s.config.Interval).
		Int("threshold", s.config.Threshold).
		Msg("Profiling started")

	state := Scan
	for {
		finished := s.perform(state)
		if state.Terminal() {
			break
		}

		next, ok := Next(state, finished)
		if !ok {
			paceerrors.Trap(s.logger, fmt.Sprintf("unreachable state %s", state), nil)
			return nil, fmt.Errorf("unreachable state %s", state)
		}
		state = next
	}

	return s.report, s.err
}

// perform runs the action of state and reports whether the target finished.
func (s *Session) perform(state State) bool {
	switch state.Action() {
	case ActionTick:
		if err := s.ctx.Err(); err != nil {
			s.logger.Warn().Err(err).Msg("Run cancelled before the target finished")
			return true
		}
		return s.scanner.Scan()
	case ActionDrainAtThreshold:
		s.profiler.DrainIfAtLeast(s.config.Threshold)
	case ActionSleep:
		s.sleep(s.ctx, s.config.Interval)
	case ActionFinish:
		s.finish()
	default:
		paceerrors.Trap(s.logger, fmt.Sprintf("unreachable state %s", state), nil)
	}
	return false
}

func (s *Session) finish() {
	s.profiler.DrainAll()
	s.clock.Stop()
	s.profiler.Finalize(s.clock.Seconds())

	s.logger.Debug().
		Uint64("ticks", s.scanner.Ticks()).
		Int("events", s.profiler.Events()).
		Msg("Replaying events")

	s.report, s.err = s.profiler.Dump(s.out)
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

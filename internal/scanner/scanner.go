// Package scanner samples the target goroutine's stack into the snapshot queue.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/pace/internal/capture"
	"github.com/coral-mesh/pace/internal/clock"
	paceerrors "github.com/coral-mesh/pace/internal/errors"
	"github.com/coral-mesh/pace/internal/queue"
	"github.com/coral-mesh/pace/internal/sample"
)

// ErrHandleUnavailable is returned by Start when the target cannot publish a capture handle.
var ErrHandleUnavailable = errors.New("failed to acquire target goroutine handle")

// Config holds capture parameters for each tick.
type Config struct {
	Skip           int           // Innermost frames dropped by the capturer
	MaxFrames      int           // Snapshot depth limit (default: 64)
	Flags          capture.Flags // Frame filters
	HandoffTimeout time.Duration // Wait for the target's handle (default: 5s)
}

// DefaultConfig returns the default scanner configuration.
func DefaultConfig() Config {
	return Config{
		MaxFrames:      64,
		HandoffTimeout: 5 * time.Second,
	}
}

// Scanner owns the target goroutine and turns captures into queued frames.
// Scan is called from a single orchestrating goroutine.
type Scanner struct {
	capturer capture.Capturer
	clock    *clock.Clock
	frames   *queue.Queue[sample.Frame]
	logger   zerolog.Logger
	config   Config

	handle capture.Handle
	done   chan struct{}
	ticks  uint64
}

// New creates a scanner publishing into frames.
func New(
	capturer capture.Capturer,
	clk *clock.Clock,
	frames *queue.Queue[sample.Frame],
	logger zerolog.Logger,
	config Config,
) (*Scanner, error) {
	if capturer == nil {
		return nil, fmt.Errorf("capturer is required")
	}
	if clk == nil {
		return nil, fmt.Errorf("clock is required")
	}
	if frames == nil {
		return nil, fmt.Errorf("frame queue is required")
	}

	if config.MaxFrames == 0 {
		config.MaxFrames = 64
	}
	if config.HandoffTimeout == 0 {
		config.HandoffTimeout = 5 * time.Second
	}

	return &Scanner{
		capturer: capturer,
		clock:    clk,
		frames:   frames,
		logger:   logger.With().Str("component", "scanner").Logger(),
		config:   config,
	}, nil
}

// Start runs target on a new goroutine and blocks until that goroutine has
// published its capture handle. A null handle, a timeout or a cancelled ctx
// fails the run, and target never runs. A goroutine still blocked in Acquire
// returns once Acquire does; Wait blocks until then.
func (s *Scanner) Start(ctx context.Context, target func()) error {
	if s.done != nil {
		return fmt.Errorf("scanner already started")
	}
	if target == nil {
		return fmt.Errorf("target is required")
	}

	handles := make(chan capture.Handle, 1)
	// proceed carries the orchestrator's answer; the target runs only on true.
	proceed := make(chan bool, 1)
	done := make(chan struct{})
	s.done = done

	go func() {
		defer close(done)

		h := s.capturer.Acquire()
		handles <- h
		if !h.Valid() || !<-proceed {
			return
		}
		capture.Enter(target)
	}()

	timer := time.NewTimer(s.config.HandoffTimeout)
	defer timer.Stop()

	select {
	case h := <-handles:
		if !h.Valid() {
			<-done
			return ErrHandleUnavailable
		}
		s.handle = h
		proceed <- true
		s.logger.Debug().Str("handle", string(h)).Msg("Target goroutine started")
		return nil
	case <-timer.C:
		proceed <- false
		return fmt.Errorf("%w: no handle within %s", ErrHandleUnavailable, s.config.HandoffTimeout)
	case <-ctx.Done():
		proceed <- false
		return fmt.Errorf("waiting for target handle: %w", ctx.Err())
	}
}

// Scan performs one tick. It reports true, without sampling, once the target
// has returned; otherwise it queues one frame and reports false.
func (s *Scanner) Scan() bool {
	if s.done == nil {
		paceerrors.Trap(s.logger, "scan before start", nil)
		return true
	}

	select {
	case <-s.done:
		return true
	default:
	}

	frames := s.capturer.Capture(s.handle, s.config.Skip, s.config.MaxFrames, s.config.Flags)
	timestamp := s.clock.Seconds()

	// Capturers report innermost first; snapshots are root first.
	snapshot := make(sample.Snapshot, len(frames))
	for i, f := range frames {
		snapshot[len(frames)-1-i] = f.Function
	}

	if err := s.frames.Push(sample.Frame{Timestamp: timestamp, Snapshot: snapshot}); err != nil {
		// A dropped frame would unbalance the START/END stream.
		paceerrors.Trap(s.logger, "snapshot queue overflow", err)
	}
	s.ticks++

	return false
}

// Ticks returns the number of frames queued so far.
func (s *Scanner) Ticks() uint64 {
	return s.ticks
}

// Done is closed once the target goroutine has returned.
func (s *Scanner) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the target goroutine returns.
func (s *Scanner) Wait() {
	if s.done != nil {
		<-s.done
	}
}

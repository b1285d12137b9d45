package config

import (
	"fmt"
	"strings"

	"github.com/coral-mesh/pace/internal/logging"
	"github.com/coral-mesh/pace/internal/profiler"
)

// ValidationError represents a single validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MultiValidationError represents multiple validation errors.
type MultiValidationError struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "validation failed with %d errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&builder, "  %d. %s\n", i+1, err.Error())
	}
	return builder.String()
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Validate checks c for values the profiler cannot run with.
func (c *Config) Validate() error {
	var errs []ValidationError
	fail := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	s := c.Sampling
	if s.Interval <= 0 {
		fail("sampling.interval", "must be positive, got %s", s.Interval)
	}
	if s.HandoffTimeout <= 0 {
		fail("sampling.handoff_timeout", "must be positive, got %s", s.HandoffTimeout)
	}
	if !isPowerOfTwo(s.FrameCapacity) {
		fail("sampling.frame_capacity", "must be a power of two, got %d", s.FrameCapacity)
	}
	if s.Threshold <= 0 {
		fail("sampling.threshold", "must be positive, got %d", s.Threshold)
	} else if s.Threshold > s.FrameCapacity {
		fail("sampling.threshold", "%d exceeds frame_capacity %d", s.Threshold, s.FrameCapacity)
	}

	if c.Capture.MaxFrames <= 0 {
		fail("capture.max_frames", "must be positive, got %d", c.Capture.MaxFrames)
	}
	if c.Capture.Skip < 0 {
		fail("capture.skip", "must not be negative, got %d", c.Capture.Skip)
	}

	p := c.Profiler
	if _, err := profiler.ParseStrategy(p.Diff); err != nil {
		fail("profiler.diff", "%v", err)
	}
	if !isPowerOfTwo(p.EventCapacity) {
		fail("profiler.event_capacity", "must be a power of two, got %d", p.EventCapacity)
	}
	// Span nesting never exceeds the deepest snapshot.
	if p.StackCapacity < c.Capture.MaxFrames {
		fail("profiler.stack_capacity", "%d is below capture.max_frames %d", p.StackCapacity, c.Capture.MaxFrames)
	}

	if !logging.KnownLevel(c.Logging.Level) {
		fail("logging.level", "unknown level %q", c.Logging.Level)
	}

	if len(errs) > 0 {
		return &MultiValidationError{Errors: errs}
	}
	return nil
}

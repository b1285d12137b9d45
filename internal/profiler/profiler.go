// Package profiler turns queued stack snapshots into span events and replays
// those events into per-function wall-clock durations.
package profiler

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/pace/internal/clock"
	paceerrors "github.com/coral-mesh/pace/internal/errors"
	"github.com/coral-mesh/pace/internal/queue"
	"github.com/coral-mesh/pace/internal/sample"
	"github.com/coral-mesh/pace/internal/stack"
)

// ErrSpanMismatch is returned by replay when an END does not close the innermost open span.
var ErrSpanMismatch = errors.New("span boundaries do not nest")

// Config holds profiler configuration.
type Config struct {
	EventCapacity int      // Event queue size, a power of two (default: 65536)
	StackCapacity int      // Deepest span nesting replay accepts (default: 128)
	Strategy      Strategy // Diff strategy (default: lockstep)
}

// DefaultConfig returns the default profiler configuration.
func DefaultConfig() Config {
	return Config{
		EventCapacity: 65536,
		StackCapacity: 128,
		Strategy:      Lockstep,
	}
}

// Profiler owns the event queue. It is driven from a single goroutine.
type Profiler struct {
	frames *queue.Queue[sample.Frame]
	events *queue.Queue[sample.Event]
	clock  *clock.Clock
	logger zerolog.Logger
	config Config

	previous sample.Snapshot
	samples  uint64
	differ   *trieDiffer
}

// New creates a profiler that drains frames.
func New(frames *queue.Queue[sample.Frame], clk *clock.Clock, logger zerolog.Logger, config Config) (*Profiler, error) {
	if frames == nil {
		return nil, fmt.Errorf("frame queue is required")
	}
	if clk == nil {
		return nil, fmt.Errorf("clock is required")
	}

	defaults := DefaultConfig()
	if config.EventCapacity == 0 {
		config.EventCapacity = defaults.EventCapacity
	}
	if config.StackCapacity == 0 {
		config.StackCapacity = defaults.StackCapacity
	}
	if config.Strategy == "" {
		config.Strategy = defaults.Strategy
	}
	if _, err := ParseStrategy(string(config.Strategy)); err != nil {
		return nil, err
	}
	if config.StackCapacity < 0 {
		return nil, fmt.Errorf("stack capacity must be positive, got %d", config.StackCapacity)
	}

	events, err := queue.New[sample.Event](config.EventCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create event queue: %w", err)
	}

	p := &Profiler{
		frames: frames,
		events: events,
		clock:  clk,
		logger: logger.With().Str("component", "profiler").Logger(),
		config: config,
	}
	if config.Strategy == TrieStrategy {
		p.differ = newTrieDiffer()
	}
	return p, nil
}

// Profile diffs snapshot f against the previously profiled one and queues the
// resulting events. Frames that left the stack close innermost first, then
// frames that joined open root first. An empty snapshot closes every open span.
//
// Closing innermost first keeps every END matched by the most recent open
// START, which is the order replay pops its span stack in.
func (p *Profiler) Profile(f sample.Frame) {
	if len(f.Snapshot) > 0 {
		p.samples++
	}

	var common int
	if p.differ != nil {
		common = p.differ.commonPrefix(p.previous, f.Snapshot)
	} else {
		common = commonPrefix(p.previous, f.Snapshot)
	}

	for i := len(p.previous) - 1; i >= common; i-- {
		p.emit(sample.End, f.Timestamp, p.previous[i])
	}
	for _, name := range f.Snapshot[common:] {
		p.emit(sample.Start, f.Timestamp, name)
	}

	p.previous = f.Snapshot
}

func (p *Profiler) emit(kind sample.EventKind, ts float64, name string) {
	if err := p.events.Push(sample.Event{Kind: kind, Timestamp: ts, Name: name}); err != nil {
		paceerrors.Trap(p.logger, "event queue overflow", err)
	}
}

// Pending returns the number of frames waiting to be profiled.
func (p *Profiler) Pending() int {
	return p.frames.Size()
}

// DrainIfAtLeast profiles every queued frame when at least threshold are
// waiting, and returns the number profiled.
func (p *Profiler) DrainIfAtLeast(threshold int) int {
	if p.frames.Size() < threshold {
		return 0
	}
	return p.DrainAll()
}

// DrainAll profiles every queued frame and returns the number profiled.
func (p *Profiler) DrainAll() int {
	n := p.frames.Size()
	for range n {
		f, err := p.frames.Pop()
		if err != nil {
			paceerrors.Trap(p.logger, "snapshot queue underflow", err)
			return 0
		}
		p.Profile(f)
	}

	if n > 0 {
		p.logger.Debug().
			Int("frames", n).
			Int("events", p.events.Size()).
			Msg("Drained snapshot queue")
	}
	return n
}

// Finalize closes every open span at ts.
func (p *Profiler) Finalize(ts float64) {
	p.Profile(sample.Frame{Timestamp: ts})
}

// Samples returns the number of non-empty snapshots profiled.
func (p *Profiler) Samples() uint64 {
	return p.samples
}

// Events returns the number of queued events.
func (p *Profiler) Events() int {
	return p.events.Size()
}

// Dump replays the event queue, writes the text report to w and returns the
// report. A span that does not nest terminates the process.
func (p *Profiler) Dump(w io.Writer) (*Report, error) {
	report, err := p.replay()
	if err != nil {
		paceerrors.Trap(p.logger, "event replay failed", err)
		return nil, err
	}

	p.logger.Info().
		Uint64("samples", report.Samples).
		Float64("elapsed_seconds", report.Elapsed).
		Int("spans", len(report.Spans)).
		Msg("Profile complete")

	if _, err := report.WriteTo(w); err != nil {
		return report, fmt.Errorf("failed to write report: %w", err)
	}
	return report, nil
}

type openSpan struct {
	name  string
	start float64
}

// replay drains the event queue once, matching every END with the innermost open START.
func (p *Profiler) replay() (*Report, error) {
	open, err := stack.New[openSpan](p.config.StackCapacity)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Samples: p.samples,
		Elapsed: p.clock.Seconds(),
	}
	if report.Elapsed > 0 {
		report.Rate = float64(report.Samples) / report.Elapsed
	}

	for !p.events.Empty() {
		ev, err := p.events.Pop()
		if err != nil {
			return nil, err
		}

		switch ev.Kind {
		case sample.Start:
			if err := open.Push(openSpan{name: ev.Name, start: ev.Timestamp}); err != nil {
				return nil, fmt.Errorf("opening %q: %w", ev.Name, err)
			}
		case sample.End:
			top, err := open.Peek()
			if err != nil {
				return nil, fmt.Errorf("%w: END %q with no open span", ErrSpanMismatch, ev.Name)
			}
			if top.name != ev.Name {
				return nil, fmt.Errorf("%w: END %q while %q is open", ErrSpanMismatch, ev.Name, top.name)
			}

			path := make([]string, 0, open.Size())
			open.Each(func(s openSpan) { path = append(path, s.name) })

			report.Spans = append(report.Spans, Span{
				Name:  ev.Name,
				Start: top.start,
				End:   ev.Timestamp,
				Depth: open.Size() - 1,
				Path:  path,
			})
			_, _ = open.Pop()
		default:
			return nil, fmt.Errorf("unknown event kind %s", ev.Kind)
		}
	}

	if !open.Empty() {
		p.logger.Warn().Int("open_spans", open.Size()).Msg("Spans still open after replay")
	}
	return report, nil
}

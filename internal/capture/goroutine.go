package capture

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"runtime"
	"runtime/debug"
	"runtime/pprof"
	"slices"
	"sync"

	"github.com/google/pprof/profile"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LabelKey is the pprof label that marks the target goroutine.
const LabelKey = "pace.target"

// enterName is the symbol of Enter as it appears in stack traces.
var enterName = runtime.FuncForPC(reflect.ValueOf(Enter).Pointer()).Name()

// Goroutines captures a target goroutine through the runtime goroutine
// profile. Each capture briefly stops the world, reads every goroutine's
// stack, and keeps the one carrying the target's label.
type Goroutines struct {
	logger     zerolog.Logger
	mainModule string

	mu  sync.Mutex
	buf bytes.Buffer
}

// NewGoroutines creates a goroutine capturer. The main module used by
// KeepMainOnly is read from the binary's build info.
func NewGoroutines(logger zerolog.Logger) *Goroutines {
	mainModule := ""
	if info, ok := debug.ReadBuildInfo(); ok {
		mainModule = info.Main.Path
	}
	return NewGoroutinesForModule(logger, mainModule)
}

// NewGoroutinesForModule creates a goroutine capturer treating module as the main module.
func NewGoroutinesForModule(logger zerolog.Logger, module string) *Goroutines {
	return &Goroutines{
		logger:     logger.With().Str("component", "capture").Logger(),
		mainModule: module,
	}
}

// MainModule returns the module path KeepMainOnly keeps.
func (g *Goroutines) MainModule() string {
	return g.mainModule
}

// Acquire labels the calling goroutine with a fresh target ID.
func (g *Goroutines) Acquire() Handle {
	id := uuid.NewString()
	ctx := pprof.WithLabels(context.Background(), pprof.Labels(LabelKey, id))
	pprof.SetGoroutineLabels(ctx)
	return Handle(id)
}

// Capture implements Capturer.
func (g *Goroutines) Capture(h Handle, skip, maxFrames int, flags Flags) []Frame {
	if !h.Valid() || maxFrames <= 0 {
		return []Frame{}
	}

	prof, err := g.goroutineProfile()
	if err != nil {
		g.logger.Debug().Err(err).Msg("Failed to read goroutine profile")
		return []Frame{}
	}

	s := targetSample(prof, h)
	if s == nil {
		// The target has not been scheduled yet or has already exited.
		return []Frame{}
	}

	return Filter(sampleFrames(s), skip, maxFrames, flags, g.mainModule)
}

func (g *Goroutines) goroutineProfile() (*profile.Profile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := pprof.Lookup("goroutine")
	if p == nil {
		return nil, fmt.Errorf("goroutine profile is not registered")
	}

	g.buf.Reset()
	if err := p.WriteTo(&g.buf, 0); err != nil {
		return nil, fmt.Errorf("failed to write goroutine profile: %w", err)
	}

	prof, err := profile.Parse(bytes.NewReader(g.buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse goroutine profile: %w", err)
	}
	return prof, nil
}

// targetSample picks the sample labelled h. Goroutines spawned by the target
// inherit its label, so the one running through Enter is preferred.
func targetSample(prof *profile.Profile, h Handle) *profile.Sample {
	var fallback *profile.Sample
	for _, s := range prof.Sample {
		if !slices.Contains(s.Label[LabelKey], string(h)) {
			continue
		}
		if containsEnter(s) {
			return s
		}
		if fallback == nil {
			fallback = s
		}
	}
	return fallback
}

func containsEnter(s *profile.Sample) bool {
	for _, loc := range s.Location {
		for _, line := range loc.Line {
			if line.Function != nil && line.Function.Name == enterName {
				return true
			}
		}
	}
	return false
}

// sampleFrames expands inlined lines innermost first and stops below Enter.
func sampleFrames(s *profile.Sample) []Frame {
	frames := make([]Frame, 0, len(s.Location))

	for _, loc := range s.Location {
		module := ""
		if loc.Mapping != nil {
			module = loc.Mapping.File
		}

		var offset uint64
		if fn := runtime.FuncForPC(uintptr(loc.Address)); fn != nil && loc.Address >= uint64(fn.Entry()) {
			offset = loc.Address - uint64(fn.Entry())
		}

		for _, line := range loc.Line {
			if line.Function == nil {
				continue
			}
			if line.Function.Name == enterName {
				return frames
			}
			frames = append(frames, Frame{
				PC:       loc.Address,
				Function: line.Function.Name,
				Module:   module,
				File:     line.Function.Filename,
				Line:     line.Line,
				Offset:   offset,
			})
		}
	}

	return frames
}

// Package capture walks the stack of a running target goroutine.
//
// The profiler core only consumes the Capturer interface. Goroutines is the
// production implementation; package capturetest provides a scripted one.
package capture

import (
	"strings"
)

// Handle identifies a target for Capture. The zero value is the null handle.
type Handle string

// Valid reports whether h is not the null handle.
func (h Handle) Valid() bool {
	return h != ""
}

// Flags select frame filters applied by Capture.
type Flags uint32

const (
	// None keeps every frame.
	None Flags = 0
	// FilterStdlib drops frames from standard library packages.
	FilterStdlib Flags = 1 << 0
	// KeepMainOnly keeps only frames from the main module.
	KeepMainOnly Flags = 1 << 1
	// FilterConventions drops compiler-generated wrapper frames.
	FilterConventions Flags = 1 << 2
)

// Has reports whether every bit of o is set in f.
func (f Flags) Has(o Flags) bool {
	return f&o == o
}

func (f Flags) String() string {
	if f == None {
		return "none"
	}
	var parts []string
	if f.Has(FilterStdlib) {
		parts = append(parts, "filter-stdlib")
	}
	if f.Has(KeepMainOnly) {
		parts = append(parts, "keep-main")
	}
	if f.Has(FilterConventions) {
		parts = append(parts, "filter-conventions")
	}
	return strings.Join(parts, "|")
}

// Frame is one symbolized stack frame.
type Frame struct {
	PC       uint64
	Function string
	Module   string
	File     string
	Line     int64
	// Offset is the distance of PC from the function entry.
	Offset uint64
}

// Capturer is the stack walking collaborator.
type Capturer interface {
	// Acquire runs on the target goroutine before the target function and
	// returns the handle later passed to Capture. It returns the null handle
	// when the goroutine cannot be targeted.
	Acquire() Handle

	// Capture returns the target's frames innermost first, dropping skip
	// innermost frames and truncating to maxFrames after filtering. It must
	// be safe to call while the target runs and returns an empty slice
	// rather than an error when nothing can be walked.
	Capture(h Handle, skip, maxFrames int, flags Flags) []Frame
}

// Enter runs fn on the calling goroutine. Captured stacks never include Enter
// or any frame above it, so a target started through Enter reports only its
// own frames.
//
//go:noinline
func Enter(fn func()) {
	fn()
}

// Names returns the function names of frames in order.
func Names(frames []Frame) []string {
	names := make([]string, len(frames))
	for i, f := range frames {
		names[i] = f.Function
	}
	return names
}

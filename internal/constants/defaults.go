package constants

import "time"

// Sampling - orchestration loop defaults.
const (
	// DefaultInterval is the THROTTLE sleep between samples.
	DefaultInterval = 25 * time.Millisecond

	// DefaultThreshold is the number of queued frames that triggers a drain.
	DefaultThreshold = 32

	// DefaultFrameCapacity is the snapshot queue size.
	DefaultFrameCapacity = 64

	// DefaultHandoffTimeout bounds the wait for the target's capture handle.
	DefaultHandoffTimeout = 5 * time.Second
)

// Capture - stack walking defaults.
const (
	// DefaultMaxFrames is the deepest snapshot captured.
	DefaultMaxFrames = 64

	// DefaultSkip is the number of innermost frames dropped.
	DefaultSkip = 0
)

// Profiler - event pipeline defaults.
const (
	// DefaultEventCapacity is the event queue size.
	DefaultEventCapacity = 65536

	// DefaultStackCapacity is the deepest span nesting replay accepts.
	DefaultStackCapacity = 128

	// DefaultDiff is the canonical diff strategy.
	DefaultDiff = "lockstep"
)

// Demo - built-in workload defaults.
const (
	// DefaultWorkload is the workload profiled by pace demo.
	DefaultWorkload = "nested"

	// DefaultWorkloadDuration is how long the demo workload runs.
	DefaultWorkloadDuration = 2 * time.Second
)

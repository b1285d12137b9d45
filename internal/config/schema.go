package config

import "time"

// Config is the pace configuration file.
type Config struct {
	Sampling SamplingConfig `yaml:"sampling"`
	Capture  CaptureConfig  `yaml:"capture"`
	Profiler ProfilerConfig `yaml:"profiler"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SamplingConfig controls the orchestration loop.
type SamplingConfig struct {
	Interval       time.Duration `yaml:"interval" env:"PACE_INTERVAL"`
	Threshold      int           `yaml:"threshold" env:"PACE_THRESHOLD"`
	FrameCapacity  int           `yaml:"frame_capacity" env:"PACE_FRAME_CAPACITY"`
	HandoffTimeout time.Duration `yaml:"handoff_timeout" env:"PACE_HANDOFF_TIMEOUT"`
}

// CaptureConfig controls what each stack capture keeps.
type CaptureConfig struct {
	MaxFrames         int  `yaml:"max_frames" env:"PACE_MAX_FRAMES"`
	Skip              int  `yaml:"skip" env:"PACE_SKIP"`
	KeepMain          bool `yaml:"keep_main" env:"PACE_KEEP_MAIN"`
	FilterStdlib      bool `yaml:"filter_stdlib" env:"PACE_FILTER_STDLIB"`
	FilterConventions bool `yaml:"filter_conventions" env:"PACE_FILTER_CONVENTIONS"`
}

// ProfilerConfig controls diffing and replay.
type ProfilerConfig struct {
	Diff          string `yaml:"diff" env:"PACE_DIFF"`
	EventCapacity int    `yaml:"event_capacity" env:"PACE_EVENT_CAPACITY"`
	StackCapacity int    `yaml:"stack_capacity" env:"PACE_STACK_CAPACITY"`
}

// OutputConfig names optional export files. Empty paths are skipped.
type OutputConfig struct {
	Folded string `yaml:"folded,omitempty" env:"PACE_FOLDED_OUT"`
	Pprof  string `yaml:"pprof,omitempty" env:"PACE_PPROF_OUT"`
	OTLP   string `yaml:"otlp,omitempty" env:"PACE_OTLP_OUT"`
}

// LoggingConfig controls diagnostic logging on stderr.
type LoggingConfig struct {
	Level  string `yaml:"level" env:"PACE_LOG_LEVEL"`
	Pretty bool   `yaml:"pretty" env:"PACE_LOG_PRETTY"`
}

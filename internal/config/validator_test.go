package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "zero interval", mutate: func(c *Config) { c.Sampling.Interval = 0 }, field: "sampling.interval"},
		{name: "zero handoff", mutate: func(c *Config) { c.Sampling.HandoffTimeout = -time.Second }, field: "sampling.handoff_timeout"},
		{name: "frame capacity", mutate: func(c *Config) { c.Sampling.FrameCapacity = 100 }, field: "sampling.frame_capacity"},
		{name: "zero threshold", mutate: func(c *Config) { c.Sampling.Threshold = 0 }, field: "sampling.threshold"},
		{name: "threshold above capacity", mutate: func(c *Config) { c.Sampling.Threshold = 65 }, field: "sampling.threshold"},
		{name: "max frames", mutate: func(c *Config) { c.Capture.MaxFrames = 0 }, field: "capture.max_frames"},
		{name: "negative skip", mutate: func(c *Config) { c.Capture.Skip = -1 }, field: "capture.skip"},
		{name: "diff strategy", mutate: func(c *Config) { c.Profiler.Diff = "fuzzy" }, field: "profiler.diff"},
		{name: "event capacity", mutate: func(c *Config) { c.Profiler.EventCapacity = 3 }, field: "profiler.event_capacity"},
		{name: "stack below max frames", mutate: func(c *Config) { c.Profiler.StackCapacity = 10 }, field: "profiler.stack_capacity"},
		{name: "log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, field: "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var multi *MultiValidationError
			require.True(t, errors.As(err, &multi))
			require.Len(t, multi.Errors, 1)
			assert.Equal(t, tt.field, multi.Errors[0].Field)
		})
	}
}

func TestMultiValidationError_Message(t *testing.T) {
	cfg := Default()
	cfg.Sampling.Interval = 0
	cfg.Capture.Skip = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed with 2 errors")
	assert.Contains(t, err.Error(), "1. sampling.interval")
	assert.Contains(t, err.Error(), "2. capture.skip")
}

package config

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestMergeFromEnv_AllKinds(t *testing.T) {
	cfg := Default()
	env := map[string]string{
		"PACE_INTERVAL":           "5ms",
		"PACE_FRAME_CAPACITY":     "128",
		"PACE_FILTER_STDLIB":      "false",
		"PACE_DIFF":               "trie",
		"PACE_OTLP_OUT":           "trace.json",
		"PACE_LOG_PRETTY":         "false",
		"PACE_SKIP":               "",
	}

	require.NoError(t, mergeFromEnv(reflect.ValueOf(cfg), lookupFrom(env)))

	assert.Equal(t, 5*time.Millisecond, cfg.Sampling.Interval)
	assert.Equal(t, 128, cfg.Sampling.FrameCapacity)
	assert.False(t, cfg.Capture.FilterStdlib)
	assert.Equal(t, "trie", cfg.Profiler.Diff)
	assert.Equal(t, "trace.json", cfg.Output.OTLP)
	assert.False(t, cfg.Logging.Pretty)
	assert.Equal(t, 0, cfg.Capture.Skip, "empty values are ignored")
}

func TestMergeFromEnv_Errors(t *testing.T) {
	tests := map[string]string{
		"PACE_INTERVAL":   "fast",
		"PACE_THRESHOLD":  "many",
		"PACE_KEEP_MAIN":  "perhaps",
		"PACE_MAX_FRAMES": "1.5",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			err := mergeFromEnv(reflect.ValueOf(Default()), lookupFrom(map[string]string{key: value}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestMergeFromEnv_UnsupportedType(t *testing.T) {
	type odd struct {
		Ratio float64 `env:"PACE_RATIO"`
	}
	err := mergeFromEnv(reflect.ValueOf(&odd{}), lookupFrom(map[string]string{"PACE_RATIO": "0.5"}))
	assert.Error(t, err)
}

func TestMergeFromEnv_NonStruct(t *testing.T) {
	var n int
	assert.NoError(t, MergeFromEnv(&n))
	assert.NoError(t, MergeFromEnv((*Config)(nil)))
}

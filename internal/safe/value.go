package safe

import (
	"math"
)

// Uint64ToInt64 safely converts an uint64 value to int64, clamping to math.MaxInt64 if overflow
// would occur.
// Returns the converted value and a boolean indicating whether clamping occurred.
func Uint64ToInt64(val uint64) (int64, bool) {
	if val > math.MaxInt64 {
		return math.MaxInt64, true
	}
	return int64(val), false
}

// SecondsToNanos converts seconds to integer nanoseconds, rounding to the
// nearest nanosecond and clamping to the int64 range. NaN converts to 0.
// Returns the converted value and a boolean indicating whether clamping occurred.
func SecondsToNanos(seconds float64) (int64, bool) {
	if math.IsNaN(seconds) {
		return 0, true
	}
	ns := math.Round(seconds * 1e9)
	if ns >= math.MaxInt64 {
		return math.MaxInt64, true
	}
	if ns <= math.MinInt64 {
		return math.MinInt64, true
	}
	return int64(ns), false
}

// Package errors provides error handling helpers for pace.
package errors

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// TrapExitCode is the process exit status used by Trap.
const TrapExitCode = 70

// exit is replaced in tests.
var exit = os.Exit

// Must panics if error is not nil.
// Use only for initialization code where failure should halt the program.
func Must(err error, msg string) {
	if err != nil {
		panic(fmt.Sprintf("%s: %v", msg, err))
	}
}

// Trap reports a broken invariant and terminates the process immediately.
// Deferred functions do not run. The message is logged at fatal level and
// echoed to stderr so it survives a disabled logger.
func Trap(logger zerolog.Logger, msg string, err error) {
	logger.WithLevel(zerolog.FatalLevel).Err(err).Msg(msg)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "pace: invariant violation: %s: %v\n", msg, err)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "pace: invariant violation: %s\n", msg)
	}
	exit(TrapExitCode)
}

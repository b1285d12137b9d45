package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/pace/internal/profiler"
	"github.com/coral-mesh/pace/internal/safe"
)

// Files names the export files to write. Empty paths are skipped.
type Files struct {
	Folded string
	Pprof  string
	OTLP   string
}

// Write writes every configured export of report. All exports are attempted;
// the returned error joins their failures.
func (f Files) Write(report *profiler.Report, opts Options, logger zerolog.Logger) error {
	writers := []struct {
		format string
		path   string
		write  func(io.Writer) error
	}{
		{"folded", f.Folded, func(w io.Writer) error { return WriteFolded(w, report) }},
		{"pprof", f.Pprof, func(w io.Writer) error { return WritePprof(w, report, opts) }},
		{"otlp", f.OTLP, func(w io.Writer) error { return WriteOTLP(w, report, opts) }},
	}

	var errs []error
	for _, wr := range writers {
		if wr.path == "" {
			continue
		}
		if err := safe.WriteFile(wr.path, 0o644, logger, wr.write); err != nil {
			errs = append(errs, fmt.Errorf("%s export: %w", wr.format, err))
			continue
		}
		logger.Info().Str("format", wr.format).Str("path", wr.path).Msg("Wrote export")
	}
	return errors.Join(errs...)
}

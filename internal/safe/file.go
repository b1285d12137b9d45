// Package safe provides guarded file and numeric helpers.
package safe

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// DefaultMaxFileSize is the default maximum file size for ReadFile (1MB).
const DefaultMaxFileSize = 1 << 20

// ReadOptions configures ReadFile.
type ReadOptions struct {
	// MaxSize is the maximum allowed file size in bytes. Zero means DefaultMaxFileSize.
	MaxSize int64
	// AllowSymlinks allows reading through a symlink.
	AllowSymlinks bool
}

// ReadFile reads a regular file no larger than opts.MaxSize. Symlinks are
// rejected unless opts.AllowSymlinks is set.
func ReadFile(path string, opts *ReadOptions) ([]byte, error) {
	if opts == nil {
		opts = &ReadOptions{}
	}
	maxSize := opts.MaxSize
	if maxSize == 0 {
		maxSize = DefaultMaxFileSize
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Lstat(cleanPath)
	if err != nil {
		return nil, err
	}

	if info.Mode()&os.ModeSymlink != 0 {
		if !opts.AllowSymlinks {
			return nil, fmt.Errorf("file %q is a symlink, which is not allowed", path)
		}
		if info, err = os.Stat(cleanPath); err != nil {
			return nil, err
		}
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("path %q is not a regular file", path)
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("file %q exceeds maximum allowed size of %d bytes", path, maxSize)
	}

	return os.ReadFile(cleanPath)
}

// WriteFile writes path atomically: write fills a temporary file in the same
// directory, which replaces path only if every step succeeds.
func WriteFile(path string, perm os.FileMode, logger zerolog.Logger, write func(io.Writer) error) error {
	clean := filepath.Clean(path)

	tmp, err := os.CreateTemp(filepath.Dir(clean), "."+filepath.Base(clean)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	if err := write(tmp); err != nil {
		Close(tmp, logger, "failed to close temporary file")
		RemoveFile(tmp, logger)
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		Close(tmp, logger, "failed to close temporary file")
		RemoveFile(tmp, logger)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		RemoveFile(tmp, logger)
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), clean); err != nil {
		RemoveFile(tmp, logger)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// Close closes gracefully a Closer interface, handling and logging the error.
func Close(c io.Closer, logger zerolog.Logger, msg string) {
	if err := c.Close(); err != nil {
		logger.Error().Err(err).Msg(msg)
	}
}

// RemoveFile removes gracefully a file, handling and logging the error.
func RemoveFile(f *os.File, logger zerolog.Logger) {
	if f == nil {
		return
	}
	if err := os.Remove(f.Name()); err != nil && !os.IsNotExist(err) {
		logger.Error().Err(err).Msg("failed to remove file")
	}
}

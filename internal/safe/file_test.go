package safe

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	t.Run("reads regular file", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "pace.yaml")
		require.NoError(t, os.WriteFile(src, []byte("sampling: {}"), 0o644))

		got, err := ReadFile(src, nil)
		require.NoError(t, err)
		assert.Equal(t, "sampling: {}", string(got))
	})

	t.Run("symlinks need opting in", func(t *testing.T) {
		dir := t.TempDir()
		src := filepath.Join(dir, "pace.yaml")
		link := filepath.Join(dir, "link.yaml")
		require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))
		require.NoError(t, os.Symlink(src, link))

		_, err := ReadFile(link, nil)
		assert.Error(t, err)

		got, err := ReadFile(link, &ReadOptions{AllowSymlinks: true})
		require.NoError(t, err)
		assert.Equal(t, "x", string(got))
	})

	t.Run("rejects directories", func(t *testing.T) {
		_, err := ReadFile(t.TempDir(), nil)
		assert.Error(t, err)
	})

	t.Run("rejects file exceeding max size", func(t *testing.T) {
		src := filepath.Join(t.TempDir(), "big.yaml")
		require.NoError(t, os.WriteFile(src, make([]byte, 1024), 0o644))

		_, err := ReadFile(src, &ReadOptions{MaxSize: 512})
		assert.Error(t, err)
	})
}

func TestWriteFile(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("replaces destination", func(t *testing.T) {
		dst := filepath.Join(t.TempDir(), "out.folded")
		require.NoError(t, os.WriteFile(dst, []byte("old"), 0o600))

		err := WriteFile(dst, 0o644, logger, func(w io.Writer) error {
			_, err := io.WriteString(w, "top;mid;leaf 100\n")
			return err
		})
		require.NoError(t, err)

		got, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "top;mid;leaf 100\n", string(got))

		info, err := os.Stat(dst)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
	})

	t.Run("failed write keeps destination and cleans up", func(t *testing.T) {
		dir := t.TempDir()
		dst := filepath.Join(dir, "out.pb.gz")
		require.NoError(t, os.WriteFile(dst, []byte("old"), 0o600))

		boom := errors.New("encode failed")
		err := WriteFile(dst, 0o644, logger, func(w io.Writer) error {
			_, _ = io.WriteString(w, "partial")
			return boom
		})
		require.ErrorIs(t, err, boom)

		got, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "old", string(got))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temporary file must be removed")
	})

	t.Run("missing directory", func(t *testing.T) {
		err := WriteFile(filepath.Join(t.TempDir(), "nope", "out"), 0o644, logger, func(io.Writer) error { return nil })
		assert.Error(t, err)
	})
}

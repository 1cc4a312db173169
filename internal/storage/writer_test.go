package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriteTextCreatesParentDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := NewWriter(false, zap.NewNop())

	path := filepath.Join(dir, "101", "links", "abc.html")
	require.NoError(t, w.WriteText(path, "<html>hi</html>"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "<html>hi</html>", string(data))
}

func TestWriteBytes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := NewWriter(false, zap.NewNop())

	payload := []byte{0x89, 0x50, 0x4e, 0x47}
	path := filepath.Join(dir, "img.png")
	require.NoError(t, w.WriteBytes(path, payload))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, payload, data)
}

func TestDryRunWritesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := NewWriter(true, zap.NewNop())
	require.True(t, w.DryRun())

	path := filepath.Join(dir, "101", "101.html")
	require.NoError(t, w.WriteText(path, "content"))
	require.NoError(t, w.WriteBytes(filepath.Join(dir, "x.bin"), []byte{1, 2, 3}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries, "dry run must not touch the filesystem")
}

func TestWriteFailsOnBadPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := NewWriter(false, zap.NewNop())

	// A file where a directory is needed.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	err := w.WriteText(filepath.Join(blocker, "nested", "a.html"), "content")
	require.Error(t, err)
}

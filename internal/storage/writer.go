// Package storage persists fetched artifacts to the local filesystem.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/bormog/ycrawler/internal/metrics"
)

// Writer saves payloads to disk, creating parent directories on
// demand. In dry-run mode every write is a guaranteed successful no-op
// so the rest of the pipeline can run untouched in tests.
type Writer struct {
	dryRun bool
	logger *zap.Logger
}

// NewWriter returns a Writer.
func NewWriter(dryRun bool, logger *zap.Logger) *Writer {
	return &Writer{
		dryRun: dryRun,
		logger: logger,
	}
}

// DryRun reports whether writes are suppressed.
func (w *Writer) DryRun() bool {
	return w.dryRun
}

// WriteBytes persists a raw binary payload exactly as fetched.
func (w *Writer) WriteBytes(path string, data []byte) error {
	return w.write(path, data)
}

// WriteText persists a decoded text payload. The pipeline decodes to
// UTF-8 exactly once; the bytes written here are that decoding, with
// no further transformation.
func (w *Writer) WriteText(path string, text string) error {
	return w.write(path, []byte(text))
}

func (w *Writer) write(path string, data []byte) error {
	if w.dryRun {
		w.logger.Debug("dry run, skipping write", zap.String("path", path))
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	metrics.ObserveArtifactWritten()
	w.logger.Debug("artifact written", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

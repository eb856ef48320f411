// Package artifacts writes debug artifacts and graph snapshots.
package artifacts

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"github.com/utkarsh5026/gitgo/pkg/common/fileops"
	"github.com/utkarsh5026/gitgo/pkg/common/logger"
)

// Artifact file names.
const (
	LocalBranchesFile  = "localBranches.json"
	RemoteBranchesFile = "remoteBranches.json"
	CommitsFile        = "commits.json"
)

// Writer stores JSON artifacts in one directory. A disabled writer accepts
// every call and writes nothing.
type Writer struct {
	dir     string
	enabled bool
	log     *slog.Logger
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string, enabled bool, log *slog.Logger) *Writer {
	return &Writer{dir: dir, enabled: enabled, log: logger.OrDefault(log)}
}

// Enabled reports whether writes reach the disk.
func (w *Writer) Enabled() bool {
	return w != nil && w.enabled
}

// Path returns where name would be written.
func (w *Writer) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// WriteJSON encodes v and replaces name atomically.
func (w *Writer) WriteJSON(name string, v any) error {
	if !w.Enabled() {
		return nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	path := w.Path(name)
	if err := fileops.AtomicWrite(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	w.log.Debug("artifact written", "path", path, "bytes", len(data))
	return nil
}

// Encode writes v to dst as JSON, zstd-compressed when compress is set.
func Encode(dst io.Writer, v any, compress bool) error {
	if !compress {
		enc := json.NewEncoder(dst)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	zw, err := zstd.NewWriter(dst)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(zw).Encode(v); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// Decode reads a value written by Encode.
func Decode(src io.Reader, v any, compressed bool) error {
	if !compressed {
		return json.NewDecoder(src).Decode(v)
	}

	zr, err := zstd.NewReader(src)
	if err != nil {
		return err
	}
	defer zr.Close()
	return json.NewDecoder(zr).Decode(v)
}

package output

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Local writes reports to the local filesystem. Directories are resolved
// against root and may not leave it.
type Local struct {
	root string
}

// NewLocal returns a sink writing under root.
func NewLocal(root string) *Local {
	return &Local{root: root}
}

// Validate implements Sink.
func (l *Local) Validate() error {
	if l.root == "" {
		return fmt.Errorf("output-root is required")
	}
	return nil
}

// Write implements Sink. The file is written to a temporary name first so a
// partially written report is never visible.
func (l *Local) Write(ctx context.Context, dir, name string, data []byte) (string, error) {
	if filepath.IsAbs(dir) {
		return "", fmt.Errorf("output directory %q must be relative to %s", dir, l.root)
	}
	dir = filepath.Join(l.root, dir)
	if rel, err := filepath.Rel(l.root, dir); err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("output directory %q leaves %s", dir, l.root)
	}
	if strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("report name %q must not contain a path", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, name)
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close report: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return "", fmt.Errorf("failed to set report permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move report into place: %w", err)
	}

	slog.DebugContext(ctx, "wrote report", slog.String("path", path), slog.Int("bytes", len(data)))
	return path, nil
}

package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meza/fabric-installer/internal/lifecycle"
	"github.com/meza/fabric-installer/internal/minecraft"
	"github.com/meza/fabric-installer/internal/perf"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
)

const descriptorFileMode os.FileMode = 0o644

// Writer commits descriptors below a Minecraft root. The content lands in a
// sibling temp file first, so the target is either the previous entry, absent,
// or the complete new file.
type Writer struct {
	fs   afero.Fs
	root string
}

func NewWriter(fs afero.Fs, root string) *Writer {
	return &Writer{fs: fs, root: root}
}

// Write replaces whatever is at targetPath (file or directory) with data and
// returns the path that was written.
func (w *Writer) Write(ctx context.Context, targetPath string, data []byte) (string, error) {
	_, span := perf.StartSpan(ctx, "io.installer.descriptor.write", perf.WithAttributes(attribute.String("path", targetPath)))
	defer span.End()

	if w.root != "" && !minecraft.WithinRoot(w.root, targetPath) {
		return "", w.fail(span, "resolve", targetPath, minecraft.OutsideRootError{Path: targetPath, ResolvedPath: filepath.Clean(targetPath), Root: w.root})
	}

	if err := w.fs.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return "", w.fail(span, "mkdir", filepath.Dir(targetPath), err)
	}

	resolvedPath := targetPath
	if w.root != "" {
		resolved, err := minecraft.ResolveWritablePath(w.fs, w.root, targetPath)
		if err != nil {
			return "", w.fail(span, "resolve", targetPath, err)
		}
		resolvedPath = resolved
	}

	tempPath, err := nextSiblingPath(w.fs, resolvedPath, ".tmp")
	if err != nil {
		return "", w.fail(span, "write", resolvedPath, err)
	}
	releaseTemp := lifecycle.Guard("installer.descriptor.temp", func() { _ = w.fs.Remove(tempPath) })
	defer releaseTemp()

	if err := afero.WriteFile(w.fs, tempPath, data, descriptorFileMode); err != nil {
		return "", w.fail(span, "write", tempPath, cleanupTempOnError(w.fs, tempPath, err))
	}

	exists, err := afero.Exists(w.fs, resolvedPath)
	if err != nil {
		return "", w.fail(span, "stat", resolvedPath, cleanupTempOnError(w.fs, tempPath, err))
	}
	if exists {
		span.AddEvent("replace.existing")
		if err := w.fs.RemoveAll(resolvedPath); err != nil {
			return "", w.fail(span, "remove", resolvedPath, cleanupTempOnError(w.fs, tempPath, err))
		}
	}

	if err := w.fs.Rename(tempPath, resolvedPath); err != nil {
		return "", w.fail(span, "rename", resolvedPath, cleanupTempOnError(w.fs, tempPath, err))
	}

	return resolvedPath, nil
}

func (w *Writer) fail(span *perf.Span, op string, path string, err error) error {
	fsErr := &FileSystemError{Op: op, Path: path, Err: err}
	span.RecordError(fsErr)
	return fsErr
}

func nextSiblingPath(fs afero.Fs, targetPath string, suffix string) (string, error) {
	base := targetPath + suffix

	candidate := base
	for i := 0; i < 100; i++ {
		exists, err := afero.Exists(fs, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s.%d", base, i+1)
	}

	return "", errors.New("cannot allocate sibling path")
}

func cleanupTempOnError(fs afero.Fs, tempPath string, originalErr error) error {
	removeErr := fs.Remove(tempPath)
	if removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
		return errors.Join(originalErr, fmt.Errorf("failed to remove temp file %s: %w", tempPath, removeErr))
	}
	return originalErr
}

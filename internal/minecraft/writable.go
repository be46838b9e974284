package minecraft

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

type OutsideRootError struct {
	Path         string
	ResolvedPath string
	Root         string
}

func (err OutsideRootError) Error() string {
	return fmt.Sprintf("resolved path %s for %s is outside root %s", err.ResolvedPath, err.Path, err.Root)
}

type pathResolver struct {
	evalSymlinks func(string) (string, error)
	abs          func(string) (string, error)
}

var osPathResolver = pathResolver{evalSymlinks: filepath.EvalSymlinks, abs: filepath.Abs}

// ResolveWritablePath follows symlinks on the destination (and its directory)
// and refuses anything that lands outside root. Filesystems without link
// support (in-memory ones) return the destination unchanged.
func ResolveWritablePath(fs afero.Fs, root string, destination string) (string, error) {
	return osPathResolver.resolveWritable(fs, root, destination)
}

func (r pathResolver) resolveWritable(fs afero.Fs, root string, destination string) (string, error) {
	linker, ok := fs.(afero.Symlinker)
	if !ok {
		return destination, nil
	}

	resolvedRoot, err := r.resolve(root)
	if err != nil {
		return "", err
	}

	info, _, err := linker.LstatIfPossible(destination)
	if err != nil && !os.IsNotExist(err) {
		return "", err
	}

	target := destination
	if err == nil && info.Mode()&os.ModeSymlink != 0 {
		link, readErr := linker.ReadlinkIfPossible(destination)
		if readErr != nil {
			return "", readErr
		}
		if !filepath.IsAbs(link) {
			link = filepath.Join(filepath.Dir(destination), link)
		}
		target = link
	}

	resolvedDir, err := r.resolve(filepath.Dir(target))
	if err != nil {
		return "", err
	}
	resolved := filepath.Join(resolvedDir, filepath.Base(target))

	if !pathWithinRoot(resolvedRoot, resolved) {
		return "", OutsideRootError{Path: destination, ResolvedPath: resolved, Root: resolvedRoot}
	}
	return resolved, nil
}

func (r pathResolver) resolve(path string) (string, error) {
	resolved, err := r.evalSymlinks(path)
	if err != nil {
		return "", err
	}
	return r.abs(resolved)
}

func pathWithinRoot(root string, candidate string) bool {
	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return false
	}
	return !filepath.IsAbs(rel)
}

// WithinRoot is the lexical form of the root check. It needs nothing on disk,
// so it can run before any directory is created.
func WithinRoot(root string, path string) bool {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return pathWithinRoot(absRoot, absPath)
}

package installer

import (
	"fmt"
)

type ResolutionError struct {
	Field  string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %s: %s", e.Field, e.Reason)
}

func (e *ResolutionError) Is(target error) bool {
	t, ok := target.(*ResolutionError)
	if !ok {
		return false
	}
	return e.Field == t.Field
}

type FileSystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileSystemError) Is(target error) bool {
	t, ok := target.(*FileSystemError)
	if !ok {
		return false
	}
	return e.Op == t.Op && e.Path == t.Path
}

func (e *FileSystemError) Unwrap() error {
	return e.Err
}

type MainClassUnresolvedError struct {
	Side Side
}

func (e *MainClassUnresolvedError) Error() string {
	return fmt.Sprintf("no main class found for the %s side", e.Side)
}

func (e *MainClassUnresolvedError) Is(target error) bool {
	_, ok := target.(*MainClassUnresolvedError)
	return ok
}

// InheritsFromUnresolvedError is reported as a warning: the descriptor is still
// written, but launchers cannot start it until inheritsFrom is filled in.
type InheritsFromUnresolvedError struct {
	ID string
}

func (e *InheritsFromUnresolvedError) Error() string {
	return fmt.Sprintf("no base Minecraft version could be derived for %s", e.ID)
}

func (e *InheritsFromUnresolvedError) Is(target error) bool {
	_, ok := target.(*InheritsFromUnresolvedError)
	return ok
}

package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// Unlock releases a lock obtained from a Locker.
type Unlock func() error

// Locker serialises installs that target the same descriptor path.
type Locker interface {
	Lock(ctx context.Context, path string) (Unlock, error)
}

const (
	defaultLockWait      = 30 * time.Second
	defaultLockPollEvery = 100 * time.Millisecond
)

// FileLocker takes an advisory OS lock on <path>.lock so separate processes
// installing the same id wait for each other.
type FileLocker struct {
	Wait      time.Duration
	PollEvery time.Duration
}

func NewFileLocker() *FileLocker {
	return &FileLocker{Wait: defaultLockWait, PollEvery: defaultLockPollEvery}
}

func (l *FileLocker) Lock(ctx context.Context, path string) (Unlock, error) {
	lockPath := path + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, &FileSystemError{Op: "lock", Path: lockPath, Err: err}
	}

	wait := l.Wait
	if wait <= 0 {
		wait = defaultLockWait
	}
	pollEvery := l.PollEvery
	if pollEvery <= 0 {
		pollEvery = defaultLockPollEvery
	}

	lockCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	fileLock := flock.New(lockPath)
	locked, err := fileLock.TryLockContext(lockCtx, pollEvery)
	if err != nil {
		return nil, &FileSystemError{Op: "lock", Path: lockPath, Err: err}
	}
	if !locked {
		return nil, &FileSystemError{Op: "lock", Path: lockPath, Err: fmt.Errorf("timed out after %s", wait)}
	}

	return fileLock.Unlock, nil
}

// MemoryLocker serialises installs within one process, keyed by path.
type MemoryLocker struct {
	mu    sync.Mutex
	paths map[string]chan struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{paths: map[string]chan struct{}{}}
}

func (l *MemoryLocker) Lock(ctx context.Context, path string) (Unlock, error) {
	for {
		l.mu.Lock()
		if l.paths == nil {
			l.paths = map[string]chan struct{}{}
		}
		held, busy := l.paths[path]
		if !busy {
			released := make(chan struct{})
			l.paths[path] = released
			l.mu.Unlock()
			return l.unlockFunc(path, released), nil
		}
		l.mu.Unlock()

		select {
		case <-held:
		case <-ctx.Done():
			return nil, &FileSystemError{Op: "lock", Path: path, Err: ctx.Err()}
		}
	}
}

func (l *MemoryLocker) unlockFunc(path string, released chan struct{}) Unlock {
	var once sync.Once
	return func() error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.paths, path)
			l.mu.Unlock()
			close(released)
		})
		return nil
	}
}

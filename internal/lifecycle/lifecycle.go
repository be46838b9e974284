// Package lifecycle runs cleanup when the installer is interrupted.
package lifecycle

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// Handler receives the OS signal that triggered shutdown.
type Handler func(os.Signal)

// HandlerID identifies a registered handler.
type HandlerID int64

type entry struct {
	id      HandlerID
	name    string
	handler Handler
}

var (
	shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

	nextID atomic.Int64

	listenOnce sync.Once
	signals    chan os.Signal

	entriesMu sync.Mutex
	entries   []entry

	channelFactory = newSignalChan
	notifyFunc     = signal.Notify
	stopFunc       = signal.Stop
	exitFunc       = os.Exit
)

// Register adds a named cleanup step. Steps run newest first when a shutdown
// signal arrives, then the process exits with the conventional signal code.
func Register(name string, handler Handler) HandlerID {
	if handler == nil {
		return 0
	}

	listenOnce.Do(listen)

	id := HandlerID(nextID.Add(1))

	entriesMu.Lock()
	entries = append(entries, entry{id: id, name: name, handler: handler})
	entriesMu.Unlock()

	return id
}

// Guard registers cleanup for the span of an operation. The returned release
// removes it again once the operation finished normally.
func Guard(name string, cleanup func()) (release func()) {
	if cleanup == nil {
		return func() {}
	}
	id := Register(name, func(os.Signal) { cleanup() })
	return func() { Unregister(id) }
}

func Unregister(id HandlerID) {
	if id == 0 {
		return
	}

	entriesMu.Lock()
	defer entriesMu.Unlock()

	for i, existing := range entries {
		if existing.id == id {
			entries = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// Registered lists the names of pending cleanup steps, newest first.
func Registered() []string {
	entriesMu.Lock()
	defer entriesMu.Unlock()

	names := make([]string, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		names = append(names, entries[i].name)
	}
	return names
}

func listen() {
	signals = channelFactory()
	notifyFunc(signals, shutdownSignals...)

	go func(received <-chan os.Signal) {
		sig := <-received
		runHandlers(sig)
		exitFunc(exitCode(sig))
	}(signals)
}

func runHandlers(sig os.Signal) {
	entriesMu.Lock()
	pending := make([]entry, len(entries))
	copy(pending, entries)
	entriesMu.Unlock()

	for i := len(pending) - 1; i >= 0; i-- {
		callHandler(pending[i].handler, sig)
	}
}

func callHandler(handler Handler, sig os.Signal) {
	defer func() {
		// a failing step must not stop the rest
		_ = recover()
	}()
	handler(sig)
}

func exitCode(sig os.Signal) int {
	switch sig {
	case os.Interrupt:
		return 130
	case syscall.SIGTERM:
		return 143
	default:
		return 1
	}
}

// reset clears global state (tests only).
func reset() {
	if signals != nil {
		stopFunc(signals)
	}
	signals = nil

	listenOnce = sync.Once{}
	nextID.Store(0)

	entriesMu.Lock()
	entries = nil
	entriesMu.Unlock()

	channelFactory = newSignalChan
	notifyFunc = signal.Notify
	stopFunc = signal.Stop
	exitFunc = os.Exit
}

func newSignalChan() chan os.Signal {
	return make(chan os.Signal, 1)
}

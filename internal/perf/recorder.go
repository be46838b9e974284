package perf

import (
	"context"
	"sync"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// DefaultSpanLimit bounds how many finished spans a run keeps in memory.
const DefaultSpanLimit = 4096

// recorder keeps finished spans in arrival order. Past its limit the oldest
// spans are dropped and counted.
type recorder struct {
	mu      sync.Mutex
	limit   int
	spans   []sdktrace.ReadOnlySpan
	dropped int
}

func newRecorder(limit int) *recorder {
	if limit <= 0 {
		limit = DefaultSpanLimit
	}
	return &recorder{limit: limit}
}

func (r *recorder) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.spans = append(r.spans, spans...)
	if over := len(r.spans) - r.limit; over > 0 {
		r.dropped += over
		r.spans = append([]sdktrace.ReadOnlySpan(nil), r.spans[over:]...)
	}
	return nil
}

func (r *recorder) Shutdown(context.Context) error {
	return nil
}

func (r *recorder) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spans = nil
	r.dropped = 0
}

// finished returns a copy of the kept spans and the number dropped so far.
func (r *recorder) finished() ([]sdktrace.ReadOnlySpan, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sdktrace.ReadOnlySpan(nil), r.spans...), r.dropped
}

func (r *recorder) droppedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

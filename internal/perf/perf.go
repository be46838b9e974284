// Package perf records OpenTelemetry spans in memory so a run can be inspected or exported.
package perf

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const tracerName = "github.com/meza/fabric-installer"

var ErrNotEnabled = errors.New("performance tracing is not enabled")

type Config struct {
	Enabled bool
	// SpanLimit caps the spans kept in memory, DefaultSpanLimit when zero.
	SpanLimit int
}

var (
	stateMu  sync.RWMutex
	provider *sdktrace.TracerProvider
	exporter *recorder
	tracer   oteltrace.Tracer = noop.NewTracerProvider().Tracer(tracerName)
)

// Init installs an in-memory tracer provider. Disabled tracing keeps the no-op tracer.
func Init(config Config) error {
	stateMu.Lock()
	defer stateMu.Unlock()

	if !config.Enabled {
		return nil
	}
	if provider != nil {
		return nil
	}

	exporter = newRecorder(config.SpanLimit)
	provider = sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
	)
	tracer = provider.Tracer(tracerName)
	return nil
}

func Shutdown(ctx context.Context) error {
	stateMu.RLock()
	current := provider
	stateMu.RUnlock()
	if current == nil {
		return nil
	}
	return current.ForceFlush(ctx)
}

// Reset drops the provider and every recorded span.
func Reset() {
	stateMu.Lock()
	defer stateMu.Unlock()

	if provider != nil {
		_ = provider.Shutdown(context.Background())
	}
	provider = nil
	exporter = nil
	tracer = noop.NewTracerProvider().Tracer(tracerName)
}

type Span struct {
	span oteltrace.Span
}

type spanConfig struct {
	attributes []attribute.KeyValue
}

type SpanOption func(*spanConfig)

func WithAttributes(attributes ...attribute.KeyValue) SpanOption {
	return func(config *spanConfig) {
		config.attributes = append(config.attributes, attributes...)
	}
}

func StartSpan(ctx context.Context, name string, options ...SpanOption) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	config := spanConfig{}
	for _, option := range options {
		option(&config)
	}

	stateMu.RLock()
	current := tracer
	stateMu.RUnlock()

	ctx, span := current.Start(ctx, name, oteltrace.WithAttributes(config.attributes...))
	return ctx, &Span{span: span}
}

func (s *Span) End() {
	s.span.End()
}

func (s *Span) SetAttributes(attributes ...attribute.KeyValue) {
	s.span.SetAttributes(attributes...)
}

func (s *Span) AddEvent(name string, attributes ...attribute.KeyValue) {
	s.span.AddEvent(name, oteltrace.WithAttributes(attributes...))
}

func (s *Span) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func SnapshotSpans() ([]sdktrace.ReadOnlySpan, error) {
	stateMu.RLock()
	current := exporter
	stateMu.RUnlock()

	if current == nil {
		return nil, ErrNotEnabled
	}
	spans, _ := current.finished()
	return spans, nil
}

// DroppedSpans reports how many spans fell out of the in-memory limit.
func DroppedSpans() int {
	stateMu.RLock()
	current := exporter
	stateMu.RUnlock()

	if current == nil {
		return 0
	}
	return current.droppedCount()
}

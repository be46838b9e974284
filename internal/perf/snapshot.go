package perf

import (
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// SpanSnapshot is a finished span detached from the SDK.
type SpanSnapshot struct {
	Name         string
	TraceID      string
	SpanID       string
	ParentSpanID string
	StartTime    time.Time
	EndTime      time.Time
	Attributes   map[string]interface{}
	Events       []EventSnapshot
	// Error holds the status description of a span that recorded an error.
	Error  string
	Failed bool
}

type EventSnapshot struct {
	Name       string
	Timestamp  time.Time
	Attributes map[string]interface{}
}

func (s SpanSnapshot) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

func GetSpans() ([]SpanSnapshot, error) {
	spans, err := SnapshotSpans()
	if err != nil {
		return nil, err
	}

	out := make([]SpanSnapshot, len(spans))
	for i, span := range spans {
		out[i] = snapshotOf(span)
	}
	return out, nil
}

// MustGetSpans is GetSpans for callers that treat disabled tracing as "no spans".
func MustGetSpans() []SpanSnapshot {
	spans, _ := GetSpans()
	return spans
}

func FindSpanByName(spans []SpanSnapshot, name string) (SpanSnapshot, bool) {
	for _, span := range spans {
		if span.Name == name {
			return span, true
		}
	}
	return SpanSnapshot{}, false
}

// LatestSpanByName picks the span named name that finished last.
func LatestSpanByName(spans []SpanSnapshot, name string) (SpanSnapshot, bool) {
	var latest SpanSnapshot
	found := false
	for _, span := range spans {
		if span.Name != name {
			continue
		}
		if !found || span.EndTime.After(latest.EndTime) {
			latest = span
			found = true
		}
	}
	return latest, found
}

func snapshotOf(span sdktrace.ReadOnlySpan) SpanSnapshot {
	ids := span.SpanContext()
	status := span.Status()

	out := SpanSnapshot{
		Name:       span.Name(),
		TraceID:    ids.TraceID().String(),
		SpanID:     ids.SpanID().String(),
		StartTime:  span.StartTime(),
		EndTime:    span.EndTime(),
		Attributes: attributeMap(span.Attributes()),
		Failed:     status.Code == codes.Error,
	}
	if out.Failed {
		out.Error = status.Description
	}
	if parent := span.Parent(); parent.IsValid() {
		out.ParentSpanID = parent.SpanID().String()
	}

	for _, event := range span.Events() {
		out.Events = append(out.Events, EventSnapshot{
			Name:       event.Name,
			Timestamp:  event.Time,
			Attributes: attributeMap(event.Attributes),
		})
	}
	return out
}

func attributeMap(attributes []attribute.KeyValue) map[string]interface{} {
	if len(attributes) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(attributes))
	for _, kv := range attributes {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

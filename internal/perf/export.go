package perf

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultExportFilename = "fabric-installer-perf.json"

type exportEntry struct {
	Name         string                 `json:"name"`
	TraceID      string                 `json:"trace_id"`
	SpanID       string                 `json:"span_id"`
	ParentSpanID string                 `json:"parent_span_id,omitempty"`
	Start        time.Time              `json:"start"`
	DurationNS   int64                  `json:"duration_ns"`
	Attributes   map[string]interface{} `json:"attributes,omitempty"`
	Events       []string               `json:"events,omitempty"`
	Error        string                 `json:"error,omitempty"`
}

// ExportToFile writes the span snapshots as JSON to <outDir>/fabric-installer-perf.json.
// Absolute paths in path-like attributes are rewritten relative to baseDir.
// Callers treat a returned error as non-fatal.
func ExportToFile(outDir string, baseDir string, spans []SpanSnapshot) (string, error) {
	if outDir == "" {
		outDir = "."
	}

	exported := make([]exportEntry, 0, len(spans))
	for _, span := range spans {
		entry := exportEntry{
			Name:         span.Name,
			TraceID:      span.TraceID,
			SpanID:       span.SpanID,
			ParentSpanID: span.ParentSpanID,
			Start:        span.StartTime,
			DurationNS:   span.Duration().Nanoseconds(),
			Attributes:   normalizeAttributes(span.Attributes, baseDir),
		}
		for _, event := range span.Events {
			entry.Events = append(entry.Events, event.Name)
		}
		if span.Failed {
			entry.Error = span.Error
			if entry.Error == "" {
				entry.Error = "error"
			}
		}
		exported = append(exported, entry)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(outDir, defaultExportFilename)
	data, err := json.MarshalIndent(exported, "", "  ")
	if err != nil {
		return "", err
	}

	return path, os.WriteFile(path, data, 0644)
}

func normalizeAttributes(attributes map[string]interface{}, baseDir string) map[string]interface{} {
	if len(attributes) == 0 {
		return attributes
	}

	normalized := make(map[string]interface{}, len(attributes))
	for key, value := range attributes {
		normalized[key] = normalizeValue(key, value, baseDir)
	}
	return normalized
}

func normalizeValue(key string, value interface{}, baseDir string) interface{} {
	stringValue, ok := value.(string)
	if !ok || !looksLikePathKey(key) {
		return value
	}

	if baseDir != "" && filepath.IsAbs(stringValue) {
		rel, err := filepath.Rel(baseDir, stringValue)
		if err == nil {
			return exportPath(rel)
		}
	}

	return exportPath(stringValue)
}

func looksLikePathKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	return key == "path" || strings.HasSuffix(key, "_path") || strings.HasSuffix(key, "path")
}

func exportPath(value string) string {
	cleaned := filepath.Clean(value)
	if cleaned == "." {
		return cleaned
	}
	return filepath.ToSlash(strings.TrimPrefix(cleaned, "./"))
}

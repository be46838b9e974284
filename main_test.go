package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/meza/fabric-installer/internal/lifecycle"
	"github.com/meza/fabric-installer/internal/perf"
	"github.com/stretchr/testify/assert"
)

func TestRunWithDeps_RecordsLifecycleRegions(t *testing.T) {
	perf.Reset()
	t.Cleanup(perf.Reset)

	var calls []string
	deps := runDeps{
		execute: func(context.Context) error {
			calls = append(calls, "execute")
			return nil
		},
		telemetryInit: func() {
			calls = append(calls, "telemetryInit")
		},
		telemetryShutdown: func(context.Context) {
			calls = append(calls, "telemetryShutdown")
		},
		register: func(handler lifecycle.Handler) lifecycle.HandlerID {
			assert.NotNil(t, handler)
			calls = append(calls, "register")
			return 42
		},
		unregister: func(id lifecycle.HandlerID) {
			calls = append(calls, "unregister")
			assert.Equal(t, lifecycle.HandlerID(42), id)
		},
		args: []string{"--perf", "--perf-out-dir", t.TempDir()},
	}

	exitCode := runWithDeps(deps)
	assert.Equal(t, 0, exitCode)
	assert.Equal(t, []string{"telemetryInit", "register", "execute", "telemetryShutdown", "unregister"}, calls)

	spans, err := perf.GetSpans()
	assert.NoError(t, err)
	assertSpanExists(t, spans, perfLifecycleStartup)
	assertSpanExists(t, spans, perfLifecycleExecute)
	assertSpanExists(t, spans, perfLifecycleShutdown)

	shutdownSpan, ok := perf.FindSpanByName(spans, perfLifecycleShutdown)
	assert.True(t, ok)
	assert.Equal(t, string(shutdownTriggerExit), shutdownSpan.Attributes["trigger"])
}

func TestRunWithDeps_SignalShutdownIsRecordedOnce(t *testing.T) {
	perf.Reset()
	t.Cleanup(perf.Reset)

	var calls []string
	var registeredHandler lifecycle.Handler

	deps := runDeps{
		execute: func(context.Context) error {
			calls = append(calls, "execute-start")
			assert.NotNil(t, registeredHandler)
			registeredHandler(os.Interrupt)
			calls = append(calls, "execute-end")
			return nil
		},
		telemetryInit: func() {
			calls = append(calls, "telemetryInit")
		},
		telemetryShutdown: func(context.Context) {
			calls = append(calls, "telemetryShutdown")
		},
		register: func(handler lifecycle.Handler) lifecycle.HandlerID {
			calls = append(calls, "register")
			registeredHandler = handler
			return 7
		},
		unregister: func(id lifecycle.HandlerID) {
			calls = append(calls, "unregister")
			assert.Equal(t, lifecycle.HandlerID(7), id)
		},
		args: []string{"--perf", "--perf-out-dir", t.TempDir()},
	}

	exitCode := runWithDeps(deps)
	assert.Equal(t, 0, exitCode)

	var shutdownCalls int
	for _, call := range calls {
		if call == "telemetryShutdown" {
			shutdownCalls++
		}
	}
	assert.Equal(t, 1, shutdownCalls)

	spans, err := perf.GetSpans()
	assert.NoError(t, err)
	assertSpanExists(t, spans, perfLifecycleStartup)
	assertSpanExists(t, spans, perfLifecycleExecute)
	assertSpanExists(t, spans, perfLifecycleShutdown)

	shutdownSpan, ok := perf.FindSpanByName(spans, perfLifecycleShutdown)
	assert.True(t, ok)
	assert.Equal(t, string(shutdownTriggerSignal), shutdownSpan.Attributes["trigger"])
	assert.Equal(t, os.Interrupt.String(), shutdownSpan.Attributes["signal"])
}

func TestRunWithDeps_ReturnsOneOnError(t *testing.T) {
	perf.Reset()
	t.Cleanup(perf.Reset)

	deps := runDeps{
		execute: func(context.Context) error {
			return errors.New("boom")
		},
		telemetryInit:     func() {},
		telemetryShutdown: func(context.Context) {},
		register: func(lifecycle.Handler) lifecycle.HandlerID {
			return 1
		},
		unregister: func(lifecycle.HandlerID) {},
	}

	assert.Equal(t, 1, runWithDeps(deps))
}

func TestRunWithDeps_WritesPerfReport(t *testing.T) {
	perf.Reset()
	t.Cleanup(perf.Reset)
	outDir := t.TempDir()

	deps := runDeps{
		execute:           func(context.Context) error { return nil },
		telemetryInit:     func() {},
		telemetryShutdown: func(context.Context) {},
		register: func(lifecycle.Handler) lifecycle.HandlerID {
			return 1
		},
		unregister: func(lifecycle.HandlerID) {},
		args:       []string{"install", "--perf", "--perf-out-dir=" + outDir},
	}

	assert.Equal(t, 0, runWithDeps(deps))
	assert.FileExists(t, filepath.Join(outDir, "fabric-installer-perf.json"))
}

func TestExportPerf_DebugPrintsPath(t *testing.T) {
	perf.Reset()
	t.Cleanup(perf.Reset)
	assert.NoError(t, perf.Init(perf.Config{Enabled: true}))
	_, span := perf.StartSpan(context.Background(), "test")
	span.End()

	out := &bytes.Buffer{}
	outDir := t.TempDir()
	exportPerf(perfExportConfig{enabled: true, debug: true, outDir: outDir, baseDir: outDir}, out)

	assert.Contains(t, out.String(), filepath.Join(outDir, "fabric-installer-perf.json"))
}

func TestExportPerf_DebugReportsDroppedSpans(t *testing.T) {
	perf.Reset()
	t.Cleanup(perf.Reset)
	assert.NoError(t, perf.Init(perf.Config{Enabled: true, SpanLimit: 1}))
	for i := 0; i < 3; i++ {
		_, span := perf.StartSpan(context.Background(), "test")
		span.End()
	}

	out := &bytes.Buffer{}
	outDir := t.TempDir()
	exportPerf(perfExportConfig{enabled: true, debug: true, outDir: outDir, baseDir: outDir}, out)

	assert.Contains(t, out.String(), "2 spans were dropped from the report")
}

func TestPerfExportConfigFromArgs_DefaultsToWorkingDir(t *testing.T) {
	cwd := filepath.FromSlash("/workdir")
	cfg := perfExportConfigFromArgs([]string{"install", "--perf", "--minecraft", "1.19.4"}, cwd)

	assert.True(t, cfg.enabled)
	assert.False(t, cfg.debug)
	assert.Equal(t, cwd, cfg.baseDir)
	assert.Equal(t, cwd, cfg.outDir)
}

func TestPerfExportConfigFromArgs_DefaultsToRootDir(t *testing.T) {
	cwd := filepath.FromSlash("/workdir")
	cfg := perfExportConfigFromArgs([]string{"--perf", "--root", "games/.minecraft"}, cwd)
	assert.True(t, cfg.enabled)

	expectedDir, err := filepath.Abs(filepath.Join(cwd, filepath.FromSlash("games/.minecraft")))
	assert.NoError(t, err)
	assert.Equal(t, expectedDir, cfg.baseDir)
	assert.Equal(t, expectedDir, cfg.outDir)
}

func TestPerfExportConfigFromArgs_PerfOutDirRelativeToRootDir(t *testing.T) {
	cwd := filepath.FromSlash("/workdir")
	cfg := perfExportConfigFromArgs([]string{"--perf", "--root=mc", "--perf-out-dir", "perf"}, cwd)

	expectedDir, err := filepath.Abs(filepath.Join(cwd, "mc"))
	assert.NoError(t, err)
	assert.Equal(t, expectedDir, cfg.baseDir)
	assert.Equal(t, filepath.Join(expectedDir, "perf"), cfg.outDir)
}

func TestPerfExportConfigFromArgs_CapturesDebugFlag(t *testing.T) {
	cfg := perfExportConfigFromArgs([]string{"--perf", "-d"}, "/workdir")
	assert.True(t, cfg.debug)
}

func TestPerfExportConfigFromArgs_IgnoresUnknownFlags(t *testing.T) {
	cfg := perfExportConfigFromArgs([]string{"install", "--side", "server", "--strict-main-class", "--perf"}, "/workdir")
	assert.True(t, cfg.enabled)
}

func assertSpanExists(t *testing.T, spans []perf.SpanSnapshot, name string) {
	t.Helper()
	_, ok := perf.FindSpanByName(spans, name)
	assert.True(t, ok, "expected span %q to exist", name)
}

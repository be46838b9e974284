package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/joho/godotenv/autoload"
	fabricinstaller "github.com/meza/fabric-installer/cmd/fabric-installer"
	"github.com/meza/fabric-installer/internal/lifecycle"
	"github.com/meza/fabric-installer/internal/perf"
	"github.com/meza/fabric-installer/internal/telemetry"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel/attribute"
)

const (
	perfLifecycleStartup  = "app.lifecycle.startup"
	perfLifecycleExecute  = "app.lifecycle.execute"
	perfLifecycleShutdown = "app.lifecycle.shutdown"

	shutdownTimeout = 2 * time.Second
)

type shutdownTrigger string

const (
	shutdownTriggerExit   shutdownTrigger = "exit"
	shutdownTriggerSignal shutdownTrigger = "signal"
)

type runDeps struct {
	execute           func(context.Context) error
	telemetryInit     func()
	telemetryShutdown func(context.Context)
	register          func(lifecycle.Handler) lifecycle.HandlerID
	unregister        func(lifecycle.HandlerID)
	args              []string
}

type perfExportConfig struct {
	enabled bool
	debug   bool
	outDir  string
	baseDir string
}

func main() {
	args := os.Args[1:]
	os.Exit(runWithDeps(runDeps{
		execute: func(ctx context.Context) error {
			return fabricinstaller.Execute(ctx, args)
		},
		telemetryInit:     telemetry.Init,
		telemetryShutdown: telemetry.Shutdown,
		register: func(handler lifecycle.Handler) lifecycle.HandlerID {
			return lifecycle.Register("app.shutdown", handler)
		},
		unregister: lifecycle.Unregister,
		args:       args,
	}))
}

func runWithDeps(deps runDeps) int {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	perfConfig := perfExportConfigFromArgs(deps.args, cwd)
	if err := perf.Init(perf.Config{Enabled: perfConfig.enabled}); err != nil {
		log.Printf("Performance tracing is unavailable: %v", err)
	}

	ctx := context.Background()
	_, startup := perf.StartSpan(ctx, perfLifecycleStartup)
	deps.telemetryInit()

	var shutdownOnce sync.Once
	shutdown := func(trigger shutdownTrigger, sig os.Signal) {
		shutdownOnce.Do(func() {
			attributes := []attribute.KeyValue{attribute.String("trigger", string(trigger))}
			if sig != nil {
				attributes = append(attributes, attribute.String("signal", sig.String()))
			}
			shutdownCtx, span := perf.StartSpan(ctx, perfLifecycleShutdown, perf.WithAttributes(attributes...))
			timeoutCtx, cancel := context.WithTimeout(shutdownCtx, shutdownTimeout)
			deps.telemetryShutdown(timeoutCtx)
			cancel()
			span.End()

			exportPerf(perfConfig, os.Stderr)
		})
	}

	handlerID := deps.register(func(sig os.Signal) {
		shutdown(shutdownTriggerSignal, sig)
	})
	startup.End()

	executeCtx, execute := perf.StartSpan(ctx, perfLifecycleExecute)
	err = deps.execute(executeCtx)
	execute.RecordError(err)
	execute.End()

	shutdown(shutdownTriggerExit, nil)
	deps.unregister(handlerID)

	if err != nil {
		log.Printf("Error executing command: %v", err)
		return 1
	}
	return 0
}

func exportPerf(config perfExportConfig, debugOut io.Writer) {
	if !config.enabled {
		return
	}
	spans, err := perf.GetSpans()
	if err != nil {
		return
	}
	path, err := perf.ExportToFile(config.outDir, config.baseDir, spans)
	if err != nil {
		log.Printf("Performance report could not be written: %v", err)
		return
	}
	if config.debug {
		_, _ = fmt.Fprintf(debugOut, "Performance report written to %s\n", path)
		if dropped := perf.DroppedSpans(); dropped > 0 {
			_, _ = fmt.Fprintf(debugOut, "%d spans were dropped from the report\n", dropped)
		}
	}
}

// perfExportConfigFromArgs reads the perf flags ahead of cobra so tracing is
// live before any command runs. Paths are anchored at the Minecraft root when
// one is given.
func perfExportConfigFromArgs(args []string, cwd string) perfExportConfig {
	flags := pflag.NewFlagSet("perf", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.BoolP("help", "h", false, "")
	perfEnabled := flags.Bool("perf", false, "")
	perfOutDir := flags.String("perf-out-dir", "", "")
	debug := flags.BoolP("debug", "d", false, "")
	root := flags.StringP("root", "r", "", "")
	_ = flags.Parse(args)

	baseDir := cwd
	if *root != "" {
		baseDir = absFrom(cwd, *root)
	}

	outDir := baseDir
	if *perfOutDir != "" {
		outDir = *perfOutDir
		if !filepath.IsAbs(outDir) {
			outDir = filepath.Join(baseDir, outDir)
		}
	}

	return perfExportConfig{
		enabled: *perfEnabled,
		debug:   *debug,
		outDir:  outDir,
		baseDir: baseDir,
	}
}

func absFrom(cwd string, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	abs, err := filepath.Abs(filepath.Join(cwd, path))
	if err != nil {
		return filepath.Join(cwd, path)
	}
	return abs
}

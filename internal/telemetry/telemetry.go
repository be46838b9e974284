// Package telemetry sends anonymous usage events to PostHog.
package telemetry

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/meza/fabric-installer/internal/constants"
	"github.com/meza/fabric-installer/internal/environment"
	"github.com/meza/fabric-installer/internal/fabric"
	"github.com/meza/fabric-installer/internal/httpclient"
	"github.com/meza/fabric-installer/internal/installer"
	"github.com/meza/fabric-installer/internal/minecraft"
	"github.com/meza/fabric-installer/internal/perf"
	"github.com/posthog/posthog-go"
)

const (
	disableEnvVar       = "FABRIC_INSTALLER_DISABLE_TELEMETRY"
	posthogEndpoint     = "https://eu.i.posthog.com"
	defaultFlushTimeout = 2 * time.Second
	commandSpanPrefix   = "app.command."
)

type Client interface {
	io.Closer
	Enqueue(posthog.Message) error
}

type debugLogger interface {
	Debugf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}

type CommandTelemetry struct {
	Command   string
	Success   bool
	Error     error
	ExitCode  int
	Arguments map[string]interface{}
	Extra     map[string]interface{}
}

type recordedCommand struct {
	Name          string
	Success       bool
	ExitCode      int
	ErrorCategory string
	ErrorMessage  string
	Arguments     map[string]interface{}
	Extra         map[string]interface{}
}

type telemetrySnapshot struct {
	client       Client
	machineID    string
	logger       debugLogger
	flushTimeout time.Duration
	enabled      bool
}

var (
	stateMu         sync.Mutex
	client          Client
	machineID       string
	enabled         bool
	logger          debugLogger = noopLogger{}
	commands        []recordedCommand
	sessionNameHint string
	sessionStart    time.Time

	clientBuilder = func(apiKey, endpoint string) (Client, error) {
		return posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: endpoint})
	}
	machineIDProvider = func() (string, error) {
		return machineid.ProtectedID(constants.AppName)
	}
)

// Init prepares the PostHog client unless telemetry is disabled through the environment.
func Init() {
	stateMu.Lock()
	defer stateMu.Unlock()

	sessionStart = time.Now()
	if environment.TelemetryDisabled() {
		enabled = false
		return
	}

	apiKey := environment.PosthogAPIKey()
	if strings.TrimSpace(apiKey) == "" {
		enabled = false
		return
	}

	built, err := clientBuilder(apiKey, posthogEndpoint)
	if err != nil {
		logger.Debugf("telemetry disabled: %v", err)
		enabled = false
		return
	}

	client = built
	machineID = resolveMachineID()
	enabled = true
}

func SetLogger(debug debugLogger) {
	stateMu.Lock()
	defer stateMu.Unlock()
	if debug == nil {
		logger = noopLogger{}
		return
	}
	logger = debug
}

// SetSessionNameHint names the session when no command gets recorded.
func SetSessionNameHint(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	stateMu.Lock()
	sessionNameHint = name
	stateMu.Unlock()
}

func Capture(event string, properties map[string]interface{}) {
	captureWithSnapshot(snapshot(), event, properties)
}

// RecordCommand remembers a finished command. It is sent with the session on Shutdown.
func RecordCommand(command CommandTelemetry) {
	if strings.TrimSpace(command.Command) == "" {
		return
	}

	stateMu.Lock()
	defer stateMu.Unlock()
	if !enabled {
		return
	}

	recorded := recordedCommand{
		Name:      command.Command,
		Success:   command.Success,
		ExitCode:  commandExitCode(command),
		Arguments: command.Arguments,
		Extra:     command.Extra,
	}
	if command.Error != nil {
		recorded.ErrorCategory = errorCategory(command.Error)
		recorded.ErrorMessage = command.Error.Error()
	}
	commands = append(commands, recorded)
}

// Shutdown sends the session event and flushes the client, waiting at most the flush timeout.
func Shutdown(ctx context.Context) {
	stateMu.Lock()
	snap := snapshotLocked()
	recorded := append([]recordedCommand(nil), commands...)
	hint := sessionNameHint
	started := sessionStart
	client = nil
	enabled = false
	commands = nil
	stateMu.Unlock()

	if !snap.enabled || snap.client == nil {
		return
	}

	spans := perf.MustGetSpans()
	canonical, _ := topCommandName(spans)
	if len(recorded) == 1 && canonical != "" {
		recorded[0].Name = canonical
	}

	properties := map[string]interface{}{
		"type":     "session",
		"commands": buildCommandSummaries(recorded, spans),
	}
	if !started.IsZero() {
		properties["total_time_ms"] = time.Since(started).Milliseconds()
	}

	captureWithSnapshot(snap, resolveSessionName(hint, canonical, recorded), properties)
	closeWithTimeout(ctx, snap)
}

// Reset drops all state (tests only).
func Reset() {
	stateMu.Lock()
	defer stateMu.Unlock()
	client = nil
	machineID = ""
	enabled = false
	logger = noopLogger{}
	commands = nil
	sessionNameHint = ""
	sessionStart = time.Time{}
	clientBuilder = func(apiKey, endpoint string) (Client, error) {
		return posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: endpoint})
	}
	machineIDProvider = func() (string, error) {
		return machineid.ProtectedID(constants.AppName)
	}
}

func snapshot() telemetrySnapshot {
	stateMu.Lock()
	defer stateMu.Unlock()
	return snapshotLocked()
}

func snapshotLocked() telemetrySnapshot {
	return telemetrySnapshot{
		client:       client,
		machineID:    machineID,
		logger:       logger,
		flushTimeout: defaultFlushTimeout,
		enabled:      enabled,
	}
}

func resolveMachineID() string {
	if fromEnv, ok := os.LookupEnv("MACHINE_ID"); ok && fromEnv != "" {
		return fromEnv
	}
	id, err := machineIDProvider()
	if err != nil || id == "" {
		return "unknown"
	}
	return id
}

func captureWithSnapshot(snap telemetrySnapshot, event string, properties map[string]interface{}) {
	if !snap.enabled || snap.client == nil || event == "" {
		return
	}

	merged := make(map[string]interface{}, len(properties)+1)
	for key, value := range properties {
		merged[key] = value
	}
	merged["version"] = environment.AppVersion()

	if err := snap.client.Enqueue(posthog.Capture{
		Event:      event,
		DistinctId: snap.machineID,
		Properties: merged,
	}); err != nil {
		snap.logger.Debugf("telemetry enqueue failed: %v", err)
	}
}

func closeWithTimeout(ctx context.Context, snap telemetrySnapshot) {
	done := make(chan error, 1)
	go func() {
		done <- snap.client.Close()
	}()

	timer := time.NewTimer(snap.flushTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			snap.logger.Debugf("telemetry flush failed: %v", err)
		}
	case <-timer.C:
		snap.logger.Debugf("telemetry flush timed out after %s", snap.flushTimeout)
	case <-ctx.Done():
		snap.logger.Debugf("telemetry flush canceled: %v", ctx.Err())
	}
}

func resolveSessionName(hint string, canonical string, recorded []recordedCommand) string {
	if len(recorded) == 1 {
		if name := strings.TrimSpace(recorded[0].Name); name != "" {
			return name
		}
	}
	if len(recorded) > 1 {
		return "session"
	}
	if canonical != "" {
		return canonical
	}
	if hint != "" {
		return hint
	}
	return "unknown"
}

func buildCommandSummaries(recorded []recordedCommand, spans []perf.SpanSnapshot) []map[string]interface{} {
	summaries := make([]map[string]interface{}, 0, len(recorded))
	for _, command := range recorded {
		summary := map[string]interface{}{
			"name":      command.Name,
			"success":   command.Success,
			"exit_code": command.ExitCode,
		}
		if command.ErrorCategory != "" {
			summary["error_category"] = command.ErrorCategory
			summary["error"] = command.ErrorMessage
		}
		if command.Arguments != nil {
			summary["arguments"] = command.Arguments
		}
		if command.Extra != nil {
			summary["extra"] = command.Extra
		}
		if duration, ok := commandDurationFromPerf(command.Name, spans); ok {
			summary["duration_ms"] = duration.Milliseconds()
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func commandNameFromPerfSpan(spanName string) (string, bool) {
	if !strings.HasPrefix(spanName, commandSpanPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(spanName, commandSpanPrefix)
	if name == "" || strings.Contains(name, ".") {
		return "", false
	}
	return name, true
}

// topCommandName returns the earliest started command span.
func topCommandName(spans []perf.SpanSnapshot) (string, bool) {
	found := ""
	var earliest time.Time
	for _, span := range spans {
		name, ok := commandNameFromPerfSpan(span.Name)
		if !ok {
			continue
		}
		if found == "" || span.StartTime.Before(earliest) {
			found = name
			earliest = span.StartTime
		}
	}
	return found, found != ""
}

// commandDurationFromPerf uses the latest finished span of the command.
func commandDurationFromPerf(command string, spans []perf.SpanSnapshot) (time.Duration, bool) {
	if command == "" || len(spans) == 0 {
		return 0, false
	}

	latest, ok := perf.LatestSpanByName(spans, commandSpanPrefix+command)
	if !ok {
		return 0, false
	}
	return latest.Duration(), true
}

func commandExitCode(command CommandTelemetry) int {
	if command.ExitCode != 0 {
		return command.ExitCode
	}
	if command.Success {
		return 0
	}
	return 1
}

func errorCategory(err error) string {
	if err == nil {
		return ""
	}

	var timeoutErr *httpclient.TimeoutError
	var fetchErr *fabric.FetchError
	var loaderErr *fabric.LoaderNotFoundError
	var resolutionErr *installer.ResolutionError
	var fileSystemErr *installer.FileSystemError
	var mainClassErr *installer.MainClassUnresolvedError
	var unknownVersionErr *minecraft.UnknownVersionError

	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &timeoutErr):
		return "timeout"
	case errors.As(err, &loaderErr):
		return "loader_not_found"
	case errors.As(err, &fetchErr):
		return "fetch"
	case errors.As(err, &unknownVersionErr):
		return "unknown_minecraft_version"
	case errors.As(err, &resolutionErr):
		return "resolution"
	case errors.As(err, &mainClassErr):
		return "main_class_unresolved"
	case errors.As(err, &fileSystemErr):
		return "filesystem"
	}
	return "unknown"
}

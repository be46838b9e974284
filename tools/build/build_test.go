package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	commands []*exec.Cmd
	err      error
}

func (runner *recordingRunner) Run(command *exec.Cmd) error {
	runner.commands = append(runner.commands, command)
	return runner.err
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

type mkdirErrorFs struct {
	afero.Fs
}

func (mkdirErrorFs) MkdirAll(string, os.FileMode) error {
	return errors.New("read-only")
}

func newTestTool(fs afero.Fs, runner commandRunner, env ...string) *buildTool {
	return &buildTool{
		fs:            fs,
		repoRoot:      "/repo",
		baseEnv:       env,
		goBinary:      "go",
		commandRunner: runner,
		envFileReader: readEnvFile,
		logger:        &recordingLogger{},
	}
}

func envValue(command *exec.Cmd, key string) string {
	for _, entry := range command.Env {
		if len(entry) > len(key) && entry[:len(key)+1] == key+"=" {
			return entry[len(key)+1:]
		}
	}
	return ""
}

func TestBuildToolRunBuildsAllTargets(t *testing.T) {
	fs := afero.NewMemMapFs()
	runner := &recordingRunner{}
	tool := newTestTool(fs, runner, posthogEnvVar+"=phc_token", versionEnvVar+"=1.2.3", "PATH=/bin")

	require.NoError(t, tool.run(buildTargets))

	require.Len(t, runner.commands, len(buildTargets))
	for i, target := range buildTargets {
		command := runner.commands[i]
		assert.Equal(t, target.goos, envValue(command, "GOOS"))
		assert.Equal(t, target.goarch, envValue(command, "GOARCH"))
		assert.Equal(t, "0", envValue(command, "CGO_ENABLED"))
		assert.Equal(t, "/bin", envValue(command, "PATH"))
		assert.Equal(t, "/repo", command.Dir)

		exists, err := afero.DirExists(fs, filepath.Join("/repo", "build", target.goos, target.goarch))
		require.NoError(t, err)
		assert.True(t, exists)
	}

	windows := runner.commands[4]
	assert.Equal(t, filepath.Join("/repo", "build", "windows", "amd64", "fabric-installer.exe"), windows.Args[len(windows.Args)-2])
	assert.Contains(t, windows.Args[4], "-X "+environmentPackage+".appVersion=1.2.3")
}

func TestBuildToolRunUsesEnvFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, filepath.Join("/repo", ".env"), []byte("POSTHOG_API_KEY=from_file\nFABRIC_INSTALLER_VERSION=9.9.9\nOTHER=ignored\n"), 0o644))
	runner := &recordingRunner{}
	tool := newTestTool(fs, runner, versionEnvVar+"=1.0.0")

	require.NoError(t, tool.run([]buildTarget{{goos: "linux", goarch: "amd64"}}))

	require.Len(t, runner.commands, 1)
	ldflags := runner.commands[0].Args[4]
	assert.Contains(t, ldflags, "posthogAPIKeyDefault=from_file")
	assert.Contains(t, ldflags, "appVersion=1.0.0")
	assert.Empty(t, envValue(runner.commands[0], "OTHER"))
}

func TestBuildToolRunMissingVariables(t *testing.T) {
	runner := &recordingRunner{}
	tool := newTestTool(afero.NewMemMapFs(), runner)

	err := tool.run(buildTargets)

	assert.ErrorContains(t, err, "missing build variable(s): POSTHOG_API_KEY FABRIC_INSTALLER_VERSION")
	assert.Empty(t, runner.commands)
}

func TestBuildToolRunEnvFileError(t *testing.T) {
	tool := newTestTool(afero.NewMemMapFs(), &recordingRunner{})
	tool.envFileReader = func(afero.Fs, string) (map[string]string, error) {
		return nil, errors.New("boom")
	}

	assert.ErrorContains(t, tool.run(buildTargets), "failed to read .env: boom")
}

func TestBuildToolRunBuildError(t *testing.T) {
	runner := &recordingRunner{err: errors.New("compile failed")}
	tool := newTestTool(afero.NewMemMapFs(), runner, posthogEnvVar+"=t", versionEnvVar+"=v")

	err := tool.run(buildTargets)

	assert.EqualError(t, err, "build darwin/amd64: compile failed")
	assert.Len(t, runner.commands, 1)
}

func TestBuildTargetMkdirError(t *testing.T) {
	tool := newTestTool(mkdirErrorFs{afero.NewMemMapFs()}, &recordingRunner{})

	err := tool.buildTarget(buildTarget{goos: "linux", goarch: "arm64"}, map[string]string{}, "")

	assert.ErrorContains(t, err, "create build directory")
}

func TestLdflagsFromEnv(t *testing.T) {
	assert.Equal(t, "-s -w", ldflagsFromEnv(map[string]string{}))
	assert.Equal(t,
		"-s -w -X "+environmentPackage+".posthogAPIKeyDefault=key -X "+environmentPackage+".helpURL=https://example.test",
		ldflagsFromEnv(map[string]string{posthogEnvVar: "key", helpURLEnvVar: "https://example.test"}),
	)
}

func TestSelectTargets(t *testing.T) {
	all, err := selectTargets("")
	assert.NoError(t, err)
	assert.Equal(t, buildTargets, all)

	one, err := selectTargets("linux/arm64")
	assert.NoError(t, err)
	assert.Equal(t, []buildTarget{{goos: "linux", goarch: "arm64"}}, one)

	_, err = selectTargets("plan9/386")
	assert.EqualError(t, err, `error: unknown target "plan9/386"`)
}

func TestReadEnvFile(t *testing.T) {
	fs := afero.NewMemMapFs()

	values, err := readEnvFile(fs, "/missing/.env")
	assert.NoError(t, err)
	assert.Empty(t, values)

	require.NoError(t, afero.WriteFile(fs, "/repo/.env", []byte("A=1\nB=\"two\"\n"), 0o644))
	values, err = readEnvFile(fs, "/repo/.env")
	assert.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1", "B": "two"}, values)
}

func TestBuildEnvMap(t *testing.T) {
	envMap := buildEnvMap(
		[]string{posthogEnvVar + "=from_env", "MALFORMED"},
		map[string]string{posthogEnvVar: "from_file", versionEnvVar: "1.0.0", "OTHER": "x"},
	)

	assert.Equal(t, map[string]string{posthogEnvVar: "from_env", versionEnvVar: "1.0.0"}, envMap)
}

func TestFindRepoRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, filepath.Join("/repo", "go.mod"), []byte("module x\n"), 0o644))

	root, err := findRepoRoot(fs, filepath.Join("/repo", "tools", "build"))
	assert.NoError(t, err)
	assert.Equal(t, "/repo", root)

	_, err = findRepoRoot(afero.NewMemMapFs(), "/nowhere")
	assert.ErrorContains(t, err, "failed to locate repo root")
}

func TestRunMain(t *testing.T) {
	originalNewBuildToolFunc := newBuildToolFunc
	t.Cleanup(func() {
		newBuildToolFunc = originalNewBuildToolFunc
	})

	runner := &recordingRunner{}
	newBuildToolFunc = func() (*buildTool, error) {
		return newTestTool(afero.NewMemMapFs(), runner, posthogEnvVar+"=t", versionEnvVar+"=v"), nil
	}
	assert.Equal(t, 0, runMain([]string{"-only", "linux/amd64"}))
	assert.Len(t, runner.commands, 1)

	assert.Equal(t, 2, runMain([]string{"-only", "nope/nope"}))

	newBuildToolFunc = func() (*buildTool, error) {
		return nil, errors.New("boom")
	}
	assert.Equal(t, 1, runMain(nil))
}

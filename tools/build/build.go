// Command build cross-compiles the fabric-installer binary for every release
// target, stamping the version, help URL and telemetry key into the
// environment package.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

const (
	executableName = "fabric-installer"

	posthogEnvVar = "POSTHOG_API_KEY"
	versionEnvVar = "FABRIC_INSTALLER_VERSION"
	helpURLEnvVar = "FABRIC_INSTALLER_HELP_URL"

	environmentPackage = "github.com/meza/fabric-installer/internal/environment"
)

// ldflagVariables maps an environment variable to the package variable it sets.
var ldflagVariables = []struct {
	envVar   string
	variable string
	required bool
}{
	{envVar: posthogEnvVar, variable: "posthogAPIKeyDefault", required: true},
	{envVar: versionEnvVar, variable: "appVersion", required: true},
	{envVar: helpURLEnvVar, variable: "helpURL"},
}

var buildTargets = []buildTarget{
	{goos: "darwin", goarch: "amd64"},
	{goos: "darwin", goarch: "arm64"},
	{goos: "linux", goarch: "amd64"},
	{goos: "linux", goarch: "arm64"},
	{goos: "windows", goarch: "amd64"},
	{goos: "windows", goarch: "arm64"},
}

type buildTarget struct {
	goos   string
	goarch string
}

func (target buildTarget) String() string {
	return target.goos + "/" + target.goarch
}

func (target buildTarget) binaryName() string {
	if target.goos == "windows" {
		return executableName + ".exe"
	}
	return executableName
}

type commandRunner interface {
	Run(*exec.Cmd) error
}

type logger interface {
	Printf(format string, args ...any)
}

type execRunner struct{}

func (execRunner) Run(command *exec.Cmd) error {
	command.Stdout = os.Stdout
	command.Stderr = os.Stderr
	return command.Run()
}

type envFileReader func(afero.Fs, string) (map[string]string, error)

type buildTool struct {
	fs            afero.Fs
	repoRoot      string
	baseEnv       []string
	goBinary      string
	commandRunner commandRunner
	envFileReader envFileReader
	logger        logger
}

var getWorkingDirectory = os.Getwd
var newBuildToolFunc = newBuildTool
var exit = os.Exit

func newBuildTool() (*buildTool, error) {
	workingDirectory, err := getWorkingDirectory()
	if err != nil {
		return nil, fmt.Errorf("error: failed to determine working directory: %w", err)
	}

	fs := afero.NewOsFs()
	repoRoot, err := findRepoRoot(fs, workingDirectory)
	if err != nil {
		return nil, err
	}

	return &buildTool{
		fs:            fs,
		repoRoot:      repoRoot,
		baseEnv:       os.Environ(),
		goBinary:      "go",
		commandRunner: execRunner{},
		envFileReader: readEnvFile,
		logger:        log.New(os.Stdout, "build: ", 0),
	}, nil
}

func main() {
	exit(runMain(os.Args[1:]))
}

func runMain(args []string) int {
	flags := flag.NewFlagSet("build", flag.ContinueOnError)
	only := flags.String("only", "", "build a single goos/goarch target")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	targets, err := selectTargets(*only)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	tool, err := newBuildToolFunc()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := tool.run(targets); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func selectTargets(only string) ([]buildTarget, error) {
	if only == "" {
		return buildTargets, nil
	}
	for _, target := range buildTargets {
		if target.String() == only {
			return []buildTarget{target}, nil
		}
	}
	return nil, fmt.Errorf("error: unknown target %q", only)
}

func (tool *buildTool) run(targets []buildTarget) error {
	envFilePath := filepath.Join(tool.repoRoot, ".env")
	tool.logger.Printf("loading %s", envFilePath)
	envFileValues, err := tool.envFileReader(tool.fs, envFilePath)
	if err != nil {
		return fmt.Errorf("error: failed to read .env: %w", err)
	}

	envMap := buildEnvMap(tool.baseEnv, envFileValues)
	if missing := missingVariables(envMap); len(missing) > 0 {
		return fmt.Errorf("error: missing build variable(s): %s\nhint: set them as environment variables or add them to ./.env (repo root)", strings.Join(missing, " "))
	}

	ldflags := ldflagsFromEnv(envMap)
	for _, target := range targets {
		tool.logger.Printf("building %s", target)
		if err := tool.buildTarget(target, envMap, ldflags); err != nil {
			return err
		}
	}

	tool.logger.Printf("build complete")
	return nil
}

func (tool *buildTool) buildTarget(target buildTarget, envMap map[string]string, ldflags string) error {
	outputDir := filepath.Join(tool.repoRoot, "build", target.goos, target.goarch)
	if err := tool.fs.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("error: create build directory: %w", err)
	}
	outputPath := filepath.Join(outputDir, target.binaryName())

	environment := make(map[string]string, len(envMap)+3)
	for key, value := range envMap {
		environment[key] = value
	}
	environment["GOOS"] = target.goos
	environment["GOARCH"] = target.goarch
	environment["CGO_ENABLED"] = "0"

	command := exec.Command(tool.goBinary, "build", "-trimpath", "-ldflags", ldflags, "-o", outputPath, ".")
	command.Dir = tool.repoRoot
	command.Env = envMapToSlice(environment)

	tool.logger.Printf("output %s", outputPath)
	if err := tool.commandRunner.Run(command); err != nil {
		return fmt.Errorf("build %s: %w", target, err)
	}
	return nil
}

func readEnvFile(fs afero.Fs, path string) (map[string]string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	return godotenv.Parse(bytes.NewReader(data))
}

func findRepoRoot(fs afero.Fs, startDir string) (string, error) {
	current := startDir
	for {
		if exists, _ := afero.Exists(fs, filepath.Join(current, "go.mod")); exists {
			return current, nil
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("error: failed to locate repo root (missing go.mod); run from repo root")
		}
		current = parent
	}
}

// buildEnvMap fills build variables missing from the process environment
// from the .env values. Everything else in .env is ignored.
func buildEnvMap(baseEnv []string, envFileValues map[string]string) map[string]string {
	envMap := make(map[string]string, len(baseEnv))
	for _, entry := range baseEnv {
		key, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		envMap[key] = value
	}
	for _, variable := range ldflagVariables {
		if _, exists := envMap[variable.envVar]; exists {
			continue
		}
		if value, ok := envFileValues[variable.envVar]; ok {
			envMap[variable.envVar] = value
		}
	}
	return envMap
}

func envMapToSlice(envMap map[string]string) []string {
	keys := make([]string, 0, len(envMap))
	for key := range envMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make([]string, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, key+"="+envMap[key])
	}
	return entries
}

func missingVariables(envMap map[string]string) []string {
	var missing []string
	for _, variable := range ldflagVariables {
		if variable.required && envMap[variable.envVar] == "" {
			missing = append(missing, variable.envVar)
		}
	}
	return missing
}

func ldflagsFromEnv(envMap map[string]string) string {
	flags := []string{"-s", "-w"}
	for _, variable := range ldflagVariables {
		value := envMap[variable.envVar]
		if value == "" {
			continue
		}
		flags = append(flags, fmt.Sprintf("-X %s.%s=%s", environmentPackage, variable.variable, value))
	}
	return strings.Join(flags, " ")
}

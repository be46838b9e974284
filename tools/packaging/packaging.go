// Command packaging zips every cross-compiled fabric-installer binary under
// build/<goos>/<goarch>/ into dist/ and writes a SHA256SUMS manifest.
package main

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

const (
	executableName = "fabric-installer"
	checksumsName  = "SHA256SUMS"
)

type buildArtifact struct {
	goos   string
	goarch string
	path   string
}

type logger interface {
	Printf(format string, args ...any)
}

type distTool struct {
	fs       afero.Fs
	repoRoot string
	logger   logger
}

var getWorkingDirectory = os.Getwd
var newDistToolFunc = newDistTool
var exit = os.Exit

func main() {
	exit(runMain(os.Args[1:]))
}

func runMain(args []string) int {
	flags := flag.NewFlagSet("packaging", flag.ContinueOnError)
	version := flags.String("version", "dev", "version suffix for dist artifacts")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	tool, err := newDistToolFunc()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := tool.run(*version); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func newDistTool() (*distTool, error) {
	workingDirectory, err := getWorkingDirectory()
	if err != nil {
		return nil, fmt.Errorf("error: failed to determine working directory: %w", err)
	}

	fs := afero.NewOsFs()
	repoRoot, err := findRepoRoot(fs, workingDirectory)
	if err != nil {
		return nil, err
	}

	return &distTool{
		fs:       fs,
		repoRoot: repoRoot,
		logger:   log.New(os.Stdout, "dist: ", 0),
	}, nil
}

func (tool *distTool) run(version string) error {
	normalizedVersion := normalizeVersion(version)
	buildDir := filepath.Join(tool.repoRoot, "build")
	distDir := filepath.Join(tool.repoRoot, "dist")

	artifacts, err := findBuildArtifacts(tool.fs, buildDir)
	if err != nil {
		return err
	}

	if err := tool.fs.RemoveAll(distDir); err != nil {
		return fmt.Errorf("error: clean dist dir: %w", err)
	}
	if err := tool.fs.MkdirAll(distDir, 0o755); err != nil {
		return fmt.Errorf("error: create dist dir: %w", err)
	}

	checksums := make([]string, 0, len(artifacts))
	for _, artifact := range artifacts {
		outputName := fmt.Sprintf("%s-%s-%s-%s.zip", executableName, artifact.goos, artifact.goarch, normalizedVersion)
		outputPath := filepath.Join(distDir, outputName)
		sum, err := writeZip(tool.fs, outputPath, artifact.path)
		if err != nil {
			return err
		}
		checksums = append(checksums, sum+"  "+outputName)
		tool.logger.Printf("created %s", outputPath)
	}

	manifest := strings.Join(checksums, "\n") + "\n"
	if err := afero.WriteFile(tool.fs, filepath.Join(distDir, checksumsName), []byte(manifest), 0o644); err != nil {
		return fmt.Errorf("error: write checksums: %w", err)
	}
	return nil
}

func normalizeVersion(version string) string {
	trimmed := strings.TrimSpace(version)
	if trimmed == "" {
		return "dev"
	}
	return strings.NewReplacer("/", "-", "\\", "-", ":", "-").Replace(trimmed)
}

func findBuildArtifacts(fs afero.Fs, buildDir string) ([]buildArtifact, error) {
	var artifacts []buildArtifact
	for _, name := range []string{executableName, executableName + ".exe"} {
		pattern := filepath.Join(buildDir, "*", "*", name)
		matches, err := afero.Glob(fs, pattern)
		if err != nil {
			return nil, fmt.Errorf("error: invalid build glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			info, err := fs.Stat(match)
			if err != nil {
				return nil, fmt.Errorf("error: stat build output %s: %w", match, err)
			}
			if !info.Mode().IsRegular() {
				continue
			}
			artifacts = append(artifacts, buildArtifact{
				goos:   filepath.Base(filepath.Dir(filepath.Dir(match))),
				goarch: filepath.Base(filepath.Dir(match)),
				path:   match,
			})
		}
	}

	if len(artifacts) == 0 {
		return nil, fmt.Errorf("error: no build outputs found in %s", buildDir)
	}

	sort.Slice(artifacts, func(left, right int) bool {
		if artifacts[left].goos == artifacts[right].goos {
			return artifacts[left].goarch < artifacts[right].goarch
		}
		return artifacts[left].goos < artifacts[right].goos
	})
	return artifacts, nil
}

// writeZip stores inputPath as the single entry of a new archive and returns
// the archive's hex sha256.
func writeZip(fs afero.Fs, outputPath string, inputPath string) (sum string, err error) {
	inputInfo, err := fs.Stat(inputPath)
	if err != nil {
		return "", fmt.Errorf("error: stat build output %s: %w", inputPath, err)
	}

	outputFile, err := fs.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("error: create zip %s: %w", outputPath, err)
	}
	defer func() {
		if closeErr := outputFile.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("error: close zip %s: %w", outputPath, closeErr)
		}
	}()

	hash := sha256.New()
	zipWriter := zip.NewWriter(io.MultiWriter(outputFile, hash))

	header, err := zip.FileInfoHeader(inputInfo)
	if err != nil {
		return "", fmt.Errorf("error: create zip header for %s: %w", inputPath, err)
	}
	header.Name = filepath.Base(inputPath)
	header.Method = zip.Deflate
	header.SetMode(0o755)

	entry, err := zipWriter.CreateHeader(header)
	if err != nil {
		return "", fmt.Errorf("error: write zip header for %s: %w", inputPath, err)
	}

	inputFile, err := fs.Open(inputPath)
	if err != nil {
		return "", fmt.Errorf("error: open build output %s: %w", inputPath, err)
	}
	defer func() {
		_ = inputFile.Close()
	}()

	if _, err := io.Copy(entry, inputFile); err != nil {
		return "", fmt.Errorf("error: write zip contents for %s: %w", inputPath, err)
	}
	if err := zipWriter.Close(); err != nil {
		return "", fmt.Errorf("error: finish zip %s: %w", outputPath, err)
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
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

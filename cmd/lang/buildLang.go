// Command lang merges the per-topic translation sources under
// internal/i18n/localise/<locale>/ into one internal/i18n/lang/<locale>.json
// per locale.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// DuplicateKeyError is returned when two source files of a locale define the same key.
type DuplicateKeyError struct {
	Locale string
	Key    string
	Files  [2]string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s: key %q is defined in both %s and %s", e.Locale, e.Key, e.Files[0], e.Files[1])
}

func main() {
	sourceDir := flag.String("in", "internal/i18n/localise", "directory holding one folder per locale")
	outputDir := flag.String("out", "internal/i18n/lang", "directory the merged files are written to")
	flag.Parse()

	written, err := buildAll(afero.NewOsFs(), *sourceDir, *outputDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, path := range written {
		fmt.Println(path)
	}
}

func buildAll(fs afero.Fs, sourceDir string, outputDir string) ([]string, error) {
	entries, err := afero.ReadDir(fs, sourceDir)
	if err != nil {
		return nil, errors.Wrap(err, "read localise directory")
	}
	if err := fs.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}

	written := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		locale := entry.Name()
		merged, err := mergeLocale(fs, filepath.Join(sourceDir, locale), locale)
		if err != nil {
			return written, err
		}

		data, err := encode(merged)
		if err != nil {
			return written, errors.Wrapf(err, "encode %s", locale)
		}
		outputPath := filepath.Join(outputDir, locale+".json")
		if err := afero.WriteFile(fs, outputPath, data, 0644); err != nil {
			return written, err
		}
		written = append(written, outputPath)
	}
	return written, nil
}

func mergeLocale(fs afero.Fs, dir string, locale string) (map[string]string, error) {
	files, err := afero.ReadDir(fs, dir)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", locale)
	}

	merged := map[string]string{}
	origin := map[string]string{}
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, file.Name())
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, err
		}

		var messages map[string]string
		if err := json.Unmarshal(data, &messages); err != nil {
			return nil, errors.Wrapf(err, "parse %s", path)
		}
		for key, value := range messages {
			if previous, ok := origin[key]; ok {
				return nil, &DuplicateKeyError{Locale: locale, Key: key, Files: [2]string{previous, file.Name()}}
			}
			merged[key] = value
			origin[key] = file.Name()
		}
	}
	return merged, nil
}

// encode relies on encoding/json sorting map keys so regenerated files diff cleanly.
func encode(messages map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(messages); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

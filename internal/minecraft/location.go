package minecraft

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/mitchellh/go-homedir"
)

// Location is a Minecraft installation root and the layout the launcher expects below it.
type Location struct {
	Root string
}

func NewLocation(root string) Location {
	return Location{Root: filepath.Clean(root)}
}

func (l Location) VersionsDir() string {
	return filepath.Join(l.Root, "versions")
}

func (l Location) VersionDir(id string) string {
	return filepath.Join(l.VersionsDir(), id)
}

// VersionJSONPath maps a version id to <root>/versions/<id>/<id>.json.
func (l Location) VersionJSONPath(id string) string {
	return filepath.Join(l.VersionDir(id), id+".json")
}

func (l Location) LibrariesDir() string {
	return filepath.Join(l.Root, "libraries")
}

// DefaultRoot returns the directory the official launcher uses on this platform.
func DefaultRoot() (string, error) {
	return defaultRootFor(runtime.GOOS, os.Getenv("APPDATA"), homedir.Dir)
}

func defaultRootFor(goos string, appData string, home func() (string, error)) (string, error) {
	if goos == "windows" && appData != "" {
		return filepath.Join(appData, ".minecraft"), nil
	}

	dir, err := home()
	if err != nil {
		return "", err
	}

	switch goos {
	case "windows":
		return filepath.Join(dir, "AppData", "Roaming", ".minecraft"), nil
	case "darwin":
		return filepath.Join(dir, "Library", "Application Support", "minecraft"), nil
	default:
		return filepath.Join(dir, ".minecraft"), nil
	}
}

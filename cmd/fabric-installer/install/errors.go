package install

import "fmt"

type YarnNotFoundError struct {
	GameVersion string
	Version     string
}

func (e *YarnNotFoundError) Error() string {
	if e.Version == latestYarn {
		return fmt.Sprintf("no yarn mappings are published for Minecraft %s", e.GameVersion)
	}
	return fmt.Sprintf("yarn %s is not published for Minecraft %s", e.Version, e.GameVersion)
}

func (e *YarnNotFoundError) Is(target error) bool {
	t, ok := target.(*YarnNotFoundError)
	if !ok {
		return false
	}
	return e.GameVersion == t.GameVersion && e.Version == t.Version
}

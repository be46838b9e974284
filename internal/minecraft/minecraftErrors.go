package minecraft

import (
	"errors"
	"fmt"
)

var ErrManifestNotFound = errors.New("minecraft version manifest not found")
var ErrCouldNotDetermineLatestVersion = errors.New("could not determine latest version")

type UnknownVersionError struct {
	Version string
}

func (e *UnknownVersionError) Error() string {
	return fmt.Sprintf("Minecraft %s is not a published version", e.Version)
}

func (e *UnknownVersionError) Is(target error) bool {
	t, ok := target.(*UnknownVersionError)
	if !ok {
		return false
	}
	return e.Version == t.Version
}

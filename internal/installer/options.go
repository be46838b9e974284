package installer

import (
	"fmt"
	"strings"

	"github.com/meza/fabric-installer/internal/fabric"
)

// LibrariesFormat decides how the libraries list is embedded in the descriptor.
type LibrariesFormat string

const (
	// LibrariesArray writes libraries as a nested JSON array.
	LibrariesArray LibrariesFormat = "array"
	// LibrariesString writes libraries as a JSON-encoded string.
	LibrariesString LibrariesFormat = "string"
)

func ParseLibrariesFormat(value string) (LibrariesFormat, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(LibrariesArray):
		return LibrariesArray, nil
	case string(LibrariesString):
		return LibrariesString, nil
	}
	return "", fmt.Errorf("unknown libraries format %q, expected array or string", value)
}

// YarnSelector picks the mapping layer either by a bare version string or by a
// full artifact record.
type YarnSelector struct {
	version  string
	artifact *fabric.ArtifactVersion
}

func YarnVersion(version string) *YarnSelector {
	return &YarnSelector{version: version}
}

func YarnArtifact(artifact fabric.ArtifactVersion) *YarnSelector {
	return &YarnSelector{artifact: &artifact}
}

func (s *YarnSelector) Version() string {
	if s.artifact != nil {
		return s.artifact.Version
	}
	return s.version
}

// GameVersion is only known when the selector carries a full record.
func (s *YarnSelector) GameVersion() string {
	if s.artifact != nil {
		return s.artifact.GameVersion
	}
	return ""
}

type Options struct {
	// InheritsFrom overrides the base version the descriptor inherits from.
	InheritsFrom string
	// VersionID overrides the generated version id.
	VersionID       string
	Side            Side
	Yarn            *YarnSelector
	LibrariesFormat LibrariesFormat
	// StrictMainClass turns an unresolved entry point into an error instead of a warning.
	StrictMainClass bool
}

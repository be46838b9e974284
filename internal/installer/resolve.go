package installer

import (
	"fmt"
	"strings"

	"github.com/meza/fabric-installer/internal/fabric"
)

// Resolution is the identity of the version being installed.
type Resolution struct {
	ID           string
	InheritsFrom string
	// Yarn is empty when no mapping layer was selected.
	Yarn string
}

// ResolveVersionID derives the version id and the base version it inherits from.
// Without a yarn selector the base is the intermediary version. With one, the base
// is the selector's game version, which only a full artifact record carries.
// An explicit version id is taken as is, so the base may stay empty; callers
// treat an empty InheritsFrom as a warning.
func ResolveVersionID(bundle fabric.LoaderArtifact, options Options) (Resolution, error) {
	resolution := Resolution{}
	base := bundle.Intermediary.Version

	if options.Yarn != nil {
		resolution.Yarn = options.Yarn.Version()
		base = options.Yarn.GameVersion()
	}

	resolution.InheritsFrom = options.InheritsFrom
	if resolution.InheritsFrom == "" {
		resolution.InheritsFrom = base
	}

	resolution.ID = options.VersionID
	if resolution.ID == "" {
		if options.Yarn != nil && resolution.Yarn == "" {
			return Resolution{}, &ResolutionError{Field: "yarn", Reason: "the selected mapping has no version"}
		}
		if base == "" {
			return Resolution{}, &ResolutionError{Field: "id", Reason: "no base Minecraft version could be derived and no version id was given"}
		}
		if bundle.Loader.Version == "" {
			return Resolution{}, &ResolutionError{Field: "id", Reason: "the loader artifact has no version"}
		}
		resolution.ID = synthesizeID(base, bundle.Loader.Version, resolution.Yarn != "")
	}

	if err := ValidateVersionID(resolution.ID); err != nil {
		return Resolution{}, err
	}

	return resolution, nil
}

// ValidateVersionID accepts ids that name exactly one directory below versions/.
func ValidateVersionID(id string) error {
	switch {
	case id == "":
		return &ResolutionError{Field: "id", Reason: "the version id is empty"}
	case id == "." || id == "..":
		return &ResolutionError{Field: "id", Reason: fmt.Sprintf("%q is not a usable directory name", id)}
	case strings.ContainsAny(id, `/\`):
		return &ResolutionError{Field: "id", Reason: fmt.Sprintf("%q must not contain path separators", id)}
	}
	return nil
}

func synthesizeID(base string, loaderVersion string, withYarn bool) string {
	if withYarn {
		return fmt.Sprintf("%s-loader%s", base, loaderVersion)
	}
	return fmt.Sprintf("%s-fabric%s", base, loaderVersion)
}

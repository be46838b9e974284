package fabric

import (
	"sort"

	"github.com/Masterminds/semver/v3"
)

// LatestLoader picks the newest loader bundle, preferring stable builds.
// Versions that do not parse as semver keep the order the service returned.
func LatestLoader(bundles []LoaderArtifact, gameVersion string) (*LoaderArtifact, error) {
	if len(bundles) == 0 {
		return nil, &LoaderNotFoundError{GameVersion: gameVersion}
	}

	versions := make([]ArtifactVersion, len(bundles))
	for i, bundle := range bundles {
		versions[i] = bundle.Loader
	}
	idx := latestIndex(versions)
	return &bundles[idx], nil
}

// LatestYarn picks the newest yarn build, preferring stable builds.
func LatestYarn(versions []ArtifactVersion) (*ArtifactVersion, bool) {
	if len(versions) == 0 {
		return nil, false
	}
	idx := latestIndex(versions)
	return &versions[idx], true
}

func latestIndex(versions []ArtifactVersion) int {
	candidates := make([]int, 0, len(versions))
	for i, version := range versions {
		if version.Stable {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		for i := range versions {
			candidates = append(candidates, i)
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return newer(versions[candidates[a]], versions[candidates[b]])
	})
	return candidates[0]
}

func newer(left ArtifactVersion, right ArtifactVersion) bool {
	leftVersion, leftErr := semver.NewVersion(left.Version)
	rightVersion, rightErr := semver.NewVersion(right.Version)
	if leftErr == nil && rightErr == nil {
		if leftVersion.Equal(rightVersion) {
			return buildNumber(left) > buildNumber(right)
		}
		return leftVersion.GreaterThan(rightVersion)
	}
	if left.GameVersion == right.GameVersion && left.Build != nil && right.Build != nil {
		return *left.Build > *right.Build
	}
	return false
}

func buildNumber(version ArtifactVersion) int {
	if version.Build == nil {
		return 0
	}
	return *version.Build
}

// Package fabric talks to the Fabric metadata service and models its records.
package fabric

// MavenRepository is where the loader, intermediary and yarn artifacts are published.
const MavenRepository = "https://maven.fabricmc.net/"

// YarnGroup is the fixed group:artifact prefix of the yarn mappings coordinate.
const YarnGroup = "net.fabricmc:yarn"

type ArtifactVersion struct {
	GameVersion string `json:"gameVersion,omitempty"`
	Separator   string `json:"separator,omitempty"`
	Build       *int   `json:"build,omitempty"`
	Maven       string `json:"maven"`
	Version     string `json:"version"`
	Stable      bool   `json:"stable"`
}

// Artifacts is the build index summary served at /v2/versions.
type Artifacts struct {
	Mappings []ArtifactVersion `json:"mappings"`
	Loader   []ArtifactVersion `json:"loader"`
}

type LoaderArtifact struct {
	Loader       ArtifactVersion `json:"loader"`
	Intermediary ArtifactVersion `json:"intermediary"`
	LauncherMeta LauncherMeta    `json:"launcherMeta"`
}

type LauncherMeta struct {
	Version   int       `json:"version"`
	Libraries Libraries `json:"libraries"`
	MainClass MainClass `json:"mainClass"`
}

type Libraries struct {
	Client []Library `json:"client"`
	Common []Library `json:"common"`
	Server []Library `json:"server"`
}

// Library is a maven coordinate plus the repository it resolves from.
type Library struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

package installer

import (
	"github.com/meza/fabric-installer/internal/fabric"
)

// BuildLibraries lists the loader, the intermediary, the optional yarn mappings,
// the common libraries and then the side libraries. Nothing is deduplicated.
func BuildLibraries(bundle fabric.LoaderArtifact, yarn string, side Side) []fabric.Library {
	common := bundle.LauncherMeta.Libraries.Common
	sided := sideLibraries(bundle.LauncherMeta.Libraries, side.orDefault())

	libraries := make([]fabric.Library, 0, 3+len(common)+len(sided))
	libraries = append(libraries,
		fabric.Library{Name: bundle.Loader.Maven, URL: fabric.MavenRepository},
		fabric.Library{Name: bundle.Intermediary.Maven, URL: fabric.MavenRepository},
	)
	if yarn != "" {
		libraries = append(libraries, fabric.Library{Name: fabric.YarnGroup + ":" + yarn, URL: fabric.MavenRepository})
	}
	libraries = append(libraries, common...)
	libraries = append(libraries, sided...)

	return libraries
}

func sideLibraries(libraries fabric.Libraries, side Side) []fabric.Library {
	if side == SideServer {
		return libraries.Server
	}
	return libraries.Client
}

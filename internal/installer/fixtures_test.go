package installer

import (
	"github.com/meza/fabric-installer/internal/fabric"
)

func sampleBundle() fabric.LoaderArtifact {
	return fabric.LoaderArtifact{
		Loader: fabric.ArtifactVersion{
			Separator: ".",
			Maven:     "net.fabricmc:fabric-loader:0.1.0.48",
			Version:   "0.1.0.48",
		},
		Intermediary: fabric.ArtifactVersion{
			Maven:   "net.fabricmc:intermediary:1.19.4",
			Version: "1.19.4",
			Stable:  true,
		},
		LauncherMeta: fabric.LauncherMeta{
			Version: 1,
			Libraries: fabric.Libraries{
				Client: []fabric.Library{},
				Common: []fabric.Library{
					{Name: "net.fabricmc:tiny-mappings-parser:0.1.1.8", URL: "https://maven.fabricmc.net/"},
					{Name: "com.google.code.gson:gson:2.8.5"},
				},
				Server: []fabric.Library{
					{Name: "net.minecraft:launchwrapper:1.12", URL: "https://libraries.minecraft.net/"},
				},
			},
			MainClass: fabric.NewPerSideMainClass(map[string]string{
				"client": "net.fabricmc.loader.launch.knot.KnotClient",
				"server": "net.fabricmc.loader.launch.knot.KnotServer",
			}),
		},
	}
}

package list

import (
	"context"

	"github.com/meza/fabric-installer/internal/fabric"
	"github.com/meza/fabric-installer/internal/httpclient"
	"github.com/spf13/cobra"
)

// LoadersCommand lists loader builds, optionally only those published for one
// game version.
func LoadersCommand() *cobra.Command {
	return listCommand{
		name:    "loaders",
		use:     "loaders [minecraft-version]",
		aliases: []string{"loader"},
		args:    cobra.MaximumNArgs(1),
		fetch:   fetchLoaders,
	}.build()
}

func fetchLoaders(ctx context.Context, doer httpclient.Doer, opts listOptions) ([]section, error) {
	client := fabric.NewClient(doer)

	if len(opts.arguments) == 0 {
		loaders, err := fabric.GetLoaderArtifacts(ctx, client)
		if err != nil {
			return nil, err
		}
		return []section{{entries: fromArtifacts(loaders)}}, nil
	}

	bundles, err := fabric.GetLoaderBundles(ctx, opts.arguments[0], client)
	if err != nil {
		return nil, err
	}
	loaders := make([]fabric.ArtifactVersion, 0, len(bundles))
	for _, bundle := range bundles {
		loaders = append(loaders, bundle.Loader)
	}
	return []section{{entries: fromArtifacts(loaders)}}, nil
}

func fromArtifacts(artifacts []fabric.ArtifactVersion) []entry {
	entries := make([]entry, 0, len(artifacts))
	for _, artifact := range artifacts {
		entries = append(entries, entry{Version: artifact.Version, Stable: artifact.Stable})
	}
	return entries
}

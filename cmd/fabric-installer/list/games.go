package list

import (
	"context"

	"github.com/meza/fabric-installer/internal/httpclient"
	"github.com/meza/fabric-installer/internal/minecraft"
	"github.com/spf13/cobra"
)

// GamesCommand lists the Minecraft versions Mojang publishes. Snapshots
// count as unstable.
func GamesCommand() *cobra.Command {
	return listCommand{
		name:    "games",
		use:     "games",
		aliases: []string{"minecraft"},
		args:    cobra.NoArgs,
		fetch:   fetchGameVersions,
	}.build()
}

func fetchGameVersions(ctx context.Context, doer httpclient.Doer, _ listOptions) ([]section, error) {
	all, err := minecraft.ListVersions(ctx, doer, false)
	if err != nil {
		return nil, err
	}
	releases, err := minecraft.ListVersions(ctx, doer, true)
	if err != nil {
		return nil, err
	}

	isRelease := make(map[string]bool, len(releases))
	for _, id := range releases {
		isRelease[id] = true
	}

	entries := make([]entry, 0, len(all))
	for _, id := range all {
		entries = append(entries, entry{Version: id, Stable: isRelease[id]})
	}
	return []section{{entries: entries}}, nil
}

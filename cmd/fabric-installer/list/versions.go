package list

import (
	"context"

	"github.com/meza/fabric-installer/internal/fabric"
	"github.com/meza/fabric-installer/internal/httpclient"
	"github.com/meza/fabric-installer/internal/i18n"
	"github.com/spf13/cobra"
)

// VersionsCommand prints the loader and mappings summary of the build index.
func VersionsCommand() *cobra.Command {
	return listCommand{
		name:  "versions",
		use:   "versions",
		args:  cobra.NoArgs,
		fetch: fetchSummary,
	}.build()
}

func fetchSummary(ctx context.Context, doer httpclient.Doer, _ listOptions) ([]section, error) {
	artifacts, err := fabric.GetArtifacts(ctx, fabric.NewClient(doer))
	if err != nil {
		return nil, err
	}

	return []section{
		{title: i18n.T("cmd.list.versions.loader"), entries: fromArtifacts(artifacts.Loader)},
		{title: i18n.T("cmd.list.versions.mappings"), entries: fromArtifacts(artifacts.Mappings)},
	}, nil
}

package list

import (
	"context"

	"github.com/meza/fabric-installer/internal/fabric"
	"github.com/meza/fabric-installer/internal/httpclient"
	"github.com/spf13/cobra"
)

func YarnCommand() *cobra.Command {
	return listCommand{
		name:    "yarn",
		use:     "yarn [minecraft-version]",
		aliases: []string{"mappings"},
		args:    cobra.MaximumNArgs(1),
		fetch:   fetchYarn,
	}.build()
}

func fetchYarn(ctx context.Context, doer httpclient.Doer, opts listOptions) ([]section, error) {
	client := fabric.NewClient(doer)

	var (
		builds []fabric.ArtifactVersion
		err    error
	)
	if len(opts.arguments) == 0 {
		builds, err = fabric.GetYarnArtifacts(ctx, client)
	} else {
		builds, err = fabric.GetYarnArtifactsFor(ctx, opts.arguments[0], client)
	}
	if err != nil {
		return nil, err
	}
	return []section{{entries: fromArtifacts(builds)}}, nil
}

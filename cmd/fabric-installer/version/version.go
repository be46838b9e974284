package version

import (
	"fmt"

	"github.com/meza/fabric-installer/internal/constants"
	"github.com/meza/fabric-installer/internal/environment"
	"github.com/meza/fabric-installer/internal/i18n"
	"github.com/spf13/cobra"
)

func Command() *cobra.Command {
	versionCmd := &cobra.Command{
		Use: "version",
		Short: i18n.T("cmd.version.short", i18n.Tvars{
			Data: &i18n.TData{"appName": constants.AppName},
		}),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), environment.AppVersion())
			return err
		},
	}

	return versionCmd
}

// Package fabricinstaller wires the fabric-installer command tree.
package fabricinstaller

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/meza/fabric-installer/cmd/fabric-installer/install"
	"github.com/meza/fabric-installer/cmd/fabric-installer/list"
	"github.com/meza/fabric-installer/cmd/fabric-installer/version"
	"github.com/meza/fabric-installer/internal/constants"
	"github.com/meza/fabric-installer/internal/environment"
	"github.com/meza/fabric-installer/internal/i18n"
	"github.com/meza/fabric-installer/internal/telemetry"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func Command() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           constants.CommandName,
		Short:         i18n.T("app.description"),
		Version:       environment.AppVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			telemetry.SetSessionNameHint(cmd.Name())
		},
	}
	cobra.MousetrapHelpText = "" // allow the app to run in windows by clicking the exe

	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.SetHelpTemplate(rootCmd.HelpTemplate() + "\n" + i18n.T("cmd.help.more", i18n.Tvars{
		Data: &i18n.TData{"url": environment.HelpURL()},
	}) + "\n")

	flags := rootCmd.PersistentFlags()
	flags.BoolP("quiet", "q", false, i18n.T("flag.quiet"))
	flags.BoolP("debug", "d", false, i18n.T("flag.debug"))
	flags.StringP("root", "r", "", i18n.T("flag.root"))
	flags.Bool("perf", false, i18n.T("flag.perf"))
	flags.String("perf-out-dir", "", i18n.T("flag.perf_out_dir"))

	rootCmd.AddCommand(install.Command())
	rootCmd.AddCommand(list.VersionsCommand())
	rootCmd.AddCommand(list.GamesCommand())
	rootCmd.AddCommand(list.LoadersCommand())
	rootCmd.AddCommand(list.YarnCommand())
	rootCmd.AddCommand(version.Command())

	translateDefaultHelpFacilities(rootCmd)
	fixFlagUsageAlignment(rootCmd)

	return rootCmd
}

func translateDefaultHelpFacilities(rootCmd *cobra.Command) {
	subcommands := rootCmd.Commands()
	allCommands := make([]*cobra.Command, 0, len(subcommands)+1)
	allCommands = append(allCommands, rootCmd)
	allCommands = append(allCommands, subcommands...)

	for _, cmd := range allCommands {
		cmd.InitDefaultHelpFlag()
		cmd.Flags().Lookup("help").Usage = i18n.T("cmd.help.template", i18n.Tvars{
			Data: &i18n.TData{"command": cmd.Name()},
		})
	}

	rootCmd.InitDefaultHelpCmd()
	helpCmd, _, err := rootCmd.Find([]string{"help"})
	if err != nil {
		return
	}

	helpCmd.Short = i18n.T("cmd.help.usage.short")
	helpCmd.Long = i18n.T("cmd.help.usage.long", i18n.Tvars{
		Data: &i18n.TData{"appName": rootCmd.Name()},
	})
	helpCmd.RunE = func(c *cobra.Command, args []string) error {
		cmd, _, findErr := c.Root().Find(args)
		if cmd == nil || findErr != nil {
			c.PrintErrln(i18n.T("cmd.help.error", i18n.Tvars{
				Data: &i18n.TData{"topic": fmt.Sprintf("%#q", args)},
			}) + "\n")
			return c.Root().Usage()
		}
		cmd.InitDefaultHelpFlag()
		cmd.InitDefaultVersionFlag()
		return cmd.Help()
	}
	helpCmd.Run = nil
}

func fixFlagUsageAlignment(rootCmd *cobra.Command) {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}
	usageTemplate := rootCmd.UsageTemplate()
	usageTemplate = strings.ReplaceAll(usageTemplate, ".FlagUsages", fmt.Sprintf(".FlagUsagesWrapped %d", width))
	rootCmd.SetUsageTemplate(usageTemplate)
}

// Execute runs the command tree with args and returns the command error, if any.
func Execute(ctx context.Context, args []string) error {
	cmd := Command()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

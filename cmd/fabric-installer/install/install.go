// Package install implements the install command.
package install

import (
	"context"
	"errors"

	"github.com/meza/fabric-installer/internal/environment"
	"github.com/meza/fabric-installer/internal/fabric"
	"github.com/meza/fabric-installer/internal/fileutils"
	"github.com/meza/fabric-installer/internal/httpclient"
	"github.com/meza/fabric-installer/internal/i18n"
	"github.com/meza/fabric-installer/internal/installer"
	"github.com/meza/fabric-installer/internal/logger"
	"github.com/meza/fabric-installer/internal/minecraft"
	"github.com/meza/fabric-installer/internal/perf"
	"github.com/meza/fabric-installer/internal/telemetry"
	"github.com/meza/fabric-installer/internal/tui"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const latestYarn = "latest"

type installOptions struct {
	root            string
	minecraft       string
	loader          string
	yarn            string
	inheritsFrom    string
	versionID       string
	side            string
	librariesFormat string
	strictMainClass bool
	skipGameCheck   bool
}

type installDeps struct {
	fs          afero.Fs
	doer        httpclient.Doer
	logger      *logger.Logger
	telemetry   func(telemetry.CommandTelemetry)
	defaultRoot func() (string, error)
	prompt      promptFunc
	colorize    bool
}

func Command() *cobra.Command {
	opts := installOptions{}

	cmd := &cobra.Command{
		Use:     "install",
		Aliases: []string{"i"},
		Short:   i18n.T("cmd.install.short"),
		Long:    i18n.T("cmd.install.long"),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			ctx, span := perf.StartSpan(cmd.Context(), "app.command.install")
			defer func() {
				span.SetAttributes(attribute.Bool("success", err == nil))
				span.RecordError(err)
				span.End()
			}()

			quiet, err := cmd.Flags().GetBool("quiet")
			if err != nil {
				return err
			}
			debug, err := cmd.Flags().GetBool("debug")
			if err != nil {
				return err
			}
			opts.root, err = cmd.Flags().GetString("root")
			if err != nil {
				return err
			}

			doer := httpclient.NewMetadataClient()
			deps := installDeps{
				fs:          afero.NewOsFs(),
				doer:        doer,
				logger:      logger.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), quiet, debug),
				telemetry:   telemetry.RecordCommand,
				defaultRoot: minecraft.DefaultRoot,
				colorize:    tui.IsTerminalWriter(cmd.OutOrStdout()),
			}
			if tui.ShouldUseTUI(quiet, cmd.InOrStdin(), cmd.OutOrStdout()) {
				deps.prompt = interactivePrompt(doer, cmd.InOrStdin(), cmd.OutOrStdout(), runTeaProgram)
			}

			_, err = runInstall(ctx, opts, deps)
			if errors.Is(err, errAborted) {
				deps.logger.Log(i18n.T("cmd.install.aborted"), true)
				return nil
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.minecraft, "minecraft", "m", "", i18n.T("cmd.install.flag.minecraft"))
	flags.StringVarP(&opts.loader, "loader", "l", "", i18n.T("cmd.install.flag.loader"))
	flags.StringVarP(&opts.yarn, "yarn", "y", "", i18n.T("cmd.install.flag.yarn"))
	flags.StringVar(&opts.inheritsFrom, "inherits-from", "", i18n.T("cmd.install.flag.inherits_from"))
	flags.StringVar(&opts.versionID, "version-id", "", i18n.T("cmd.install.flag.version_id"))
	flags.StringVarP(&opts.side, "side", "s", string(installer.SideClient), i18n.T("cmd.install.flag.side"))
	flags.StringVar(&opts.librariesFormat, "libraries-format", string(installer.LibrariesArray), i18n.T("cmd.install.flag.libraries_format"))
	flags.BoolVar(&opts.strictMainClass, "strict-main-class", false, i18n.T("cmd.install.flag.strict_main_class"))
	flags.BoolVar(&opts.skipGameCheck, "skip-game-check", false, i18n.T("cmd.install.flag.skip_game_check"))

	return cmd
}

func runInstall(ctx context.Context, opts installOptions, deps installDeps) (result installer.Result, err error) {
	defer func() {
		deps.telemetry(telemetry.CommandTelemetry{
			Command: "install",
			Success: err == nil,
			Error:   err,
			Arguments: map[string]interface{}{
				"interactive":     deps.prompt != nil,
				"loader":          opts.loader != "",
				"yarn":            opts.yarn != "",
				"side":            opts.side,
				"librariesFormat": opts.librariesFormat,
			},
			Extra: map[string]interface{}{
				"warnings": len(result.Warnings),
			},
		})
	}()

	side, err := installer.ParseSide(opts.side)
	if err != nil {
		return installer.Result{}, err
	}
	format, err := installer.ParseLibrariesFormat(opts.librariesFormat)
	if err != nil {
		return installer.Result{}, err
	}

	root, err := resolveRoot(opts.root, deps.defaultRoot)
	if err != nil {
		return installer.Result{}, err
	}
	location := minecraft.NewLocation(root)
	if !fileutils.DirExists(location.Root, deps.fs) {
		deps.logger.Debug(i18n.T("cmd.install.root_missing", i18n.Tvars{Data: &i18n.TData{"root": location.Root}}))
	}

	if deps.prompt != nil && needsPrompt(opts) {
		opts, err = deps.prompt(ctx, opts)
		if err != nil {
			return installer.Result{}, err
		}
	}

	gameVersion := opts.minecraft
	if gameVersion == "" {
		gameVersion, err = minecraft.GetLatestVersion(ctx, deps.doer)
		if err != nil {
			return installer.Result{}, err
		}
		deps.logger.Debugf("using the latest Minecraft release %s", gameVersion)
	}

	fabricClient := fabric.NewClient(deps.doer)

	var bundle *fabric.LoaderArtifact
	var yarn *installer.YarnSelector

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		resolved, bundleErr := fetchBundle(groupCtx, gameVersion, opts.loader, fabricClient)
		bundle = resolved
		return bundleErr
	})
	if opts.yarn != "" {
		group.Go(func() error {
			selected, yarnErr := selectYarn(groupCtx, gameVersion, opts.yarn, fabricClient)
			yarn = selected
			return yarnErr
		})
	}
	if !opts.skipGameCheck {
		group.Go(func() error {
			return checkGameVersion(groupCtx, gameVersion, deps)
		})
	}
	if err := group.Wait(); err != nil {
		return installer.Result{}, err
	}

	options := installer.Options{
		InheritsFrom:    opts.inheritsFrom,
		VersionID:       opts.versionID,
		Side:            side,
		Yarn:            yarn,
		LibrariesFormat: format,
		StrictMainClass: opts.strictMainClass,
	}

	result, err = installer.New(deps.fs, location, deps.logger).Install(ctx, *bundle, options)
	if err != nil {
		return installer.Result{}, err
	}

	deps.logger.Log(tui.SuccessIcon(deps.colorize)+" "+i18n.T("cmd.install.success", i18n.Tvars{
		Data: &i18n.TData{"id": result.ID, "path": result.Path},
	}), false)

	base := opts.inheritsFrom
	if base == "" {
		base = gameVersion
	}
	if base != "" && !fileutils.FileExists(location.VersionJSONPath(base), deps.fs) {
		deps.logger.Log(tui.WarningIcon(deps.colorize)+" "+i18n.T("cmd.install.base_missing", i18n.Tvars{
			Data: &i18n.TData{"base": base},
		}), false)
	}

	return result, nil
}

func resolveRoot(flagValue string, defaultRoot func() (string, error)) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if fromEnv, ok := environment.MinecraftRoot(); ok {
		return fromEnv, nil
	}
	return defaultRoot()
}

func fetchBundle(ctx context.Context, gameVersion string, loaderVersion string, client *fabric.Client) (*fabric.LoaderArtifact, error) {
	if loaderVersion != "" {
		return fabric.GetLoaderBundle(ctx, gameVersion, loaderVersion, client)
	}

	bundles, err := fabric.GetLoaderBundles(ctx, gameVersion, client)
	if err != nil {
		return nil, err
	}
	return fabric.LatestLoader(bundles, gameVersion)
}

// selectYarn looks the requested build up for the game version so that the
// selector carries a full record.
func selectYarn(ctx context.Context, gameVersion string, requested string, client *fabric.Client) (*installer.YarnSelector, error) {
	available, err := fabric.GetYarnArtifactsFor(ctx, gameVersion, client)
	if err != nil {
		return nil, err
	}

	if requested == latestYarn {
		latest, ok := fabric.LatestYarn(available)
		if !ok {
			return nil, &YarnNotFoundError{GameVersion: gameVersion, Version: requested}
		}
		return installer.YarnArtifact(*latest), nil
	}

	for _, candidate := range available {
		if candidate.Version == requested {
			return installer.YarnArtifact(candidate), nil
		}
	}
	return nil, &YarnNotFoundError{GameVersion: gameVersion, Version: requested}
}

// checkGameVersion only fails for versions Mojang does not publish. An
// unreachable manifest is logged and ignored.
func checkGameVersion(ctx context.Context, gameVersion string, deps installDeps) error {
	err := minecraft.ValidateVersion(ctx, gameVersion, deps.doer)
	if err == nil {
		return nil
	}

	var unknown *minecraft.UnknownVersionError
	if errors.As(err, &unknown) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	deps.logger.Debug(i18n.T("cmd.install.game_check_failed", i18n.Tvars{
		Data: &i18n.TData{"error": err.Error()},
	}))
	return nil
}


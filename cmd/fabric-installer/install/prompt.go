package install

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/meza/fabric-installer/internal/fabric"
	"github.com/meza/fabric-installer/internal/httpclient"
	"github.com/meza/fabric-installer/internal/minecraft"
	"github.com/meza/fabric-installer/internal/perf"
	"github.com/meza/fabric-installer/internal/tui"
	"go.opentelemetry.io/otel/attribute"
)

var errAborted = errors.New("install aborted")

type teaRunner func(model tea.Model, options ...tea.ProgramOption) (tea.Model, error)

func runTeaProgram(model tea.Model, options ...tea.ProgramOption) (tea.Model, error) {
	return tea.NewProgram(model, options...).Run()
}

type promptFunc func(ctx context.Context, opts installOptions) (installOptions, error)

// needsPrompt reports whether a question is left to ask.
func needsPrompt(opts installOptions) bool {
	return opts.minecraft == "" || opts.loader == ""
}

// interactivePrompt asks for the game version and loader that were not given
// as flags. Manifest failures leave the version question unvalidated.
func interactivePrompt(doer httpclient.Doer, in io.Reader, out io.Writer, runTea teaRunner) promptFunc {
	return func(ctx context.Context, opts installOptions) (result installOptions, err error) {
		ctx, span := perf.StartSpan(ctx, "tui.install.session")
		defer func() {
			span.SetAttributes(attribute.Bool("success", err == nil))
			span.End()
		}()

		latest := ""
		var versions []string
		if opts.minecraft == "" {
			latest, _ = minecraft.GetLatestVersion(ctx, doer)
			versions = minecraft.GetAllMineCraftVersions(ctx, doer)
		}

		model := tui.NewInstallModel(ctx, tui.InstallSelection{
			GameVersion: opts.minecraft,
			Loader:      opts.loader,
		}, latest, versions, loaderFetcher(fabric.NewClient(doer)), tui.Width(out))

		final, err := runTea(model, tui.ProgramOptions(in, out)...)
		if err != nil {
			return opts, err
		}

		typed, ok := final.(tui.InstallModel)
		if !ok {
			return opts, errors.New("unexpected install prompt result model")
		}
		if typed.Err() != nil {
			return opts, typed.Err()
		}
		if !typed.Selection.Done {
			return opts, errAborted
		}

		opts.minecraft = typed.Selection.GameVersion
		opts.loader = typed.Selection.Loader
		return opts, nil
	}
}

func loaderFetcher(client *fabric.Client) tui.LoaderFetcher {
	return func(ctx context.Context, gameVersion string) ([]tui.LoaderOption, error) {
		bundles, err := fabric.GetLoaderBundles(ctx, gameVersion, client)
		if err != nil {
			return nil, err
		}

		options := make([]tui.LoaderOption, 0, len(bundles))
		for _, bundle := range bundles {
			options = append(options, tui.LoaderOption{
				Version: bundle.Loader.Version,
				Stable:  bundle.Loader.Stable,
			})
		}
		return options, nil
	}
}

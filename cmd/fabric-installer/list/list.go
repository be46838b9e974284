// Package list implements the commands that browse what the Fabric and Mojang
// metadata services publish.
package list

import (
	"context"
	"strings"

	"github.com/meza/fabric-installer/internal/httpclient"
	"github.com/meza/fabric-installer/internal/i18n"
	"github.com/meza/fabric-installer/internal/logger"
	"github.com/meza/fabric-installer/internal/perf"
	"github.com/meza/fabric-installer/internal/telemetry"
	"github.com/meza/fabric-installer/internal/tui"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
)

const defaultLimit = 10

type listOptions struct {
	limit     int
	unstable  bool
	arguments []string
}

type listDeps struct {
	doer      httpclient.Doer
	logger    *logger.Logger
	telemetry func(telemetry.CommandTelemetry)
	colorize  bool
}

type entry struct {
	Version string
	Stable  bool
}

// section is one titled block of output. Commands with a single block leave
// the title empty.
type section struct {
	title   string
	entries []entry
}

type fetchFunc func(ctx context.Context, doer httpclient.Doer, opts listOptions) ([]section, error)

type listCommand struct {
	name    string
	use     string
	aliases []string
	args    cobra.PositionalArgs
	fetch   fetchFunc
}

func (definition listCommand) build() *cobra.Command {
	opts := listOptions{}

	cmd := &cobra.Command{
		Use:     definition.use,
		Aliases: definition.aliases,
		Short:   i18n.T("cmd.list." + definition.name + ".short"),
		Args:    definition.args,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, span := perf.StartSpan(cmd.Context(), "app.command."+definition.name)
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

			opts.arguments = args
			deps := listDeps{
				doer:      httpclient.NewMetadataClient(),
				logger:    logger.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), quiet, debug),
				telemetry: telemetry.RecordCommand,
				colorize:  tui.IsTerminalWriter(cmd.OutOrStdout()),
			}
			return runList(ctx, definition, opts, deps)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", defaultLimit, i18n.T("cmd.list.flag.limit"))
	cmd.Flags().BoolVar(&opts.unstable, "unstable", false, i18n.T("cmd.list."+definition.name+".flag.unstable"))

	return cmd
}

func runList(ctx context.Context, definition listCommand, opts listOptions, deps listDeps) (err error) {
	var sections []section
	defer func() {
		results := 0
		for _, s := range sections {
			results += len(s.entries)
		}
		deps.telemetry(telemetry.CommandTelemetry{
			Command: definition.name,
			Success: err == nil,
			Error:   err,
			Arguments: map[string]interface{}{
				"limit":    opts.limit,
				"unstable": opts.unstable,
				"filtered": len(opts.arguments) > 0,
			},
			Extra: map[string]interface{}{
				"results": results,
			},
		})
	}()

	sections, err = definition.fetch(ctx, deps.doer, opts)
	if err != nil {
		return err
	}

	blocks := make([]string, 0, len(sections))
	for i := range sections {
		if !opts.unstable {
			sections[i].entries = stableOnly(sections[i].entries)
		}
		block := render(sections[i].entries, opts.limit, deps.colorize)
		if sections[i].title != "" {
			block = tui.Title(sections[i].title, deps.colorize) + "\n" + block
		}
		blocks = append(blocks, block)
	}

	deps.logger.Log(strings.Join(blocks, "\n\n"), true)
	return nil
}

func stableOnly(entries []entry) []entry {
	stable := make([]entry, 0, len(entries))
	for _, e := range entries {
		if e.Stable {
			stable = append(stable, e)
		}
	}
	return stable
}

// render prints one version per line. A limit below one prints everything.
func render(entries []entry, limit int, colorize bool) string {
	if len(entries) == 0 {
		return tui.Muted(i18n.T("cmd.list.empty"), colorize)
	}

	shown := entries
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	var sb strings.Builder
	for i, e := range shown {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(e.Version)
		if !e.Stable {
			sb.WriteString(" ")
			sb.WriteString(tui.Muted(i18n.T("cmd.list.unstable_marker"), colorize))
		}
	}

	if hidden := len(entries) - len(shown); hidden > 0 {
		sb.WriteString("\n")
		sb.WriteString(tui.Muted(i18n.T("cmd.list.more", i18n.Tvars{Count: hidden}), colorize))
	}

	return sb.String()
}

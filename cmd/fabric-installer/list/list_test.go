package list

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meza/fabric-installer/internal/fabric"
	"github.com/meza/fabric-installer/internal/httpclient"
	"github.com/meza/fabric-installer/internal/logger"
	"github.com/meza/fabric-installer/internal/minecraft"
	"github.com/meza/fabric-installer/internal/telemetry"
	"github.com/meza/fabric-installer/internal/tui"
	"github.com/meza/fabric-installer/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loaderList = `[
	{"separator": ".", "build": 20, "maven": "net.fabricmc:fabric-loader:0.15.0", "version": "0.15.0", "stable": false},
	{"separator": ".", "build": 19, "maven": "net.fabricmc:fabric-loader:0.14.19", "version": "0.14.19", "stable": true},
	{"separator": ".", "build": 18, "maven": "net.fabricmc:fabric-loader:0.14.18", "version": "0.14.18", "stable": true}
]`

const loaderBundles = `[
	{"loader": {"version": "0.14.19", "maven": "net.fabricmc:fabric-loader:0.14.19", "stable": true}, "intermediary": {"version": "1.19.4", "maven": "net.fabricmc:intermediary:1.19.4", "stable": true}, "launcherMeta": {"version": 1, "libraries": {"client": [], "common": [], "server": []}, "mainClass": "net.fabricmc.loader.launch.knot.KnotClient"}}
]`

const yarnList = `[
	{"gameVersion": "1.19.4", "separator": "+build.", "build": 2, "maven": "net.fabricmc:yarn:1.19.4+build.2", "version": "1.19.4+build.2", "stable": true},
	{"gameVersion": "23w14a", "separator": "+build.", "build": 1, "maven": "net.fabricmc:yarn:23w14a+build.1", "version": "23w14a+build.1", "stable": false}
]`

const yarnFor1194 = `[
	{"gameVersion": "1.19.4", "separator": "+build.", "build": 2, "maven": "net.fabricmc:yarn:1.19.4+build.2", "version": "1.19.4+build.2", "stable": true}
]`

const manifest = `{"latest": {"release": "1.19.4", "snapshot": "23w14a"}, "versions": [{"id": "23w14a", "type": "snapshot"}, {"id": "1.19.4", "type": "release"}, {"id": "1.19.3", "type": "release"}]}`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("FABRIC_META_URL", "")
	t.Setenv("MOJANG_MANIFEST_URL", "")
	minecraft.ClearManifestCache()
	t.Cleanup(minecraft.ClearManifestCache)

	respond := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v2/versions", respond(`{"loader": `+loaderList+`, "mappings": `+yarnList+`}`))
	mux.HandleFunc("/v2/versions/loader", respond(loaderList))
	mux.HandleFunc("/v2/versions/loader/1.19.4", respond(loaderBundles))
	mux.HandleFunc("/v2/versions/yarn", respond(yarnList))
	mux.HandleFunc("/v2/versions/yarn/1.19.4", respond(yarnFor1194))
	mux.HandleFunc("/mc/game/version_manifest.json", respond(manifest))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newDeps(server *httptest.Server) (listDeps, *bytes.Buffer, *[]telemetry.CommandTelemetry) {
	out := &bytes.Buffer{}
	recorded := &[]telemetry.CommandTelemetry{}
	return listDeps{
		doer:   testutil.MustNewHostRewriteDoer(server.URL, server.Client()),
		logger: logger.New(out, io.Discard, false, false),
		telemetry: func(command telemetry.CommandTelemetry) {
			*recorded = append(*recorded, command)
		},
	}, out, recorded
}

func TestRenderEmpty(t *testing.T) {
	t.Setenv("FABRIC_INSTALLER_TEST", "true")
	assert.Equal(t, "cmd.list.empty", render(nil, 10, false))
}

func TestRenderMarksUnstableAndTruncates(t *testing.T) {
	t.Setenv("FABRIC_INSTALLER_TEST", "true")
	entries := []entry{
		{Version: "0.15.0", Stable: false},
		{Version: "0.14.19", Stable: true},
		{Version: "0.14.18", Stable: true},
		{Version: "0.14.17", Stable: true},
	}

	assert.Equal(t,
		"0.15.0 cmd.list.unstable_marker\n0.14.19\ncmd.list.more, Arg 1: {Count: 2, Data: <nil>}",
		render(entries, 2, false),
	)
	assert.Equal(t,
		"0.15.0 cmd.list.unstable_marker\n0.14.19\n0.14.18\n0.14.17",
		render(entries, 0, false),
	)
}

func TestRenderColorized(t *testing.T) {
	t.Setenv("FABRIC_INSTALLER_TEST", "true")
	entries := []entry{{Version: "0.15.0", Stable: false}}

	assert.Equal(t, "0.15.0 "+tui.Muted("cmd.list.unstable_marker", true), render(entries, 0, true))
	assert.Equal(t, tui.Muted("cmd.list.empty", true), render(nil, 0, true))
}

func TestRunListLoaders(t *testing.T) {
	t.Setenv("FABRIC_INSTALLER_TEST", "true")
	server := newServer(t)

	t.Run("stable only by default", func(t *testing.T) {
		deps, out, recorded := newDeps(server)
		definition := listCommand{name: "loaders", fetch: fetchLoaders}

		require.NoError(t, runList(context.Background(), definition, listOptions{limit: 10}, deps))

		assert.Equal(t, "0.14.19\n0.14.18\n", out.String())
		require.Len(t, *recorded, 1)
		assert.Equal(t, "loaders", (*recorded)[0].Command)
		assert.True(t, (*recorded)[0].Success)
		assert.Equal(t, 2, (*recorded)[0].Extra["results"])
	})

	t.Run("unstable included on request", func(t *testing.T) {
		deps, out, _ := newDeps(server)
		definition := listCommand{name: "loaders", fetch: fetchLoaders}

		require.NoError(t, runList(context.Background(), definition, listOptions{limit: 10, unstable: true}, deps))

		assert.Equal(t, "0.15.0 cmd.list.unstable_marker\n0.14.19\n0.14.18\n", out.String())
	})

	t.Run("filtered by game version", func(t *testing.T) {
		deps, out, _ := newDeps(server)
		definition := listCommand{name: "loaders", fetch: fetchLoaders}

		require.NoError(t, runList(context.Background(), definition, listOptions{limit: 10, arguments: []string{"1.19.4"}}, deps))

		assert.Equal(t, "0.14.19\n", out.String())
	})
}

func TestRunListYarn(t *testing.T) {
	t.Setenv("FABRIC_INSTALLER_TEST", "true")
	server := newServer(t)

	deps, out, _ := newDeps(server)
	definition := listCommand{name: "yarn", fetch: fetchYarn}
	require.NoError(t, runList(context.Background(), definition, listOptions{unstable: true}, deps))
	assert.Equal(t, "1.19.4+build.2\n23w14a+build.1 cmd.list.unstable_marker\n", out.String())

	deps, out, _ = newDeps(server)
	require.NoError(t, runList(context.Background(), definition, listOptions{unstable: true, arguments: []string{"1.19.4"}}, deps))
	assert.Equal(t, "1.19.4+build.2\n", out.String())
}

func TestRunListVersionsSummary(t *testing.T) {
	t.Setenv("FABRIC_INSTALLER_TEST", "true")
	server := newServer(t)

	deps, out, recorded := newDeps(server)
	definition := listCommand{name: "versions", fetch: fetchSummary}
	require.NoError(t, runList(context.Background(), definition, listOptions{limit: 1}, deps))

	assert.Equal(t, "cmd.list.versions.loader\n0.14.19\ncmd.list.more, Arg 1: {Count: 1, Data: <nil>}\n\ncmd.list.versions.mappings\n1.19.4+build.2\n", out.String())
	require.Len(t, *recorded, 1)
	assert.Equal(t, 3, (*recorded)[0].Extra["results"])
}

func TestRunListGames(t *testing.T) {
	t.Setenv("FABRIC_INSTALLER_TEST", "true")
	server := newServer(t)

	deps, out, _ := newDeps(server)
	definition := listCommand{name: "games", fetch: fetchGameVersions}
	require.NoError(t, runList(context.Background(), definition, listOptions{limit: 1}, deps))
	assert.Equal(t, "1.19.4\ncmd.list.more, Arg 1: {Count: 1, Data: <nil>}\n", out.String())

	deps, out, _ = newDeps(server)
	require.NoError(t, runList(context.Background(), definition, listOptions{unstable: true}, deps))
	assert.Equal(t, "23w14a cmd.list.unstable_marker\n1.19.4\n1.19.3\n", out.String())
}

func TestRunListReportsFetchFailures(t *testing.T) {
	t.Setenv("FABRIC_INSTALLER_TEST", "true")
	fetchErr := errors.New("offline")
	deps, out, recorded := newDeps(newServer(t))
	definition := listCommand{
		name: "loaders",
		fetch: func(context.Context, httpclient.Doer, listOptions) ([]section, error) {
			return nil, fetchErr
		},
	}

	err := runList(context.Background(), definition, listOptions{}, deps)

	assert.ErrorIs(t, err, fetchErr)
	assert.Empty(t, out.String())
	require.Len(t, *recorded, 1)
	assert.False(t, (*recorded)[0].Success)
}

func TestFetchLoadersUnknownGameVersion(t *testing.T) {
	server := newServer(t)
	deps, _, _ := newDeps(server)

	_, err := fetchLoaders(context.Background(), deps.doer, listOptions{arguments: []string{"0.0.1"}})

	var fetchErr *fabric.FetchError
	assert.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusNotFound, fetchErr.StatusCode)
}

func TestCommands(t *testing.T) {
	t.Setenv("FABRIC_INSTALLER_TEST", "true")

	tests := []struct {
		use   string
		short string
		build func() *cobra.Command
	}{
		{use: "versions", short: "cmd.list.versions.short", build: VersionsCommand},
		{use: "games", short: "cmd.list.games.short", build: GamesCommand},
		{use: "loaders [minecraft-version]", short: "cmd.list.loaders.short", build: LoadersCommand},
		{use: "yarn [minecraft-version]", short: "cmd.list.yarn.short", build: YarnCommand},
	}

	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			cmd := tt.build()
			assert.Equal(t, tt.use, cmd.Use)
			assert.Equal(t, tt.short, cmd.Short)
			assert.Equal(t, "10", cmd.Flags().Lookup("limit").DefValue)
			assert.NotNil(t, cmd.Flags().Lookup("unstable"))
		})
	}
}

func TestCommandRejectsExtraArguments(t *testing.T) {
	t.Setenv("FABRIC_INSTALLER_TEST", "true")
	cmd := LoadersCommand()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"1.19.4", "1.19.3"})

	assert.Error(t, cmd.Execute())
}

package install

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/meza/fabric-installer/internal/logger"
	"github.com/meza/fabric-installer/internal/minecraft"
	"github.com/meza/fabric-installer/internal/telemetry"
	"github.com/meza/fabric-installer/testutil"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const bundleTemplate = `{
	"loader": {"separator": ".", "build": %[2]d, "maven": "net.fabricmc:fabric-loader:%[1]s", "version": "%[1]s", "stable": %[3]t},
	"intermediary": {"maven": "net.fabricmc:intermediary:1.19.4", "version": "1.19.4", "stable": true},
	"launcherMeta": {
		"version": 1,
		"libraries": {
			"client": [],
			"common": [{"name": "org.ow2.asm:asm:9.4", "url": "https://maven.fabricmc.net/"}],
			"server": []
		},
		"mainClass": {"client": "net.fabricmc.loader.impl.launch.knot.KnotClient", "server": "net.fabricmc.loader.impl.launch.knot.KnotServer"}
	}
}`

const yarnResponse = `[
	{"gameVersion": "1.19.4", "separator": "+build.", "build": 2, "maven": "net.fabricmc:yarn:1.19.4+build.2", "version": "1.19.4+build.2", "stable": true},
	{"gameVersion": "1.19.4", "separator": "+build.", "build": 1, "maven": "net.fabricmc:yarn:1.19.4+build.1", "version": "1.19.4+build.1", "stable": true}
]`

const manifestResponse = `{"latest": {"release": "1.19.4", "snapshot": "23w14a"}, "versions": [{"id": "23w14a"}, {"id": "1.19.4"}]}`

func bundleJSON(version string, build int, stable bool) string {
	return fmt.Sprintf(bundleTemplate, version, build, stable)
}

type fakeServices struct {
	manifestStatus int

	mu       sync.Mutex
	requests []string
}

func (s *fakeServices) requested() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func newFakeServices(t *testing.T) (*fakeServices, *httptest.Server) {
	t.Helper()
	t.Setenv("FABRIC_META_URL", "")
	t.Setenv("MOJANG_MANIFEST_URL", "")
	minecraft.ClearManifestCache()
	t.Cleanup(minecraft.ClearManifestCache)

	services := &fakeServices{manifestStatus: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/mc/game/version_manifest.json", func(w http.ResponseWriter, _ *http.Request) {
		if services.manifestStatus != http.StatusOK {
			w.WriteHeader(services.manifestStatus)
			return
		}
		_, _ = w.Write([]byte(manifestResponse))
	})
	mux.HandleFunc("/v2/versions/loader/1.19.4", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[" + bundleJSON("0.15.0", 0, false) + "," + bundleJSON("0.14.19", 19, true) + "]"))
	})
	mux.HandleFunc("/v2/versions/loader/1.19.4/0.14.19", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(bundleJSON("0.14.19", 19, true)))
	})
	mux.HandleFunc("/v2/versions/loader/1.19.4/9.9.9", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no loader", http.StatusBadRequest)
	})
	mux.HandleFunc("/v2/versions/loader/1.0.0-fake", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[" + bundleJSON("0.14.19", 19, true) + "]"))
	})
	mux.HandleFunc("/v2/versions/loader/23w14a", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})
	mux.HandleFunc("/v2/versions/yarn/1.19.4", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(yarnResponse))
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		services.mu.Lock()
		services.requests = append(services.requests, r.URL.Path)
		services.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return services, server
}

type recordedTelemetry struct {
	commands []telemetry.CommandTelemetry
}

func (r *recordedTelemetry) record(command telemetry.CommandTelemetry) {
	r.commands = append(r.commands, command)
}

func newTestDeps(server *httptest.Server, fs afero.Fs, recorder *recordedTelemetry) (installDeps, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return installDeps{
		fs:        fs,
		doer:      testutil.MustNewHostRewriteDoer(server.URL, server.Client()),
		logger:    logger.New(stdout, stderr, false, true),
		telemetry: recorder.record,
		defaultRoot: func() (string, error) {
			return "/default/.minecraft", nil
		},
	}, stdout, stderr
}

func addPersistentFlagsForTesting(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolP("quiet", "q", false, "quiet")
	cmd.PersistentFlags().BoolP("debug", "d", false, "debug")
	cmd.PersistentFlags().StringP("root", "r", "", "root")
}

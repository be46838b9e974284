package fabric

import (
	"net/http"
	"strings"
	"testing"
)

func writeStringResponse(t *testing.T, writer http.ResponseWriter, payload string) {
	t.Helper()
	if _, err := writer.Write([]byte(payload)); err != nil {
		t.Fatalf("write string response: %v", err)
	}
}

type responseDoer struct {
	response *http.Response
	err      error
}

func (doer responseDoer) Do(_ *http.Request) (*http.Response, error) {
	return doer.response, doer.err
}

type errorDoer struct {
	err error
}

func (doer errorDoer) Do(_ *http.Request) (*http.Response, error) {
	return nil, doer.err
}

type stringBody struct {
	*strings.Reader
}

func (stringBody) Close() error {
	return nil
}

func newStringBody(payload string) stringBody {
	return stringBody{Reader: strings.NewReader(payload)}
}

const loaderBundleResponse = `{
	"loader": {
		"separator": ".",
		"build": 48,
		"maven": "net.fabricmc:fabric-loader:0.1.0.48",
		"version": "0.1.0.48",
		"stable": false
	},
	"intermediary": {
		"maven": "net.fabricmc:intermediary:1.19.4",
		"version": "1.19.4",
		"stable": true
	},
	"launcherMeta": {
		"version": 1,
		"libraries": {
			"client": [],
			"common": [
				{"name": "net.minecraft:launchwrapper:1.12", "url": "https://libraries.minecraft.net/"},
				{"name": "org.ow2.asm:asm:6.2", "url": "https://maven.fabricmc.net/"}
			],
			"server": [
				{"name": "com.google.guava:guava:21.0", "url": "https://maven.fabricmc.net/"}
			]
		},
		"mainClass": {
			"client": "net.fabricmc.loader.launch.knot.KnotClient",
			"server": "net.fabricmc.loader.launch.knot.KnotServer"
		}
	}
}`

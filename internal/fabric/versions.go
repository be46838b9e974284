package fabric

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/meza/fabric-installer/internal/httpclient"
	"github.com/meza/fabric-installer/internal/perf"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

func GetArtifacts(ctx context.Context, client httpclient.Doer) (*Artifacts, error) {
	ctx, span := perf.StartSpan(ctx, "api.fabric.versions.get")
	defer span.End()

	result := &Artifacts{}
	if err := getJSON(ctx, client, "/v2/versions", result); err != nil {
		return nil, err
	}
	return result, nil
}

func GetYarnArtifacts(ctx context.Context, client httpclient.Doer) ([]ArtifactVersion, error) {
	ctx, span := perf.StartSpan(ctx, "api.fabric.yarn.list")
	defer span.End()

	var result []ArtifactVersion
	if err := getJSON(ctx, client, "/v2/versions/yarn", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func GetYarnArtifactsFor(ctx context.Context, minecraft string, client httpclient.Doer) ([]ArtifactVersion, error) {
	ctx, span := perf.StartSpan(ctx, "api.fabric.yarn.list", perf.WithAttributes(attribute.String("game_version", minecraft)))
	defer span.End()

	var result []ArtifactVersion
	if err := getJSON(ctx, client, fmt.Sprintf("/v2/versions/yarn/%s", url.PathEscape(minecraft)), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func GetLoaderArtifacts(ctx context.Context, client httpclient.Doer) ([]ArtifactVersion, error) {
	ctx, span := perf.StartSpan(ctx, "api.fabric.loader.list")
	defer span.End()

	var result []ArtifactVersion
	if err := getJSON(ctx, client, "/v2/versions/loader", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetLoaderBundles lists every loader paired with the intermediary for the game version.
func GetLoaderBundles(ctx context.Context, minecraft string, client httpclient.Doer) ([]LoaderArtifact, error) {
	ctx, span := perf.StartSpan(ctx, "api.fabric.loader.list", perf.WithAttributes(attribute.String("game_version", minecraft)))
	defer span.End()

	var result []LoaderArtifact
	if err := getJSON(ctx, client, fmt.Sprintf("/v2/versions/loader/%s", url.PathEscape(minecraft)), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func GetLoaderBundle(ctx context.Context, minecraft string, loader string, client httpclient.Doer) (*LoaderArtifact, error) {
	ctx, span := perf.StartSpan(ctx, "api.fabric.loader.get",
		perf.WithAttributes(
			attribute.String("game_version", minecraft),
			attribute.String("loader_version", loader),
		),
	)
	defer span.End()

	result := &LoaderArtifact{}
	endpoint := fmt.Sprintf("/v2/versions/loader/%s/%s", url.PathEscape(minecraft), url.PathEscape(loader))
	if err := getJSON(ctx, client, endpoint, result); err != nil {
		return nil, err
	}
	return result, nil
}

func getJSON(ctx context.Context, client httpclient.Doer, endpoint string, target any) error {
	ctx, cancel := httpclient.WithMetadataTimeout(ctx)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, GetBaseURL()+endpoint, nil)
	if err != nil {
		return FetchErrorWrap(err, endpoint, 0)
	}

	response, err := client.Do(request)
	if err != nil {
		return FetchErrorWrap(httpclient.WrapTimeoutError(err), endpoint, 0)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return FetchErrorWrap(errors.Errorf("unexpected status code: %d", response.StatusCode), endpoint, response.StatusCode)
	}

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return FetchErrorWrap(errors.Wrap(httpclient.WrapTimeoutError(err), "decode response"), endpoint, 0)
	}
	return nil
}

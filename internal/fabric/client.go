package fabric

import (
	"fmt"
	"net/http"

	"github.com/meza/fabric-installer/internal/environment"
	"github.com/meza/fabric-installer/internal/httpclient"
	"github.com/meza/fabric-installer/internal/perf"
	"go.opentelemetry.io/otel/attribute"
)

type Client struct {
	client httpclient.Doer
}

func NewClient(doer httpclient.Doer) *Client {
	return &Client{client: doer}
}

func (fabricClient *Client) Do(request *http.Request) (*http.Response, error) {
	ctx, span := perf.StartSpan(request.Context(), "api.fabric.http.request", perf.WithAttributes(attribute.String("url", request.URL.String())))
	defer span.End()
	headers := map[string]string{
		"user-agent": fmt.Sprintf("github_com/meza/fabric-installer/%s", environment.AppVersion()),
		"Accept":     "application/json",
	}

	for key, value := range headers {
		request.Header.Add(key, value)
	}

	return fabricClient.client.Do(request.WithContext(ctx))
}

func GetBaseURL() string {
	return environment.FabricMetaURL()
}

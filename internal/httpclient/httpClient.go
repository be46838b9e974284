// Package httpclient provides the rate limited, traced HTTP client used for metadata requests.
package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/meza/fabric-installer/internal/perf"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

type Doer interface {
	Do(request *http.Request) (*http.Response, error)
}

// RLHTTPClient sends each request exactly once after the limiter admits it.
// Status codes are left to the caller.
type RLHTTPClient struct {
	client      *http.Client
	Ratelimiter *rate.Limiter
}

type Option func(*RLHTTPClient)

func WithTransport(transport http.RoundTripper) Option {
	return func(client *RLHTTPClient) {
		client.client.Transport = otelhttp.NewTransport(transport)
	}
}

func NewRLClient(limiter *rate.Limiter, options ...Option) *RLHTTPClient {
	client := &RLHTTPClient{
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Ratelimiter: limiter,
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// NewMetadataClient builds the client used against the Fabric metadata service.
func NewMetadataClient() *RLHTTPClient {
	return NewRLClient(rate.NewLimiter(rate.Every(100*time.Millisecond), 5))
}

func (client *RLHTTPClient) Do(request *http.Request) (*http.Response, error) {
	ctx, requestSpan := perf.StartSpan(request.Context(), "net.http.request",
		perf.WithAttributes(
			attribute.String("url", request.URL.String()),
			attribute.String("method", request.Method),
			attribute.String("host", request.URL.Host),
		),
	)
	defer requestSpan.End()

	if err := client.wait(ctx); err != nil {
		requestSpan.SetAttributes(
			attribute.Bool("success", false),
			attribute.String("error_type", fmt.Sprintf("%T", err)),
		)
		return nil, err
	}

	response, err := client.client.Do(request.WithContext(ctx))
	if err != nil {
		err = WrapTimeoutError(err)
		requestSpan.SetAttributes(
			attribute.Bool("success", false),
			attribute.String("error_type", fmt.Sprintf("%T", err)),
		)
		return nil, err
	}

	requestSpan.SetAttributes(
		attribute.Bool("success", response.StatusCode < http.StatusBadRequest),
		attribute.Int("status", response.StatusCode),
	)
	return response, nil
}

func (client *RLHTTPClient) wait(ctx context.Context) error {
	waitCtx, waitSpan := perf.StartSpan(ctx, "net.http.ratelimit.wait")
	defer waitSpan.End()

	err := client.Ratelimiter.Wait(waitCtx)
	if err == nil {
		return nil
	}
	waitSpan.SetAttributes(attribute.Bool("admitted", false))
	if IsTimeoutError(err) {
		return WrapTimeoutError(err)
	}
	return fmt.Errorf("rate limit burst exceeded %w", err)
}

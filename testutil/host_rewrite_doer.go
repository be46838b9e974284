// Package testutil holds shared test helpers.
package testutil

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/meza/fabric-installer/internal/httpclient"
)

// MetadataHosts are the upstream hosts the installer reads from.
var MetadataHosts = []string{"meta.fabricmc.net", "launchermeta.mojang.com", "piston-meta.mojang.com"}

// OriginalHostHeader carries the host a request was addressed to before it was
// sent to the test server.
const OriginalHostHeader = "X-Original-Host"

type UnexpectedHostError struct {
	Host string
}

func (e *UnexpectedHostError) Error() string {
	return fmt.Sprintf("request to unexpected host %q", e.Host)
}

// HostRewriteDoer sends requests for known metadata hosts to a local test server
// and remembers the URLs they were addressed to. Any other host fails.
type HostRewriteDoer struct {
	target  *url.URL
	next    httpclient.Doer
	allowed map[string]bool

	mu       sync.Mutex
	requests []string
}

// NewHostRewriteDoer routes hosts (MetadataHosts when none are given) and the
// server's own host to serverURL.
func NewHostRewriteDoer(serverURL string, next httpclient.Doer, hosts ...string) (*HostRewriteDoer, error) {
	if next == nil {
		return nil, fmt.Errorf("next doer is nil")
	}

	target, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("server url must include scheme and host")
	}

	if len(hosts) == 0 {
		hosts = MetadataHosts
	}
	allowed := map[string]bool{target.Hostname(): true}
	for _, host := range hosts {
		allowed[host] = true
	}

	return &HostRewriteDoer{target: target, next: next, allowed: allowed}, nil
}

func MustNewHostRewriteDoer(serverURL string, next httpclient.Doer, hosts ...string) *HostRewriteDoer {
	doer, err := NewHostRewriteDoer(serverURL, next, hosts...)
	if err != nil {
		panic(err)
	}
	return doer
}

func (d *HostRewriteDoer) Do(req *http.Request) (*http.Response, error) {
	host := req.URL.Hostname()
	if !d.allowed[host] {
		return nil, &UnexpectedHostError{Host: host}
	}

	d.mu.Lock()
	d.requests = append(d.requests, req.URL.String())
	d.mu.Unlock()

	routed := req.Clone(req.Context())
	routed.URL.Scheme = d.target.Scheme
	routed.URL.Host = d.target.Host
	routed.Host = d.target.Host
	routed.Header.Set(OriginalHostHeader, req.URL.Host)
	return d.next.Do(routed)
}

// Requests lists the original URLs in the order they were sent.
func (d *HostRewriteDoer) Requests() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.requests...)
}

// Package minecraft knows the vanilla game: its published versions and the on-disk layout of an installation.
package minecraft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/meza/fabric-installer/internal/environment"
	"github.com/meza/fabric-installer/internal/httpclient"
	"github.com/meza/fabric-installer/internal/perf"
	"go.opentelemetry.io/otel/attribute"
)

const releaseType = "release"

type latest struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}

type version struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	URL         string    `json:"url"`
	Time        time.Time `json:"time"`
	ReleaseTime time.Time `json:"releaseTime"`
}

type versionManifest struct {
	Latest   latest    `json:"latest"`
	Versions []version `json:"versions"`
}

var (
	manifestMu    sync.Mutex
	manifestCache *versionManifest
)

func ClearManifestCache() {
	manifestMu.Lock()
	manifestCache = nil
	manifestMu.Unlock()
}

func getMinecraftVersionManifest(ctx context.Context, client httpclient.Doer) (manifest *versionManifest, err error) {
	manifestMu.Lock()
	cached := manifestCache
	manifestMu.Unlock()
	if cached != nil {
		return cached, nil
	}

	ctx, span := perf.StartSpan(ctx, "api.mojang.manifest.get")
	defer span.End()

	ctx, cancel := httpclient.WithMetadataTimeout(ctx)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, environment.MojangManifestURL(), nil)
	if err != nil {
		return nil, err
	}

	response, err := client.Do(request)
	if err != nil {
		return nil, httpclient.WrapTimeoutError(err)
	}
	defer func() {
		if closeErr := response.Body.Close(); closeErr != nil && err == nil {
			manifest = nil
			err = closeErr
		}
	}()

	if response.StatusCode != http.StatusOK {
		span.SetAttributes(attribute.Int("status", response.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrManifestNotFound, response.StatusCode)
	}

	decoded := &versionManifest{}
	if err := json.NewDecoder(response.Body).Decode(decoded); err != nil {
		return nil, httpclient.WrapTimeoutError(err)
	}

	manifestMu.Lock()
	manifestCache = decoded
	manifestMu.Unlock()

	return decoded, nil
}

func GetLatestVersion(ctx context.Context, client httpclient.Doer) (string, error) {
	manifest, err := getMinecraftVersionManifest(ctx, client)
	if err != nil {
		var timeoutErr *httpclient.TimeoutError
		if errors.As(err, &timeoutErr) {
			return "", timeoutErr
		}
		return "", errors.Join(ErrCouldNotDetermineLatestVersion, err)
	}
	if manifest.Latest.Release == "" {
		return "", ErrCouldNotDetermineLatestVersion
	}

	return manifest.Latest.Release, nil
}

// ValidateVersion reports whether Mojang publishes the game version.
// Manifest failures are returned as-is so callers can decide how strict to be.
func ValidateVersion(ctx context.Context, gameVersion string, client httpclient.Doer) error {
	manifest, err := getMinecraftVersionManifest(ctx, client)
	if err != nil {
		return err
	}

	for _, v := range manifest.Versions {
		if v.ID == gameVersion {
			return nil
		}
	}

	return &UnknownVersionError{Version: gameVersion}
}

func GetAllMineCraftVersions(ctx context.Context, client httpclient.Doer) []string {
	versions, err := ListVersions(ctx, client, false)
	if err != nil {
		return []string{}
	}
	return versions
}

// ListVersions returns the published version ids newest first. With
// releasesOnly the snapshots and betas are skipped.
func ListVersions(ctx context.Context, client httpclient.Doer, releasesOnly bool) ([]string, error) {
	manifest, err := getMinecraftVersionManifest(ctx, client)
	if err != nil {
		return nil, err
	}

	versions := make([]string, 0, len(manifest.Versions))
	for _, v := range manifest.Versions {
		if releasesOnly && v.Type != releaseType {
			continue
		}
		versions = append(versions, v.ID)
	}

	return versions, nil
}

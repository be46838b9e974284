// Package environment reads runtime environment configuration.
package environment

import (
	"os"
	"strings"
)

const (
	defaultFabricMetaURL      = "https://meta.fabricmc.net"
	defaultMojangManifestURL  = "https://launchermeta.mojang.com/mc/game/version_manifest.json"
	telemetryDisableVariable  = "FABRIC_INSTALLER_DISABLE_TELEMETRY"
	minecraftRootVariableName = "FABRIC_INSTALLER_MINECRAFT_ROOT"
)

// Replaced through -ldflags by tools/build.
var (
	posthogAPIKeyDefault = "REPL_POSTHOG_API_KEY" // #nosec G101 -- build-time placeholder replaced in release builds.
	appVersion           = "REPL_VERSION"
	helpURL              = "REPL_HELP_URL"
)

func FabricMetaURL() string {
	value, present := os.LookupEnv("FABRIC_META_URL")
	if present && strings.TrimSpace(value) != "" {
		return strings.TrimSuffix(strings.TrimSpace(value), "/")
	}

	return defaultFabricMetaURL
}

func MojangManifestURL() string {
	value, present := os.LookupEnv("MOJANG_MANIFEST_URL")
	if present && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}

	return defaultMojangManifestURL
}

// MinecraftRoot returns the root configured through the environment, if any.
func MinecraftRoot() (string, bool) {
	value, present := os.LookupEnv(minecraftRootVariableName)
	if !present || strings.TrimSpace(value) == "" {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func PosthogAPIKey() string {
	key, present := os.LookupEnv("POSTHOG_API_KEY")
	if present {
		return key
	}

	return posthogAPIKeyDefault
}

func TelemetryDisabled() bool {
	value, present := os.LookupEnv(telemetryDisableVariable)
	if !present {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "no":
		return false
	}
	return true
}

func AppVersion() string {
	return appVersion
}

func HelpURL() string {
	return helpURL
}

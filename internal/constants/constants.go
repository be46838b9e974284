// Package constants defines shared constant values.
package constants

// AppName is the project identifier used in logs and metadata.
const AppName = "fabric-installer"

// CommandName is the primary CLI command name.
const CommandName = "fabric-installer"

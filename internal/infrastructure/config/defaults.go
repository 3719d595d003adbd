// Package config provides configuration loading and defaults for vitals.
package config

import "time"

// DefaultConfigDir is the default location for vitals configuration.
const DefaultConfigDir = "~/.config/vitals"

// DefaultConfigName is the base name of the YAML config file.
const DefaultConfigName = "config"

// EnvPrefix prefixes every environment override, e.g. VITALS_SOURCE_TYPE.
const EnvPrefix = "VITALS"

// Source types.
const (
	SourceFile   = "file"
	SourceGitHub = "github"
	SourceJira   = "jira"
)

// DefaultSnapshotPath is read when the file source has no explicit path.
const DefaultSnapshotPath = "vitals-snapshot.yaml"

// DefaultRetry holds the data-source retry settings.
var DefaultRetry = Retry{
	MaxAttempts:  3,
	InitialDelay: 500 * time.Millisecond,
}

// DefaultSourceTimeout bounds a single data-source read.
const DefaultSourceTimeout = 60 * time.Second

// DefaultLog holds the logging defaults.
var DefaultLog = Log{
	Level:  "info",
	Format: "text",
}

// DefaultMCP holds the MCP server defaults.
var DefaultMCP = MCP{
	Transport: "stdio",
	Addr:      ":8080",
}

// Package cliconfig provides configuration types and loading for the vesselctl CLI.
package cliconfig

// Config represents the complete configuration for the vesselctl CLI.
// Configuration values can come from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. Global config file (~/.config/vesselctl/config.yaml)
// 4. Default values (lowest priority)
type Config struct {
	// Control overrides instance discovery entirely. When set, vesselctl
	// talks to this endpoint (host:port or unix:/path) without scanning the
	// process table or touching the resolution cache.
	Control string `yaml:"control,omitempty" json:"control,omitempty"`

	// Log is the daemon log file to read after a change. Only meaningful
	// together with Control; discovered instances carry their own log path.
	Log string `yaml:"log,omitempty" json:"log,omitempty"`

	// Quiet suppresses the post-change log report.
	Quiet bool `yaml:"quiet" json:"quiet"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// JSON emits a machine-readable result envelope instead of pretty text.
	JSON bool `yaml:"json" json:"json"`

	// Sources tracks where each value came from (for debugging)
	Sources map[string]string `yaml:"-" json:"-"`
}

// ConfigSource identifies where a config value originated.
const (
	SourceDefault = "default"
	SourceEnv     = "env"
	SourceGlobal  = "global"
	SourceFlag    = "flag"
)

// NewDefault returns a Config populated with defaults only.
func NewDefault() *Config {
	return &Config{
		Sources: map[string]string{
			"control": SourceDefault,
			"log":     SourceDefault,
			"quiet":   SourceDefault,
			"verbose": SourceDefault,
			"json":    SourceDefault,
		},
	}
}

package cliconfig

import "os"

// Environment variable names
const (
	EnvControl = "VESSELCTL_CONTROL"
	EnvLog     = "VESSELCTL_LOG"
	EnvQuiet   = "VESSELCTL_QUIET"
	EnvVerbose = "VESSELCTL_VERBOSE"
)

// LoadEnvConfig loads configuration from environment variables.
// It only sets values that are present in the environment.
func LoadEnvConfig(cfg *Config) {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	if v := os.Getenv(EnvControl); v != "" {
		cfg.Control = v
		cfg.Sources["control"] = SourceEnv
	}

	if v := os.Getenv(EnvLog); v != "" {
		cfg.Log = v
		cfg.Sources["log"] = SourceEnv
	}

	if v := os.Getenv(EnvQuiet); v != "" {
		cfg.Quiet = isTruthy(v)
		cfg.Sources["quiet"] = SourceEnv
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Verbose = isTruthy(v)
		cfg.Sources["verbose"] = SourceEnv
	}
}

func isTruthy(v string) bool {
	return v == "true" || v == "1" || v == "yes"
}

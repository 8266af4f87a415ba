package cliconfig

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// GlobalConfigDir is the directory for global config
	GlobalConfigDir = "vesselctl"
)

// GlobalConfigFileNames are the names to search for global config (in order).
var GlobalConfigFileNames = []string{"config.yaml", "config.yml"}

// FindGlobalConfig returns the path to the global config file.
// Returns empty string if not found.
func FindGlobalConfig() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", nil
	}
	for _, name := range GlobalConfigFileNames {
		path := filepath.Join(configDir, GlobalConfigDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// LoadConfigFile loads a Config from a YAML file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Path: path, Message: err.Error()}
	}

	cfg.Sources = make(map[string]string)
	return &cfg, nil
}

// ConfigError represents a configuration file error with location info.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Path + ": " + e.Message
}

// LoadAll loads configuration from all sources and merges them.
// Precedence: env > global config > defaults. Flags are applied by the
// caller on top of the returned Config.
func LoadAll() (*Config, error) {
	cfg := NewDefault()

	if globalPath, err := FindGlobalConfig(); err == nil && globalPath != "" {
		if globalCfg, err := LoadConfigFile(globalPath); err == nil {
			mergeConfig(cfg, globalCfg)
		}
	}

	LoadEnvConfig(cfg)

	return cfg, nil
}

// mergeConfig copies the set values of src over dst, recording provenance.
func mergeConfig(dst, src *Config) {
	if src.Control != "" {
		dst.Control = src.Control
		dst.Sources["control"] = SourceGlobal
	}
	if src.Log != "" {
		dst.Log = src.Log
		dst.Sources["log"] = SourceGlobal
	}
	if src.Quiet {
		dst.Quiet = true
		dst.Sources["quiet"] = SourceGlobal
	}
	if src.Verbose {
		dst.Verbose = true
		dst.Sources["verbose"] = SourceGlobal
	}
	if src.JSON {
		dst.JSON = true
		dst.Sources["json"] = SourceGlobal
	}
}

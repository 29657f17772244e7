package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/3279mitsunaka/mcp-sample/pkg/logging"
)

const (
	userConfigDir  = ".config/mcphost"
	configFileName = "config.yaml"
)

// osUserHomeDir is replaced in tests.
var osUserHomeDir = os.UserHomeDir

// DefaultConfigPath returns ~/.config/mcphost/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

// LoadConfig reads the configuration file at path, or the default location
// when path is empty. A missing default file yields the defaults; a missing
// explicit file is an error.
func LoadConfig(path string) (HostConfig, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return HostConfig{}, err
		}
		path = p
	}

	cfg := GetDefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			logging.Info("Config", "No config.yaml found at %s, using defaults", path)
			return cfg, nil
		}
		return HostConfig{}, &ConfigurationError{
			FilePath:  path,
			ErrorType: "io",
			Message:   err.Error(),
		}
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return HostConfig{}, &ConfigurationError{
			FilePath:    path,
			ErrorType:   "parse",
			Message:     err.Error(),
			Suggestions: []string{"check the YAML syntax; durations use Go notation such as 30s or 1m"},
		}
	}
	applyDefaults(&cfg)

	if err := Validate(cfg, path); err != nil {
		return HostConfig{}, err
	}

	logging.Info("Config", "Loaded configuration from %s (%d providers)", path, len(cfg.Providers))
	return cfg, nil
}

package app

import (
	"io"

	"github.com/3279mitsunaka/mcp-sample/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Debug enables debug logging.
	Debug bool

	// Quiet limits logging to warnings and errors.
	Quiet bool

	// Demo replaces the configured providers with the built-in Math and CAD
	// providers running in-process.
	Demo bool

	// ConfigPath overrides ~/.config/mcphost/config.yaml.
	ConfigPath string

	// LogLevel overrides the level derived from Quiet. Debug still wins.
	LogLevel string

	// LogFormat is "text" (default) or "json".
	LogFormat string

	// LogOutput receives log lines. Defaults to stderr.
	LogOutput io.Writer

	// HostConfig skips loading the file when set.
	HostConfig *config.HostConfig
}

// NewConfig creates a new application configuration
func NewConfig(debug, demo bool, configPath string) *Config {
	return &Config{
		Debug:      debug,
		Demo:       demo,
		ConfigPath: configPath,
	}
}

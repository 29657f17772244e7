package config

import (
	"time"

	"github.com/3279mitsunaka/mcp-sample/internal/api"
)

// ReasonerKind selects the reasoning component.
type ReasonerKind string

const (
	ReasonerDirective   ReasonerKind = "directive"
	ReasonerAzureOpenAI ReasonerKind = "azure-openai"
)

// HostConfig is the top-level configuration structure.
type HostConfig struct {
	Providers []ProviderConfig `yaml:"providers,omitempty"`
	Timeouts  TimeoutConfig    `yaml:"timeouts,omitempty"`
	History   HistoryConfig    `yaml:"history,omitempty"`
	Reasoner  ReasonerConfig   `yaml:"reasoner,omitempty"`
}

// ProviderConfig describes how to reach one provider. Either Command (a
// stdio subprocess) or URL (a streamable HTTP endpoint) must be set.
type ProviderConfig struct {
	Name    string            `yaml:"name"`
	Command string            `yaml:"command,omitempty"`
	Args    []string          `yaml:"args,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
	URL     string            `yaml:"url,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Descriptor converts the entry into a launch descriptor.
func (p ProviderConfig) Descriptor() api.LaunchDescriptor {
	return api.LaunchDescriptor{
		Command: p.Command,
		Args:    p.Args,
		Env:     p.Env,
		URL:     p.URL,
		Headers: p.Headers,
	}.Clone()
}

// TimeoutConfig bounds provider operations.
type TimeoutConfig struct {
	Connect time.Duration `yaml:"connect,omitempty"`
	Invoke  time.Duration `yaml:"invoke,omitempty"`
}

// HistoryConfig bounds the in-memory conversation log.
type HistoryConfig struct {
	Limit int `yaml:"limit,omitempty"`
}

// ReasonerConfig selects and configures the reasoner.
type ReasonerConfig struct {
	Kind  ReasonerKind `yaml:"kind,omitempty"`
	Azure AzureConfig  `yaml:"azure,omitempty"`
}

// AzureConfig configures the Azure OpenAI reasoner. The key itself is never
// stored in the file; APIKeyEnv names the environment variable holding it.
type AzureConfig struct {
	Endpoint   string `yaml:"endpoint,omitempty"`
	Deployment string `yaml:"deployment,omitempty"`
	APIKeyEnv  string `yaml:"apiKeyEnv,omitempty"`
}

package config

import "time"

const (
	DefaultConnectTimeout = 30 * time.Second
	DefaultInvokeTimeout  = 60 * time.Second
	DefaultHistoryLimit   = 100
	DefaultAzureKeyEnv    = "AZURE_OPENAI_API_KEY"
)

// GetDefaultConfig returns the configuration used when no file exists.
func GetDefaultConfig() HostConfig {
	return HostConfig{
		Timeouts: TimeoutConfig{
			Connect: DefaultConnectTimeout,
			Invoke:  DefaultInvokeTimeout,
		},
		History: HistoryConfig{Limit: DefaultHistoryLimit},
		Reasoner: ReasonerConfig{
			Kind:  ReasonerDirective,
			Azure: AzureConfig{APIKeyEnv: DefaultAzureKeyEnv},
		},
	}
}

// applyDefaults fills zero values left by a partial file.
func applyDefaults(cfg *HostConfig) {
	def := GetDefaultConfig()
	if cfg.Timeouts.Connect == 0 {
		cfg.Timeouts.Connect = def.Timeouts.Connect
	}
	if cfg.Timeouts.Invoke == 0 {
		cfg.Timeouts.Invoke = def.Timeouts.Invoke
	}
	if cfg.History.Limit == 0 {
		cfg.History.Limit = def.History.Limit
	}
	if cfg.Reasoner.Kind == "" {
		cfg.Reasoner.Kind = def.Reasoner.Kind
	}
	if cfg.Reasoner.Azure.APIKeyEnv == "" {
		cfg.Reasoner.Azure.APIKeyEnv = def.Reasoner.Azure.APIKeyEnv
	}
}

package app

import (
	"context"
	"fmt"
	"os"

	"github.com/3279mitsunaka/mcp-sample/internal/config"
	"github.com/3279mitsunaka/mcp-sample/internal/demo"
	"github.com/3279mitsunaka/mcp-sample/internal/host"
	"github.com/3279mitsunaka/mcp-sample/internal/provider"
	"github.com/3279mitsunaka/mcp-sample/internal/reasoning"
	"github.com/3279mitsunaka/mcp-sample/pkg/logging"
)

// Application owns the host built from the configuration.
type Application struct {
	config  *Config
	hostCfg config.HostConfig
	host    *host.Host
}

// NewApplication creates the host with all configured providers registered.
// Nothing is launched until Start.
func NewApplication(cfg *Config) (*Application, error) {
	if err := initLogging(cfg); err != nil {
		return nil, err
	}

	var hostCfg config.HostConfig
	if cfg.HostConfig != nil {
		hostCfg = *cfg.HostConfig
		if err := config.Validate(hostCfg, "inline configuration"); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	} else {
		loaded, err := config.LoadConfig(cfg.ConfigPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration")
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		hostCfg = loaded
	}

	reasoner, err := NewReasoner(hostCfg.Reasoner)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize reasoner: %w", err)
	}

	var (
		launcher  provider.Launcher = provider.NewTransportLauncher()
		providers                   = hostCfg.Providers
	)
	if cfg.Demo {
		launcher, providers = demoProviders()
		logging.Info("Bootstrap", "Demo mode: using in-process %s and %s providers", demo.MathName, demo.CADName)
	}

	h := host.New(
		host.WithLauncher(launcher),
		host.WithReasoner(reasoner),
		host.WithHistoryLimit(hostCfg.History.Limit),
		host.WithConnectionOptions(
			provider.WithConnectTimeout(hostCfg.Timeouts.Connect),
			provider.WithInvokeTimeout(hostCfg.Timeouts.Invoke),
		),
	)
	for _, p := range providers {
		if err := h.AddServer(p.Name, p.Descriptor()); err != nil {
			return nil, fmt.Errorf("failed to register provider %s: %w", p.Name, err)
		}
	}

	logging.Debug("Bootstrap", "Registered %d providers, reasoner %s", len(providers), hostCfg.Reasoner.Kind)
	return &Application{config: cfg, hostCfg: hostCfg, host: h}, nil
}

// Host returns the managed host.
func (a *Application) Host() *host.Host {
	return a.host
}

// HostConfig returns the effective configuration.
func (a *Application) HostConfig() config.HostConfig {
	return a.hostCfg
}

// Start connects every provider.
func (a *Application) Start(ctx context.Context) (*host.ConnectReport, error) {
	return a.host.ConnectAll(ctx)
}

// Shutdown closes every provider and logs close failures.
func (a *Application) Shutdown(ctx context.Context) *host.ShutdownReport {
	report := a.host.Shutdown(ctx)
	if err := report.Err(); err != nil {
		logging.Warn("Bootstrap", "Some providers did not close cleanly: %v", err)
	}
	return report
}

// Log formats accepted by Config.LogFormat.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

func initLogging(cfg *Config) error {
	level := logging.LevelInfo
	switch {
	case cfg.Debug:
		level = logging.LevelDebug
	case cfg.LogLevel != "":
		parsed, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		level = parsed
	case cfg.Quiet:
		level = logging.LevelWarn
	}

	out := cfg.LogOutput
	if out == nil {
		out = os.Stderr
	}

	switch cfg.LogFormat {
	case LogFormatText, "":
		logging.InitForCLI(level, out)
	case LogFormatJSON:
		logging.InitJSON(level, out)
	default:
		return fmt.Errorf("unknown log format %q (want %s or %s)", cfg.LogFormat, LogFormatText, LogFormatJSON)
	}
	return nil
}

// demoProviders serves the built-in providers in-process under their usual names.
func demoProviders() (provider.Launcher, []config.ProviderConfig) {
	launcher := provider.NewInProcessLauncher()
	for key, srv := range demo.Servers() {
		launcher.Register(key, srv)
	}
	return launcher, []config.ProviderConfig{
		{Name: demo.MathName, Command: "math"},
		{Name: demo.CADName, Command: "cad"},
	}
}

// lookupEnv is replaced in tests.
var lookupEnv = os.Getenv

// NewReasoner builds the reasoner selected by the configuration.
func NewReasoner(cfg config.ReasonerConfig) (reasoning.Reasoner, error) {
	switch cfg.Kind {
	case config.ReasonerDirective, "":
		return reasoning.NewDirectiveReasoner(), nil
	case config.ReasonerAzureOpenAI:
		key := lookupEnv(cfg.Azure.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("environment variable %s is not set", cfg.Azure.APIKeyEnv)
		}
		return reasoning.NewAzureOpenAIReasoner(cfg.Azure.Endpoint, key, cfg.Azure.Deployment)
	default:
		return nil, fmt.Errorf("unknown reasoner kind %q", cfg.Kind)
	}
}

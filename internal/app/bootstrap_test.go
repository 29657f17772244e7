package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3279mitsunaka/mcp-sample/internal/api"
	"github.com/3279mitsunaka/mcp-sample/internal/config"
	"github.com/3279mitsunaka/mcp-sample/internal/host"
	"github.com/3279mitsunaka/mcp-sample/internal/reasoning"
)

func TestNewApplication_Demo(t *testing.T) {
	cfg := config.GetDefaultConfig()
	var logs bytes.Buffer

	a, err := NewApplication(&Config{Demo: true, Debug: true, HostConfig: &cfg, LogOutput: &logs})
	require.NoError(t, err)

	report, err := a.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Math", "CAD"}, report.Connected)
	assert.Equal(t, 3, report.Capabilities)

	res, err := a.Host().Dispatch(context.Background(), "add", map[string]any{"a": 2, "b": 3})
	require.NoError(t, err)
	assert.Equal(t, "5", res.Text())

	shutdown := a.Shutdown(context.Background())
	assert.NoError(t, shutdown.Err())
	assert.Equal(t, host.StateClosed, a.Host().State())
	assert.Contains(t, logs.String(), "subsystem=Bootstrap")
}

func TestNewApplication_Logging(t *testing.T) {
	cfg := config.GetDefaultConfig()

	var logs bytes.Buffer
	a, err := NewApplication(&Config{Demo: true, LogLevel: "debug", LogFormat: LogFormatJSON, HostConfig: &cfg, LogOutput: &logs})
	require.NoError(t, err)
	a.Shutdown(context.Background())
	assert.Contains(t, logs.String(), `"subsystem":"Bootstrap"`)

	logs.Reset()
	a, err = NewApplication(&Config{Demo: true, Quiet: true, LogLevel: "info", HostConfig: &cfg, LogOutput: &logs})
	require.NoError(t, err)
	a.Shutdown(context.Background())
	assert.Contains(t, logs.String(), "Demo mode", "explicit level beats Quiet")

	_, err = NewApplication(&Config{LogFormat: "xml", HostConfig: &cfg, LogOutput: &logs})
	assert.ErrorContains(t, err, "unknown log format")

	_, err = NewApplication(&Config{LogLevel: "verbose", HostConfig: &cfg, LogOutput: &logs})
	assert.ErrorContains(t, err, "unknown log level")
}

func TestNewApplication_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
providers:
  - name: Tools
    command: /nonexistent/tools-server
history:
  limit: 5
`), 0o644))

	a, err := NewApplication(&Config{ConfigPath: path, Quiet: true, LogOutput: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, 5, a.HostConfig().History.Limit)

	providers := a.Host().Providers()
	require.Len(t, providers, 1)
	assert.Equal(t, "Tools", providers[0].Name)
	assert.Equal(t, api.StateUninitialized, providers[0].State)

	report, err := a.Start(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Connected)
	assert.ErrorIs(t, report.Failures["Tools"], api.ErrLaunchFailure)

	a.Shutdown(context.Background())
}

func TestNewApplication_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reasoner:\n  kind: oracle\n"), 0o644))

	_, err := NewApplication(&Config{ConfigPath: path, LogOutput: &bytes.Buffer{}})
	require.Error(t, err)

	var coll *config.ConfigurationErrorCollection
	assert.ErrorAs(t, err, &coll)
}

func TestNewApplication_RejectsPaddedProviderName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("providers:\n  - name: \" Math\"\n    command: mcphost\n"), 0o644))

	_, err := NewApplication(&Config{ConfigPath: path, LogOutput: &bytes.Buffer{}})
	var coll *config.ConfigurationErrorCollection
	require.ErrorAs(t, err, &coll)
	assert.Len(t, coll.ByField("providers[0].name"), 1)

	inline := config.GetDefaultConfig()
	inline.Providers = []config.ProviderConfig{{Name: "Math ", Command: "mcphost"}}
	_, err = NewApplication(&Config{HostConfig: &inline, LogOutput: &bytes.Buffer{}})
	assert.ErrorAs(t, err, &coll)
}

func TestNewReasoner(t *testing.T) {
	orig := lookupEnv
	t.Cleanup(func() { lookupEnv = orig })
	env := map[string]string{}
	lookupEnv = func(k string) string { return env[k] }

	r, err := NewReasoner(config.ReasonerConfig{Kind: config.ReasonerDirective})
	require.NoError(t, err)
	assert.IsType(t, &reasoning.DirectiveReasoner{}, r)

	azure := config.ReasonerConfig{
		Kind: config.ReasonerAzureOpenAI,
		Azure: config.AzureConfig{
			Endpoint:   "https://example.openai.azure.com",
			Deployment: "gpt-4o",
			APIKeyEnv:  "TEST_AZURE_KEY",
		},
	}
	_, err = NewReasoner(azure)
	assert.ErrorContains(t, err, "TEST_AZURE_KEY")

	env["TEST_AZURE_KEY"] = "secret"
	r, err = NewReasoner(azure)
	require.NoError(t, err)
	assert.IsType(t, &reasoning.AzureOpenAIReasoner{}, r)

	_, err = NewReasoner(config.ReasonerConfig{Kind: "oracle"})
	assert.Error(t, err)
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(true, true, "/tmp/config.yaml")
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.Demo)
	assert.Equal(t, "/tmp/config.yaml", cfg.ConfigPath)
}

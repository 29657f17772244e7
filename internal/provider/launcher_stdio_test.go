//go:build !windows

package provider

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3279mitsunaka/mcp-sample/internal/api"
	"github.com/3279mitsunaka/mcp-sample/internal/demo"
)

const (
	// childModeEnv turns the test binary into a stdio provider.
	childModeEnv = "MCPHOST_TEST_PROVIDER"
	childPIDEnv  = "MCPHOST_TEST_PROVIDER_PIDFILE"
)

func TestMain(m *testing.M) {
	switch os.Getenv(childModeEnv) {
	case "":
		os.Exit(m.Run())
	case "math":
		if path := os.Getenv(childPIDEnv); path != "" {
			_ = os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
		}
		if err := server.ServeStdio(demo.NewMathServer()); err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	default:
		// Exit before answering the handshake.
		os.Exit(3)
	}
}

// childDescriptor launches this test binary as a provider in the given mode.
func childDescriptor(t *testing.T, mode string, env map[string]string) api.LaunchDescriptor {
	t.Helper()
	exe, err := os.Executable()
	require.NoError(t, err)

	desc := api.LaunchDescriptor{Command: exe, Env: map[string]string{childModeEnv: mode}}
	for k, v := range env {
		desc.Env[k] = v
	}
	return desc
}

func processGone(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return true
	}
	return proc.Signal(syscall.Signal(0)) != nil
}

func TestStdioLauncher_Subprocess(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "provider.pid")
	c := NewConnection("Math", childDescriptor(t, "math", map[string]string{childPIDEnv: pidFile}), StdioLauncher{},
		WithConnectTimeout(10*time.Second))
	t.Cleanup(func() { _ = c.Close() })

	catalog, err := c.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, api.StateReady, c.State())

	var names []string
	for _, capability := range catalog {
		names = append(names, capability.Name)
	}
	assert.ElementsMatch(t, []string{"add", "multiply"}, names)

	result, err := c.Invoke(context.Background(), "multiply", map[string]any{"a": 6, "b": 7})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "42", text.Text)

	raw, err := os.ReadFile(pidFile)
	require.NoError(t, err)
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	require.NoError(t, err)
	assert.False(t, processGone(pid), "provider runs while connected")

	require.NoError(t, c.Close())
	assert.Equal(t, api.StateClosed, c.State())
	assert.Eventually(t, func() bool { return processGone(pid) }, 10*time.Second, 50*time.Millisecond,
		"Close must stop and reap the provider process")
}

func TestStdioLauncher_ProviderExitsBeforeHandshake(t *testing.T) {
	c := NewConnection("Crashy", childDescriptor(t, "exit", nil), StdioLauncher{},
		WithConnectTimeout(5*time.Second))
	t.Cleanup(func() { _ = c.Close() })

	_, err := c.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrHandshakeFailure)
	assert.Equal(t, api.StateFailed, c.State())
	assert.Nil(t, c.Catalog())
	assert.Equal(t, err, c.LastError())

	_, err = c.Invoke(context.Background(), "add", map[string]any{"a": 1, "b": 1})
	assert.ErrorIs(t, err, api.ErrNotConnected, "no half-open session is left behind")
	assert.NoError(t, c.Close())
}

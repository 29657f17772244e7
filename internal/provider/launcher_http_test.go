package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3279mitsunaka/mcp-sample/internal/api"
	"github.com/3279mitsunaka/mcp-sample/internal/demo"
)

func TestStreamableHTTPLauncher_Connect(t *testing.T) {
	var sawHeader atomic.Bool
	mcpHandler := server.NewStreamableHTTPServer(demo.NewCADServer())
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Provider-Token") == "secret" {
			sawHeader.Store(true)
		}
		mcpHandler.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)

	desc := api.LaunchDescriptor{URL: ts.URL + "/mcp", Headers: map[string]string{"X-Provider-Token": "secret"}}
	c := NewConnection("CAD", desc, NewTransportLauncher())
	t.Cleanup(func() { _ = c.Close() })

	catalog, err := c.Connect(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, "draw_cylinder", catalog[0].Name)
	assert.True(t, sawHeader.Load())

	result, err := c.Invoke(context.Background(), "draw_cylinder", map[string]any{"radius": 1, "height": 2})
	require.NoError(t, err)
	assert.False(t, result.IsError)
}

func TestStreamableHTTPLauncher_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := NewConnection("Gone", api.LaunchDescriptor{URL: url + "/mcp"}, StreamableHTTPLauncher{})
	_, err := c.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, api.StateFailed, c.State())
}

func TestStreamableHTTPLauncher_RequiresURL(t *testing.T) {
	_, err := StreamableHTTPLauncher{}.Launch(context.Background(), "x", api.LaunchDescriptor{Command: "mcphost"})
	assert.ErrorContains(t, err, "url is required")
}

func TestTransportLauncher_Routes(t *testing.T) {
	var got []string
	record := func(kind string) Launcher {
		return LauncherFunc(func(ctx context.Context, name string, desc api.LaunchDescriptor) (Session, error) {
			got = append(got, kind+":"+name)
			return &fakeSession{}, nil
		})
	}
	l := &TransportLauncher{Stdio: record("stdio"), HTTP: record("http")}

	_, err := l.Launch(context.Background(), "Math", api.LaunchDescriptor{Command: "mcphost"})
	require.NoError(t, err)
	_, err = l.Launch(context.Background(), "Remote", api.LaunchDescriptor{URL: "http://localhost/mcp"})
	require.NoError(t, err)

	assert.Equal(t, []string{"stdio:Math", "http:Remote"}, got)
}

package provider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"

	"github.com/3279mitsunaka/mcp-sample/internal/api"
	"github.com/3279mitsunaka/mcp-sample/pkg/logging"
)

// StreamableHTTPLauncher attaches to providers that already run as MCP
// streamable HTTP servers. Nothing is spawned; desc.URL is the endpoint and
// desc.Headers are sent with every request.
type StreamableHTTPLauncher struct {
	// HTTPClient overrides the default HTTP client, e.g. for custom TLS.
	HTTPClient *http.Client
}

func (l StreamableHTTPLauncher) Launch(ctx context.Context, name string, desc api.LaunchDescriptor) (Session, error) {
	if desc.URL == "" {
		return nil, fmt.Errorf("url is required for streamable HTTP providers")
	}

	var opts []transport.StreamableHTTPCOption
	if len(desc.Headers) > 0 {
		opts = append(opts, transport.WithHTTPHeaders(desc.Headers))
	}
	if l.HTTPClient != nil {
		opts = append(opts, transport.WithHTTPBasicClient(l.HTTPClient))
	}

	logging.Debug("Provider", "Attaching %s to %s (%d headers)", name, desc.URL, len(desc.Headers))

	mcpClient, err := client.NewStreamableHttpClient(desc.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create streamable HTTP client: %w", err)
	}
	if err := mcpClient.Start(ctx); err != nil {
		_ = mcpClient.Close()
		return nil, fmt.Errorf("failed to start streamable HTTP client: %w", err)
	}
	return NewSession(name, mcpClient), nil
}

// TransportLauncher picks the transport from the descriptor: remote
// descriptors go to HTTP, everything else to Stdio.
type TransportLauncher struct {
	Stdio Launcher
	HTTP  Launcher
}

// NewTransportLauncher returns a launcher for both stdio and HTTP providers.
func NewTransportLauncher() *TransportLauncher {
	return &TransportLauncher{Stdio: StdioLauncher{}, HTTP: StreamableHTTPLauncher{}}
}

func (l *TransportLauncher) Launch(ctx context.Context, name string, desc api.LaunchDescriptor) (Session, error) {
	if desc.Remote() {
		return l.HTTP.Launch(ctx, name, desc)
	}
	return l.Stdio.Launch(ctx, name, desc)
}

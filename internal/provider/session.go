package provider

import (
	"context"
	"fmt"

	"github.com/3279mitsunaka/mcp-sample/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	// ClientName is reported to providers during the handshake.
	ClientName = "mcphost"
	// ClientVersion is reported to providers during the handshake.
	ClientVersion = "1.0.0"

	// maxCatalogPages bounds tools/list pagination against providers that
	// keep handing out cursors.
	maxCatalogPages = 100
)

// Session is the part of an MCP client session a Connection relies on.
type Session interface {
	// Initialize performs the protocol handshake.
	Initialize(ctx context.Context) error
	// ListTools returns the provider's complete tool catalog.
	ListTools(ctx context.Context) ([]mcp.Tool, error)
	// CallTool invokes a tool and returns the provider's result verbatim.
	CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error)
	// Close releases the transport, terminating the provider process if one was started.
	Close() error
}

// mcpSession adapts an mcp-go client to Session.
type mcpSession struct {
	client   client.MCPClient
	provider string
}

// NewSession wraps an already started mcp-go client.
func NewSession(provider string, c client.MCPClient) Session {
	return &mcpSession{client: c, provider: provider}
}

func (s *mcpSession) Initialize(ctx context.Context) error {
	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    ClientName,
		Version: ClientVersion,
	}
	req.Params.Capabilities = mcp.ClientCapabilities{}

	result, err := s.client.Initialize(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to initialize MCP protocol: %w", err)
	}

	logging.Debug("Provider", "Handshake with %s complete. Server: %s, Version: %s, Protocol: %s",
		s.provider, result.ServerInfo.Name, result.ServerInfo.Version, result.ProtocolVersion)
	if result.Capabilities.Tools == nil {
		logging.Debug("Provider", "Provider %s does not advertise tool support", s.provider)
	}
	return nil
}

func (s *mcpSession) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	var tools []mcp.Tool
	req := mcp.ListToolsRequest{}

	for page := 0; page < maxCatalogPages; page++ {
		result, err := s.client.ListTools(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to list tools: %w", err)
		}
		tools = append(tools, result.Tools...)
		if result.NextCursor == "" {
			return tools, nil
		}
		req.Params.Cursor = result.NextCursor
	}
	return nil, fmt.Errorf("failed to list tools: more than %d pages", maxCatalogPages)
}

func (s *mcpSession) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := s.client.CallTool(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to call tool: %w", err)
	}
	return result, nil
}

func (s *mcpSession) Close() error {
	return s.client.Close()
}

// Package dispatch routes an invocation to the provider that owns the
// capability.
//
// A Dispatcher holds no per-call state: it reads the current registry
// snapshot, finds the owning connection and forwards the call. A failing call
// therefore cannot influence other calls or other connections.
package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/3279mitsunaka/mcp-sample/internal/api"
	"github.com/3279mitsunaka/mcp-sample/internal/registry"
	"github.com/3279mitsunaka/mcp-sample/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

// Invoker is a provider connection as seen by the dispatcher.
type Invoker interface {
	State() api.ConnectionState
	Invoke(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error)
}

// ConnectionLookup finds a connection by provider name.
type ConnectionLookup interface {
	Connection(name string) (Invoker, bool)
}

// SnapshotFunc returns the registry snapshot to resolve against.
type SnapshotFunc func() *registry.Snapshot

// Result is a successful invocation annotated with where it ran.
type Result struct {
	Provider   string
	Capability string
	Payload    *mcp.CallToolResult
}

// IsError reports whether the provider flagged the result as a tool-level error.
func (r *Result) IsError() bool {
	return r.Payload != nil && r.Payload.IsError
}

// Text joins the text blocks of the payload. Non-text blocks are summarized by type.
func (r *Result) Text() string {
	if r.Payload == nil {
		return ""
	}
	parts := make([]string, 0, len(r.Payload.Content))
	for _, content := range r.Payload.Content {
		switch c := content.(type) {
		case mcp.TextContent:
			parts = append(parts, c.Text)
		case *mcp.TextContent:
			parts = append(parts, c.Text)
		case mcp.ImageContent:
			parts = append(parts, fmt.Sprintf("[image %s]", c.MIMEType))
		case mcp.AudioContent:
			parts = append(parts, fmt.Sprintf("[audio %s]", c.MIMEType))
		case mcp.EmbeddedResource:
			parts = append(parts, "[embedded resource]")
		default:
			parts = append(parts, fmt.Sprintf("[%T]", content))
		}
	}
	if len(parts) == 0 && r.Payload.StructuredContent != nil {
		return fmt.Sprintf("%v", r.Payload.StructuredContent)
	}
	return strings.Join(parts, "\n")
}

// Dispatcher resolves capability names and forwards invocations.
type Dispatcher struct {
	snapshot    SnapshotFunc
	connections ConnectionLookup
}

// New creates a dispatcher reading the registry through snapshot.
func New(snapshot SnapshotFunc, connections ConnectionLookup) *Dispatcher {
	return &Dispatcher{snapshot: snapshot, connections: connections}
}

// Dispatch resolves name to its provider and invokes it with args.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]any) (*Result, error) {
	snap := d.snapshot()
	if snap == nil {
		snap = registry.Empty()
	}

	provider, ok := snap.Resolve(name)
	if !ok {
		logging.Debug("Dispatcher", "Capability %s is not registered", name)
		return nil, &api.Error{Kind: api.ErrUnknownCapability, Capability: name}
	}

	conn, ok := d.connections.Connection(provider)
	if !ok {
		return nil, &api.Error{Kind: api.ErrProviderUnavailable, Provider: provider, Capability: name,
			Err: fmt.Errorf("provider %s is not registered", provider)}
	}
	if state := conn.State(); state != api.StateReady {
		logging.Debug("Dispatcher", "Provider %s for %s is %s", provider, name, state)
		return nil, &api.Error{Kind: api.ErrProviderUnavailable, Provider: provider, Capability: name,
			Err: fmt.Errorf("provider is %s", state)}
	}

	if args == nil {
		args = map[string]any{}
	}

	payload, err := conn.Invoke(ctx, name, args)
	if err != nil {
		logging.Error("Dispatcher", err, "Invocation of %s on %s failed", name, provider)
		return nil, annotate(err, provider, name)
	}

	return &Result{Provider: provider, Capability: name, Payload: payload}, nil
}

// annotate fills in provider and capability on api errors, and wraps anything
// else as an upstream error of the resolved provider.
func annotate(err error, provider, capability string) error {
	if apiErr, ok := err.(*api.Error); ok {
		// Closed between the state check and the call.
		if apiErr.Kind == api.ErrNotConnected {
			return &api.Error{Kind: api.ErrProviderUnavailable, Provider: provider, Capability: capability, Op: "call", Err: apiErr}
		}
		cp := *apiErr
		if cp.Provider == "" {
			cp.Provider = provider
		}
		if cp.Capability == "" {
			cp.Capability = capability
		}
		return &cp
	}
	if api.KindOf(err) != nil {
		return fmt.Errorf("provider %s: %w", provider, err)
	}
	return &api.Error{Kind: api.ErrUpstream, Provider: provider, Capability: capability, Op: "call", Err: err}
}

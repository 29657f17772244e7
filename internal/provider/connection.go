package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/3279mitsunaka/mcp-sample/internal/api"
	"github.com/3279mitsunaka/mcp-sample/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	// DefaultConnectTimeout bounds launch, handshake and catalog fetch together.
	DefaultConnectTimeout = 30 * time.Second
	// DefaultInvokeTimeout bounds a single tool invocation.
	DefaultInvokeTimeout = 60 * time.Second
)

// Option configures a Connection.
type Option func(*Connection)

// WithConnectTimeout sets the bound for Connect. Zero or negative disables it.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Connection) { c.connectTimeout = d }
}

// WithInvokeTimeout sets the bound for Invoke. Zero or negative disables it.
func WithInvokeTimeout(d time.Duration) Option {
	return func(c *Connection) { c.invokeTimeout = d }
}

// Connection is the host's handle on one provider.
type Connection struct {
	name           string
	desc           api.LaunchDescriptor
	launcher       Launcher
	connectTimeout time.Duration
	invokeTimeout  time.Duration

	mu      sync.RWMutex
	state   api.ConnectionState
	session Session
	catalog []api.Capability
	lastErr error
}

// NewConnection creates an uninitialized connection. Nothing is started until Connect.
func NewConnection(name string, desc api.LaunchDescriptor, launcher Launcher, opts ...Option) *Connection {
	c := &Connection{
		name:           name,
		desc:           desc.Clone(),
		launcher:       launcher,
		connectTimeout: DefaultConnectTimeout,
		invokeTimeout:  DefaultInvokeTimeout,
		state:          api.StateUninitialized,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the provider name.
func (c *Connection) Name() string { return c.name }

// Descriptor returns a copy of the launch descriptor.
func (c *Connection) Descriptor() api.LaunchDescriptor { return c.desc.Clone() }

// State returns the current lifecycle state.
func (c *Connection) State() api.ConnectionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Catalog returns the capabilities learned at connect time, or nil unless Ready.
func (c *Connection) Catalog() []api.Capability {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state != api.StateReady {
		return nil
	}
	return slices.Clone(c.catalog)
}

// LastError returns the error of the most recent failed Connect, if any.
func (c *Connection) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Connect launches the provider, performs the handshake and fetches the catalog.
// An existing session is closed first, so Connect also serves as reconnect.
// A Closed connection stays closed; Connect on it fails with api.ErrNotConnected.
func (c *Connection) Connect(ctx context.Context) ([]api.Capability, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == api.StateClosed {
		return nil, &api.Error{Kind: api.ErrNotConnected, Provider: c.name, Op: "connect",
			Err: errors.New("connection is closed")}
	}

	if c.session != nil {
		logging.Debug("Provider", "Closing previous session of %s before reconnecting", c.name)
		if err := c.session.Close(); err != nil {
			logging.Warn("Provider", "Error closing previous session of %s: %v", c.name, err)
		}
		c.session = nil
	}
	c.catalog = nil
	c.state = api.StateConnecting

	ctx, cancel := withTimeout(ctx, c.connectTimeout)
	defer cancel()

	session, err := c.launcher.Launch(ctx, c.name, c.desc)
	if err != nil {
		return nil, c.failLocked(ctx, api.ErrLaunchFailure, "launch", err, nil)
	}
	if session == nil {
		return nil, c.failLocked(ctx, api.ErrLaunchFailure, "launch", errors.New("launcher returned no session"), nil)
	}

	if err := session.Initialize(ctx); err != nil {
		return nil, c.failLocked(ctx, api.ErrHandshakeFailure, "initialize", err, session)
	}

	tools, err := session.ListTools(ctx)
	if err != nil {
		return nil, c.failLocked(ctx, api.ErrCatalogFetchFailure, "tools/list", err, session)
	}

	c.session = session
	c.catalog = toCapabilities(tools)
	c.state = api.StateReady
	c.lastErr = nil

	logging.Info("Provider", "Connected to %s with %d capabilities", c.name, len(c.catalog))
	return slices.Clone(c.catalog), nil
}

// failLocked releases a partially created session, moves to Failed and builds the error.
func (c *Connection) failLocked(ctx context.Context, kind error, op string, cause error, session Session) error {
	if session != nil {
		if closeErr := session.Close(); closeErr != nil {
			logging.Debug("Provider", "Error closing failed session of %s: %v", c.name, closeErr)
		}
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(cause, context.DeadlineExceeded) {
		cause = fmt.Errorf("%w (%w)", cause, context.DeadlineExceeded)
	}

	err := api.NewError(kind, c.name, op, cause)
	c.session = nil
	c.catalog = nil
	c.state = api.StateFailed
	c.lastErr = err

	logging.Error("Provider", cause, "Failed to connect to %s during %s", c.name, op)
	return err
}

// Invoke forwards a tool call to the provider. The connection must be Ready.
// A timeout fails the call but leaves the connection Ready.
func (c *Connection) Invoke(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.state != api.StateReady || c.session == nil {
		return nil, &api.Error{
			Kind:       api.ErrNotConnected,
			Provider:   c.name,
			Capability: name,
			Op:         "call",
			Err:        fmt.Errorf("connection is %s", c.state),
		}
	}

	ctx, cancel := withTimeout(ctx, c.invokeTimeout)
	defer cancel()

	start := time.Now()
	result, err := c.session.CallTool(ctx, name, args)
	if err != nil {
		kind := api.ErrUpstream
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = api.ErrTimeout
		}
		return nil, &api.Error{Kind: kind, Provider: c.name, Capability: name, Op: "call", Err: err}
	}
	if result == nil {
		return nil, &api.Error{Kind: api.ErrUpstream, Provider: c.name, Capability: name, Op: "call", Err: errors.New("empty result")}
	}

	logging.Debug("Provider", "Call %s on %s finished in %s (isError=%t)", name, c.name, time.Since(start), result.IsError)
	return result, nil
}

// Close releases the session. It is idempotent and valid from any state.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == api.StateClosed {
		return nil
	}

	var err error
	if c.session != nil {
		err = c.session.Close()
		c.session = nil
	}
	c.catalog = nil
	c.state = api.StateClosed

	if err != nil {
		return fmt.Errorf("failed to close provider %s: %w", c.name, err)
	}
	logging.Debug("Provider", "Closed connection to %s", c.name)
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// toCapabilities converts an MCP tool catalog into capability descriptors,
// keeping the provider's order.
func toCapabilities(tools []mcp.Tool) []api.Capability {
	caps := make([]api.Capability, 0, len(tools))
	for _, tool := range tools {
		caps = append(caps, api.Capability{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: inputSchemaOf(tool),
		})
	}
	return caps
}

func inputSchemaOf(tool mcp.Tool) json.RawMessage {
	if len(tool.RawInputSchema) > 0 {
		return slices.Clone(tool.RawInputSchema)
	}
	raw, err := json.Marshal(tool.InputSchema)
	if err != nil {
		logging.Debug("Provider", "Could not encode input schema of %s: %v", tool.Name, err)
		return nil
	}
	return raw
}

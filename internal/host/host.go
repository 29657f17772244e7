package host

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/3279mitsunaka/mcp-sample/internal/api"
	"github.com/3279mitsunaka/mcp-sample/internal/dispatch"
	"github.com/3279mitsunaka/mcp-sample/internal/provider"
	"github.com/3279mitsunaka/mcp-sample/internal/reasoning"
	"github.com/3279mitsunaka/mcp-sample/internal/registry"
	"github.com/3279mitsunaka/mcp-sample/pkg/logging"
)

// DefaultHistoryLimit is the number of messages kept when no limit is configured.
const DefaultHistoryLimit = 100

// Option configures a Host.
type Option func(*Host)

// WithLauncher sets how providers are started. Defaults to provider.StdioLauncher.
func WithLauncher(l provider.Launcher) Option {
	return func(h *Host) { h.launcher = l }
}

// WithReasoner sets the reasoning component used by Turn. Defaults to the
// directive reasoner.
func WithReasoner(r reasoning.Reasoner) Option {
	return func(h *Host) { h.reasoner = r }
}

// WithConnectionOptions passes options, such as timeouts, to every connection.
func WithConnectionOptions(opts ...provider.Option) Option {
	return func(h *Host) { h.connOpts = append(h.connOpts, opts...) }
}

// WithHistoryLimit bounds the conversation log. Non-positive values select the default.
func WithHistoryLimit(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.historyLimit = n
		}
	}
}

// Host orchestrates the provider connections.
type Host struct {
	launcher     provider.Launcher
	reasoner     reasoning.Reasoner
	connOpts     []provider.Option
	historyLimit int

	mu    sync.RWMutex
	state State
	order []string
	conns map[string]*provider.Connection

	rebuildMu  sync.Mutex
	snapshot   atomic.Pointer[registry.Snapshot]
	dispatcher *dispatch.Dispatcher

	historyMu sync.Mutex
	history   []Message
}

// New creates an Idle host with no providers.
func New(opts ...Option) *Host {
	h := &Host{
		launcher:     provider.StdioLauncher{},
		reasoner:     reasoning.NewDirectiveReasoner(),
		historyLimit: DefaultHistoryLimit,
		conns:        make(map[string]*provider.Connection),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.snapshot.Store(registry.Empty())
	h.dispatcher = dispatch.New(h.Registry, h)
	return h
}

// State returns the current lifecycle state.
func (h *Host) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// AddServer registers a provider. Only valid while Idle.
func (h *Host) AddServer(name string, desc api.LaunchDescriptor) error {
	if name == "" {
		return errors.New("provider name must not be empty")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.requireLocked("add server", StateIdle); err != nil {
		return err
	}
	if _, exists := h.conns[name]; exists {
		return &api.Error{Kind: api.ErrDuplicateProvider, Provider: name, Op: "add server"}
	}

	h.conns[name] = provider.NewConnection(name, desc, h.launcher, h.connOpts...)
	h.order = append(h.order, name)
	logging.Debug("Host", "Registered provider %s (%s)", name, desc.Target())
	return nil
}

// ConnectAll connects every registered provider concurrently. Individual
// failures are reported, never returned; the error is reserved for calling
// ConnectAll in the wrong state or for a Shutdown racing the connect.
func (h *Host) ConnectAll(ctx context.Context) (*ConnectReport, error) {
	h.mu.Lock()
	if err := h.requireLocked("connect", StateIdle); err != nil {
		h.mu.Unlock()
		return nil, err
	}
	h.state = StateConnecting
	conns := h.connectionsLocked()
	h.mu.Unlock()

	logging.Info("Host", "Connecting to %d providers", len(conns))

	var (
		failMu   sync.Mutex
		failures = make(map[string]error)
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, conn := range conns {
		g.Go(func() error {
			caps, err := conn.Connect(gctx)
			if err != nil {
				logging.Warn("Host", "Provider %s failed to connect: %v", conn.Name(), err)
				failMu.Lock()
				failures[conn.Name()] = err
				failMu.Unlock()
				return nil
			}
			logging.Info("Host", "Provider %s ready with %d capabilities", conn.Name(), len(caps))
			return nil
		})
	}
	_ = g.Wait()

	snap := h.rebuild()

	report := &ConnectReport{
		Failures:     failures,
		Collisions:   snap.Collisions(),
		Capabilities: snap.Len(),
	}
	for _, conn := range conns {
		if conn.State() == api.StateReady {
			report.Connected = append(report.Connected, conn.Name())
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != StateConnecting {
		// Shutdown started while connecting.
		return report, &api.Error{Kind: api.ErrHostClosed, Op: "connect"}
	}
	h.state = StateRunning

	logging.Info("Host", "Connected %d/%d providers, %d capabilities", len(report.Connected), len(conns), report.Capabilities)
	return report, nil
}

// Registry returns the current capability snapshot.
func (h *Host) Registry() *registry.Snapshot {
	return h.snapshot.Load()
}

// Capabilities lists the registry entries in rebuild order.
func (h *Host) Capabilities() []registry.Entry {
	return h.Registry().List()
}

// Connection implements dispatch.ConnectionLookup.
func (h *Host) Connection(name string) (dispatch.Invoker, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conn, ok := h.conns[name]
	if !ok {
		return nil, false
	}
	return conn, true
}

// Dispatch invokes the named capability on the provider that owns it.
func (h *Host) Dispatch(ctx context.Context, name string, args map[string]any) (*dispatch.Result, error) {
	if err := h.require("dispatch", StateRunning); err != nil {
		return nil, err
	}
	return h.dispatcher.Dispatch(ctx, name, args)
}

// Reconnect restarts one provider and rebuilds the registry. A provider closed
// by Disconnect gets a fresh connection with the same descriptor.
func (h *Host) Reconnect(ctx context.Context, name string) ([]api.Capability, error) {
	conn, err := h.reopenConnection(name)
	if err != nil {
		return nil, err
	}

	caps, err := conn.Connect(ctx)
	h.rebuild()
	if err != nil {
		logging.Warn("Host", "Reconnect of %s failed: %v", name, err)
		return nil, err
	}
	logging.Info("Host", "Provider %s reconnected with %d capabilities", name, len(caps))
	return caps, nil
}

// Disconnect closes one provider and drops its capabilities from the registry.
func (h *Host) Disconnect(name string) error {
	conn, err := h.runningConnection("disconnect", name)
	if err != nil {
		return err
	}

	closeErr := conn.Close()
	h.rebuild()
	if closeErr != nil {
		return closeErr
	}
	logging.Info("Host", "Provider %s disconnected", name)
	return nil
}

// Providers reports every registered provider in registration order.
func (h *Host) Providers() []ProviderStatus {
	h.mu.RLock()
	conns := h.connectionsLocked()
	h.mu.RUnlock()

	out := make([]ProviderStatus, 0, len(conns))
	for _, conn := range conns {
		out = append(out, ProviderStatus{
			Name:         conn.Name(),
			Target:       conn.Descriptor().Target(),
			State:        conn.State(),
			Capabilities: len(conn.Catalog()),
			LastError:    conn.LastError(),
		})
	}
	return out
}

// Shutdown closes every connection regardless of its state. Close failures
// are collected, not returned early. Calling Shutdown again is a no-op that
// returns an empty report.
func (h *Host) Shutdown(ctx context.Context) *ShutdownReport {
	report := &ShutdownReport{Failures: make(map[string]error)}

	h.mu.Lock()
	if h.state == StateShuttingDown || h.state == StateClosed {
		h.mu.Unlock()
		return report
	}
	h.state = StateShuttingDown
	conns := h.connectionsLocked()
	h.mu.Unlock()

	logging.Info("Host", "Shutting down %d providers", len(conns))

	type closeResult struct {
		name string
		err  error
	}
	results := make(chan closeResult, len(conns))
	for _, conn := range conns {
		go func() {
			results <- closeResult{name: conn.Name(), err: conn.Close()}
		}()
	}

	pending := make(map[string]struct{}, len(conns))
	for _, conn := range conns {
		pending[conn.Name()] = struct{}{}
	}
	for len(pending) > 0 {
		select {
		case res := <-results:
			delete(pending, res.name)
			if res.err != nil {
				logging.Error("Host", res.err, "Failed to close provider %s", res.name)
				report.Failures[res.name] = res.err
			} else {
				report.Closed = append(report.Closed, res.name)
			}
		case <-ctx.Done():
			for name := range pending {
				report.Failures[name] = fmt.Errorf("close of provider %s abandoned: %w", name, ctx.Err())
			}
			pending = nil
		}
	}
	h.sortClosed(report)

	// Under rebuildMu so a rebuild still running for ConnectAll cannot
	// publish a snapshot after this one.
	h.rebuildMu.Lock()
	h.snapshot.Store(registry.Empty())
	h.mu.Lock()
	h.state = StateClosed
	h.mu.Unlock()
	h.rebuildMu.Unlock()

	logging.Info("Host", "Shutdown complete (%d closed, %d failed)", len(report.Closed), len(report.Failures))
	return report
}

// rebuild recomputes the registry from the current connection states.
func (h *Host) rebuild() *registry.Snapshot {
	h.rebuildMu.Lock()
	defer h.rebuildMu.Unlock()

	h.mu.RLock()
	closed := h.state == StateClosed
	conns := h.connectionsLocked()
	h.mu.RUnlock()
	if closed {
		return registry.Empty()
	}

	sources := make([]registry.Source, 0, len(conns))
	for _, conn := range conns {
		sources = append(sources, conn)
	}
	snap := registry.Rebuild(sources)
	h.snapshot.Store(snap)
	return snap
}

func (h *Host) runningConnection(op, name string) (*provider.Connection, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if err := h.requireLocked(op, StateRunning); err != nil {
		return nil, err
	}
	conn, ok := h.conns[name]
	if !ok {
		return nil, &api.Error{Kind: api.ErrProviderUnavailable, Provider: name, Op: op,
			Err: fmt.Errorf("provider %s is not registered", name)}
	}
	return conn, nil
}

// reopenConnection returns the running connection for name, replacing it when
// it has been closed.
func (h *Host) reopenConnection(name string) (*provider.Connection, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.requireLocked("reconnect", StateRunning); err != nil {
		return nil, err
	}
	conn, ok := h.conns[name]
	if !ok {
		return nil, &api.Error{Kind: api.ErrProviderUnavailable, Provider: name, Op: "reconnect",
			Err: fmt.Errorf("provider %s is not registered", name)}
	}
	if conn.State() == api.StateClosed {
		conn = provider.NewConnection(name, conn.Descriptor(), h.launcher, h.connOpts...)
		h.conns[name] = conn
	}
	return conn, nil
}

// connectionsLocked returns the connections in registration order.
func (h *Host) connectionsLocked() []*provider.Connection {
	out := make([]*provider.Connection, 0, len(h.order))
	for _, name := range h.order {
		out = append(out, h.conns[name])
	}
	return out
}

func (h *Host) require(op string, want State) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.requireLocked(op, want)
}

func (h *Host) requireLocked(op string, want State) error {
	switch h.state {
	case want:
		return nil
	case StateShuttingDown, StateClosed:
		return &api.Error{Kind: api.ErrHostClosed, Op: op}
	default:
		return &api.Error{Kind: api.ErrInvalidState, Op: op,
			Err: fmt.Errorf("host is %s, want %s", h.state, want)}
	}
}

// sortClosed orders the closed list by registration order.
func (h *Host) sortClosed(report *ShutdownReport) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	sort.SliceStable(report.Closed, func(i, j int) bool {
		return slices.Index(h.order, report.Closed[i]) < slices.Index(h.order, report.Closed[j])
	})
}

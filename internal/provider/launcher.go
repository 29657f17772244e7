package provider

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/3279mitsunaka/mcp-sample/internal/api"
	"github.com/3279mitsunaka/mcp-sample/pkg/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/server"
)

// Launcher starts or attaches to a provider and returns an unhandshaken Session.
type Launcher interface {
	Launch(ctx context.Context, name string, desc api.LaunchDescriptor) (Session, error)
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context, name string, desc api.LaunchDescriptor) (Session, error)

func (f LauncherFunc) Launch(ctx context.Context, name string, desc api.LaunchDescriptor) (Session, error) {
	return f(ctx, name, desc)
}

// StdioLauncher starts providers as subprocesses speaking MCP over stdin/stdout.
type StdioLauncher struct{}

// Launch starts the subprocess described by desc. The process inherits the
// host environment plus desc.Env.
func (StdioLauncher) Launch(ctx context.Context, name string, desc api.LaunchDescriptor) (Session, error) {
	if desc.Command == "" {
		return nil, fmt.Errorf("command is required for stdio providers")
	}

	envStrings := make([]string, 0, len(desc.Env))
	for k, v := range desc.Env {
		envStrings = append(envStrings, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(envStrings)

	logging.Debug("Provider", "Launching %s: %s %v", name, desc.Command, desc.Args)

	mcpClient, err := client.NewStdioMCPClient(desc.Command, envStrings, desc.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", desc.Command, err)
	}

	if stderr, ok := client.GetStderr(mcpClient); ok {
		go drainStderr(name, stderr)
	}

	return NewSession(name, mcpClient), nil
}

// drainStderr forwards provider stderr to debug logs so the pipe never fills up.
func drainStderr(name string, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		logging.Debug("Provider", "[%s stderr] %s", name, scanner.Text())
	}
}

// InProcessLauncher attaches to mcp-go servers running inside this process.
// The descriptor's Command selects the server by the key it was registered under.
type InProcessLauncher struct {
	mu      sync.RWMutex
	servers map[string]*server.MCPServer
}

// NewInProcessLauncher creates an empty in-process launcher.
func NewInProcessLauncher() *InProcessLauncher {
	return &InProcessLauncher{servers: make(map[string]*server.MCPServer)}
}

// Register makes srv reachable under key.
func (l *InProcessLauncher) Register(key string, srv *server.MCPServer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.servers[key] = srv
}

func (l *InProcessLauncher) Launch(ctx context.Context, name string, desc api.LaunchDescriptor) (Session, error) {
	l.mu.RLock()
	srv, ok := l.servers[desc.Command]
	l.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no in-process server registered as %q", desc.Command)
	}

	mcpClient, err := client.NewInProcessClient(srv)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-process client: %w", err)
	}
	if err := mcpClient.Start(ctx); err != nil {
		_ = mcpClient.Close()
		return nil, fmt.Errorf("failed to start in-process client: %w", err)
	}

	logging.Debug("Provider", "Attached %s to in-process server %s", name, desc.Command)
	return NewSession(name, mcpClient), nil
}

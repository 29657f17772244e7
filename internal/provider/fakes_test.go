package provider

import (
	"context"
	"errors"
	"sync"

	"github.com/3279mitsunaka/mcp-sample/internal/api"

	"github.com/mark3labs/mcp-go/mcp"
)

// fakeSession is a scriptable Session for failure injection.
type fakeSession struct {
	initErr  error
	listErr  error
	tools    []mcp.Tool
	callFn   func(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error)
	closeErr error
	block    bool // Initialize blocks until ctx is done

	mu     sync.Mutex
	closed int
}

func (f *fakeSession) Initialize(ctx context.Context) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.initErr
}

func (f *fakeSession) ListTools(ctx context.Context) ([]mcp.Tool, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tools, nil
}

func (f *fakeSession) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	if f.callFn != nil {
		return f.callFn(ctx, name, args)
	}
	return mcp.NewToolResultText("ok"), nil
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return f.closeErr
}

func (f *fakeSession) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// sessionLauncher hands out the given sessions in order.
func sessionLauncher(sessions ...*fakeSession) Launcher {
	var mu sync.Mutex
	return LauncherFunc(func(ctx context.Context, name string, desc api.LaunchDescriptor) (Session, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(sessions) == 0 {
			return nil, errors.New("no more sessions")
		}
		s := sessions[0]
		sessions = sessions[1:]
		return s, nil
	})
}

func tools(names ...string) []mcp.Tool {
	out := make([]mcp.Tool, 0, len(names))
	for _, n := range names {
		out = append(out, mcp.NewTool(n, mcp.WithDescription(n+" tool")))
	}
	return out
}

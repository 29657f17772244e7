package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/3279mitsunaka/mcp-sample/internal/api"
	"github.com/3279mitsunaka/mcp-sample/internal/registry"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	name    string
	state   atomic.Int32
	catalog []api.Capability
	invoke  func(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error)
	calls   atomic.Int32
}

func newFakeConn(name string, caps ...string) *fakeConn {
	c := &fakeConn{name: name}
	c.state.Store(int32(api.StateReady))
	for _, n := range caps {
		c.catalog = append(c.catalog, api.Capability{Name: n})
	}
	return c
}

func (c *fakeConn) Name() string { return c.name }
func (c *fakeConn) State() api.ConnectionState {
	return api.ConnectionState(c.state.Load())
}
func (c *fakeConn) Catalog() []api.Capability { return c.catalog }
func (c *fakeConn) Invoke(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	c.calls.Add(1)
	if c.invoke != nil {
		return c.invoke(ctx, name, args)
	}
	return mcp.NewToolResultText(c.name + ":" + name), nil
}

type lookup map[string]*fakeConn

func (l lookup) Connection(name string) (Invoker, bool) {
	c, ok := l[name]
	if !ok {
		return nil, false
	}
	return c, true
}

func setup(conns ...*fakeConn) (*Dispatcher, lookup) {
	l := lookup{}
	sources := make([]registry.Source, 0, len(conns))
	for _, c := range conns {
		l[c.name] = c
		sources = append(sources, c)
	}
	snap := registry.Rebuild(sources)
	return New(func() *registry.Snapshot { return snap }, l), l
}

func TestDispatch_RoutesToOwner(t *testing.T) {
	d, _ := setup(newFakeConn("Math", "add", "multiply"), newFakeConn("CAD", "draw_cylinder"))

	res, err := d.Dispatch(context.Background(), "draw_cylinder", map[string]any{"radius": 1})
	require.NoError(t, err)
	assert.Equal(t, "CAD", res.Provider)
	assert.Equal(t, "draw_cylinder", res.Capability)
	assert.Equal(t, "CAD:draw_cylinder", res.Text())
	assert.False(t, res.IsError())
}

func TestDispatch_UnknownCapability(t *testing.T) {
	math := newFakeConn("Math", "add")
	d, _ := setup(math)

	_, err := d.Dispatch(context.Background(), "draw_square", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnknownCapability)
	assert.Contains(t, err.Error(), "draw_square")
	assert.Equal(t, api.StateReady, math.State())
	assert.Zero(t, math.calls.Load())
}

func TestDispatch_ProviderUnavailable(t *testing.T) {
	for _, state := range []api.ConnectionState{api.StateFailed, api.StateClosed, api.StateConnecting} {
		t.Run(state.String(), func(t *testing.T) {
			cad := newFakeConn("CAD", "draw_cylinder")
			d, _ := setup(cad)

			// The provider drops out after the snapshot was taken.
			cad.state.Store(int32(state))

			_, err := d.Dispatch(context.Background(), "draw_cylinder", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, api.ErrProviderUnavailable)

			var apiErr *api.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, "CAD", apiErr.Provider)
			assert.Zero(t, cad.calls.Load())
		})
	}
}

func TestDispatch_ProviderMissingFromLookup(t *testing.T) {
	cad := newFakeConn("CAD", "draw_cylinder")
	d, l := setup(cad)
	delete(l, "CAD")

	_, err := d.Dispatch(context.Background(), "draw_cylinder", nil)
	assert.ErrorIs(t, err, api.ErrProviderUnavailable)
}

func TestDispatch_AnnotatesInvokeErrors(t *testing.T) {
	math := newFakeConn("Math", "add")
	math.invoke = func(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
		return nil, &api.Error{Kind: api.ErrTimeout, Op: "call", Err: context.DeadlineExceeded}
	}
	d, _ := setup(math)

	_, err := d.Dispatch(context.Background(), "add", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrTimeout)

	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Math", apiErr.Provider)
	assert.Equal(t, "add", apiErr.Capability)
}

func TestDispatch_ClosedDuringCall(t *testing.T) {
	math := newFakeConn("Math", "add")
	math.invoke = func(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
		return nil, &api.Error{Kind: api.ErrNotConnected, Provider: "Math", Op: "call"}
	}
	d, _ := setup(math)

	_, err := d.Dispatch(context.Background(), "add", nil)
	assert.ErrorIs(t, err, api.ErrProviderUnavailable)
	assert.ErrorIs(t, err, api.ErrNotConnected)
}

func TestDispatch_WrapsForeignErrors(t *testing.T) {
	math := newFakeConn("Math", "add")
	cause := errors.New("boom")
	math.invoke = func(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
		return nil, cause
	}
	d, _ := setup(math)

	_, err := d.Dispatch(context.Background(), "add", nil)
	assert.ErrorIs(t, err, api.ErrUpstream)
	assert.ErrorIs(t, err, cause)
}

func TestDispatch_NilArgumentsBecomeEmptyMap(t *testing.T) {
	math := newFakeConn("Math", "ping")
	var got map[string]any
	math.invoke = func(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
		got = args
		return mcp.NewToolResultText("pong"), nil
	}
	d, _ := setup(math)

	_, err := d.Dispatch(context.Background(), "ping", nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestDispatch_FailureIsolation(t *testing.T) {
	bad := newFakeConn("Bad", "explode")
	bad.invoke = func(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
		return nil, errors.New("provider crashed")
	}
	good := newFakeConn("Good", "echo")
	d, _ := setup(bad, good)

	var wg sync.WaitGroup
	var goodOK, badFail atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := d.Dispatch(context.Background(), "explode", nil); err != nil {
				badFail.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			if res, err := d.Dispatch(context.Background(), "echo", nil); err == nil && res.Text() == "Good:echo" {
				goodOK.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(20), goodOK.Load())
	assert.Equal(t, int32(20), badFail.Load())
	assert.Equal(t, api.StateReady, good.State())
	assert.Equal(t, api.StateReady, bad.State())
}

func TestDispatch_NilSnapshot(t *testing.T) {
	d := New(func() *registry.Snapshot { return nil }, lookup{})
	_, err := d.Dispatch(context.Background(), "add", nil)
	assert.ErrorIs(t, err, api.ErrUnknownCapability)
}

func TestResult_Text(t *testing.T) {
	res := &Result{Payload: &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent("line one"),
			mcp.NewImageContent("aGVsbG8=", "image/png"),
			mcp.NewTextContent("line two"),
		},
	}}
	assert.Equal(t, "line one\n[image image/png]\nline two", res.Text())

	errRes := &Result{Payload: mcp.NewToolResultError("bad input")}
	assert.True(t, errRes.IsError())
	assert.Equal(t, "bad input", errRes.Text())

	assert.Equal(t, "", (&Result{}).Text())
}

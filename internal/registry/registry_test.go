package registry

import (
	"testing"

	"github.com/3279mitsunaka/mcp-sample/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	name    string
	state   api.ConnectionState
	catalog []api.Capability
}

func (s *staticSource) Name() string               { return s.name }
func (s *staticSource) State() api.ConnectionState { return s.state }
func (s *staticSource) Catalog() []api.Capability  { return s.catalog }

func ready(name string, caps ...string) *staticSource {
	src := &staticSource{name: name, state: api.StateReady}
	for _, c := range caps {
		src.catalog = append(src.catalog, api.Capability{Name: c, Description: c + " from " + name})
	}
	return src
}

func pairs(s *Snapshot) [][2]string {
	var out [][2]string
	for _, e := range s.List() {
		out = append(out, [2]string{e.Capability.Name, e.Provider})
	}
	return out
}

func TestRebuild_OrderAndResolve(t *testing.T) {
	s := Rebuild([]Source{
		ready("Math", "add", "multiply"),
		ready("CAD", "draw_cylinder"),
	})

	assert.Equal(t, [][2]string{
		{"add", "Math"},
		{"multiply", "Math"},
		{"draw_cylinder", "CAD"},
	}, pairs(s))
	assert.Equal(t, 3, s.Len())
	assert.Empty(t, s.Collisions())

	provider, ok := s.Resolve("draw_cylinder")
	require.True(t, ok)
	assert.Equal(t, "CAD", provider)

	_, ok = s.Resolve("draw_square")
	assert.False(t, ok)
}

func TestRebuild_FirstRegisteredWins(t *testing.T) {
	tests := []struct {
		name       string
		sources    []Source
		wantOwner  string
		collisions []Collision
	}{
		{
			name:      "A before B",
			sources:   []Source{ready("A", "x", "y"), ready("B", "x", "z")},
			wantOwner: "A",
			collisions: []Collision{
				{Capability: "x", Winner: "A", Shadowed: "B"},
			},
		},
		{
			name:      "B before A",
			sources:   []Source{ready("B", "x", "z"), ready("A", "x", "y")},
			wantOwner: "B",
			collisions: []Collision{
				{Capability: "x", Winner: "B", Shadowed: "A"},
			},
		},
		{
			name:      "three providers",
			sources:   []Source{ready("A", "x"), ready("B", "x"), ready("C", "x", "w")},
			wantOwner: "A",
			collisions: []Collision{
				{Capability: "x", Winner: "A", Shadowed: "B"},
				{Capability: "x", Winner: "A", Shadowed: "C"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Rebuild(tt.sources)

			owner, ok := s.Resolve("x")
			require.True(t, ok)
			assert.Equal(t, tt.wantOwner, owner)
			assert.Equal(t, tt.collisions, s.Collisions())

			for _, e := range s.List() {
				if e.Capability.Name == "x" {
					assert.Equal(t, "x from "+tt.wantOwner, e.Capability.Description)
				}
			}
		})
	}
}

func TestRebuild_SkipsNonReady(t *testing.T) {
	failed := ready("Broken", "add")
	failed.state = api.StateFailed
	closed := ready("Gone", "draw_cylinder")
	closed.state = api.StateClosed

	s := Rebuild([]Source{failed, ready("Math", "add"), closed})

	owner, ok := s.Resolve("add")
	require.True(t, ok)
	assert.Equal(t, "Math", owner)
	_, ok = s.Resolve("draw_cylinder")
	assert.False(t, ok)
	assert.Empty(t, s.Collisions(), "non-Ready sources never collide")
}

func TestRebuild_Deterministic(t *testing.T) {
	sources := []Source{ready("A", "x", "y"), ready("B", "y", "z"), ready("C", "z", "x")}

	first := Rebuild(sources)
	for i := 0; i < 10; i++ {
		again := Rebuild(sources)
		assert.Equal(t, pairs(first), pairs(again))
		assert.Equal(t, first.Collisions(), again.Collisions())
	}
}

func TestSnapshot_IsImmutable(t *testing.T) {
	s := Rebuild([]Source{ready("Math", "add")})

	list := s.List()
	list[0].Provider = "Tampered"
	caps := s.Capabilities()
	caps[0].Name = "tampered"

	owner, _ := s.Resolve("add")
	assert.Equal(t, "Math", owner)
	assert.Equal(t, "add", s.List()[0].Capability.Name)
}

func TestEmpty(t *testing.T) {
	s := Empty()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.List())
	assert.Empty(t, s.Capabilities())
	_, ok := s.Resolve("anything")
	assert.False(t, ok)
}

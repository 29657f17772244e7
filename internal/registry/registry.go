// Package registry merges the capability catalogs of all Ready providers into
// a single name → provider mapping.
//
// A Snapshot is built in one pass by Rebuild and never modified afterwards.
// When the set of Ready connections changes the host builds a new Snapshot and
// swaps it in; entries of a disconnected provider therefore cannot linger.
//
// Name collisions are resolved first-registered-wins in the order the sources
// are supplied. Every later registration of an already taken name is kept out
// of the mapping and reported as a Collision.
package registry

import (
	"slices"

	"github.com/3279mitsunaka/mcp-sample/internal/api"
	"github.com/3279mitsunaka/mcp-sample/pkg/logging"
)

// Source is a provider whose catalog can be merged into a Snapshot.
type Source interface {
	Name() string
	State() api.ConnectionState
	Catalog() []api.Capability
}

// Entry is one capability together with the provider serving it.
type Entry struct {
	Capability api.Capability
	Provider   string
}

// Collision records a capability name offered by more than one provider.
type Collision struct {
	Capability string
	Winner     string // provider that owns the name
	Shadowed   string // provider whose capability was ignored
}

// Snapshot is an immutable view of the merged catalogs.
type Snapshot struct {
	entries    []Entry
	index      map[string]int
	collisions []Collision
}

// Empty returns a snapshot with no capabilities.
func Empty() *Snapshot {
	return &Snapshot{index: map[string]int{}}
}

// Rebuild merges the catalogs of every Ready source, in the given order.
func Rebuild(sources []Source) *Snapshot {
	s := &Snapshot{index: make(map[string]int)}

	for _, src := range sources {
		if src.State() != api.StateReady {
			logging.Debug("Registry", "Skipping %s (%s)", src.Name(), src.State())
			continue
		}
		provider := src.Name()
		for _, capability := range src.Catalog() {
			if idx, taken := s.index[capability.Name]; taken {
				c := Collision{
					Capability: capability.Name,
					Winner:     s.entries[idx].Provider,
					Shadowed:   provider,
				}
				s.collisions = append(s.collisions, c)
				logging.Warn("Registry", "Capability %s from %s is shadowed by %s", c.Capability, c.Shadowed, c.Winner)
				continue
			}
			s.index[capability.Name] = len(s.entries)
			s.entries = append(s.entries, Entry{Capability: capability, Provider: provider})
		}
	}

	logging.Debug("Registry", "Rebuilt registry with %d capabilities and %d collisions", len(s.entries), len(s.collisions))
	return s
}

// Resolve returns the provider owning the named capability.
func (s *Snapshot) Resolve(name string) (string, bool) {
	idx, ok := s.index[name]
	if !ok {
		return "", false
	}
	return s.entries[idx].Provider, true
}

// List returns all entries in rebuild order.
func (s *Snapshot) List() []Entry {
	return slices.Clone(s.entries)
}

// Capabilities returns the capability descriptors in rebuild order.
func (s *Snapshot) Capabilities() []api.Capability {
	out := make([]api.Capability, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Capability)
	}
	return out
}

// Collisions returns the collisions found while building the snapshot.
func (s *Snapshot) Collisions() []Collision {
	return slices.Clone(s.collisions)
}

// Len returns the number of addressable capabilities.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

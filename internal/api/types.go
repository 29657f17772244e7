package api

import (
	"encoding/json"
	"maps"
	"slices"
)

// Capability describes a single tool exposed by a provider.
// InputSchema is the provider's JSON schema, carried through unvalidated.
type Capability struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty" yaml:"-"`
}

// LaunchDescriptor is everything needed to reach a provider: a subprocess
// (Command, Args, Env) or, when URL is set, a streamable HTTP endpoint.
type LaunchDescriptor struct {
	Command string            `json:"command,omitempty" yaml:"command,omitempty"`
	Args    []string          `json:"args,omitempty" yaml:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
	URL     string            `json:"url,omitempty" yaml:"url,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// Remote reports whether the provider is reached over HTTP.
func (d LaunchDescriptor) Remote() bool {
	return d.URL != ""
}

// Target is a short human-readable description of where the provider runs.
func (d LaunchDescriptor) Target() string {
	if d.Remote() {
		return d.URL
	}
	return d.Command
}

// Clone returns a deep copy so callers cannot mutate a descriptor owned by a connection.
func (d LaunchDescriptor) Clone() LaunchDescriptor {
	return LaunchDescriptor{
		Command: d.Command,
		Args:    slices.Clone(d.Args),
		Env:     maps.Clone(d.Env),
		URL:     d.URL,
		Headers: maps.Clone(d.Headers),
	}
}

// ConnectionState is the lifecycle state of a single provider connection.
type ConnectionState int

const (
	StateUninitialized ConnectionState = iota
	StateConnecting
	StateReady
	StateFailed
	StateClosed
)

func (s ConnectionState) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateConnecting:
		return "Connecting"
	case StateReady:
		return "Ready"
	case StateFailed:
		return "Failed"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

package host

import (
	"errors"
	"sort"
	"time"

	"github.com/3279mitsunaka/mcp-sample/internal/api"
	"github.com/3279mitsunaka/mcp-sample/internal/registry"
)

// State is the lifecycle state of the host.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateRunning
	StateShuttingDown
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateConnecting:
		return "Connecting"
	case StateRunning:
		return "Running"
	case StateShuttingDown:
		return "ShuttingDown"
	case StateClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// ConnectReport summarizes ConnectAll.
type ConnectReport struct {
	// Connected lists the providers that reached Ready, in registration order.
	Connected []string
	// Failures maps each provider that did not connect to its error.
	Failures map[string]error
	// Collisions lists capability names offered by more than one provider.
	Collisions []registry.Collision
	// Capabilities is the number of capabilities in the resulting registry.
	Capabilities int
}

// ShutdownReport summarizes Shutdown.
type ShutdownReport struct {
	Closed   []string
	Failures map[string]error
}

// Err returns nil when every connection closed cleanly.
func (r *ShutdownReport) Err() error {
	if r == nil || len(r.Failures) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.Failures))
	for name := range r.Failures {
		names = append(names, name)
	}
	sort.Strings(names)

	errs := make([]error, 0, len(names))
	for _, name := range names {
		errs = append(errs, r.Failures[name])
	}
	return errors.Join(errs...)
}

// ProviderStatus describes one registered provider.
type ProviderStatus struct {
	Name         string
	Target       string // command or URL
	State        api.ConnectionState
	Capabilities int
	LastError    error
}

// Role tags a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of the conversation log.
type Message struct {
	ID      string
	Role    Role
	Content string
	Time    time.Time
}

package reasoning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/3279mitsunaka/mcp-sample/internal/api"
)

// DirectiveReasoner maps input of the form
//
//	<capability> key=value key=value
//	<capability> {"key": value}
//	call <capability> ...
//
// to an Invocation when <capability> is currently available. Anything else
// yields a Text explaining what can be called.
type DirectiveReasoner struct{}

// NewDirectiveReasoner returns the deterministic, model-free reasoner.
func NewDirectiveReasoner() *DirectiveReasoner {
	return &DirectiveReasoner{}
}

func (r *DirectiveReasoner) Decide(ctx context.Context, req Request) (Outcome, error) {
	input := strings.TrimSpace(req.Utterance)
	if input == "" {
		return Text{Content: "Say something, or name a capability to call."}, nil
	}

	name, rest := splitFirst(input)
	if strings.EqualFold(name, "call") && rest != "" {
		name, rest = splitFirst(rest)
	}

	if !hasCapability(req.Capabilities, name) {
		return Text{Content: noMatchText(name, req.Capabilities)}, nil
	}

	args, err := ParseArguments(rest)
	if err != nil {
		return Text{Content: fmt.Sprintf("Could not read the arguments for %s: %v", name, err)}, nil
	}
	return Invocation{Capability: name, Arguments: args}, nil
}

// ParseArguments reads either a JSON object or whitespace separated key=value
// pairs. Values that parse as JSON keep their JSON type; others stay strings.
func ParseArguments(s string) (map[string]any, error) {
	s = strings.TrimSpace(s)
	args := map[string]any{}
	if s == "" {
		return args, nil
	}

	if strings.HasPrefix(s, "{") {
		if err := json.Unmarshal([]byte(s), &args); err != nil {
			return nil, fmt.Errorf("invalid JSON arguments: %w", err)
		}
		return args, nil
	}

	for _, field := range strings.Fields(s) {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", field)
		}
		args[key] = decodeValue(value)
	}
	return args, nil
}

func decodeValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}

func splitFirst(s string) (string, string) {
	s = strings.TrimSpace(s)
	idx := strings.IndexAny(s, " \t")
	if idx < 0 {
		return s, ""
	}
	return s[:idx], strings.TrimSpace(s[idx+1:])
}

func hasCapability(caps []api.Capability, name string) bool {
	for _, c := range caps {
		if c.Name == name {
			return true
		}
	}
	return false
}

func noMatchText(name string, caps []api.Capability) string {
	if len(caps) == 0 {
		return "No capabilities are available right now."
	}
	names := make([]string, 0, len(caps))
	for _, c := range caps {
		names = append(names, c.Name)
	}
	return fmt.Sprintf("I don't know how to %q. Available capabilities: %s", name, strings.Join(names, ", "))
}

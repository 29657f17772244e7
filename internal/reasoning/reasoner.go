package reasoning

import (
	"context"
	"fmt"

	"github.com/3279mitsunaka/mcp-sample/internal/api"
)

// Role tags a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of the conversation history handed to a Reasoner.
type Message struct {
	Role    Role
	Content string
}

// Request is the input of a reasoning turn.
type Request struct {
	Utterance    string
	Capabilities []api.Capability
	History      []Message
}

// Outcome is the sealed result of a reasoning turn: Text or Invocation.
type Outcome interface {
	isOutcome()
	fmt.Stringer
}

// Text is a final textual answer.
type Text struct {
	Content string
}

// Invocation asks the host to call a capability.
type Invocation struct {
	Capability string
	Arguments  map[string]any
}

func (Text) isOutcome()       {}
func (Invocation) isOutcome() {}

func (t Text) String() string { return "text: " + t.Content }

func (i Invocation) String() string {
	return fmt.Sprintf("invocation: %s %v", i.Capability, i.Arguments)
}

// Reasoner decides how to answer an utterance.
type Reasoner interface {
	Decide(ctx context.Context, req Request) (Outcome, error)
}

// Func adapts a function to Reasoner.
type Func func(ctx context.Context, req Request) (Outcome, error)

func (f Func) Decide(ctx context.Context, req Request) (Outcome, error) {
	return f(ctx, req)
}

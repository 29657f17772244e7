package host

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/3279mitsunaka/mcp-sample/internal/dispatch"
	"github.com/3279mitsunaka/mcp-sample/internal/reasoning"
	"github.com/3279mitsunaka/mcp-sample/pkg/logging"
)

// TurnResult is the outcome of one conversational turn.
type TurnResult struct {
	ID      string
	Outcome reasoning.Outcome
	// Reply is the assistant text for a Text outcome.
	Reply string
	// Result and Err are set for an Invocation outcome; exactly one is non-nil.
	Result *dispatch.Result
	Err    error
}

// Turn handles one utterance: the reasoner decides, and an Invocation is
// dispatched exactly once. The tool result is recorded in the history but not
// fed back to the reasoner within the same turn. Dispatch failures are
// reported in the TurnResult; only reasoner failures and calls in the wrong
// state return an error.
func (h *Host) Turn(ctx context.Context, utterance string) (*TurnResult, error) {
	if err := h.require("turn", StateRunning); err != nil {
		return nil, err
	}

	turnID := uuid.NewString()
	h.record(RoleUser, utterance)

	outcome, err := h.reasoner.Decide(ctx, reasoning.Request{
		Utterance:    utterance,
		Capabilities: h.Registry().Capabilities(),
		History:      h.reasoningHistory(),
	})
	if err != nil {
		logging.Error("Host", err, "Reasoner failed for turn %s", turnID)
		return nil, fmt.Errorf("failed to decide on turn: %w", err)
	}

	result := &TurnResult{ID: turnID, Outcome: outcome}
	switch o := outcome.(type) {
	case reasoning.Text:
		result.Reply = o.Content
		h.record(RoleAssistant, o.Content)

	case reasoning.Invocation:
		logging.Debug("Host", "Turn %s invokes %s", turnID, o.Capability)
		res, err := h.Dispatch(ctx, o.Capability, o.Arguments)
		if err != nil {
			result.Err = err
			h.record(RoleTool, err.Error())
		} else {
			result.Result = res
			h.record(RoleTool, res.Text())
		}

	default:
		return nil, fmt.Errorf("reasoner returned unsupported outcome %T", outcome)
	}

	return result, nil
}

// History returns a copy of the conversation log, oldest first.
func (h *Host) History() []Message {
	h.historyMu.Lock()
	defer h.historyMu.Unlock()
	return slices.Clone(h.history)
}

func (h *Host) record(role Role, content string) {
	h.historyMu.Lock()
	defer h.historyMu.Unlock()

	h.history = append(h.history, Message{
		ID:      uuid.NewString(),
		Role:    role,
		Content: content,
		Time:    time.Now(),
	})
	if over := len(h.history) - h.historyLimit; over > 0 {
		h.history = slices.Delete(h.history, 0, over)
	}
}

func (h *Host) reasoningHistory() []reasoning.Message {
	msgs := h.History()
	out := make([]reasoning.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, reasoning.Message{Role: reasoning.Role(m.Role), Content: m.Content})
	}
	return out
}

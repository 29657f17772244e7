// Package repl implements the interactive chat loop on top of a running host.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/3279mitsunaka/mcp-sample/internal/api"
	"github.com/3279mitsunaka/mcp-sample/internal/formatting"
	"github.com/3279mitsunaka/mcp-sample/internal/host"
	"github.com/3279mitsunaka/mcp-sample/internal/registry"
	"github.com/3279mitsunaka/mcp-sample/pkg/logging"
)

const (
	// Prompt is shown before every line of input.
	Prompt = "You: "

	cmdHelp       = "--help"
	cmdList       = "--list"
	cmdProviders  = "--providers"
	cmdReconnect  = "--reconnect"
	cmdDisconnect = "--disconnect"
	cmdExit       = "--exit"
)

const helpText = `Commands:
  --help               show this help
  --list               list the capabilities of every Ready provider
  --providers          show every provider and its state
  --reconnect <name>   restart a provider and reload its capabilities
  --disconnect <name>  close a provider and drop its capabilities
  --exit               leave the chat

Anything else is sent to the assistant. With the directive reasoner, call a
capability directly, e.g. "add a=2 b=3" or multiply {"a": 4, "b": 2.5}.`

// Conversation is the part of the host the loop talks to.
type Conversation interface {
	Turn(ctx context.Context, utterance string) (*host.TurnResult, error)
	Capabilities() []registry.Entry
	Providers() []host.ProviderStatus
	Reconnect(ctx context.Context, name string) ([]api.Capability, error)
	Disconnect(name string) error
}

// LineReader reads one line of input. *readline.Instance satisfies it.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

// REPL is the interactive Read-Eval-Print Loop.
type REPL struct {
	conv      Conversation
	out       io.Writer
	formatter formatting.Formatter
	reader    LineReader
}

// Option configures a REPL.
type Option func(*REPL)

// WithOutput redirects what the loop prints. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(r *REPL) { r.out = w }
}

// WithReader replaces the readline terminal, mainly for tests.
func WithReader(lr LineReader) Option {
	return func(r *REPL) { r.reader = lr }
}

// WithColor enables colored tables.
func WithColor(color bool) Option {
	return func(r *REPL) {
		r.formatter = formatting.NewTableFormatter(formatting.Options{Format: formatting.FormatTable, Color: color})
	}
}

// New creates a REPL for conv.
func New(conv Conversation, opts ...Option) *REPL {
	r := &REPL{
		conv:      conv,
		out:       os.Stdout,
		formatter: formatting.NewTableFormatter(formatting.Options{Format: formatting.FormatTable}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run reads input until --exit, EOF, interrupt on an empty line or ctx
// cancellation. It never shuts the host down; that is left to the caller.
func (r *REPL) Run(ctx context.Context) error {
	if r.reader == nil {
		rl, err := readline.NewEx(&readline.Config{
			Prompt:            Prompt,
			HistoryFile:       filepath.Join(os.TempDir(), ".mcphost_history"),
			InterruptPrompt:   "^C",
			EOFPrompt:         "exit",
			HistorySearchFold: true,
			Stdout:            r.out,
		})
		if err != nil {
			return fmt.Errorf("failed to create readline instance: %w", err)
		}
		r.reader = rl
	}
	defer r.reader.Close()

	r.printf("Type %s for commands, %s to leave.\n", cmdHelp, cmdExit)

	for {
		if ctx.Err() != nil {
			logging.Info("REPL", "Context cancelled, leaving chat")
			return nil
		}

		line, err := r.reader.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if strings.TrimSpace(line) == "" {
				r.printf("Goodbye!\n")
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			r.printf("Goodbye!\n")
			return nil
		case err != nil:
			return fmt.Errorf("readline error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if !r.handle(ctx, input) {
			r.printf("Goodbye!\n")
			return nil
		}
	}
}

// handle processes one line and reports whether the loop should continue.
func (r *REPL) handle(ctx context.Context, input string) bool {
	switch input {
	case cmdExit:
		return false
	case cmdHelp:
		r.printf("%s\n", helpText)
		return true
	case cmdList:
		if err := r.formatter.Capabilities(r.out, r.readyCapabilities()); err != nil {
			logging.Error("REPL", err, "Failed to render capabilities")
		}
		return true
	case cmdProviders:
		if err := r.formatter.Providers(r.out, r.conv.Providers()); err != nil {
			logging.Error("REPL", err, "Failed to render providers")
		}
		return true
	}

	if fields := strings.Fields(input); fields[0] == cmdReconnect || fields[0] == cmdDisconnect {
		if len(fields) != 2 {
			r.printf("usage: %s <provider>\n", fields[0])
			return true
		}
		r.manage(ctx, fields[0], fields[1])
		return true
	}

	res, err := r.conv.Turn(ctx, input)
	if err != nil {
		r.printf("error: %v\n", err)
		return true
	}

	switch {
	case res.Err != nil:
		r.printf("tool error: %s\n", describeError(res.Err))
	case res.Result != nil:
		label := "tool result"
		if res.Result.IsError() {
			label = "tool error"
		}
		r.printf("%s (%s/%s): %s\n", label, res.Result.Provider, res.Result.Capability, res.Result.Text())
	default:
		r.printf("agent: %s\n", res.Reply)
	}
	return true
}

// manage reconnects or disconnects one provider.
func (r *REPL) manage(ctx context.Context, command, name string) {
	if command == cmdDisconnect {
		if err := r.conv.Disconnect(name); err != nil {
			r.printf("error: %s\n", describeError(err))
			return
		}
		r.printf("disconnected %s\n", name)
		return
	}

	caps, err := r.conv.Reconnect(ctx, name)
	if err != nil {
		r.printf("error: %s\n", describeError(err))
		return
	}
	r.printf("reconnected %s (%d capabilities)\n", name, len(caps))
}

// readyCapabilities drops entries whose provider is no longer Ready.
func (r *REPL) readyCapabilities() []registry.Entry {
	ready := make(map[string]bool)
	for _, p := range r.conv.Providers() {
		ready[p.Name] = p.State == api.StateReady
	}

	entries := r.conv.Capabilities()
	out := make([]registry.Entry, 0, len(entries))
	for _, e := range entries {
		if ready[e.Provider] {
			out = append(out, e)
		}
	}
	return out
}

func (r *REPL) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func describeError(err error) string {
	switch {
	case errors.Is(err, api.ErrUnknownCapability):
		return fmt.Sprintf("no provider offers that capability (%v)", err)
	case errors.Is(err, api.ErrProviderUnavailable):
		return fmt.Sprintf("the provider is not available (%v)", err)
	case errors.Is(err, api.ErrTimeout):
		return fmt.Sprintf("the call timed out (%v)", err)
	default:
		return err.Error()
	}
}

// Package formatting renders host data for the CLI in table, JSON or YAML form.
//
// Table output is meant for people and may use color; JSON and YAML output is
// stable and meant for scripts. All formatters write to the supplied writer.
package formatting

import (
	"fmt"
	"io"
	"strings"

	"github.com/3279mitsunaka/mcp-sample/internal/dispatch"
	"github.com/3279mitsunaka/mcp-sample/internal/host"
	"github.com/3279mitsunaka/mcp-sample/internal/registry"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// ParseFormat validates a --output value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use table, json or yaml)", s)
	}
}

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Color  bool // Enable colored table output
}

// Formatter renders host data.
type Formatter interface {
	Capabilities(w io.Writer, entries []registry.Entry) error
	Providers(w io.Writer, providers []host.ProviderStatus) error
	ConnectReport(w io.Writer, report *host.ConnectReport) error
	Result(w io.Writer, result *dispatch.Result) error
}

// New returns the formatter for options.Format.
func New(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return NewJSONFormatter()
	case FormatYAML:
		return NewYAMLFormatter()
	default:
		return NewTableFormatter(options)
	}
}

// CapabilityView is the serialized form of a registry entry.
type CapabilityView struct {
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Description string `json:"description,omitempty"`
}

// ProviderView is the serialized form of a provider status.
type ProviderView struct {
	Name         string `json:"name"`
	Target       string `json:"target"`
	State        string `json:"state"`
	Capabilities int    `json:"capabilities"`
	Error        string `json:"error,omitempty"`
}

// ConnectView is the serialized form of a connect report.
type ConnectView struct {
	Connected    []string          `json:"connected"`
	Failures     map[string]string `json:"failures,omitempty"`
	Collisions   []CollisionView   `json:"collisions,omitempty"`
	Capabilities int               `json:"capabilities"`
}

// CollisionView is the serialized form of a registry collision.
type CollisionView struct {
	Capability string `json:"capability"`
	Winner     string `json:"winner"`
	Shadowed   string `json:"shadowed"`
}

// ResultView is the serialized form of a dispatch result.
type ResultView struct {
	Provider   string `json:"provider"`
	Capability string `json:"capability"`
	IsError    bool   `json:"isError"`
	Text       string `json:"text"`
	Structured any    `json:"structured,omitempty"`
}

func capabilityViews(entries []registry.Entry) []CapabilityView {
	out := make([]CapabilityView, 0, len(entries))
	for _, e := range entries {
		out = append(out, CapabilityView{Name: e.Capability.Name, Provider: e.Provider, Description: e.Capability.Description})
	}
	return out
}

func providerViews(providers []host.ProviderStatus) []ProviderView {
	out := make([]ProviderView, 0, len(providers))
	for _, p := range providers {
		v := ProviderView{Name: p.Name, Target: p.Target, State: p.State.String(), Capabilities: p.Capabilities}
		if p.LastError != nil {
			v.Error = p.LastError.Error()
		}
		out = append(out, v)
	}
	return out
}

func connectView(report *host.ConnectReport) ConnectView {
	v := ConnectView{Connected: report.Connected, Capabilities: report.Capabilities}
	if v.Connected == nil {
		v.Connected = []string{}
	}
	if len(report.Failures) > 0 {
		v.Failures = make(map[string]string, len(report.Failures))
		for name, err := range report.Failures {
			v.Failures[name] = err.Error()
		}
	}
	for _, c := range report.Collisions {
		v.Collisions = append(v.Collisions, CollisionView{Capability: c.Capability, Winner: c.Winner, Shadowed: c.Shadowed})
	}
	return v
}

func resultView(result *dispatch.Result) ResultView {
	v := ResultView{
		Provider:   result.Provider,
		Capability: result.Capability,
		IsError:    result.IsError(),
		Text:       result.Text(),
	}
	if result.Payload != nil {
		v.Structured = result.Payload.StructuredContent
	}
	return v
}

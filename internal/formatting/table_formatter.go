package formatting

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/3279mitsunaka/mcp-sample/internal/api"
	"github.com/3279mitsunaka/mcp-sample/internal/dispatch"
	"github.com/3279mitsunaka/mcp-sample/internal/host"
	"github.com/3279mitsunaka/mcp-sample/internal/registry"
)

const maxCellWidth = 60

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) *TableFormatter {
	return &TableFormatter{options: options}
}

func (f *TableFormatter) Capabilities(w io.Writer, entries []registry.Entry) error {
	if len(entries) == 0 {
		return f.emptyMessage(w, "No capabilities available")
	}

	t := f.createTable(w)
	t.AppendHeader(table.Row{f.header("CAPABILITY"), f.header("PROVIDER"), f.header("DESCRIPTION")})
	for _, e := range entries {
		t.AppendRow(table.Row{e.Capability.Name, e.Provider, Truncate(e.Capability.Description, maxCellWidth)})
	}
	t.Render()
	return nil
}

func (f *TableFormatter) Providers(w io.Writer, providers []host.ProviderStatus) error {
	if len(providers) == 0 {
		return f.emptyMessage(w, "No providers configured")
	}

	t := f.createTable(w)
	t.AppendHeader(table.Row{f.header("PROVIDER"), f.header("TARGET"), f.header("STATE"), f.header("CAPABILITIES"), f.header("ERROR")})
	for _, p := range providers {
		errText := ""
		if p.LastError != nil {
			errText = Truncate(p.LastError.Error(), maxCellWidth)
		}
		t.AppendRow(table.Row{p.Name, p.Target, f.state(p.State), p.Capabilities, errText})
	}
	t.Render()
	return nil
}

func (f *TableFormatter) ConnectReport(w io.Writer, report *host.ConnectReport) error {
	total := len(report.Connected) + len(report.Failures)
	if _, err := fmt.Fprintf(w, "Connected %d/%d providers, %d capabilities\n", len(report.Connected), total, report.Capabilities); err != nil {
		return err
	}

	names := make([]string, 0, len(report.Failures))
	for name := range report.Failures {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "  %s %s: %v\n", f.color(text.FgRed, "✗"), name, report.Failures[name]); err != nil {
			return err
		}
	}
	for _, c := range report.Collisions {
		if _, err := fmt.Fprintf(w, "  %s %s from %s is shadowed by %s\n", f.color(text.FgYellow, "!"), c.Capability, c.Shadowed, c.Winner); err != nil {
			return err
		}
	}
	return nil
}

func (f *TableFormatter) Result(w io.Writer, result *dispatch.Result) error {
	label := fmt.Sprintf("%s/%s", result.Provider, result.Capability)
	if result.IsError() {
		label = f.color(text.FgRed, label+" (error)")
	}
	if _, err := fmt.Fprintf(w, "%s: %s\n", label, result.Text()); err != nil {
		return err
	}
	if result.Payload != nil && result.Payload.StructuredContent != nil {
		_, err := fmt.Fprintln(w, PrettyJSON(result.Payload.StructuredContent))
		return err
	}
	return nil
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	if f.options.Color {
		t.SetStyle(table.StyleRounded)
	} else {
		t.SetStyle(table.StyleLight)
	}
	return t
}

func (f *TableFormatter) header(s string) string {
	return f.color(text.FgHiCyan, s)
}

func (f *TableFormatter) state(s api.ConnectionState) string {
	switch s {
	case api.StateReady:
		return f.color(text.FgGreen, s.String())
	case api.StateFailed:
		return f.color(text.FgRed, s.String())
	default:
		return f.color(text.FgYellow, s.String())
	}
}

func (f *TableFormatter) color(c text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return c.Sprint(s)
}

func (f *TableFormatter) emptyMessage(w io.Writer, message string) error {
	_, err := fmt.Fprintln(w, f.color(text.FgYellow, message))
	return err
}

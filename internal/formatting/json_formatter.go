package formatting

import (
	"encoding/json"
	"io"

	"github.com/3279mitsunaka/mcp-sample/internal/dispatch"
	"github.com/3279mitsunaka/mcp-sample/internal/host"
	"github.com/3279mitsunaka/mcp-sample/internal/registry"
)

// JSONFormatter writes indented JSON documents.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) Capabilities(w io.Writer, entries []registry.Entry) error {
	return writeJSON(w, capabilityViews(entries))
}

func (f *JSONFormatter) Providers(w io.Writer, providers []host.ProviderStatus) error {
	return writeJSON(w, providerViews(providers))
}

func (f *JSONFormatter) ConnectReport(w io.Writer, report *host.ConnectReport) error {
	return writeJSON(w, connectView(report))
}

func (f *JSONFormatter) Result(w io.Writer, result *dispatch.Result) error {
	return writeJSON(w, resultView(result))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

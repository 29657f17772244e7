package formatting

import (
	"fmt"
	"io"

	"sigs.k8s.io/yaml"

	"github.com/3279mitsunaka/mcp-sample/internal/dispatch"
	"github.com/3279mitsunaka/mcp-sample/internal/host"
	"github.com/3279mitsunaka/mcp-sample/internal/registry"
)

// YAMLFormatter writes YAML documents. Field names follow the JSON tags.
type YAMLFormatter struct{}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

func (f *YAMLFormatter) Capabilities(w io.Writer, entries []registry.Entry) error {
	return writeYAML(w, capabilityViews(entries))
}

func (f *YAMLFormatter) Providers(w io.Writer, providers []host.ProviderStatus) error {
	return writeYAML(w, providerViews(providers))
}

func (f *YAMLFormatter) ConnectReport(w io.Writer, report *host.ConnectReport) error {
	return writeYAML(w, connectView(report))
}

func (f *YAMLFormatter) Result(w io.Writer, result *dispatch.Result) error {
	return writeYAML(w, resultView(result))
}

func writeYAML(w io.Writer, v any) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal yaml: %w", err)
	}
	_, err = w.Write(b)
	return err
}

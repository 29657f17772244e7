package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/3279mitsunaka/mcp-sample/internal/demo"
)

func newDemoProviderCmd() *cobra.Command {
	names := make([]string, 0, 2)
	for name := range demo.Servers() {
		names = append(names, name)
	}
	sort.Strings(names)

	return &cobra.Command{
		Use:   fmt.Sprintf("demo-provider <%s>", strings.Join(names, "|")),
		Short: "Serve a built-in demo provider over stdio",
		Long: `Runs one of the built-in MCP providers on stdin/stdout, so it can be
configured as a provider of another mcphost:

  providers:
    - name: Math
      command: mcphost
      args: [demo-provider, math]`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, ok := demo.Servers()[args[0]]
			if !ok {
				return fmt.Errorf("unknown demo provider %q (available: %s)", args[0], strings.Join(names, ", "))
			}
			return server.ServeStdio(srv)
		},
	}
}

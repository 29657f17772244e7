package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/3279mitsunaka/mcp-sample/internal/formatting"
)

func newListCmd() *cobra.Command {
	var (
		output        string
		showProviders bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Connect all providers and list the capabilities they offer",
		Long: `Connects every configured provider, prints the merged capability
catalog and shuts the providers down again.

When two providers offer the same capability the one listed first in the
configuration wins; the other is reported as shadowed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := formatting.ParseFormat(output)
			if err != nil {
				return err
			}
			quiet := format != formatting.FormatTable

			application, report, err := startApplication(cmd.Context(), quiet)
			if err != nil {
				return err
			}
			defer application.Shutdown(context.Background())

			out := cmd.OutOrStdout()
			f := formatting.New(formatting.Options{Format: format, Color: !quiet})
			if showProviders {
				return f.Providers(out, application.Host().Providers())
			}
			if !quiet {
				if err := f.ConnectReport(cmd.ErrOrStderr(), report); err != nil {
					return err
				}
			}
			return f.Capabilities(out, application.Host().Capabilities())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json or yaml")
	cmd.Flags().BoolVar(&showProviders, "providers", false, "list providers and their state instead of capabilities")
	return cmd
}

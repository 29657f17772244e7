package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/3279mitsunaka/mcp-sample/internal/formatting"
	"github.com/3279mitsunaka/mcp-sample/internal/reasoning"
)

func newCallCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "call <capability> [key=value ...|'{json}']",
		Short: "Invoke one capability and print the result",
		Long: `Connects every configured provider, invokes a single capability on the
provider that owns it and shuts everything down again.

Arguments are given as key=value pairs, where values are read as JSON when
possible (a=2 is a number, name=box is a string), or as one JSON object.`,
		Example: `  mcphost --demo call add a=2 b=3
  mcphost --demo call draw_cylinder '{"radius": 10, "height": 20}' -o json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := formatting.ParseFormat(output)
			if err != nil {
				return err
			}
			callArgs, err := reasoning.ParseArguments(strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			application, _, err := startApplication(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer application.Shutdown(context.Background())

			res, err := application.Host().Dispatch(cmd.Context(), args[0], callArgs)
			if err != nil {
				return err
			}

			f := formatting.New(formatting.Options{Format: format})
			if err := f.Result(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if res.IsError() {
				return fmt.Errorf("%s/%s: %w", res.Provider, res.Capability, errToolFailed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json or yaml")
	return cmd
}

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/3279mitsunaka/mcp-sample/internal/formatting"
	"github.com/3279mitsunaka/mcp-sample/internal/repl"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat with the configured providers",
		Long: `Connects every configured provider and starts an interactive session.

Type --help inside the session for the available commands, --list to see the
capabilities of the connected providers, --reconnect <name> or
--disconnect <name> to restart or stop one provider and --exit (or Ctrl+D) to
leave. All providers are shut down when the session ends.`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, report, err := startApplication(ctx, false)
	if err != nil {
		return err
	}
	defer application.Shutdown(context.Background())

	out := cmd.OutOrStdout()
	tf := formatting.NewTableFormatter(formatting.Options{Format: formatting.FormatTable, Color: true})
	if err := tf.ConnectReport(out, report); err != nil {
		return err
	}

	return repl.New(application.Host(), repl.WithOutput(out), repl.WithColor(true)).Run(ctx)
}

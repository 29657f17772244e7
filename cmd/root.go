package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/3279mitsunaka/mcp-sample/internal/app"
	"github.com/3279mitsunaka/mcp-sample/internal/host"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeToolError indicates the capability ran but reported an error.
	ExitCodeToolError = 2
)

var (
	configPath string
	debug      bool
	demoMode   bool
	logLevel   string
	logFormat  string
)

// errToolFailed marks a completed invocation whose result was flagged as an error.
var errToolFailed = errors.New("capability reported an error")

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mcphost",
	Short: "Chat with tools served by MCP providers",
	Long: `mcphost starts a set of MCP providers as subprocesses, merges the tools
they offer into one catalog and routes requests to whichever provider owns
the requested tool.

Providers are configured in ~/.config/mcphost/config.yaml (or --config).
Use --demo to try it with the built-in Math and CAD providers.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with a code describing the failure.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcphost version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

func getExitCode(err error) int {
	if errors.Is(err, errToolFailed) {
		return ExitCodeToolError
	}
	return ExitCodeError
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is $HOME/.config/mcphost/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&demoMode, "demo", false, "use the built-in Math and CAD providers instead of the configured ones")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (--debug takes precedence)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", app.LogFormatText, "log format: text or json")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newCallCmd())
	rootCmd.AddCommand(newDemoProviderCmd())
}

// startApplication bootstraps the host and connects every provider, showing a
// spinner on stderr unless quiet is set.
func startApplication(ctx context.Context, quiet bool) (*app.Application, *host.ConnectReport, error) {
	cfg := app.NewConfig(debug, demoMode, configPath)
	cfg.Quiet = quiet && !debug
	cfg.LogLevel = logLevel
	cfg.LogFormat = logFormat

	application, err := app.NewApplication(cfg)
	if err != nil {
		return nil, nil, err
	}

	var s *spinner.Spinner
	if !quiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = " Connecting to providers..."
		s.Start()
	}
	report, err := application.Start(ctx)
	if s != nil {
		s.Stop()
	}
	if err != nil {
		application.Shutdown(context.Background())
		return nil, nil, fmt.Errorf("failed to connect providers: %w", err)
	}
	return application, report, nil
}

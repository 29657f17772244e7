// Package logging provides subsystem-tagged structured logging for mcphost.
//
// It is a thin layer over log/slog. Every entry carries a "subsystem"
// attribute naming the component that produced it (Provider, Registry,
// Dispatcher, Host, REPL, ...), and errors are attached as an "error"
// attribute rather than folded into the message.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Host", "Connected %d of %d providers", ok, total)
//	logging.Debug("Provider", "Launching %s %v", cmd, args)
//	logging.Warn("Registry", "Capability %s from %s is shadowed", name, provider)
//	logging.Error("Dispatcher", err, "Invocation of %s failed", name)
//
// Output defaults to stderr so that command output written to stdout can be
// piped without log noise. InitJSON switches to a JSON handler.
//
// Before initialization only warnings and errors are printed, directly to
// stderr, so library consumers that never call an Init function still see
// failures.
package logging

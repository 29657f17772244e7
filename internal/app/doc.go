// Package app bootstraps the host for the CLI commands.
//
// NewApplication runs the fixed start-up sequence: configure logging, load
// the configuration file, select the launcher and the reasoner, and register
// every configured provider with a new host. The caller then connects with
// Start, uses Host, and always finishes with Shutdown.
package app

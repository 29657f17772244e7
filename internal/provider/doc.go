// Package provider owns the connection to a single MCP tool provider.
//
// A Connection wraps one provider process: it launches the process through a
// Launcher, performs the MCP handshake, fetches the tool catalog and then
// forwards invocations until it is closed. Every step is bounded by a timeout
// and every failure is reported as an *api.Error tagged with the provider name.
//
// # Lifecycle
//
//	Uninitialized ──Connect──▶ Connecting ──ok──▶ Ready ──Close──▶ Closed
//	                               │                  │
//	                               └──error──▶ Failed ◀┘ (reconnect failure)
//
// Connect on a connection that already holds a session closes that session
// first, so Connect doubles as reconnect. Close is idempotent, valid from any
// state and final: a Closed connection refuses Connect, so a connect that was
// still waiting for the lock cannot revive a connection closed by shutdown. A failed Connect never leaves a half-open transport behind: the
// partially created session is closed before the error is returned.
//
// # Transports
//
// StdioLauncher starts the provider as a subprocess and speaks MCP over its
// stdin/stdout using mark3labs/mcp-go. StreamableHTTPLauncher attaches to a
// provider that is already serving MCP over HTTP, and TransportLauncher picks
// between the two based on the descriptor. InProcessLauncher attaches to an
// mcp-go server living in the same process, which is how the demo providers
// and the tests run without spawning binaries.
//
// # Concurrency
//
// Operations on one Connection are serialized by an RWMutex: Invoke holds the
// read lock for the duration of the call, Connect and Close take the write
// lock. Different connections share nothing and may be driven concurrently.
package provider

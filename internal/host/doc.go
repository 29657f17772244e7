// Package host implements the orchestration host: it owns one connection per
// configured provider, keeps the merged capability registry current and
// routes invocations chosen by the reasoning component.
//
// # Lifecycle
//
// A Host moves through a fixed sequence of states:
//
//	Idle ──ConnectAll──▶ Connecting ──▶ Running ──Shutdown──▶ ShuttingDown ──▶ Closed
//	  └──────────────────────────Shutdown─────────────────────────────▲
//
// Providers are registered with AddServer while Idle. ConnectAll starts every
// provider concurrently; a provider that fails to start is reported and left
// out of the registry, the others carry on. Once Running the host serves
// Dispatch and Turn. Shutdown closes every connection, whatever its state, and
// is safe to call more than once. Closed is terminal.
//
// # Registry updates
//
// Whenever the set of Ready connections can have changed (ConnectAll,
// Reconnect, Disconnect) the registry snapshot is rebuilt from scratch and
// swapped in atomically. Concurrent dispatches keep using whichever snapshot
// they loaded.
package host

// Package api holds the types shared by every layer of the orchestration core:
// capability descriptors, provider launch descriptors, connection states and
// the error taxonomy.
//
// The package has no behaviour of its own beyond small helpers. It exists so
// that provider, registry, dispatch and host can agree on vocabulary without
// importing each other.
//
// # Errors
//
// Every failure the core reports is an *Error whose Kind is one of the
// sentinel errors declared here. Error implements the multi-error Unwrap form,
// so callers can test for the kind and for the underlying cause with the same
// errors.Is call:
//
//	_, err := conn.Invoke(ctx, "add", args)
//	if errors.Is(err, api.ErrTimeout) {
//	    // the provider is still Ready, the call simply took too long
//	}
package api

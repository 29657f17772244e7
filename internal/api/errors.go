package api

import (
	"context"
	"errors"
	"strings"
)

// Error kinds. Match them with errors.Is; every *Error unwraps to its kind.
var (
	// ErrLaunchFailure: the provider subprocess could not be started.
	ErrLaunchFailure = errors.New("launch failure")
	// ErrHandshakeFailure: protocol initialization was rejected or timed out.
	ErrHandshakeFailure = errors.New("handshake failure")
	// ErrCatalogFetchFailure: connected, but listing capabilities failed.
	ErrCatalogFetchFailure = errors.New("catalog fetch failure")
	// ErrDuplicateProvider: a provider name was registered twice.
	ErrDuplicateProvider = errors.New("duplicate provider")
	// ErrUnknownCapability: the dispatch target is not in the registry.
	ErrUnknownCapability = errors.New("unknown capability")
	// ErrProviderUnavailable: the owning provider exists but is not Ready.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrNotConnected: an invocation was attempted on a connection that is not Ready.
	ErrNotConnected = errors.New("not connected")
	// ErrUpstream: the provider reported a protocol-level failure.
	ErrUpstream = errors.New("upstream error")
	// ErrTimeout: a bounded operation exceeded its deadline.
	ErrTimeout = errors.New("timeout")
	// ErrInvalidState: the host is not in a state that allows the operation.
	ErrInvalidState = errors.New("invalid state")
	// ErrHostClosed: the host has been shut down.
	ErrHostClosed = errors.New("host closed")
)

// Error is the concrete error returned by the orchestration core.
type Error struct {
	Kind       error  // one of the Err* sentinels above
	Provider   string // provider the failure relates to, if any
	Capability string // capability the failure relates to, if any
	Op         string // step that failed, e.g. "launch", "initialize", "tools/list", "call"
	Err        error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	} else {
		b.WriteString("error")
	}
	if e.Provider != "" {
		b.WriteString(" [provider ")
		b.WriteString(e.Provider)
		b.WriteString("]")
	}
	if e.Capability != "" {
		b.WriteString(" [capability ")
		b.WriteString(e.Capability)
		b.WriteString("]")
	}
	if e.Op != "" {
		b.WriteString(" during ")
		b.WriteString(e.Op)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind and the cause. A cause that is a context deadline
// also unwraps to ErrTimeout, so a handshake that timed out matches both
// ErrHandshakeFailure and ErrTimeout.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 3)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
		if e.Kind != ErrTimeout && errors.Is(e.Err, context.DeadlineExceeded) {
			errs = append(errs, ErrTimeout)
		}
	}
	return errs
}

// NewError builds an *Error of the given kind for a provider.
func NewError(kind error, provider, op string, cause error) *Error {
	return &Error{Kind: kind, Provider: provider, Op: op, Err: cause}
}

// KindOf returns the sentinel kind of err, or nil when err is not an *Error.
func KindOf(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return nil
}

package rpcchan

import "fmt"

// Error name strings. These are what survive a wire round-trip — a
// reconstructed remote error is matched against these, not against a Go
// type, because deserializeError always produces the same concrete type.
const (
	nameValidation = "RPCValidationError"
	nameTimeout    = "RPCTimeoutError"
	nameRouting    = "RPCRoutingError"
	nameDestroyed  = "RPCChannelDestroyedError"
)

// ValidationPhase distinguishes an input-validation failure from an
// output-validation failure.
type ValidationPhase string

const (
	PhaseInput  ValidationPhase = "input"
	PhaseOutput ValidationPhase = "output"
)

// Issue is a single validation failure, mirroring the standard-schema
// {message, path} shape.
type Issue struct {
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// ValidationError reports an input or output validation failure. The
// handler is never invoked when this is returned for an input failure.
type ValidationError struct {
	Phase  ValidationPhase `json:"phase"`
	Method string          `json:"method"`
	Issues []Issue         `json:"issues"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("rpcchan: %s validation failed for %q (%d issue(s))", e.Phase, e.Method, len(e.Issues))
}

func (e *ValidationError) Name() string { return nameValidation }

// ExtraProperties lets Phase/Method/Issues survive a wire round trip
// instead of collapsing into Error()'s formatted string.
func (e *ValidationError) ExtraProperties() map[string]any {
	return map[string]any{
		"phase":  string(e.Phase),
		"method": e.Method,
		"issues": e.Issues,
	}
}

// TimeoutError is returned to the caller when a request's timeout elapses
// before a response arrives. It never reaches the remote side.
type TimeoutError struct {
	Method    string `json:"method"`
	TimeoutMs int64  `json:"timeoutMs"`
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("rpcchan: call to %q timed out after %dms", e.Method, e.TimeoutMs)
}

func (e *TimeoutError) Name() string { return nameTimeout }

// ExtraProperties lets Method/TimeoutMs survive a wire round trip.
func (e *TimeoutError) ExtraProperties() map[string]any {
	return map[string]any{"method": e.Method, "timeoutMs": e.TimeoutMs}
}

// RoutingError reports a dotted-path lookup failure: the path doesn't
// resolve, the terminal isn't callable/constructible, or a set target's
// parent is missing.
type RoutingError struct {
	Method  string `json:"method"`
	Message string `json:"message"`
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("rpcchan: routing error for %q: %s", e.Method, e.Message)
}

func (e *RoutingError) Name() string { return nameRouting }

// ExtraProperties lets Method/Message survive a wire round trip.
func (e *RoutingError) ExtraProperties() map[string]any {
	return map[string]any{"method": e.Method, "detail": e.Message}
}

// DestroyedError is returned by every outstanding and subsequent operation
// once a channel has been destroyed.
type DestroyedError struct{}

func (e *DestroyedError) Error() string { return "rpcchan: channel destroyed" }

func (e *DestroyedError) Name() string { return nameDestroyed }

// RemoteError is the reconstruction of an error thrown on the remote
// side, preserving name, message, stack, cause, and arbitrary custom
// properties across the wire.
type RemoteError struct {
	RemoteName string         `json:"name"`
	Message    string         `json:"message"`
	Stack      string         `json:"stack,omitempty"`
	Cause      error          `json:"-"`
	Properties map[string]any `json:"-"`
}

func (e *RemoteError) Error() string {
	if e.RemoteName != "" && e.RemoteName != "Error" {
		return fmt.Sprintf("%s: %s", e.RemoteName, e.Message)
	}
	return e.Message
}

func (e *RemoteError) Unwrap() error { return e.Cause }

func (e *RemoteError) Name() string {
	if e.RemoteName == "" {
		return "Error"
	}
	return e.RemoteName
}

// named is satisfied by every error kind the channel produces or
// reconstructs; IsRPCTimeoutError/IsRPCValidationError use it instead of a
// type assertion so the check still works after deserialization.
type named interface {
	Name() string
}

// IsRPCTimeoutError reports whether err is — or wraps, or was
// reconstructed from the wire as — a timeout error.
func IsRPCTimeoutError(err error) bool {
	return hasName(err, nameTimeout)
}

// IsRPCValidationError reports whether err is — or wraps, or was
// reconstructed from the wire as — a validation error.
func IsRPCValidationError(err error) bool {
	return hasName(err, nameValidation)
}

func hasName(err error, name string) bool {
	for err != nil {
		if n, ok := err.(named); ok && n.Name() == name {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

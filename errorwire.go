package rpcchan

import (
	"errors"

	"github.com/tenzoki/rpcchan/internal/wire"
)

// extraPropertied is implemented by channel-produced structured errors that
// carry fields beyond name/message — ValidationError's Phase/Method/Issues,
// for instance — so those fields survive a wire round trip instead of
// collapsing into the formatted Error() string.
type extraPropertied interface {
	ExtraProperties() map[string]any
}

// serializeError converts a Go error returned by a handler (or raised
// internally) into the wire error shape, preserving name/message/cause and
// any custom properties a *RemoteError being re-thrown, or a structured
// channel error, already carried.
func serializeError(err error) *wire.WireError {
	if err == nil {
		return nil
	}

	we := &wire.WireError{Message: err.Error()}
	if n, ok := err.(named); ok {
		we.Name = n.Name()
	} else {
		we.Name = "Error"
	}

	if ep, ok := err.(extraPropertied); ok {
		we.Extra = ep.ExtraProperties()
	}

	var remote *RemoteError
	if errors.As(err, &remote) {
		we.Message = remote.Message
		we.Stack = remote.Stack
		if remote.Properties != nil {
			we.Extra = remote.Properties
		}
	}

	if u, ok := err.(interface{ Unwrap() error }); ok {
		if cause := u.Unwrap(); cause != nil {
			we.Cause = serializeError(cause)
		}
	}
	return we
}

// deserializeError reconstructs a Go error from a wire error shape. The
// result is always a *RemoteError (or nil); callers match it by Name()
// via IsRPCTimeoutError/IsRPCValidationError rather than type assertion,
// since the concrete Go error type on the throwing side is lost crossing
// the wire.
func deserializeError(we *wire.WireError) error {
	if we == nil {
		return nil
	}
	var cause error
	if we.Cause != nil {
		cause = deserializeError(we.Cause)
	}
	return &RemoteError{
		RemoteName: we.Name,
		Message:    we.Message,
		Stack:      we.Stack,
		Cause:      cause,
		Properties: we.Extra,
	}
}

package rpcchan

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// CallbackFunc is a function argument passed across the channel as a
// callback: the remote side invokes it by id, and the result (or error)
// travels back as a callback-response message.
type CallbackFunc func(args []any) (any, error)

// Callback wraps a CallbackFunc in a pointer so it has a stable, comparable
// identity — a bare Go func value cannot be used as a map key or compared
// for equality, which the identity-keyed reuse invariant in spec §4 (the
// same callable passed N times registers exactly once) requires.
type Callback struct {
	fn CallbackFunc
}

// NewCallback wraps fn for use as a channel argument.
func NewCallback(fn CallbackFunc) *Callback {
	return &Callback{fn: fn}
}

func (c *Callback) invoke(args []any) (any, error) {
	return c.fn(args)
}

// callbackRegistry is the bidirectional id<->*Callback map a Channel keeps
// for callbacks it has sent out (and must dispatch inbound callback
// messages against) plus a placeholder *Callback for each callback id
// received from the remote side (invoking it routes an outbound callback
// message to that id).
type callbackRegistry struct {
	mu       sync.Mutex
	byID     map[string]*Callback
	byPtr    map[*Callback]string
	receivedPlaceholders map[string]*Callback
}

func newCallbackRegistry() *callbackRegistry {
	return &callbackRegistry{
		byID:                 make(map[string]*Callback),
		byPtr:                make(map[*Callback]string),
		receivedPlaceholders: make(map[string]*Callback),
	}
}

// register returns the wire id for cb, minting and storing a new one the
// first time this exact *Callback pointer is seen, and reusing it on every
// subsequent call — the identity-keyed dedup invariant.
func (r *callbackRegistry) register(cb *Callback) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byPtr[cb]; ok {
		return id
	}
	id := uuid.NewString()
	r.byPtr[cb] = id
	r.byID[id] = cb
	return id
}

// lookup resolves an inbound callback message's id to the *Callback that
// was registered for it.
func (r *callbackRegistry) lookup(id string) (*Callback, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cb, ok := r.byID[id]
	return cb, ok
}

// placeholder returns a callback-proxy *Callback for a callback id received
// from the remote side, so passing it back through as an argument (e.g. in
// a nested call) reuses the same identity rather than minting a new
// wrapper every time. invoke sends a callback message over io and waits
// for the matching callback-response.
func (r *callbackRegistry) placeholder(id string, invoke func(id string, args []any) (any, error)) *Callback {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cb, ok := r.receivedPlaceholders[id]; ok {
		return cb
	}
	cb := &Callback{fn: func(args []any) (any, error) { return invoke(id, args) }}
	r.receivedPlaceholders[id] = cb
	return cb
}

// clear drops every registered callback, called from Destroy/FreeCallbacks.
func (r *callbackRegistry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[string]*Callback)
	r.byPtr = make(map[*Callback]string)
	r.receivedPlaceholders = make(map[string]*Callback)
}

func (r *callbackRegistry) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("callbackRegistry{%d registered, %d placeholders}", len(r.byID), len(r.receivedPlaceholders))
}

// walkCallbacksOut replaces every *Callback found in args (recursing into
// plain []any and map[string]any trees only) with its registered marker
// string, minting an id the first time a given *Callback pointer is seen.
func walkCallbacksOut(args []any, reg *callbackRegistry) []any {
	var walk func(v any) any
	walk = func(v any) any {
		if cb, ok := v.(*Callback); ok {
			return callbackMarkerPrefix + reg.register(cb)
		}
		switch t := v.(type) {
		case []any:
			out := make([]any, len(t))
			for i, e := range t {
				out[i] = walk(e)
			}
			return out
		case map[string]any:
			out := make(map[string]any, len(t))
			for k, e := range t {
				out[k] = walk(e)
			}
			return out
		default:
			return v
		}
	}
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = walk(a)
	}
	return out
}

// walkCallbacksIn is walkCallbacksOut's inverse: every string bearing the
// callback marker prefix becomes an invokable *Callback placeholder that
// sends a callback message through invoke when called.
func walkCallbacksIn(args []any, reg *callbackRegistry, invoke func(id string, args []any) (any, error)) []any {
	var walk func(v any) any
	walk = func(v any) any {
		if s, ok := v.(string); ok && strings.HasPrefix(s, callbackMarkerPrefix) {
			id := strings.TrimPrefix(s, callbackMarkerPrefix)
			return reg.placeholder(id, invoke)
		}
		switch t := v.(type) {
		case []any:
			out := make([]any, len(t))
			for i, e := range t {
				out[i] = walk(e)
			}
			return out
		case map[string]any:
			out := make(map[string]any, len(t))
			for k, e := range t {
				out[k] = walk(e)
			}
			return out
		default:
			return v
		}
	}
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = walk(a)
	}
	return out
}

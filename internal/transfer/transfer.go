// Package transfer implements the marker cache and custom-handler registry
// that back the transferable value system: a value wrapped with Mark is
// associated with a set of transferable handles until the next time it is
// serialized, at which point the association is consumed and dropped.
//
// Go has no weak maps, so the "weak transfer marker map" from the design
// notes is approximated with an explicit mark/consume lifetime: an entry
// is removed the first time Take is called for its key, matching the
// source behavior that a marker cannot be sent twice.
package transfer

import "sync"

// Marked holds the value and transferable handles registered via Mark.
type Marked struct {
	Value   any
	Handles []any
}

// Registry associates values with transfer markers and named custom
// handlers for values that are not natively transferable.
type Registry struct {
	mu       sync.Mutex
	markers  map[any]*Marked
	handlers []namedHandler
}

type namedHandler struct {
	name    string
	handler Handler
}

// Handler serializes and deserializes a non-native transferable type.
type Handler interface {
	// CanHandle reports whether this handler owns the given value.
	CanHandle(v any) bool
	// Serialize returns wire-safe metadata plus any native handles to move.
	Serialize(v any) (metadata any, handles []any, err error)
	// Deserialize reconstructs the value from metadata produced by Serialize.
	Deserialize(metadata any) (any, error)
}

// NewRegistry returns an empty transfer registry.
func NewRegistry() *Registry {
	return &Registry{markers: make(map[any]*Marked)}
}

// Mark registers key (the user-owned object) as carrying handles the next
// time it is serialized. key must be a non-nil pointer or channel value —
// the set of reference kinds Go can use as a comparable map key by
// identity. A []byte buffer should be passed as *[]byte or wrapped in a
// pointer-to-struct.
func (r *Registry) Mark(key any, handles []any) error {
	if !isReferenceType(key) {
		return ErrInvalidArgument
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markers[key] = &Marked{Value: key, Handles: handles}
	return nil
}

// Take looks up and consumes the marker for key, if any. A marker is
// returned at most once per Mark call.
func (r *Registry) Take(key any) (*Marked, bool) {
	if !isReferenceType(key) {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.markers[key]
	if ok {
		delete(r.markers, key)
	}
	return m, ok
}

// RegisterHandler adds a named custom transfer handler. Handlers are
// probed in registration order; the first match wins.
func (r *Registry) RegisterHandler(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, namedHandler{name: name, handler: h})
}

// FindHandler returns the first registered handler that claims v, and its
// registered name.
func (r *Registry) FindHandler(v any) (name string, h Handler, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, nh := range r.handlers {
		if nh.handler.CanHandle(v) {
			return nh.name, nh.handler, true
		}
	}
	return "", nil, false
}

// HandlerByName returns a registered handler by name, used when rebuilding
// a handler-type transfer slot on receive.
func (r *Registry) HandlerByName(name string) (Handler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, nh := range r.handlers {
		if nh.name == name {
			return nh.handler, true
		}
	}
	return nil, false
}

func isReferenceType(v any) bool {
	if v == nil {
		return false
	}
	return reflectIsReference(v)
}

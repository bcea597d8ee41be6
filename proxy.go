package rpcchan

import (
	"context"
	"encoding/json"
	"fmt"
)

// Proxy is a lazy, dotted-path accumulator over a Channel's remote API.
// GetAPI returns the root; Path descends one segment at a time until Call,
// Get, Set, or Construct fires the actual message.
type Proxy struct {
	ch   *Channel
	path []string
}

// Path returns a child proxy one segment deeper, e.g.
// ch.GetAPI().Path("math").Path("add").
func (p *Proxy) Path(name string) *Proxy {
	next := make([]string, len(p.path)+1)
	copy(next, p.path)
	next[len(p.path)] = name
	return &Proxy{ch: p.ch, path: next}
}

// MethodPath returns the dotted path accumulated so far, e.g. "math.add".
func (p *Proxy) MethodPath() string {
	out := ""
	for i, seg := range p.path {
		if i > 0 {
			out += "."
		}
		out += seg
	}
	return out
}

// Call invokes the remote method at this path with args and returns its
// result, per spec §4.1's request message.
func (p *Proxy) Call(ctx context.Context, args ...any) (any, error) {
	return p.ch.invokeRequest(ctx, p.path, args)
}

// Get fetches the remote property value at this path.
func (p *Proxy) Get(ctx context.Context) (any, error) {
	return p.ch.invokeGet(ctx, p.path)
}

// Set assigns value to the remote property at this path.
func (p *Proxy) Set(ctx context.Context, value any) error {
	return p.ch.invokeSet(ctx, p.path, value)
}

// Construct invokes the remote path as a constructor with args.
func (p *Proxy) Construct(ctx context.Context, args ...any) (any, error) {
	return p.ch.invokeConstruct(ctx, p.path, args)
}

// CallAs invokes p.Call and decodes the result into T via a JSON round
// trip, addressing spec §9's typed-API design note without a JS-style
// dynamic Proxy: Go has no way to fabricate T's shape from an interface
// value directly, so this is the portable stand-in for defineMethod's
// generic method signature.
func CallAs[T any](ctx context.Context, p *Proxy, args ...any) (T, error) {
	var zero T
	result, err := p.Call(ctx, args...)
	if err != nil {
		return zero, err
	}
	var out T
	if err := reshape(result, &out); err != nil {
		return zero, fmt.Errorf("rpcchan: decode result of %q as %T: %w", p.MethodPath(), out, err)
	}
	return out, nil
}

// reshape round-trips v through JSON into out, letting encoding/json do
// the generic-value-to-concrete-type coercion CallAs needs.
func reshape(v any, out any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

package rpcchan

import (
	"fmt"

	"github.com/tenzoki/rpcchan/validate"
)

// Method builds a *validate.Handler exposing fn, the Go equivalent of
// defineMethod's {handler, inputSchema, outputSchema} shape. input and
// output may be nil to skip that side's validation.
func Method(fn func(args []any) (any, error), input, output validate.Schema) *validate.Handler {
	return &validate.Handler{Fn: fn, Input: input, Output: output}
}

// Property exposes a gettable, optionally settable value at a path —
// Go's stand-in for a plain data property on a JS API object, since Go
// has no reflection-free way to treat an arbitrary struct field as both
// readable and remotely assignable.
type Property struct {
	Get func() any
	Set func(value any) error
}

// lookupMethod walks api by path and returns the *validate.Handler at its
// end, or a routing error describing what went wrong.
func lookupMethod(api map[string]any, path []string) (*validate.Handler, error) {
	node, err := walk(api, path)
	if err != nil {
		return nil, err
	}
	h, ok := node.(*validate.Handler)
	if !ok {
		return nil, fmt.Errorf("%q is not callable", dotted(path))
	}
	return h, nil
}

// lookupProperty walks api by path and returns the *Property at its end.
func lookupProperty(api map[string]any, path []string) (*Property, error) {
	node, err := walk(api, path)
	if err != nil {
		return nil, err
	}
	p, ok := node.(*Property)
	if !ok {
		return nil, fmt.Errorf("%q is not a property", dotted(path))
	}
	return p, nil
}

// walk descends api one path segment at a time, returning the terminal
// node (a *validate.Handler, *Property, or nested map[string]any).
func walk(api map[string]any, path []string) (any, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("empty path")
	}
	var cur any = api
	for i, seg := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%q does not resolve: %q is not a namespace", dotted(path), dotted(path[:i]))
		}
		next, ok := m[seg]
		if !ok {
			return nil, fmt.Errorf("%q does not resolve: no member %q", dotted(path), seg)
		}
		cur = next
	}
	return cur, nil
}

func dotted(path []string) string {
	out := ""
	for i, s := range path {
		if i > 0 {
			out += "."
		}
		out += s
	}
	return out
}

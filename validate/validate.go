// Package validate implements the standard-schema-like validation contract
// the channel runs request arguments and responses through, plus a JSON
// Schema backed implementation and the nested-map tree that mirrors an
// exposed API's shape.
package validate

// Issue is a single validation failure.
type Issue struct {
	Message string
	Path    string
}

// Schema validates a single value, returning either the (possibly
// coerced) value or a non-empty list of issues — never both.
type Schema interface {
	Validate(value any) (coerced any, issues []Issue, err error)
}

// Leaf holds the input and/or output schema for one exposed method or
// property. Either may be nil when that side isn't validated.
type Leaf struct {
	Input  Schema
	Output Schema
}

// Validators is the nested-map tree mirroring an exposed API's shape:
// intermediate nodes are nested Validators values (a plain map[string]any
// is not followed by Lookup), and a terminal node is a *Leaf.
type Validators map[string]any

// Lookup resolves a dotted method path (e.g. "math.add") against a
// Validators tree and returns its Leaf, if any.
func Lookup(v Validators, path []string) (*Leaf, bool) {
	cur := v
	for i, seg := range path {
		node, ok := cur[seg]
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			leaf, ok := node.(*Leaf)
			return leaf, ok
		}
		next, ok := node.(Validators)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// Handler pairs a Go function with the validator leaf describing it,
// mirroring defineMethod's {handler, inputSchema, outputSchema} shape.
type Handler struct {
	Fn     func(args []any) (any, error)
	Input  Schema
	Output Schema
}

// ExtractValidators walks api — a tree of values where a *Handler is a
// terminal method, a map[string]any is a namespace recursed into, and any
// other value (a *Property, for instance) gets an empty Leaf — and builds
// the Validators tree Expose attaches to a Channel.
func ExtractValidators(api map[string]any) Validators {
	out := make(Validators, len(api))
	for k, v := range api {
		switch t := v.(type) {
		case *Handler:
			out[k] = &Leaf{Input: t.Input, Output: t.Output}
		case map[string]any:
			out[k] = ExtractValidators(t)
		default:
			out[k] = &Leaf{}
		}
	}
	return out
}

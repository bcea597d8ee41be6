package wire

import (
	"encoding/json"
	"fmt"
	"math/big"
	"reflect"
	"time"
)

// Set is an ordered, duplicate-free collection — the enhanced dialect's
// analog of a JS Set. Order of first insertion is preserved.
type Set struct {
	items []any
	index map[any]struct{}
}

// NewSet builds a Set from the given items, dropping duplicates.
func NewSet(items ...any) *Set {
	s := &Set{index: make(map[any]struct{}, len(items))}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add appends v if not already present.
func (s *Set) Add(v any) {
	if s.index == nil {
		s.index = make(map[any]struct{})
	}
	if _, ok := s.index[v]; ok {
		return
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
}

// Has reports whether v is a member.
func (s *Set) Has(v any) bool {
	_, ok := s.index[v]
	return ok
}

// Items returns the members in insertion order.
func (s *Set) Items() []any { return s.items }

// MarshalValue encodes v into a JSON-compatible generic tree under the
// given dialect, then marshals that tree. Plain dialect only special-cases
// byte slices (tagged {"type":"Uint8Array","data":[...]}, per spec's
// replacer note); enhanced dialect additionally tags dates, big integers,
// sets and non-string-keyed maps.
func MarshalValue(v any, d Dialect) (json.RawMessage, error) {
	tree, err := encodeValue(v, d)
	if err != nil {
		return nil, err
	}
	return json.Marshal(tree)
}

// UnmarshalValue parses data and reconstructs tagged values back into
// their Go representation under the given dialect.
func UnmarshalValue(data json.RawMessage, d Dialect) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return decodeValue(tree, d), nil
}

func encodeValue(v any, d Dialect) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytesTag(t), nil
	case time.Time:
		if d == Enhanced {
			return map[string]any{"__type": "Date", "value": t.Format(time.RFC3339Nano)}, nil
		}
		return t.Format(time.RFC3339Nano), nil
	case *big.Int:
		if d == Enhanced {
			return map[string]any{"__type": "BigInt", "value": t.String()}, nil
		}
		return t.String(), nil
	case *Set:
		items := make([]any, 0, len(t.items))
		for _, it := range t.items {
			enc, err := encodeValue(it, d)
			if err != nil {
				return nil, err
			}
			items = append(items, enc)
		}
		if d == Enhanced {
			return map[string]any{"__type": "Set", "value": items}, nil
		}
		return items, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			enc, err := encodeValue(e, d)
			if err != nil {
				return nil, err
			}
			out[k] = enc
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			enc, err := encodeValue(e, d)
			if err != nil {
				return nil, err
			}
			out[i] = enc
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		return encodeReflectMap(rv, d)
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			enc, err := encodeValue(rv.Index(i).Interface(), d)
			if err != nil {
				return nil, err
			}
			out[i] = enc
		}
		return out, nil
	}

	// Structs, pointers, and scalars not covered above are handed to
	// encoding/json directly and round-tripped through interface{} so the
	// remaining dialect-specific tags inside them (if any, via nested
	// MarshalJSON) still take effect.
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("wire: encode value: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return generic, nil
}

func encodeReflectMap(rv reflect.Value, d Dialect) (any, error) {
	keyIsString := rv.Type().Key().Kind() == reflect.String
	if keyIsString && d == Plain {
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			enc, err := encodeValue(iter.Value().Interface(), d)
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = enc
		}
		return out, nil
	}
	if keyIsString {
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			enc, err := encodeValue(iter.Value().Interface(), d)
			if err != nil {
				return nil, err
			}
			out[iter.Key().String()] = enc
		}
		return out, nil
	}
	// Non-string keys: plain dialect falls back to stringifying keys into a
	// regular object (lossy but valid JSON); enhanced dialect preserves the
	// original key/value pairing with a Map tag.
	pairs := make([]any, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		kEnc, err := encodeValue(iter.Key().Interface(), d)
		if err != nil {
			return nil, err
		}
		vEnc, err := encodeValue(iter.Value().Interface(), d)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, []any{kEnc, vEnc})
	}
	if d == Enhanced {
		return map[string]any{"__type": "Map", "value": pairs}, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		pair := p.([]any)
		out[fmt.Sprint(pair[0])] = pair[1]
	}
	return out, nil
}

func bytesTag(b []byte) map[string]any {
	data := make([]any, len(b))
	for i, c := range b {
		data[i] = float64(c)
	}
	return map[string]any{"type": "Uint8Array", "data": data}
}

func decodeValue(tree any, d Dialect) any {
	switch t := tree.(type) {
	case map[string]any:
		if typ, ok := t["type"].(string); ok && typ == "Uint8Array" {
			if data, ok := t["data"].([]any); ok {
				return bytesFromTag(data)
			}
		}
		if d == Enhanced {
			if typ, ok := t["__type"].(string); ok {
				switch typ {
				case "Date":
					if s, ok := t["value"].(string); ok {
						if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
							return ts
						}
					}
				case "BigInt":
					if s, ok := t["value"].(string); ok {
						if n, ok := new(big.Int).SetString(s, 10); ok {
							return n
						}
					}
				case "Set":
					if vals, ok := t["value"].([]any); ok {
						items := make([]any, len(vals))
						for i, v := range vals {
							items[i] = decodeValue(v, d)
						}
						return NewSet(items...)
					}
				case "Map":
					if vals, ok := t["value"].([]any); ok {
						out := make(map[string]any, len(vals))
						for _, p := range vals {
							pair, ok := p.([]any)
							if !ok || len(pair) != 2 {
								continue
							}
							k := decodeValue(pair[0], d)
							v := decodeValue(pair[1], d)
							out[fmt.Sprint(k)] = v
						}
						return out
					}
				}
			}
		}
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = decodeValue(v, d)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = decodeValue(v, d)
		}
		return out
	default:
		return t
	}
}

func bytesFromTag(data []any) []byte {
	out := make([]byte, len(data))
	for i, v := range data {
		if f, ok := v.(float64); ok {
			out[i] = byte(f)
		}
	}
	return out
}

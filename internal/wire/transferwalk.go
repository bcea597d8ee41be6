package wire

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tenzoki/rpcchan/internal/transfer"
)

// RewriteTransfers walks args — a tuple of Go values, not yet dialect
// encoded — looking for values marked via transfer.Registry.Mark or
// claimed by a registered custom handler. Each match is replaced in place
// with a slot token string; the walk recurses into plain []any and
// map[string]any trees only, matching spec's "recurses into plain arrays
// and plain object literals" scope. transferredValues is parallel to
// slots: a "raw" slot's entry is the marked value itself, a "handler"
// slot's entry is the handles the handler's Serialize returned.
func RewriteTransfers(args []any, reg *transfer.Registry) (rewritten []any, slots []TransferSlot, transferredValues []any) {
	var walk func(v any) any
	walk = func(v any) any {
		if m, ok := reg.Take(v); ok {
			idx := len(slots)
			slots = append(slots, TransferSlot{Type: "raw"})
			transferredValues = append(transferredValues, m.Value)
			return slotToken(idx)
		}
		if name, h, ok := reg.FindHandler(v); ok {
			meta, handles, err := h.Serialize(v)
			if err == nil {
				idx := len(slots)
				slots = append(slots, TransferSlot{Type: "handler", HandlerName: name, Metadata: meta})
				transferredValues = append(transferredValues, handles)
				return slotToken(idx)
			}
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

	rewritten = make([]any, len(args))
	for i, a := range args {
		rewritten[i] = walk(a)
	}
	return
}

// RestoreTransfers reverses RewriteTransfers on the receiving side,
// expanding slot tokens back into values using transferredValues (when the
// slot is a "raw" native transfer) or the named handler's Deserialize (for
// a "handler" slot).
func RestoreTransfers(args []any, slots []TransferSlot, transferredValues []any, reg *transfer.Registry) ([]any, error) {
	var walk func(v any) (any, error)
	walk = func(v any) (any, error) {
		if s, ok := v.(string); ok && strings.HasPrefix(s, TransferSlotPrefix) {
			idx, err := strconv.Atoi(strings.TrimPrefix(s, TransferSlotPrefix))
			if err != nil || idx < 0 || idx >= len(slots) {
				return nil, fmt.Errorf("wire: invalid transfer slot token %q", s)
			}
			slot := slots[idx]
			switch slot.Type {
			case "raw":
				if idx >= len(transferredValues) {
					return nil, fmt.Errorf("wire: missing transferred value for slot %d", idx)
				}
				return transferredValues[idx], nil
			case "handler":
				h, ok := reg.HandlerByName(slot.HandlerName)
				if !ok {
					return nil, fmt.Errorf("wire: no transfer handler registered for %q", slot.HandlerName)
				}
				return h.Deserialize(slot.Metadata)
			default:
				return nil, fmt.Errorf("wire: unknown transfer slot type %q", slot.Type)
			}
		}
		switch t := v.(type) {
		case []any:
			out := make([]any, len(t))
			for i, e := range t {
				r, err := walk(e)
				if err != nil {
					return nil, err
				}
				out[i] = r
			}
			return out, nil
		case map[string]any:
			out := make(map[string]any, len(t))
			for k, e := range t {
				r, err := walk(e)
				if err != nil {
					return nil, err
				}
				out[k] = r
			}
			return out, nil
		default:
			return v, nil
		}
	}

	out := make([]any, len(args))
	for i, a := range args {
		r, err := walk(a)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func slotToken(idx int) string {
	return TransferSlotPrefix + strconv.Itoa(idx)
}

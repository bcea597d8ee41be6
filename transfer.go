package rpcchan

import "github.com/tenzoki/rpcchan/internal/transfer"

// TransferHandler serializes and deserializes a value type that is not
// natively transferable, matching spec §4.3's handler registry contract.
type TransferHandler = transfer.Handler

var defaultTransfers = transfer.NewRegistry()

// Transfer marks value as carrying the given transferable handles the
// next time it crosses the wire, and returns value unchanged so calls can
// be chained fluently: api.Path("process").Call(ctx, Transfer(buf, []any{buf})).
//
// value must be a pointer or channel — the Go kinds that carry a stable
// reference identity suitable for a map key. Anything else returns value
// unchanged and silently does not register a marker.
func Transfer(value any, handles []any) any {
	_ = defaultTransfers.Mark(value, handles)
	return value
}

// RegisterTransferHandler adds a named custom transfer handler to the
// package-level registry every Channel uses.
func RegisterTransferHandler(name string, h TransferHandler) {
	defaultTransfers.RegisterHandler(name, h)
}

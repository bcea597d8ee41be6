// Package wire implements the two serialization dialects, the
// newline-terminated string framing, the enhanced-error codec, and the
// transferable slot rewrite/restore walk described in spec §4.2.
package wire

// Marker string prefixes recognized on the wire. These live here (rather
// than in the rpcchan package that also needs them) so both the channel
// and the serializer can import one source of truth without an import
// cycle back to the channel.
const (
	CallbackMarkerPrefix = "__callback__"
	TransferSlotPrefix   = "__kkrpc_transfer_"
)

// Dialect selects which value-tagging scheme MarshalValue/UnmarshalValue
// use for scalar and collection types beyond what plain encoding/json
// supports natively.
type Dialect string

const (
	Plain    Dialect = "json"
	Enhanced Dialect = "enhanced"
)

const enhancedSentinel = `{"__kk_e`

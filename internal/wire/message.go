package wire

import "encoding/json"

// MessageType is one of the six wire message kinds the channel dispatches.
type MessageType string

const (
	TypeRequest   MessageType = "request"
	TypeResponse  MessageType = "response"
	TypeCallback  MessageType = "callback"
	TypeGet       MessageType = "get"
	TypeSet       MessageType = "set"
	TypeConstruct MessageType = "construct"
)

// Message is the wire unit exchanged between two channel endpoints. It is
// defined here, rather than in the rpcchan package that exposes it, so the
// framer and codec in this package can decode a line without importing
// back up into rpcchan.
type Message struct {
	ID     string          `json:"id"`
	Type   MessageType     `json:"type"`
	Method string          `json:"method,omitempty"`
	Args   json.RawMessage `json:"args,omitempty"`

	// Path carries the property-path segments for get/set messages.
	Path []string `json:"path,omitempty"`

	// Value carries the assignment payload for set messages.
	Value json.RawMessage `json:"value,omitempty"`

	// CallbackIDs is informational bookkeeping only — the authoritative
	// callback markers live inside Args.
	CallbackIDs []string `json:"callbackIds,omitempty"`

	TransferSlots []TransferSlot `json:"transferSlots,omitempty"`

	// TransferredValues carries the values RewriteTransfers pulled out of
	// Args, dialect-encoded the same way the rest of
	// the message is. A true zero-copy transport would move these out of
	// band instead; a line-oriented transport has no out-of-band channel,
	// so they ride inline here.
	TransferredValues json.RawMessage `json:"transferredValues,omitempty"`

	Version string `json:"version,omitempty"`
}

// TransferSlot describes one transferable value rewritten out of a
// message's payload during serialization.
type TransferSlot struct {
	Type        string `json:"type"` // "raw" or "handler"
	HandlerName string `json:"handlerName,omitempty"`
	Metadata    any    `json:"metadata,omitempty"`
}

// ResponseArgs is the {result} / {error} envelope carried in a response
// message's Args field.
type ResponseArgs struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  map[string]any  `json:"error,omitempty"`
}

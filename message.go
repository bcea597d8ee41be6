package rpcchan

import "github.com/tenzoki/rpcchan/internal/wire"

// MessageType is one of the six wire message kinds the channel dispatches.
type MessageType = wire.MessageType

const (
	TypeRequest   = wire.TypeRequest
	TypeResponse  = wire.TypeResponse
	TypeCallback  = wire.TypeCallback
	TypeGet       = wire.TypeGet
	TypeSet       = wire.TypeSet
	TypeConstruct = wire.TypeConstruct
)

// Serialization dialect tags carried on the wire. EncodeLine writes
// VersionJSON or VersionEnhanced into every message's version field.
// Decoding does not read that field: the dialect is taken from the
// enhanced envelope's sentinel alone, so a document without the sentinel
// is decoded as plain JSON whether or not it carries a version.
const (
	VersionJSON     = string(wire.Plain)
	VersionEnhanced = string(wire.Enhanced)
)

// Message is the wire unit exchanged between two channel endpoints.
type Message = wire.Message

// TransferSlot describes one transferable value rewritten out of a
// message's payload during serialization.
type TransferSlot = wire.TransferSlot

const (
	callbackMarkerPrefix = wire.CallbackMarkerPrefix
	transferSlotPrefix   = wire.TransferSlotPrefix
)

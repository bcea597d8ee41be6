package wire

import (
	"bytes"
	"encoding/json"
)

// enhancedEnvelope wraps a Message when the enhanced dialect is in use.
// Its field order puts the sentinel key first so EncodeLine's output
// always begins with enhancedSentinel, which is what DecodeLine sniffs
// for on the way back in.
type enhancedEnvelope struct {
	Enhanced int      `json:"__kk_enhanced"`
	Message  *Message `json:"message"`
}

// EncodeLine serializes msg as one wire line (without the trailing
// newline — the channel appends it when writing, since the channel, not
// the transport, owns line framing). dialect selects which value-tagging
// scheme was used to build msg.Args/msg.Value and records which wrapper,
// if any, this line needs on the outside.
func EncodeLine(msg *Message, dialect Dialect) ([]byte, error) {
	if dialect == Enhanced {
		msg.Version = string(Enhanced)
		return json.Marshal(enhancedEnvelope{Enhanced: 1, Message: msg})
	}
	msg.Version = string(Plain)
	return json.Marshal(msg)
}

// DecodeLine parses one wire line, auto-detecting the dialect by
// inspecting the first characters of the document per spec §4.2: a
// document opening with the enhanced envelope's sentinel key is unwrapped
// as enhanced, otherwise it is parsed as a plain Message directly.
func DecodeLine(line []byte) (*Message, Dialect, error) {
	trimmed := bytes.TrimSpace(line)
	if bytes.HasPrefix(trimmed, []byte(enhancedSentinel)) {
		var env enhancedEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, "", err
		}
		if env.Message != nil {
			env.Message.Version = string(Enhanced)
		}
		return env.Message, Enhanced, nil
	}
	var msg Message
	if err := json.Unmarshal(trimmed, &msg); err != nil {
		return nil, "", err
	}
	msg.Version = string(Plain)
	return &msg, Plain, nil
}

package rpcchan

import (
	"context"
	"encoding/json"

	"github.com/tenzoki/rpcchan/internal/wire"
)

// invokeRequest sends a request message for path(args...) and waits for
// its response, honoring ch.opts.TimeoutMs and ctx cancellation.
func (ch *Channel) invokeRequest(ctx context.Context, path []string, args []any) (any, error) {
	return ch.call(ctx, wire.TypeRequest, path, args)
}

// invokeConstruct sends a construct message — the same request/response
// round trip as invokeRequest, routed to the construct dispatch path on
// the remote side.
func (ch *Channel) invokeConstruct(ctx context.Context, path []string, args []any) (any, error) {
	return ch.call(ctx, wire.TypeConstruct, path, args)
}

func (ch *Channel) call(ctx context.Context, typ wire.MessageType, path []string, args []any) (any, error) {
	if ch.destroyed.Load() {
		return nil, &DestroyedError{}
	}

	argsRaw, slots, transferredRaw, err := ch.encodeOutboundArgs(args)
	if err != nil {
		return nil, err
	}

	id := newMessageID()
	msg := &wire.Message{
		ID:                id,
		Type:              typ,
		Method:            dotted(path),
		Path:              path,
		Args:              argsRaw,
		TransferSlots:      slots,
		TransferredValues: transferredRaw,
	}

	resultCh := ch.pending.register(id, ch.opts.TimeoutMs, func() {
		ch.pending.resolve(id, nil, &TimeoutError{Method: dotted(path), TimeoutMs: ch.opts.TimeoutMs})
	})

	if err := ch.writeMessage(ctx, msg); err != nil {
		ch.pending.resolve(id, nil, err)
	}

	select {
	case res := <-resultCh:
		return res.value, res.err
	case <-ctx.Done():
		ch.pending.resolve(id, nil, ctx.Err())
		return nil, ctx.Err()
	}
}

// invokeGet sends a get message for path and waits for its response.
func (ch *Channel) invokeGet(ctx context.Context, path []string) (any, error) {
	if ch.destroyed.Load() {
		return nil, &DestroyedError{}
	}
	id := newMessageID()
	msg := &wire.Message{ID: id, Type: wire.TypeGet, Method: dotted(path), Path: path}

	resultCh := ch.pending.register(id, ch.opts.TimeoutMs, func() {
		ch.pending.resolve(id, nil, &TimeoutError{Method: dotted(path), TimeoutMs: ch.opts.TimeoutMs})
	})
	if err := ch.writeMessage(ctx, msg); err != nil {
		ch.pending.resolve(id, nil, err)
	}
	select {
	case res := <-resultCh:
		return res.value, res.err
	case <-ctx.Done():
		ch.pending.resolve(id, nil, ctx.Err())
		return nil, ctx.Err()
	}
}

// invokeSet sends a set message assigning value to path and waits for
// acknowledgement (a response carrying no result, or a routing error).
func (ch *Channel) invokeSet(ctx context.Context, path []string, value any) error {
	if ch.destroyed.Load() {
		return &DestroyedError{}
	}
	valueRaw, err := wire.MarshalValue(value, ch.dialect)
	if err != nil {
		return err
	}

	id := newMessageID()
	msg := &wire.Message{ID: id, Type: wire.TypeSet, Method: dotted(path), Path: path, Value: valueRaw}

	resultCh := ch.pending.register(id, ch.opts.TimeoutMs, func() {
		ch.pending.resolve(id, nil, &TimeoutError{Method: dotted(path), TimeoutMs: ch.opts.TimeoutMs})
	})
	if err := ch.writeMessage(ctx, msg); err != nil {
		ch.pending.resolve(id, nil, err)
	}
	select {
	case res := <-resultCh:
		return res.err
	case <-ctx.Done():
		ch.pending.resolve(id, nil, ctx.Err())
		return ctx.Err()
	}
}

// invokeRemoteCallback sends a callback message invoking the callback id
// the remote side handed us earlier, and waits for its response. This is
// the invoke function callbackRegistry.placeholder wraps into a
// *Callback.
func (ch *Channel) invokeRemoteCallback(id string, args []any) (any, error) {
	if ch.destroyed.Load() {
		return nil, &DestroyedError{}
	}
	argsRaw, slots, transferredRaw, err := ch.encodeOutboundArgs(args)
	if err != nil {
		return nil, err
	}

	msgID := newMessageID()
	msg := &wire.Message{
		ID:                msgID,
		Type:              wire.TypeCallback,
		Method:            id,
		Args:              argsRaw,
		TransferSlots:      slots,
		TransferredValues: transferredRaw,
	}

	resultCh := ch.pending.register(msgID, ch.opts.TimeoutMs, func() {
		ch.pending.resolve(msgID, nil, &TimeoutError{Method: "callback:" + id, TimeoutMs: ch.opts.TimeoutMs})
	})
	if err := ch.writeMessage(ch.ctx, msg); err != nil {
		ch.pending.resolve(msgID, nil, err)
	}
	res := <-resultCh
	return res.value, res.err
}

// decodeResponse unpacks a response message's Args into (value, error).
func (ch *Channel) decodeResponse(msg *wire.Message, dialect wire.Dialect) (any, error) {
	var ra wire.ResponseArgs
	if len(msg.Args) > 0 {
		if err := json.Unmarshal(msg.Args, &ra); err != nil {
			return nil, err
		}
	}
	if ra.Error != nil {
		we := wire.WireErrorFromMap(ra.Error)
		return nil, deserializeError(we)
	}
	if len(ra.Result) == 0 {
		return nil, nil
	}
	value, err := wire.UnmarshalValue(ra.Result, dialect)
	if err != nil {
		return nil, err
	}
	if len(msg.TransferSlots) > 0 {
		var transferred []any
		if len(msg.TransferredValues) > 0 {
			tv, err := wire.UnmarshalValue(msg.TransferredValues, dialect)
			if err != nil {
				return nil, err
			}
			if list, ok := tv.([]any); ok {
				transferred = list
			}
		}
		restored, err := wire.RestoreTransfers([]any{value}, msg.TransferSlots, transferred, ch.transfers)
		if err != nil {
			return nil, err
		}
		if len(restored) == 1 {
			value = restored[0]
		}
	}
	return value, nil
}

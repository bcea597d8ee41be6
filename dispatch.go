package rpcchan

import (
	"context"
	"encoding/json"

	"github.com/tenzoki/rpcchan/internal/wire"
	"github.com/tenzoki/rpcchan/validate"
)

// dispatch routes one decoded inbound message to the handler for its
// Type, per spec §4.5.
func (ch *Channel) dispatch(msg *wire.Message, dialect wire.Dialect) {
	if msg == nil {
		return
	}
	switch msg.Type {
	case wire.TypeResponse:
		value, err := ch.decodeResponse(msg, dialect)
		ch.pending.resolve(msg.ID, value, err)
	case wire.TypeRequest, wire.TypeConstruct:
		ch.handleCall(msg, dialect)
	case wire.TypeGet:
		ch.handleGet(msg, dialect)
	case wire.TypeSet:
		ch.handleSet(msg, dialect)
	case wire.TypeCallback:
		ch.handleCallback(msg, dialect)
	default:
		ch.logDebug("ignoring message with unknown type %q", msg.Type)
	}
}

func (ch *Channel) path(msg *wire.Message) []string {
	if len(msg.Path) > 0 {
		return msg.Path
	}
	return splitPath(msg.Method)
}

func (ch *Channel) handleCall(msg *wire.Message, dialect wire.Dialect) {
	path := ch.path(msg)

	args, err := ch.decodeInboundArgs(msg, dialect)
	if err != nil {
		ch.respondError(msg.ID, &RoutingError{Method: dotted(path), Message: err.Error()})
		return
	}

	ch.mu.RLock()
	api := ch.api
	validators := ch.validators
	ch.mu.RUnlock()

	handler, err := lookupMethod(api, path)
	if err != nil {
		ch.respondError(msg.ID, &RoutingError{Method: dotted(path), Message: err.Error()})
		return
	}

	leaf, hasLeaf := validate.Lookup(validators, path)

	if hasLeaf && leaf.Input != nil {
		_, issues, verr := leaf.Input.Validate(filterCallbackArgs(args))
		if verr != nil {
			ch.respondError(msg.ID, verr)
			return
		}
		if len(issues) > 0 {
			ch.respondError(msg.ID, &ValidationError{Phase: PhaseInput, Method: dotted(path), Issues: toIssues(issues)})
			return
		}
	}

	ch.interceptorsMu.RLock()
	interceptors := append([]Interceptor(nil), ch.interceptors...)
	ch.interceptorsMu.RUnlock()

	info := CallInfo{Method: dotted(path), Args: args}
	next := chain(interceptors, info, func(context.Context) (any, error) {
		return handler.Fn(args)
	})
	result, err := next(ch.ctx)
	if err != nil {
		ch.respondError(msg.ID, err)
		return
	}

	if hasLeaf && leaf.Output != nil {
		_, issues, verr := leaf.Output.Validate(result)
		if verr != nil {
			ch.respondError(msg.ID, verr)
			return
		}
		if len(issues) > 0 {
			ch.respondError(msg.ID, &ValidationError{Phase: PhaseOutput, Method: dotted(path), Issues: toIssues(issues)})
			return
		}
	}

	ch.respondSuccess(msg.ID, result, dialect)
}

func (ch *Channel) handleGet(msg *wire.Message, dialect wire.Dialect) {
	path := ch.path(msg)
	ch.mu.RLock()
	api := ch.api
	ch.mu.RUnlock()

	prop, err := lookupProperty(api, path)
	if err != nil {
		ch.respondError(msg.ID, &RoutingError{Method: dotted(path), Message: err.Error()})
		return
	}
	ch.respondSuccess(msg.ID, prop.Get(), dialect)
}

func (ch *Channel) handleSet(msg *wire.Message, dialect wire.Dialect) {
	path := ch.path(msg)
	ch.mu.RLock()
	api := ch.api
	ch.mu.RUnlock()

	prop, err := lookupProperty(api, path)
	if err != nil {
		ch.respondError(msg.ID, &RoutingError{Method: dotted(path), Message: err.Error()})
		return
	}
	if prop.Set == nil {
		ch.respondError(msg.ID, &RoutingError{Method: dotted(path), Message: "property is not settable"})
		return
	}
	value, err := wire.UnmarshalValue(msg.Value, dialect)
	if err != nil {
		ch.respondError(msg.ID, &RoutingError{Method: dotted(path), Message: err.Error()})
		return
	}
	if err := prop.Set(value); err != nil {
		ch.respondError(msg.ID, err)
		return
	}
	ch.respondSuccess(msg.ID, nil, dialect)
}

func (ch *Channel) handleCallback(msg *wire.Message, dialect wire.Dialect) {
	cb, ok := ch.callbacks.lookup(msg.Method)
	if !ok {
		ch.logDebug("dropping callback message for unregistered id %q", msg.Method)
		return
	}
	args, err := ch.decodeInboundArgs(msg, dialect)
	if err != nil {
		ch.respondError(msg.ID, &RoutingError{Method: msg.Method, Message: err.Error()})
		return
	}
	result, err := cb.invoke(args)
	if err != nil {
		ch.respondError(msg.ID, err)
		return
	}
	ch.respondSuccess(msg.ID, result, dialect)
}

func (ch *Channel) respondSuccess(id string, result any, dialect wire.Dialect) {
	resultRaw, err := wire.MarshalValue(result, dialect)
	if err != nil {
		ch.respondError(id, err)
		return
	}
	body, err := json.Marshal(wire.ResponseArgs{Result: resultRaw})
	if err != nil {
		ch.logError("encode response for %s: %v", id, err)
		return
	}
	msg := &wire.Message{ID: id, Type: wire.TypeResponse, Args: body}
	if err := ch.writeMessage(ch.ctx, msg); err != nil {
		ch.logError("write response for %s: %v", id, err)
	}
}

func (ch *Channel) respondError(id string, err error) {
	we := serializeError(err)
	body, marshalErr := json.Marshal(wire.ResponseArgs{Error: we.ToMap()})
	if marshalErr != nil {
		ch.logError("encode error response for %s: %v", id, marshalErr)
		return
	}
	msg := &wire.Message{ID: id, Type: wire.TypeResponse, Args: body}
	if writeErr := ch.writeMessage(ch.ctx, msg); writeErr != nil {
		ch.logError("write error response for %s: %v", id, writeErr)
	}
}

// filterCallbackArgs drops already-restored *Callback placeholders from args
// before validation: a callback is a callable by the time dispatch sees it,
// not a value an input schema can express an opinion about.
func filterCallbackArgs(args []any) []any {
	out := make([]any, 0, len(args))
	for _, a := range args {
		if _, ok := a.(*Callback); ok {
			continue
		}
		out = append(out, a)
	}
	return out
}

func toIssues(issues []validate.Issue) []Issue {
	out := make([]Issue, len(issues))
	for i, iss := range issues {
		out[i] = Issue{Message: iss.Message, Path: iss.Path}
	}
	return out
}

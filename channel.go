package rpcchan

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/tenzoki/rpcchan/config"
	"github.com/tenzoki/rpcchan/internal/transfer"
	"github.com/tenzoki/rpcchan/internal/wire"
	"github.com/tenzoki/rpcchan/transport"
	"github.com/tenzoki/rpcchan/validate"
)

// inboundMsg is one decoded, not-yet-dispatched message queued from
// readLoop to dispatchLoop.
type inboundMsg struct {
	msg     *wire.Message
	dialect wire.Dialect
}

// Channel is a bidirectional RPC endpoint over one Transport. Build one
// with NewChannel, expose a local API with Expose, and call the remote
// side's API through GetAPI. A Channel owns a background reader goroutine
// and must be closed with Destroy once it's no longer needed.
type Channel struct {
	io      transport.Transport
	opts    config.Options
	dialect wire.Dialect

	pending   *pendingRegistry
	callbacks *callbackRegistry
	transfers *transfer.Registry

	framer  wire.Framer
	inbound chan inboundMsg

	mu         sync.RWMutex
	api        map[string]any
	validators validate.Validators

	interceptorsMu sync.RWMutex
	interceptors   []Interceptor

	destroyed atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
	readDone  chan struct{}
}

// NewChannel wraps io in a Channel using opts (zero value means
// config.DefaultOptions()).
func NewChannel(io transport.Transport, opts config.Options) *Channel {
	if opts == (config.Options{}) {
		opts = config.DefaultOptions()
	} else if opts.Dialect == "" {
		opts.Dialect = string(wire.Enhanced)
	}
	ctx, cancel := context.WithCancel(context.Background())
	ch := &Channel{
		io:        io,
		opts:      opts,
		dialect:   wire.Dialect(opts.Dialect),
		pending:   newPendingRegistry(),
		callbacks: newCallbackRegistry(),
		transfers: defaultTransfers,
		inbound:   make(chan inboundMsg, 64),
		api:       make(map[string]any),
		ctx:       ctx,
		cancel:    cancel,
		readDone:  make(chan struct{}),
	}
	go ch.readLoop()
	go ch.dispatchLoop()
	return ch
}

// GetAPI returns a Proxy over the remote side's exposed API.
func (ch *Channel) GetAPI() *Proxy {
	return &Proxy{ch: ch}
}

// GetIO returns the underlying Transport.
func (ch *Channel) GetIO() transport.Transport {
	return ch.io
}

// Use appends an interceptor to the chain every inbound request and
// construct dispatch runs through, outermost-registered-first. Get and
// set dispatches do not run through the chain.
func (ch *Channel) Use(i Interceptor) {
	ch.interceptorsMu.Lock()
	defer ch.interceptorsMu.Unlock()
	ch.interceptors = append(ch.interceptors, i)
}

// Expose replaces the local API the remote side can call, get, set, and
// construct against. api's leaves are *validate.Handler (methods) or
// *Property (gettable/settable values); intermediate nodes are nested
// map[string]any namespaces. validators, if non-nil, overrides the
// input/output schemas ExtractValidators would derive from api itself.
func (ch *Channel) Expose(api map[string]any, validators validate.Validators) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.api = api
	if validators != nil {
		ch.validators = validators
	} else {
		ch.validators = validate.ExtractValidators(api)
	}
}

// FreeCallbacks drops every registered callback, releasing closures the
// caller no longer wants kept alive without tearing down the channel.
func (ch *Channel) FreeCallbacks() {
	ch.callbacks.clear()
}

// Destroy is idempotent: it rejects every outstanding call with a
// DestroyedError, clears callback and timer state, and releases the
// transport.
func (ch *Channel) Destroy() error {
	if !ch.destroyed.CompareAndSwap(false, true) {
		return nil
	}
	ch.cancel()
	ch.pending.clear(&DestroyedError{})
	ch.callbacks.clear()
	if d, ok := ch.io.(transport.Destroyer); ok {
		return d.Destroy()
	}
	return nil
}

func (ch *Channel) logDebug(format string, args ...any) {
	if ch.opts.Debug {
		log.Printf("rpcchan debug: "+format, args...)
	}
}

func (ch *Channel) logInfo(format string, args ...any) {
	log.Printf("rpcchan: "+format, args...)
}

func (ch *Channel) logError(format string, args ...any) {
	log.Printf("rpcchan error: "+format, args...)
}

// readLoop is the background goroutine that reads raw chunks off the
// transport, mirroring BrokerClient.messageListener's dedicated reader
// goroutine. Framing (accumulating chunks, splitting on newlines,
// retaining a trailing partial line) happens here via ch.framer, per
// spec §4.5's Reader loop — the transport's only obligation is to
// deliver bytes, not to guarantee line boundaries.
func (ch *Channel) readLoop() {
	defer close(ch.readDone)
	for {
		chunk, err := ch.io.Read(ch.ctx)
		if err != nil {
			if ch.ctx.Err() == nil {
				ch.logDebug("transport read ended: %v", err)
			}
			return
		}
		for _, line := range ch.framer.Feed([]byte(chunk)) {
			if !ch.handleLine(line) {
				return
			}
		}
	}
}

// handleLine decodes one complete line and either resolves it
// immediately (responses, which never run user code and must not be
// blocked behind a slow handler) or queues it for dispatchLoop to
// process in order. It reports whether readLoop should keep reading.
func (ch *Channel) handleLine(line []byte) bool {
	msg, dialect, err := wire.DecodeLine(line)
	if err != nil {
		// Not a line this protocol produced (stray log output on a
		// shared stdio transport, for instance) — pass it through to
		// diagnostic output unchanged rather than tearing down the
		// channel or discarding it, per spec §4.2/§8's non-JSON
		// passthrough requirement.
		fmt.Fprintln(os.Stderr, string(line))
		return true
	}
	if msg.Type == wire.TypeResponse {
		ch.dispatch(msg, dialect)
		return true
	}
	select {
	case ch.inbound <- inboundMsg{msg: msg, dialect: dialect}:
		return true
	case <-ch.ctx.Done():
		return false
	}
}

// dispatchLoop is the single worker that processes every queued
// request/get/set/callback message strictly in arrival order — spec §5's
// "the channel never introduces parallelism" and §9's warning that
// handlers share per-channel state (callback registry, property writes)
// that concurrent dispatch would race on. Response messages bypass this
// queue entirely (see handleLine) so a handler blocked on a nested
// outbound call doesn't deadlock waiting for its own response.
func (ch *Channel) dispatchLoop() {
	for {
		select {
		case m := <-ch.inbound:
			ch.dispatch(m.msg, m.dialect)
		case <-ch.ctx.Done():
			return
		}
	}
}

// writeMessage dialect-encodes msg and writes it as one newline-terminated
// line; the channel, not the transport, owns line framing.
func (ch *Channel) writeMessage(ctx context.Context, msg *wire.Message) error {
	line, err := wire.EncodeLine(msg, ch.dialect)
	if err != nil {
		return fmt.Errorf("rpcchan: encode message: %w", err)
	}
	return ch.io.Write(ctx, string(line)+"\n")
}

func (ch *Channel) useTransfer() bool {
	return ch.opts.EnableTransfer && ch.io.Capabilities().Transfer
}

// encodeOutboundArgs replaces *Callback values with callback markers,
// rewrites transferables when enabled, and dialect-encodes the resulting
// tuple plus any transferred values.
func (ch *Channel) encodeOutboundArgs(args []any) (json.RawMessage, []wire.TransferSlot, json.RawMessage, error) {
	withCallbacks := walkCallbacksOut(args, ch.callbacks)

	var slots []wire.TransferSlot
	var transferredRaw json.RawMessage
	final := withCallbacks
	if ch.useTransfer() {
		rewritten, s, transferred := wire.RewriteTransfers(withCallbacks, ch.transfers)
		final = rewritten
		slots = s
		if len(transferred) > 0 {
			raw, err := wire.MarshalValue(transferred, ch.dialect)
			if err != nil {
				return nil, nil, nil, err
			}
			transferredRaw = raw
		}
	}

	argsRaw, err := wire.MarshalValue(final, ch.dialect)
	if err != nil {
		return nil, nil, nil, err
	}
	return argsRaw, slots, transferredRaw, nil
}

// decodeInboundArgs is encodeOutboundArgs's inverse: it restores
// transferred values and expands callback markers into invokable
// *Callback placeholders.
func (ch *Channel) decodeInboundArgs(msg *wire.Message, dialect wire.Dialect) ([]any, error) {
	decoded, err := wire.UnmarshalValue(msg.Args, dialect)
	if err != nil {
		return nil, fmt.Errorf("rpcchan: decode args: %w", err)
	}
	tuple, ok := decoded.([]any)
	if decoded == nil {
		tuple = nil
	} else if !ok {
		return nil, fmt.Errorf("rpcchan: args is not a tuple")
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
		tuple, err = wire.RestoreTransfers(tuple, msg.TransferSlots, transferred, ch.transfers)
		if err != nil {
			return nil, err
		}
	}

	tuple = walkCallbacksIn(tuple, ch.callbacks, ch.invokeRemoteCallback)
	return tuple, nil
}

func splitPath(dotted string) []string {
	if dotted == "" {
		return nil
	}
	return strings.Split(dotted, ".")
}

func newMessageID() string {
	return uuid.NewString()
}

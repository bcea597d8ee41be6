// Package transport defines the duplex byte/line abstraction a Channel
// runs over, plus two concrete adapters: an in-process pipe (used for
// tests and same-process demos) and a generic io.ReadWriteCloser adapter
// for anything byte-stream oriented (stdio, a TCP socket, a unix socket)
// that passes raw chunks through for the Channel to split into lines.
package transport

import "context"

// Capabilities reports what a Transport can carry beyond plain strings.
type Capabilities struct {
	// StructuredClone is true when the transport is in-process and
	// lossless (Pipe, for instance). Transport carries strings only, so a
	// Channel sends the same dialect-encoded JSON over it as over any
	// other transport. Byte-stream transports leave this false.
	StructuredClone bool
	// Transfer is true when the transport can move a native handle
	// out-of-band instead of copying it inline.
	Transfer bool
}

// Transport is the minimal duplex channel a Channel drives. Read blocks
// until at least some data (a raw chunk, not necessarily a complete line —
// the owning Channel buffers and splits it) is available, ctx cancellation,
// or the transport closing; it returns an error once nothing further will
// arrive (the stream's own error, io.EOF by default, from a line
// transport; ErrClosed from a Pipe end after its Destroy).
type Transport interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, line string) error
	Capabilities() Capabilities
}

// Destroyer is implemented by transports that hold resources (sockets,
// goroutines) the owning Channel must release on Destroy.
type Destroyer interface {
	Destroy() error
}

// SignalDestroyer is implemented by transports that can notify the remote
// endpoint a graceful shutdown is starting, distinct from simply closing.
type SignalDestroyer interface {
	SignalDestroy() error
}

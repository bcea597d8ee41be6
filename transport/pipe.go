package transport

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by Read/Write once the pipe endpoint has been
// destroyed.
var ErrClosed = errors.New("transport: pipe closed")

// pipeEnd is one side of an in-process duplex pair built by Pipe — the
// fixture used by the package's own tests and by same-process demos. It
// reports StructuredClone: true since it is in-process and lossless (no
// real byte-stream framing is involved); Go has no structured-clone
// boundary to exploit, so values still travel dialect-encoded the same as
// over any other transport. It also reports Transfer: true, which is the
// capability that gates whether Channel attempts transfer-slot rewriting.
type pipeEnd struct {
	in     chan string
	out    chan string
	once   sync.Once
	closed chan struct{}
}

// Pipe returns two connected Transport endpoints: whatever is written to
// one is read from the other.
func Pipe() (Transport, Transport) {
	ab := make(chan string, 16)
	ba := make(chan string, 16)
	a := &pipeEnd{in: ba, out: ab, closed: make(chan struct{})}
	b := &pipeEnd{in: ab, out: ba, closed: make(chan struct{})}
	return a, b
}

func (p *pipeEnd) Read(ctx context.Context) (string, error) {
	select {
	case line, ok := <-p.in:
		if !ok {
			return "", ErrClosed
		}
		return line, nil
	case <-p.closed:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *pipeEnd) Write(ctx context.Context, line string) error {
	select {
	case p.out <- line:
		return nil
	case <-p.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeEnd) Capabilities() Capabilities {
	return Capabilities{StructuredClone: true, Transfer: true}
}

func (p *pipeEnd) Destroy() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

package transport

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// lineTransport wraps an io.ReadWriteCloser as a Transport that exchanges
// newline-delimited JSON lines. It does no line splitting of its own — it
// hands back raw chunks exactly as read, which may be partial or may
// contain several lines; the owning Channel's framer does the
// accumulate-then-split work per spec §4.5. A single background goroutine
// reads the underlying stream (mirroring BrokerClient.messageListener's
// dedicated reader goroutine) and feeds chunks to Read callers through a
// buffered channel; Write goes straight through unmodified, since the
// channel already appends the line's trailing newline.
type lineTransport struct {
	rw io.ReadWriteCloser

	chunks  chan string
	errc    chan error
	done    chan struct{}
	once    sync.Once
	writeMu sync.Mutex
}

// NewLineTransport wraps rw (a stdio pair, TCP connection, or unix socket)
// as a Transport that exchanges newline-delimited JSON lines.
func NewLineTransport(rw io.ReadWriteCloser) Transport {
	t := &lineTransport{
		rw:     rw,
		chunks: make(chan string, 64),
		errc:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	go t.readLoop()
	return t
}

func (t *lineTransport) readLoop() {
	buf := make([]byte, 64*1024)
	for {
		n, err := t.rw.Read(buf)
		if n > 0 {
			chunk := string(buf[:n])
			select {
			case t.chunks <- chunk:
			case <-t.done:
				return
			}
		}
		if err != nil {
			select {
			case t.errc <- err:
			default:
			}
			close(t.chunks)
			return
		}
	}
}

func (t *lineTransport) Read(ctx context.Context) (string, error) {
	select {
	case chunk, ok := <-t.chunks:
		if !ok {
			select {
			case err := <-t.errc:
				return "", err
			default:
				return "", io.EOF
			}
		}
		return chunk, nil
	case <-t.done:
		return "", fmt.Errorf("transport: closed")
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (t *lineTransport) Write(ctx context.Context, line string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	_, err := io.WriteString(t.rw, line)
	return err
}

func (t *lineTransport) Capabilities() Capabilities {
	return Capabilities{StructuredClone: false, Transfer: false}
}

func (t *lineTransport) Destroy() error {
	t.once.Do(func() { close(t.done) })
	return t.rw.Close()
}

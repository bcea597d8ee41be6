package wire

import "bytes"

// Framer accumulates bytes arriving from a byte-stream transport and
// splits them into newline-terminated lines, retaining any partial line
// across calls — the same accumulate-then-split shape as
// BrokerClient.messageListener's buffered reads, adapted to a stream that
// may deliver partial or multiple lines per read.
type Framer struct {
	buf []byte
}

// Feed appends chunk to the internal buffer and returns every complete
// (newline-terminated) line found so far, newlines stripped. Bytes after
// the last newline are retained for the next call.
func (f *Framer) Feed(chunk []byte) [][]byte {
	f.buf = append(f.buf, chunk...)
	var lines [][]byte
	for {
		i := bytes.IndexByte(f.buf, '\n')
		if i < 0 {
			break
		}
		line := f.buf[:i]
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		out := make([]byte, len(line))
		copy(out, line)
		lines = append(lines, out)
		f.buf = f.buf[i+1:]
	}
	return lines
}

// Pending returns the bytes retained since the last newline, without
// consuming them.
func (f *Framer) Pending() []byte { return f.buf }

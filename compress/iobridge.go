package compress

import (
	"io"

	"github.com/go-srpc/srpc/buffer"
)

// bufferReader adapts a *buffer.Buffer to io.Reader by walking it with
// FetchN, the same peek/skip pattern the original's Snappy Source adapter
// uses over RPCBuffer.
type bufferReader struct {
	buf *buffer.Buffer
}

func (r *bufferReader) Read(p []byte) (int, error) {
	chunk, ok := r.buf.FetchN(len(p))
	if !ok {
		return 0, io.EOF
	}
	n := copy(p, chunk)
	return n, nil
}

// bufferWriter adapts a *buffer.Buffer to io.Writer, appending every write
// into the buffer, the Sink side of the source/sink pairing.
type bufferWriter struct {
	buf *buffer.Buffer
}

func (w *bufferWriter) Write(p []byte) (int, error) {
	if !w.buf.Write(p) {
		return 0, io.ErrShortWrite
	}
	return len(p), nil
}

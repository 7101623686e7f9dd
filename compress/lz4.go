package compress

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4"

	"github.com/go-srpc/srpc/buffer"
)

// lz4Handler wraps pierrec/lz4's framed reader/writer, which already speaks
// the LZ4F_* framed format the design calls for: a frame header, a sequence
// of compressed blocks, then an end-of-stream marker.
var lz4Handler = Handler{
	CompressBlock:   lz4CompressBlock,
	DecompressBlock: lz4DecompressBlock,
	CompressIOVec:   lz4CompressIOVec,
	DecompressIOVec: lz4DecompressIOVec,
	UpperBound:      lz4UpperBound,
}

func lz4UpperBound(originSize int) int {
	return lz4.CompressBlockBound(originSize) + 32 // frame header + block headers + end mark
}

func lz4CompressBlock(src, dst []byte) int {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(src); err != nil {
		return ResultAlgorithmError
	}
	if err := w.Close(); err != nil {
		return ResultAlgorithmError
	}
	if buf.Len() > len(dst) {
		return ResultAlgorithmError
	}
	return copy(dst, buf.Bytes())
}

func lz4DecompressBlock(src, dst []byte) int {
	r := lz4.NewReader(bytes.NewReader(src))
	out, err := io.ReadAll(r)
	if err != nil {
		return ResultAlgorithmError
	}
	if len(out) > len(dst) {
		return ResultAlgorithmError
	}
	return copy(dst, out)
}

func lz4CompressIOVec(src, dst *buffer.Buffer) int {
	src.Rewind()
	w := lz4.NewWriter(&bufferWriter{buf: dst})
	if err := streamCopy(w, src); err != nil {
		return ResultAlgorithmError
	}
	if err := w.Close(); err != nil {
		return ResultAlgorithmError
	}
	return dst.Size()
}

// lz4DecompressIOVec reads the frame header once, then loops reading
// decompressed blocks until the end-of-stream marker, writing unused
// trailing space back via Backup the same way the Acquire/Backup pairing
// works for the rest of this module's buffer consumers.
func lz4DecompressIOVec(src, dst *buffer.Buffer) int {
	src.Rewind()
	r := lz4.NewReader(&bufferReader{buf: src})
	buf := make([]byte, 64*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := dst.Acquire(n)
			copied := copy(chunk, buf[:n])
			if copied < len(chunk) {
				dst.Backup(len(chunk) - copied)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return ResultAlgorithmError
		}
	}
	return dst.Size()
}

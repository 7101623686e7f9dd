package compress

import (
	"bytes"
	"io"

	kgzip "github.com/klauspost/compress/gzip"
	kzlib "github.com/klauspost/compress/zlib"

	"github.com/go-srpc/srpc/buffer"
)

// syntheticZlibHeader compensates for a historical non-standard encoder that
// emits raw deflate streams under the Zlib compression tag: when the first
// inflate attempt fails, the decoder retries once after prepending this
// two-byte header (§4.2).
var syntheticZlibHeader = []byte{0xB8, 0x1D}

var gzipHandler = Handler{
	CompressBlock:   gzipCompressBlock,
	DecompressBlock: autoInflateBlock,
	CompressIOVec:   gzipCompressIOVec,
	DecompressIOVec: autoInflateIOVec,
	UpperBound:      deflateUpperBound,
}

var zlibHandler = Handler{
	CompressBlock:   zlibCompressBlock,
	DecompressBlock: autoInflateBlock,
	CompressIOVec:   zlibCompressIOVec,
	DecompressIOVec: autoInflateIOVec,
	UpperBound:      deflateUpperBound,
}

// deflateUpperBound is the conservative Deflate worst case: input size plus
// a small fixed overhead per stored block, which is what both klauspost's
// gzip and zlib writers top out at for incompressible input.
func deflateUpperBound(originSize int) int {
	return originSize + originSize/1000 + 128
}

func gzipCompressBlock(src, dst []byte) int {
	var buf bytes.Buffer
	w := kgzip.NewWriter(&buf)
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

func zlibCompressBlock(src, dst []byte) int {
	var buf bytes.Buffer
	w := kzlib.NewWriter(&buf)
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

func gzipCompressIOVec(src, dst *buffer.Buffer) int {
	src.Rewind()
	w := kgzip.NewWriter(&bufferWriter{buf: dst})
	if err := streamCopy(w, src); err != nil {
		return ResultAlgorithmError
	}
	if err := w.Close(); err != nil {
		return ResultAlgorithmError
	}
	return dst.Size()
}

func zlibCompressIOVec(src, dst *buffer.Buffer) int {
	src.Rewind()
	w := kzlib.NewWriter(&bufferWriter{buf: dst})
	if err := streamCopy(w, src); err != nil {
		return ResultAlgorithmError
	}
	if err := w.Close(); err != nil {
		return ResultAlgorithmError
	}
	return dst.Size()
}

func streamCopy(w io.Writer, src *buffer.Buffer) error {
	buf := make([]byte, 32*1024)
	r := &bufferReader{buf: src}
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// autoInflateBlock decompresses either a Gzip or Zlib stream, probing the
// magic bytes the way the original's "auto window-bits" mode does, and
// applies the synthetic-header compatibility retry on first failure.
func autoInflateBlock(src, dst []byte) int {
	out, err := autoInflate(bytes.NewReader(src))
	if err != nil {
		return ResultAlgorithmError
	}
	if len(out) > len(dst) {
		return ResultAlgorithmError
	}
	return copy(dst, out)
}

func autoInflateIOVec(src, dst *buffer.Buffer) int {
	src.Rewind()
	out, err := autoInflate(&bufferReader{buf: src})
	if err != nil {
		return ResultAlgorithmError
	}
	if !dst.Write(out) {
		return ResultAlgorithmError
	}
	return dst.Size()
}

func autoInflate(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(raw) >= 2 && raw[0] == 0x1f && raw[1] == 0x8b {
		gr, err := kgzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		return io.ReadAll(gr)
	}
	if out, err := inflateZlib(raw); err == nil {
		return out, nil
	}
	// Compensate for a historical non-standard encoder that emits raw
	// deflate without a zlib wrapper: retry once with a synthetic header.
	patched := append(append([]byte{}, syntheticZlibHeader...), raw...)
	return inflateZlib(patched)
}

func inflateZlib(raw []byte) ([]byte, error) {
	zr, err := kzlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

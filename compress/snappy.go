package compress

import (
	"io"

	"github.com/golang/snappy"

	"github.com/go-srpc/srpc/buffer"
)

var snappyHandler = Handler{
	CompressBlock:   snappyCompressBlock,
	DecompressBlock: snappyDecompressBlock,
	CompressIOVec:   snappyCompressIOVec,
	DecompressIOVec: snappyDecompressIOVec,
	UpperBound:      snappyUpperBound,
}

func snappyUpperBound(originSize int) int {
	return snappy.MaxEncodedLen(originSize)
}

func snappyCompressBlock(src, dst []byte) int {
	if len(dst) < snappy.MaxEncodedLen(len(src)) {
		return ResultAlgorithmError
	}
	out := snappy.Encode(dst, src)
	return len(out)
}

func snappyDecompressBlock(src, dst []byte) int {
	n, err := snappy.DecodedLen(src)
	if err != nil {
		return ResultAlgorithmError
	}
	if n > len(dst) {
		return ResultAlgorithmError
	}
	out, err := snappy.Decode(dst[:n], src)
	if err != nil {
		return ResultAlgorithmError
	}
	return len(out)
}

// snappyCompressIOVec uses the Source/Sink adapter pattern described in the
// design: src is read through an io.Reader wrapping the segmented buffer's
// peek/skip, and the compressed bytes are appended into dst through an
// io.Writer sink.
func snappyCompressIOVec(src, dst *buffer.Buffer) int {
	src.Rewind()
	w := snappy.NewBufferedWriter(&bufferWriter{buf: dst})
	written := 0
	buf := make([]byte, 32*1024)
	for {
		n, err := (&bufferReader{buf: src}).Read(buf)
		if n > 0 {
			wn, werr := w.Write(buf[:n])
			written += wn
			if werr != nil {
				return ResultAlgorithmError
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return ResultAlgorithmError
		}
	}
	if err := w.Close(); err != nil {
		return ResultAlgorithmError
	}
	return dst.Size()
}

func snappyDecompressIOVec(src, dst *buffer.Buffer) int {
	src.Rewind()
	r := snappy.NewReader(&bufferReader{buf: src})
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if !dst.Write(buf[:n]) {
				return ResultAlgorithmError
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

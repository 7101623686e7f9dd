package compress_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-srpc/srpc/buffer"
	"github.com/go-srpc/srpc/compress"
)

func roundTripBlock(t *testing.T, reg *compress.Registry, tag compress.Type, msg []byte) {
	t.Helper()
	bound := reg.UpperBound(tag, len(msg))
	require.Greater(t, bound, compress.ResultNotSupported)

	dst := make([]byte, bound)
	n := reg.CompressBlock(tag, msg, dst)
	require.Greater(t, n, compress.ResultAlgorithmError)
	compressed := dst[:n]
	require.LessOrEqual(t, len(compressed), bound)

	back := make([]byte, len(msg)+4096)
	m := reg.DecompressBlock(tag, compressed, back)
	require.GreaterOrEqual(t, m, 0)
	require.Equal(t, msg, back[:m])
}

func roundTripIOVec(t *testing.T, reg *compress.Registry, tag compress.Type, msg []byte) {
	t.Helper()
	src := buffer.New(0, 0)
	src.Write(msg)

	compressed := buffer.New(0, 0)
	n := reg.CompressIOVec(tag, src, compressed)
	require.Greater(t, n, compress.ResultAlgorithmError)

	decompressed := buffer.New(0, 0)
	m := reg.DecompressIOVec(tag, compressed, decompressed)
	require.GreaterOrEqual(t, m, 0)
	require.True(t, bytes.Equal(msg, decompressed.Bytes()))
}

func TestBundledHandlersRoundTrip(t *testing.T) {
	reg := compress.Default()
	msg := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 50)

	for _, tag := range []compress.Type{compress.Snappy, compress.Gzip, compress.Zlib, compress.LZ4} {
		t.Run(tagName(tag), func(t *testing.T) {
			roundTripBlock(t, reg, tag, msg)
			roundTripIOVec(t, reg, tag, msg)
		})
	}
}

func TestEmptyPayloadIsOK(t *testing.T) {
	reg := compress.Default()
	for _, tag := range []compress.Type{compress.Snappy, compress.Gzip, compress.Zlib, compress.LZ4} {
		roundTripBlock(t, reg, tag, nil)
	}
}

func TestUnsupportedTagReturnsDedicatedCode(t *testing.T) {
	reg := compress.NewRegistry()
	require.Equal(t, compress.ResultNotSupported, reg.CompressBlock(compress.Gzip, []byte("x"), make([]byte, 16)))
	require.Equal(t, compress.ResultNotSupported, reg.UpperBound(compress.Gzip, 10))
}

func TestRegisterReturnsReplacedOnSecondCall(t *testing.T) {
	reg := compress.NewRegistry()
	h := compress.Handler{UpperBound: func(n int) int { return n }}
	require.Equal(t, compress.Registered, reg.RegisterHandler(10, h))
	require.Equal(t, compress.Replaced, reg.RegisterHandler(10, h))
}

func TestRegisterRejectsOutOfRangeOrEmpty(t *testing.T) {
	reg := compress.NewRegistry()
	require.Equal(t, compress.Invalid, reg.RegisterHandler(compress.None, compress.Handler{UpperBound: func(int) int { return 0 }}))
	require.Equal(t, compress.Invalid, reg.RegisterHandler(compress.MaxType+1, compress.Handler{UpperBound: func(int) int { return 0 }}))
	require.Equal(t, compress.Invalid, reg.RegisterHandler(5, compress.Handler{}))
}

func TestGzipTagAutoDetectsZlibWrappedInput(t *testing.T) {
	reg := compress.Default()
	msg := []byte("payload compressed as zlib but labeled gzip")

	zlibBound := reg.UpperBound(compress.Zlib, len(msg))
	dst := make([]byte, zlibBound)
	n := reg.CompressBlock(compress.Zlib, msg, dst)
	require.Greater(t, n, compress.ResultAlgorithmError)

	back := make([]byte, len(msg)+64)
	m := reg.DecompressBlock(compress.Gzip, dst[:n], back)
	require.GreaterOrEqual(t, m, 0)
	require.Equal(t, msg, back[:m])
}

func tagName(tag compress.Type) string {
	switch tag {
	case compress.Snappy:
		return "snappy"
	case compress.Gzip:
		return "gzip"
	case compress.Zlib:
		return "zlib"
	case compress.LZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

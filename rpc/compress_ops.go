package rpc

import (
	"github.com/go-srpc/srpc/buffer"
	"github.com/go-srpc/srpc/compress"
	"github.com/go-srpc/srpc/status"
)

// Compress runs the registered handler for CompressType over the buffer in
// place, recording the pre/post sizes (OriginSize/CompressedSize) for the
// transport's meta codec to persist (§4.5). CompressType == compress.None is
// a no-op.
func (b *Base) Compress() error {
	if b.compressType == compress.None {
		b.originSize = b.Buf.Size()
		b.compressedSize = b.Buf.Size()
		return nil
	}

	origin := b.Buf.Size()
	dst := buffer.New(b.pieceMin, b.pieceMax)
	n := b.registry.CompressIOVec(b.compressType, b.Buf, dst)
	switch {
	case n == compress.ResultNotSupported:
		err := status.New(b.compressNotSupportedCode(), nil)
		logError(err)
		return err
	case n == compress.ResultAlgorithmError:
		err := status.New(b.compressErrCode(), nil)
		logError(err)
		return err
	case n < 0:
		err := status.New(b.compressErrCode(), nil)
		logError(err)
		return err
	}

	b.Buf = dst
	b.originSize = origin
	b.compressedSize = n
	return nil
}

// Decompress reverses Compress, validating the buffer's size against
// expectCompressedSize and the decompressed output against
// expectOriginSize (both primed by SetExpectedSizes; zero skips the check,
// since not every transport's meta carries both sizes). CompressType ==
// compress.None is a no-op.
func (b *Base) Decompress() error {
	if b.compressType == compress.None {
		return nil
	}

	if b.expectCompressedSize > 0 && b.Buf.Size() != b.expectCompressedSize {
		err := status.New(b.decompressSizeInvalidCode(), nil)
		logError(err)
		return err
	}

	dst := buffer.New(b.pieceMin, b.pieceMax)
	n := b.registry.DecompressIOVec(b.compressType, b.Buf, dst)
	switch {
	case n == compress.ResultNotSupported:
		err := status.New(b.decompressNotSupportedCode(), nil)
		logError(err)
		return err
	case n == compress.ResultAlgorithmError:
		err := status.New(b.decompressErrCode(), nil)
		logError(err)
		return err
	case n < 0:
		err := status.New(b.decompressErrCode(), nil)
		logError(err)
		return err
	}

	if b.expectOriginSize > 0 && n != b.expectOriginSize {
		err := status.New(b.decompressSizeInvalidCode(), nil)
		logError(err)
		return err
	}

	b.Buf = dst
	return nil
}

package payload

import (
	"context"

	"github.com/apache/thrift/lib/go/thrift"

	"github.com/go-srpc/srpc/buffer"
	"github.com/go-srpc/srpc/status"
)

var binaryProtocolFactory = thrift.NewTBinaryProtocolFactoryConf(nil)

// MarshalThrift writes msg's Thrift binary encoding into buf using the
// struct's own descriptor-generated Write method against a TBinaryProtocol
// layered on an in-memory Thrift transport — the Go shape of the original's
// "descriptor writer against a Thrift-buffer view" (§4.5).
func MarshalThrift(ctx context.Context, buf *buffer.Buffer, msg thrift.TStruct, errCode status.Code) error {
	transport := thrift.NewTMemoryBuffer()
	protocol := binaryProtocolFactory.GetProtocol(transport)
	if err := msg.Write(ctx, protocol); err != nil {
		return status.New(errCode, err)
	}
	if err := protocol.Flush(ctx); err != nil {
		return status.New(errCode, err)
	}
	buf.Write(transport.Bytes())
	return nil
}

// UnmarshalThrift parses buf's full contents as msg's Thrift binary
// encoding.
func UnmarshalThrift(ctx context.Context, buf *buffer.Buffer, msg thrift.TStruct, errCode status.Code) error {
	transport := thrift.NewTMemoryBuffer()
	if _, err := transport.Write(buf.Bytes()); err != nil {
		return status.New(errCode, err)
	}
	protocol := binaryProtocolFactory.GetProtocol(transport)
	if err := msg.Read(ctx, protocol); err != nil {
		return status.New(errCode, err)
	}
	return nil
}

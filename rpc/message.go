// Package rpc defines the transport-agnostic message façade (§4.7): the
// Request/Response shape every wire-frame codec (srpcx, brpcx, trpcx,
// thriftx) implements, plus the shared plumbing (Base/ResponseBase,
// Serialize/Deserialize dispatch, ServerReplyInit) those codecs embed rather than
// reimplement.
package rpc

import (
	"github.com/go-srpc/srpc/buffer"
	"github.com/go-srpc/srpc/compress"
	"github.com/go-srpc/srpc/status"
)

// DataType identifies which payload encoding a message carries, matching the
// meta schema's data_type field (§3, §4.4).
type DataType int32

const (
	Protobuf DataType = 0
	Thrift   DataType = 1
	JSON     DataType = 2
)

// Request is the unified request shape every transport codec implements.
type Request interface {
	ServiceName() string
	SetServiceName(string)
	MethodName() string
	SetMethodName(string)
	DataType() DataType
	SetDataType(DataType)
	CompressType() compress.Type
	SetCompressType(compress.Type)
	SequenceID() int64
	SetSequenceID(int64)
	ModuleData() map[string]string
	SetModuleData(map[string]string)

	// Serialize encodes msg into the message's buffer using the codec
	// selected by DataType and msg's concrete type (proto.Message or
	// thrift.TStruct). Deserialize does the reverse.
	Serialize(msg interface{}) error
	Deserialize(msg interface{}) error

	// Compress runs the registered handler for CompressType over the
	// buffer in place; Decompress reverses it, validating the sizes
	// recorded by the transport's meta.
	Compress() error
	Decompress() error

	Encode(max int) ([]buffer.IOVec, bool)
	Append(data []byte) bool

	Buffer() *buffer.Buffer
}

// Response additionally exposes the status/error surface (§4.7).
type Response interface {
	Request

	StatusCode() status.Code
	SetStatusCode(status.Code)
	SetError(err error)
	Error() error
	ErrorMessage() string
}

// ServerReplyInit flips a just-parsed Request into its paired Response,
// copying the data-type and compression-type preferences the caller asked
// for so the reply speaks the same encoding without the handler having to
// set them explicitly (§4.7). The response's status starts at OK; the
// handler (or an error path) overwrites it before the reply is encoded.
func ServerReplyInit(req Request, resp Response) {
	resp.SetDataType(req.DataType())
	resp.SetCompressType(req.CompressType())
	resp.SetSequenceID(req.SequenceID())
	resp.SetStatusCode(status.OK)
}

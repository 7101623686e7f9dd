package rpc

import (
	"context"

	"github.com/go-srpc/srpc/buffer"
	"github.com/go-srpc/srpc/compress"
	"github.com/go-srpc/srpc/log"
	"github.com/go-srpc/srpc/status"
)

// errorLogger receives codec-layer failures (bad compression, serialize
// errors) before the mapped status.Code is returned to the caller (§5: the
// codec never blocks on I/O and never retries; logging is the only side
// effect it performs on a failure path). Defaults to a no-op; set with
// SetErrorLogger, typically once at process init.
var errorLogger log.Wrapper = log.NopWrapper

// SetErrorLogger overrides the Wrapper used for codec-layer error logging.
func SetErrorLogger(w log.Wrapper) {
	if w == nil {
		w = log.NopWrapper
	}
	errorLogger = w
}

func logError(err error) {
	errorLogger(context.Background(), err.Error())
}

// Base implements the field-getter/setter plumbing common to every
// transport's request and response types (§4.7), plus the Serialize/
// Deserialize/Compress/Decompress bodies shared across SRPC/BRPC/TRPC/Thrift
// — each transport's own type only needs to add its meta struct and
// Encode/Append/serialize-meta logic.
type Base struct {
	Buf *buffer.Buffer

	isResponse bool
	registry   *compress.Registry
	pieceMin   int
	pieceMax   int

	serviceName  string
	methodName   string
	dataType     DataType
	compressType compress.Type
	sequenceID   int64
	moduleData   map[string]string
	jsonOptions  JSONOptions

	originSize         int
	compressedSize     int
	expectOriginSize   int
	expectCompressedSize int
}

// JSONOptions is re-exported here so transport codecs configure the JSON
// bridge (§4.5) through the same Base they already hold, without importing
// package payload directly.
type JSONOptions struct {
	AddWhitespace                   bool
	EnumAsInts                      bool
	PreserveProtoFieldNames         bool
	AlwaysPrintFieldsWithNoPresence bool
}

// NewBase constructs a request-role Base. pieceMin/pieceMax <= 0 use the
// buffer package's defaults.
func NewBase(pieceMin, pieceMax int) Base {
	return Base{
		Buf:      buffer.New(pieceMin, pieceMax),
		registry: compress.Default(),
		pieceMin: pieceMin,
		pieceMax: pieceMax,
	}
}

// SetRegistry overrides the compression registry used by Compress/Decompress
// (defaults to compress.Default()).
func (b *Base) SetRegistry(r *compress.Registry) { b.registry = r }

// SetJSONOptions configures the four JSON rendering knobs (§4.5) used when
// DataType is JSON and Serialize is handed a Protobuf or Thrift message.
func (b *Base) SetJSONOptions(opts JSONOptions) { b.jsonOptions = opts }

func (b *Base) Buffer() *buffer.Buffer { return b.Buf }

func (b *Base) ServiceName() string             { return b.serviceName }
func (b *Base) SetServiceName(name string)      { b.serviceName = name }
func (b *Base) MethodName() string              { return b.methodName }
func (b *Base) SetMethodName(name string)       { b.methodName = name }
func (b *Base) DataType() DataType              { return b.dataType }
func (b *Base) SetDataType(dt DataType)          { b.dataType = dt }
func (b *Base) CompressType() compress.Type      { return b.compressType }
func (b *Base) SetCompressType(t compress.Type)  { b.compressType = t }
func (b *Base) SequenceID() int64                { return b.sequenceID }
func (b *Base) SetSequenceID(id int64)           { b.sequenceID = id }

func (b *Base) ModuleData() map[string]string     { return b.moduleData }
func (b *Base) SetModuleData(m map[string]string) { b.moduleData = m }

// OriginSize and CompressedSize report the sizes produced by the most recent
// Compress call, for the transport's meta codec to record (§4.5).
func (b *Base) OriginSize() int     { return b.originSize }
func (b *Base) CompressedSize() int { return b.compressedSize }

// SetExpectedSizes primes the sizes Decompress validates the buffer and
// decompressed output against (meta's compressed_size/origin_size fields,
// parsed by the transport before calling Decompress). Zero means "no
// expectation" (skip that check) — some transports don't carry origin_size.
func (b *Base) SetExpectedSizes(originSize, compressedSize int) {
	b.expectOriginSize = originSize
	b.expectCompressedSize = compressedSize
}

// Append feeds raw bytes into the buffer; transports that stream payload in
// directly (rather than decoding a whole frame up front) use this. It never
// fails in this in-memory implementation.
func (b *Base) Append(data []byte) bool {
	return b.Buf.Append(data, buffer.ModeCopy)
}

// Encode produces at most max iovecs for the buffer's current contents.
func (b *Base) Encode(max int) ([]buffer.IOVec, bool) {
	return b.Buf.Encode(max)
}

func (b *Base) serializeErrCode() status.Code {
	if b.isResponse {
		return status.RespSerializeError
	}
	return status.ReqSerializeError
}

func (b *Base) deserializeErrCode() status.Code {
	if b.isResponse {
		return status.RespDeserializeError
	}
	return status.ReqDeserializeError
}

func (b *Base) compressErrCode() status.Code {
	if b.isResponse {
		return status.RespCompressError
	}
	return status.ReqCompressError
}

func (b *Base) compressNotSupportedCode() status.Code {
	if b.isResponse {
		return status.RespCompressNotSupported
	}
	return status.ReqCompressNotSupported
}

func (b *Base) decompressErrCode() status.Code {
	if b.isResponse {
		return status.RespDecompressError
	}
	return status.ReqDecompressError
}

func (b *Base) decompressNotSupportedCode() status.Code {
	if b.isResponse {
		return status.RespDecompressNotSupported
	}
	return status.ReqDecompressNotSupported
}

func (b *Base) decompressSizeInvalidCode() status.Code {
	if b.isResponse {
		return status.RespDecompressSizeInvalid
	}
	return status.ReqDecompressSizeInvalid
}

// ResponseBase adds the status/error surface to Base for response-role
// messages (§4.7).
type ResponseBase struct {
	Base

	statusCode status.Code
	err        error
}

// NewResponseBase constructs a response-role Base; its Serialize/
// Deserialize/Compress/Decompress errors use the Resp* status codes.
func NewResponseBase(pieceMin, pieceMax int) ResponseBase {
	base := NewBase(pieceMin, pieceMax)
	base.isResponse = true
	return ResponseBase{Base: base}
}

func (r *ResponseBase) StatusCode() status.Code     { return r.statusCode }
func (r *ResponseBase) SetStatusCode(c status.Code) { r.statusCode = c }

func (r *ResponseBase) SetError(err error) { r.err = err }
func (r *ResponseBase) Error() error       { return r.err }

func (r *ResponseBase) ErrorMessage() string {
	if r.err == nil {
		return ""
	}
	return r.err.Error()
}

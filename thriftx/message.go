package thriftx

import (
	"context"

	"github.com/apache/thrift/lib/go/thrift"

	"github.com/go-srpc/srpc/buffer"
	"github.com/go-srpc/srpc/rpc"
	"github.com/go-srpc/srpc/status"
)

var protocolFactory = thrift.NewTBinaryProtocolFactoryConf(nil)

// Request is the Thrift-framed realization of rpc.Request. Unlike the
// Protobuf-meta transports, Thrift carries no separate service_name field —
// the original source returns the method name for both getters (§9: a
// single "method" identifies the call) — so SetServiceName is a no-op and
// ServiceName mirrors MethodName.
type Request struct {
	rpc.Base
	seqID int32
}

// Response is the Thrift-framed realization of rpc.Response.
type Response struct {
	rpc.ResponseBase
	seqID     int32
	thriftErr status.ThriftExceptionType
}

var (
	_ rpc.Request  = (*Request)(nil)
	_ rpc.Response = (*Response)(nil)
)

// NewRequest constructs an empty outgoing Request with DataType fixed to
// Thrift, matching get_data_type() in the original (ThriftMessage never
// carries Protobuf/JSON payloads).
func NewRequest(pieceMin, pieceMax int) *Request {
	r := &Request{Base: rpc.NewBase(pieceMin, pieceMax)}
	r.SetDataType(rpc.Thrift)
	return r
}

// NewResponse constructs an empty outgoing Response.
func NewResponse(pieceMin, pieceMax int) *Response {
	r := &Response{ResponseBase: rpc.NewResponseBase(pieceMin, pieceMax)}
	r.SetDataType(rpc.Thrift)
	return r
}

// ServiceName returns the same value as MethodName; Thrift's IDL has no
// distinct service component on the wire (§9).
func (r *Request) ServiceName() string { return r.MethodName() }

// SetServiceName is a no-op: Thrift messages have nowhere to carry it.
func (r *Request) SetServiceName(string) {}

func (r *Response) ServiceName() string    { return r.MethodName() }
func (r *Response) SetServiceName(string) {}

// ThriftError returns the Thrift application-exception type recorded by a
// non-OK response (set by DecodeResponse on an EXCEPTION message, or
// derived from StatusCode by Encode).
func (r *Response) ThriftError() status.ThriftExceptionType { return r.thriftErr }

// DecodeRequest parses a complete Thrift-framed body (message envelope +
// struct, as produced by Decoder.Body once Feed reports done) into a
// Request. The struct bytes left after the envelope become the payload
// buffer; borrow controls whether they are copied or kept as a NOCOPY
// chunk, exactly as the other transports' DecodeRequest.
func DecodeRequest(body []byte, pieceMin, pieceMax int, borrow bool) (*Request, error) {
	req := NewRequest(pieceMin, pieceMax)

	transport := thrift.NewTMemoryBuffer()
	transport.Write(body)
	protocol := protocolFactory.GetProtocol(transport)

	name, _, seqID, err := protocol.ReadMessageBegin(context.Background())
	if err != nil {
		return nil, status.New(status.MetaError, err)
	}
	if err := protocol.ReadMessageEnd(context.Background()); err != nil {
		return nil, status.New(status.MetaError, err)
	}

	req.SetMethodName(name)
	req.SetSequenceID(int64(seqID))
	req.seqID = seqID

	payload := body[len(body)-transport.Len():]
	mode := buffer.ModeCopy
	if borrow {
		mode = buffer.ModeNoCopy
	}
	req.Buffer().Append(payload, mode)
	return req, nil
}

// DecodeResponse mirrors DecodeRequest for the response role. An
// EXCEPTION-typed message is parsed as a TApplicationException and
// translated to the shared status code per §4.3/§4.6: UNKNOWN_METHOD maps
// to MethodNotFound, everything else collapses to MetaError.
func DecodeResponse(body []byte, pieceMin, pieceMax int, borrow bool) (*Response, error) {
	resp := NewResponse(pieceMin, pieceMax)

	transport := thrift.NewTMemoryBuffer()
	transport.Write(body)
	protocol := protocolFactory.GetProtocol(transport)

	name, msgType, seqID, err := protocol.ReadMessageBegin(context.Background())
	if err != nil {
		return nil, status.New(status.MetaError, err)
	}

	resp.SetMethodName(name)
	resp.SetSequenceID(int64(seqID))
	resp.seqID = seqID

	if msgType == thrift.EXCEPTION {
		placeholder := thrift.NewTApplicationException(thrift.UNKNOWN, "")
		exc, err := placeholder.Read(context.Background(), protocol)
		if err != nil {
			resp.SetStatusCode(status.MetaError)
			resp.thriftErr = status.ThriftExceptionInternalError
			resp.SetError(status.New(status.MetaError, err))
		} else {
			t := status.ThriftExceptionType(exc.TypeId())
			resp.thriftErr = t
			resp.SetStatusCode(status.FromThriftException(t))
			resp.SetError(status.New(resp.StatusCode(), exc))
		}
		if err := protocol.ReadMessageEnd(context.Background()); err != nil {
			return nil, status.New(status.MetaError, err)
		}
		return resp, nil
	}

	if err := protocol.ReadMessageEnd(context.Background()); err != nil {
		return nil, status.New(status.MetaError, err)
	}
	resp.SetStatusCode(status.OK)

	payload := body[len(body)-transport.Len():]
	mode := buffer.ModeCopy
	if borrow {
		mode = buffer.ModeNoCopy
	}
	resp.Buffer().Append(payload, mode)
	return resp, nil
}

// Encode renders req as the iovec sequence for a complete Thrift-framed TCP
// frame: the 4-byte size prefix, the CALL message envelope, then the
// payload (the serialized struct, written by Base.Serialize before Encode
// is called).
func (req *Request) Encode(max int) ([]buffer.IOVec, bool) {
	envelope, ok := writeMessageBegin(req.MethodName(), thrift.CALL, int32(req.SequenceID()))
	if !ok {
		return nil, false
	}
	return encodeFrame(envelope, &req.Base, max)
}

// Encode renders resp. A non-OK status code is translated into an
// EXCEPTION message carrying a TApplicationException struct in place of
// the normal payload (§4.3): the handler's serialized reply, if any, is
// discarded in favor of the exception body.
func (resp *Response) Encode(max int) ([]buffer.IOVec, bool) {
	if resp.StatusCode() == status.OK {
		envelope, ok := writeMessageBegin(resp.MethodName(), thrift.REPLY, int32(resp.SequenceID()))
		if !ok {
			return nil, false
		}
		return encodeFrame(envelope, &resp.Base, max)
	}

	excType := status.ToThriftException(resp.StatusCode())
	msg := resp.ErrorMessage()
	if msg == "" {
		msg = status.FromThriftException(excType).String()
	}

	transport := thrift.NewTMemoryBuffer()
	protocol := protocolFactory.GetProtocol(transport)
	ctx := context.Background()
	if err := protocol.WriteMessageBegin(ctx, resp.MethodName(), thrift.EXCEPTION, int32(resp.SequenceID())); err != nil {
		return nil, false
	}
	exc := thrift.NewTApplicationException(int32(excType), msg)
	if err := exc.Write(ctx, protocol); err != nil {
		return nil, false
	}
	if err := protocol.WriteMessageEnd(ctx); err != nil {
		return nil, false
	}

	body := transport.Bytes()
	if len(body) > 0x7FFFFFFF {
		return nil, false
	}
	out := make([]buffer.IOVec, 0, 2)
	out = append(out, buffer.IOVec{Base: EncodeHeader(len(body))})
	out = append(out, buffer.IOVec{Base: body})
	return out, true
}

func writeMessageBegin(method string, msgType thrift.TMessageType, seqID int32) ([]byte, bool) {
	transport := thrift.NewTMemoryBuffer()
	protocol := protocolFactory.GetProtocol(transport)
	ctx := context.Background()
	if err := protocol.WriteMessageBegin(ctx, method, msgType, seqID); err != nil {
		return nil, false
	}
	if err := protocol.WriteMessageEnd(ctx); err != nil {
		return nil, false
	}
	return transport.Bytes(), true
}

func encodeFrame(envelope []byte, base *rpc.Base, max int) ([]buffer.IOVec, bool) {
	payloadIOVs, ok := base.Encode(max)
	if !ok {
		return nil, false
	}
	bodyLen := len(envelope)
	for _, v := range payloadIOVs {
		bodyLen += len(v.Base)
	}
	if bodyLen > 0x7FFFFFFF {
		return nil, false
	}

	out := make([]buffer.IOVec, 0, len(payloadIOVs)+2)
	out = append(out, buffer.IOVec{Base: EncodeHeader(bodyLen)})
	out = append(out, buffer.IOVec{Base: envelope})
	out = append(out, payloadIOVs...)
	return out, true
}

// ModuleData always reports empty: the original's get/set_meta_module_data
// for the Thrift transport return false unconditionally (§9 — tracing has
// nowhere to live in the bare Thrift envelope).
func (r *Request) ModuleData() map[string]string  { return nil }
func (r *Response) ModuleData() map[string]string { return nil }

func (r *Request) SetModuleData(map[string]string)  {}
func (r *Response) SetModuleData(map[string]string) {}

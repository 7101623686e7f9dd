package trpcx

import (
	"strings"

	"github.com/go-srpc/srpc/buffer"
	"github.com/go-srpc/srpc/compress"
	"github.com/go-srpc/srpc/metapb"
	"github.com/go-srpc/srpc/rpc"
	"github.com/go-srpc/srpc/status"
)

// Request is the TRPC realization of rpc.Request.
type Request struct {
	rpc.Base
	meta     metapb.TRPCMeta
	streamID uint16
}

// Response is the TRPC realization of rpc.Response.
type Response struct {
	rpc.ResponseBase
	meta     metapb.TRPCMeta
	streamID uint16
}

var (
	_ rpc.Request  = (*Request)(nil)
	_ rpc.Response = (*Response)(nil)
)

// NewRequest constructs an empty outgoing Request.
func NewRequest(pieceMin, pieceMax int) *Request {
	return &Request{Base: rpc.NewBase(pieceMin, pieceMax)}
}

// NewResponse constructs an empty outgoing Response.
func NewResponse(pieceMin, pieceMax int) *Response {
	return &Response{ResponseBase: rpc.NewResponseBase(pieceMin, pieceMax)}
}

// ModuleData and SetModuleData live directly in meta.TransInfo for TRPC, as
// for BRPC; the W3C traceparent composition/parsing (§4.3, §6) only applies
// at the HTTP-tunnel boundary, handled in http.go.
func (r *Request) ModuleData() map[string]string      { return r.meta.TransInfo }
func (r *Request) SetModuleData(m map[string]string)  { r.meta.TransInfo = m }
func (r *Response) ModuleData() map[string]string     { return r.meta.TransInfo }
func (r *Response) SetModuleData(m map[string]string) { r.meta.TransInfo = m }

// StreamID returns the frame's stream-id header field.
func (r *Request) StreamID() uint16  { return r.streamID }
func (r *Response) StreamID() uint16 { return r.streamID }

// SetStreamID sets the frame's stream-id header field.
func (r *Request) SetStreamID(id uint16)  { r.streamID = id }
func (r *Response) SetStreamID(id uint16) { r.streamID = id }

// Callee, Caller and Timeout expose the TRPC-only meta fields (§4.3).
func (r *Request) Callee() string      { return r.meta.Callee }
func (r *Request) SetCallee(v string)  { r.meta.Callee = v }
func (r *Request) Caller() string      { return r.meta.Caller }
func (r *Request) SetCaller(v string)  { r.meta.Caller = v }
func (r *Request) Timeout() int32      { return r.meta.Timeout }
func (r *Request) SetTimeout(v int32)  { r.meta.Timeout = v }

// trimMethodPrefix rewrites a "/service/method" method name to its trailing
// segment after the last slash, per §4.3's trim_method_prefix(), and returns
// what precedes that slash as the service name. The full original path stays
// in the message's meta (FullMethodName); no accessor exposes it.
func trimMethodPrefix(full string) (service, method string) {
	trimmed := strings.TrimPrefix(full, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return "", trimmed
	}
	return trimmed[:idx], trimmed[idx+1:]
}

func applyMetaToMessage(base *rpc.Base, meta *metapb.TRPCMeta) {
	service, method := trimMethodPrefix(meta.FullMethodName)
	base.SetServiceName(service)
	base.SetMethodName(method)
	base.SetSequenceID(meta.SequenceID)
	base.SetDataType(rpc.DataType(meta.DataType))
	base.SetCompressType(compress.Type(meta.CompressType))
}

// DecodeRequest parses a complete TRPC frame into a Request.
func DecodeRequest(d *Decoder, pieceMin, pieceMax int, borrow bool) (*Request, error) {
	req := NewRequest(pieceMin, pieceMax)
	if err := req.meta.Unmarshal(d.Meta()); err != nil {
		return nil, err
	}
	applyMetaToMessage(&req.Base, &req.meta)
	req.streamID = d.StreamID()
	mode := buffer.ModeCopy
	if borrow {
		mode = buffer.ModeNoCopy
	}
	req.Buffer().Append(d.Payload(), mode)
	return req, nil
}

// DecodeResponse mirrors DecodeRequest for the response role. TRPC's
// status_code field is transport-native (§4.4, §7); it is mapped back to
// the shared taxonomy via status.FromTRPC.
func DecodeResponse(d *Decoder, pieceMin, pieceMax int, borrow bool) (*Response, error) {
	resp := NewResponse(pieceMin, pieceMax)
	if err := resp.meta.Unmarshal(d.Meta()); err != nil {
		return nil, err
	}
	applyMetaToMessage(&resp.Base, &resp.meta)
	resp.SetStatusCode(status.FromTRPC(status.TRPCCode(resp.meta.StatusCode)))
	resp.streamID = d.StreamID()
	mode := buffer.ModeCopy
	if borrow {
		mode = buffer.ModeNoCopy
	}
	resp.Buffer().Append(d.Payload(), mode)
	return resp, nil
}

// Encode renders req as the iovec sequence for a complete TRPC TCP frame.
func (req *Request) Encode(max int) ([]buffer.IOVec, bool) {
	req.meta.FullMethodName = "/" + req.ServiceName() + "/" + req.MethodName()
	req.meta.SequenceID = req.SequenceID()
	req.meta.DataType = int32(req.DataType())
	req.meta.CompressType = int32(req.CompressType())
	return encodeFrame(&req.meta, &req.Base, req.streamID, max)
}

// Encode renders resp as the iovec sequence for a complete TRPC TCP frame.
func (resp *Response) Encode(max int) ([]buffer.IOVec, bool) {
	resp.meta.FullMethodName = "/" + resp.ServiceName() + "/" + resp.MethodName()
	resp.meta.SequenceID = resp.SequenceID()
	resp.meta.DataType = int32(resp.DataType())
	resp.meta.CompressType = int32(resp.CompressType())
	resp.meta.StatusCode = int32(status.ToTRPC(resp.StatusCode()))
	if resp.Error() != nil {
		resp.meta.ErrorMessage = resp.ErrorMessage()
	}
	return encodeFrame(&resp.meta, &resp.Base, resp.streamID, max)
}

func encodeFrame(meta *metapb.TRPCMeta, base *rpc.Base, streamID uint16, max int) ([]buffer.IOVec, bool) {
	metaBytes := meta.Marshal()
	payloadIOVs, ok := base.Encode(max)
	if !ok {
		return nil, false
	}

	bodyLen := len(metaBytes)
	for _, v := range payloadIOVs {
		bodyLen += len(v.Base)
	}

	out := make([]buffer.IOVec, 0, len(payloadIOVs)+2)
	out = append(out, buffer.IOVec{Base: EncodeHeader(bodyLen, len(metaBytes), streamID)})
	out = append(out, buffer.IOVec{Base: metaBytes})
	out = append(out, payloadIOVs...)
	return out, true
}

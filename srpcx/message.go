package srpcx

import (
	"encoding/hex"

	"github.com/go-srpc/srpc/buffer"
	"github.com/go-srpc/srpc/compress"
	"github.com/go-srpc/srpc/idgen"
	"github.com/go-srpc/srpc/metapb"
	"github.com/go-srpc/srpc/rpc"
	"github.com/go-srpc/srpc/status"
)

// Request is the SRPC realization of rpc.Request.
type Request struct {
	rpc.Base
	meta metapb.SRPCMeta
}

// Response is the SRPC realization of rpc.Response.
type Response struct {
	rpc.ResponseBase
	meta metapb.SRPCMeta
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

// NewRequestWithNewTrace is NewRequest for a request that originates a new
// trace rather than continuing one propagated from a caller: trace_id and
// span_id are minted from the package-wide snowflake generator (SRPC is the
// only one of the four meta schemas with dedicated trace_id/span_id fields;
// BRPC carries no tracing fields and TRPC propagates a W3C traceparent
// string instead, see trpcx).
func NewRequestWithNewTrace(pieceMin, pieceMax int) (*Request, error) {
	r := NewRequest(pieceMin, pieceMax)
	traceID, err := idgen.NewTraceID()
	if err != nil {
		return nil, err
	}
	spanID, err := idgen.NewSpanID()
	if err != nil {
		return nil, err
	}
	r.meta.TraceID = traceID[:]
	r.meta.SpanID = spanID[:]
	return r, nil
}

// ModuleData exposes trace_id/span_id/parent_span_id (SRPC's dedicated meta
// fields) and trans_info together as one flat map, so callers of the message
// façade see the same shape regardless of how a given transport happens to
// carry tracing data on the wire (§3, §8 invariant 5).
func (r *Request) ModuleData() map[string]string  { return moduleDataFromMeta(&r.meta) }
func (r *Response) ModuleData() map[string]string { return moduleDataFromMeta(&r.meta) }

// SetModuleData is ModuleData's inverse.
func (r *Request) SetModuleData(m map[string]string)  { setModuleDataOnMeta(&r.meta, m) }
func (r *Response) SetModuleData(m map[string]string) { setModuleDataOnMeta(&r.meta, m) }

func moduleDataFromMeta(meta *metapb.SRPCMeta) map[string]string {
	out := make(map[string]string, len(meta.TransInfo)+3)
	for k, v := range meta.TransInfo {
		out[k] = v
	}
	if len(meta.TraceID) > 0 {
		out["trace_id"] = hex.EncodeToString(meta.TraceID)
	}
	if len(meta.SpanID) > 0 {
		out["span_id"] = hex.EncodeToString(meta.SpanID)
	}
	if len(meta.ParentSpanID) > 0 {
		out["parent_span_id"] = hex.EncodeToString(meta.ParentSpanID)
	}
	return out
}

func setModuleDataOnMeta(meta *metapb.SRPCMeta, m map[string]string) {
	info := make(map[string]string, len(m))
	for k, v := range m {
		switch k {
		case "trace_id":
			if b, err := hex.DecodeString(v); err == nil {
				meta.TraceID = b
				continue
			}
		case "span_id":
			if b, err := hex.DecodeString(v); err == nil {
				meta.SpanID = b
				continue
			}
		case "parent_span_id":
			if b, err := hex.DecodeString(v); err == nil {
				meta.ParentSpanID = b
				continue
			}
		}
		info[k] = v
	}
	meta.TransInfo = info
}

// DecodeRequest parses a complete SRPC frame (as produced by a Decoder that
// has reported done) into a Request. The payload bytes are appended as a
// borrowed (ModeNoCopy) chunk when the caller indicates the backing slice
// outlives the Request (borrow=true, e.g. bytes owned by a long-lived
// connection read buffer); otherwise they are copied.
func DecodeRequest(d *Decoder, pieceMin, pieceMax int, borrow bool) (*Request, error) {
	req := NewRequest(pieceMin, pieceMax)
	if err := req.meta.Unmarshal(d.Meta()); err != nil {
		return nil, err
	}
	applyMetaToMessage(&req.Base, &req.meta)
	mode := buffer.ModeCopy
	if borrow {
		mode = buffer.ModeNoCopy
	}
	req.Buffer().Append(d.Payload(), mode)
	return req, nil
}

// DecodeResponse mirrors DecodeRequest for the response role.
func DecodeResponse(d *Decoder, pieceMin, pieceMax int, borrow bool) (*Response, error) {
	resp := NewResponse(pieceMin, pieceMax)
	if err := resp.meta.Unmarshal(d.Meta()); err != nil {
		return nil, err
	}
	applyMetaToMessage(&resp.Base, &resp.meta)
	resp.SetStatusCode(status.Code(resp.meta.StatusCode))
	mode := buffer.ModeCopy
	if borrow {
		mode = buffer.ModeNoCopy
	}
	resp.Buffer().Append(d.Payload(), mode)
	return resp, nil
}

func applyMetaToMessage(base *rpc.Base, meta *metapb.SRPCMeta) {
	base.SetServiceName(meta.ServiceName)
	base.SetMethodName(meta.MethodName)
	base.SetSequenceID(meta.SequenceID)
	base.SetDataType(rpc.DataType(meta.DataType))
	base.SetCompressType(compress.Type(meta.CompressType))
	base.SetExpectedSizes(int(meta.OriginSize), int(meta.CompressedSize))
}

// Encode renders req as the iovec sequence for a complete SRPC TCP frame:
// header, meta, payload.
func (req *Request) Encode(max int) ([]buffer.IOVec, bool) {
	return encodeFrame(&req.meta, &req.Base, req.ServiceName(), req.MethodName(), max)
}

// Encode renders resp as the iovec sequence for a complete SRPC TCP frame.
func (resp *Response) Encode(max int) ([]buffer.IOVec, bool) {
	resp.meta.StatusCode = int32(resp.StatusCode())
	if resp.Error() != nil {
		resp.meta.ErrorMessage = resp.ErrorMessage()
	}
	return encodeFrame(&resp.meta, &resp.Base, resp.ServiceName(), resp.MethodName(), max)
}

func encodeFrame(meta *metapb.SRPCMeta, base *rpc.Base, service, method string, max int) ([]buffer.IOVec, bool) {
	meta.ServiceName = service
	meta.MethodName = method
	meta.SequenceID = base.SequenceID()
	meta.DataType = int32(base.DataType())
	meta.CompressType = int32(base.CompressType())
	meta.OriginSize = int32(base.OriginSize())
	meta.CompressedSize = int32(base.CompressedSize())

	metaBytes := meta.Marshal()
	payloadIOVs, ok := base.Encode(max)
	if !ok {
		return nil, false
	}

	payloadLen := 0
	for _, v := range payloadIOVs {
		payloadLen += len(v.Base)
	}

	out := make([]buffer.IOVec, 0, len(payloadIOVs)+2)
	out = append(out, buffer.IOVec{Base: EncodeHeader(len(metaBytes), payloadLen)})
	out = append(out, buffer.IOVec{Base: metaBytes})
	out = append(out, payloadIOVs...)
	return out, true
}

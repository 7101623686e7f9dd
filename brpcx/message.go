package brpcx

import (
	"github.com/go-srpc/srpc/buffer"
	"github.com/go-srpc/srpc/compress"
	"github.com/go-srpc/srpc/metapb"
	"github.com/go-srpc/srpc/rpc"
	"github.com/go-srpc/srpc/status"
)

// Request is the BRPC realization of rpc.Request. BRPC is the only
// transport in this module with an attachment; both requests and responses
// carry one symmetrically (the original treats both directions the same
// way, not just the response side).
type Request struct {
	rpc.Base
	meta       metapb.BRPCMeta
	attachment *buffer.Buffer
}

// Response is the BRPC realization of rpc.Response.
type Response struct {
	rpc.ResponseBase
	meta       metapb.BRPCMeta
	attachment *buffer.Buffer
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

// Attachment returns the request's attachment buffer, or nil if none was
// set/parsed.
func (r *Request) Attachment() *buffer.Buffer { return r.attachment }

// SetAttachmentNocopy installs att as the request's attachment without
// copying, mirroring the original's symmetric SetAttachmentNocopy on both
// BRPCRequest and BRPCResponse.
func (r *Request) SetAttachmentNocopy(att *buffer.Buffer) { r.attachment = att }

// Attachment returns the response's attachment buffer, or nil if none.
func (r *Response) Attachment() *buffer.Buffer { return r.attachment }

// SetAttachmentNocopy installs att as the response's attachment.
func (r *Response) SetAttachmentNocopy(att *buffer.Buffer) { r.attachment = att }

// ModuleData and SetModuleData live directly in meta.TransInfo for BRPC —
// unlike SRPC there is no dedicated trace_id/span_id field to reconcile
// with.
func (r *Request) ModuleData() map[string]string      { return r.meta.TransInfo }
func (r *Request) SetModuleData(m map[string]string)  { r.meta.TransInfo = m }
func (r *Response) ModuleData() map[string]string     { return r.meta.TransInfo }
func (r *Response) SetModuleData(m map[string]string) { r.meta.TransInfo = m }

func applyMetaToMessage(base *rpc.Base, meta *metapb.BRPCMeta) {
	base.SetServiceName(meta.ServiceName)
	base.SetMethodName(meta.MethodName)
	base.SetSequenceID(meta.SequenceID)
	base.SetDataType(rpc.DataType(meta.DataType))
	base.SetCompressType(compress.Type(meta.CompressType))
}

// DecodeRequest parses a complete BRPC frame into a Request, splitting off
// the trailing attachment_size bytes into a separate buffer via Buffer.Cut
// when meta reports one present (§4.3).
func DecodeRequest(d *Decoder, pieceMin, pieceMax int, borrow bool) (*Request, error) {
	req := NewRequest(pieceMin, pieceMax)
	if err := req.meta.Unmarshal(d.Meta()); err != nil {
		return nil, err
	}
	applyMetaToMessage(&req.Base, &req.meta)
	if err := splitAttachment(&req.Base, &req.attachment, d.Rest(), int(req.meta.AttachmentSize), borrow); err != nil {
		return nil, err
	}
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
	if err := splitAttachment(&resp.Base, &resp.attachment, d.Rest(), int(resp.meta.AttachmentSize), borrow); err != nil {
		return nil, err
	}
	return resp, nil
}

func splitAttachment(base *rpc.Base, attachment **buffer.Buffer, rest []byte, attachmentSize int, borrow bool) error {
	mode := buffer.ModeCopy
	if borrow {
		mode = buffer.ModeNoCopy
	}
	base.Buffer().Append(rest, mode)
	if attachmentSize <= 0 {
		return nil
	}
	cutAt := base.Buffer().Size() - attachmentSize
	if cutAt < 0 {
		return status.New(status.MetaError, nil)
	}
	att, ok := base.Buffer().Cut(cutAt)
	if !ok {
		return status.New(status.MetaError, nil)
	}
	*attachment = att
	return nil
}

// Encode renders req as the iovec sequence for a complete BRPC TCP frame:
// header, meta, payload, then attachment when present.
func (req *Request) Encode(max int) ([]buffer.IOVec, bool) {
	return encodeFrame(&req.meta, &req.Base, req.attachment, req.ServiceName(), req.MethodName(), max)
}

// Encode renders resp as the iovec sequence for a complete BRPC TCP frame.
func (resp *Response) Encode(max int) ([]buffer.IOVec, bool) {
	resp.meta.StatusCode = int32(resp.StatusCode())
	if resp.Error() != nil {
		resp.meta.ErrorMessage = resp.ErrorMessage()
	}
	return encodeFrame(&resp.meta, &resp.Base, resp.attachment, resp.ServiceName(), resp.MethodName(), max)
}

func encodeFrame(meta *metapb.BRPCMeta, base *rpc.Base, attachment *buffer.Buffer, service, method string, max int) ([]buffer.IOVec, bool) {
	meta.ServiceName = service
	meta.MethodName = method
	meta.SequenceID = base.SequenceID()
	meta.DataType = int32(base.DataType())
	meta.CompressType = int32(base.CompressType())
	if attachment != nil {
		meta.AttachmentSize = int32(attachment.Size())
	} else {
		meta.AttachmentSize = 0
	}

	metaBytes := meta.Marshal()
	payloadIOVs, ok := base.Encode(max)
	if !ok {
		return nil, false
	}

	bodyLen := len(metaBytes)
	for _, v := range payloadIOVs {
		bodyLen += len(v.Base)
	}

	out := make([]buffer.IOVec, 0, len(payloadIOVs)+3)
	var attachIOVs []buffer.IOVec
	if attachment != nil {
		var attOK bool
		attachIOVs, attOK = attachment.Encode(max)
		if !attOK {
			return nil, false
		}
		for _, v := range attachIOVs {
			bodyLen += len(v.Base)
		}
	}

	out = append(out, buffer.IOVec{Base: EncodeHeader(bodyLen, len(metaBytes))})
	out = append(out, buffer.IOVec{Base: metaBytes})
	out = append(out, payloadIOVs...)
	out = append(out, attachIOVs...)
	return out, true
}

package thriftx

import (
	"bytes"
	"io"
	"net/http"

	"github.com/apache/thrift/lib/go/thrift"

	"github.com/go-srpc/srpc/status"
)

// WriteHTTPRequest renders req as an outgoing *http.Request: Content-Type
// application/x-thrift, body = message envelope (CALL) + serialized struct,
// Content-Length set from that combined size — the HTTP tunnel carries no
// 4-byte frame-size prefix, since Content-Length already frames the body
// (§3 HTTP-tunneled variants).
func WriteHTTPRequest(req *Request, httpReq *http.Request) error {
	envelope, ok := writeMessageBegin(req.MethodName(), thrift.CALL, int32(req.SequenceID()))
	if !ok {
		return status.New(status.ReqSerializeError, nil)
	}
	body := append(envelope, req.Buffer().Bytes()...)
	if len(body) > 0x7FFFFFFF {
		return status.New(status.ReqSerializeError, nil)
	}

	h := httpReq.Header
	h.Set("Content-Type", "application/x-thrift")
	h.Set("Connection", "Keep-Alive")
	httpReq.Body = io.NopCloser(bytes.NewReader(body))
	httpReq.ContentLength = int64(len(body))
	return nil
}

// ReadHTTPRequest parses an incoming *http.Request body as a full
// envelope+struct Thrift message (no length prefix — Content-Length framed
// it already).
func ReadHTTPRequest(httpReq *http.Request, pieceMin, pieceMax int) (*Request, error) {
	body, err := io.ReadAll(httpReq.Body)
	if err != nil {
		return nil, status.New(status.MetaError, err)
	}
	return DecodeRequest(body, pieceMin, pieceMax, false)
}

// WriteHTTPResponse renders resp onto w, deriving the HTTP status line from
// the shared status code (§4.6) and the body from either the normal REPLY
// envelope+payload or the EXCEPTION envelope+struct, matching Encode.
func WriteHTTPResponse(resp *Response, w http.ResponseWriter) error {
	iovs, ok := resp.Encode(2)
	if !ok {
		return status.New(status.RespSerializeError, nil)
	}
	// iovs[0] is the 4-byte TCP frame-size prefix; the HTTP tunnel relies
	// on Content-Length instead, so it is dropped here.
	body := make([]byte, 0, len(resp.Buffer().Bytes())+32)
	for _, v := range iovs[1:] {
		body = append(body, v.Base...)
	}

	h := w.Header()
	h.Set("Content-Type", "application/x-thrift")
	h.Set("Connection", "Keep-Alive")
	w.WriteHeader(status.HTTPStatus(resp.StatusCode()))
	_, err := w.Write(body)
	return err
}

// ReadHTTPResponse parses an incoming *http.Response body the same way
// ReadHTTPRequest does.
func ReadHTTPResponse(httpResp *http.Response, pieceMin, pieceMax int) (*Response, error) {
	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, status.New(status.MetaError, err)
	}
	return DecodeResponse(body, pieceMin, pieceMax, false)
}

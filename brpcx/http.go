package brpcx

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-srpc/srpc/httpmeta"
	"github.com/go-srpc/srpc/status"
)

// WriteHTTPRequest renders req onto httpReq. The attachment, when present,
// is appended after the payload in the body (mirroring the TCP frame's
// layout) since HTTP has no separate attachment channel.
func WriteHTTPRequest(req *Request, httpReq *http.Request) {
	h := httpReq.Header
	h.Set("Content-Type", httpmeta.ContentType(req.DataType()))
	h.Set("Content-Encoding", httpmeta.ContentEncoding(req.CompressType()))

	body := req.Buffer().Bytes()
	if req.Attachment() != nil {
		body = append(append([]byte{}, body...), req.Attachment().Bytes()...)
		h.Set("X-Attachment-Size", strconv.Itoa(req.Attachment().Size()))
	}
	httpReq.Body = io.NopCloser(bytes.NewReader(body))
	httpReq.ContentLength = int64(len(body))
}

// ReadHTTPRequest parses an incoming *http.Request into a Request.
func ReadHTTPRequest(httpReq *http.Request, pieceMin, pieceMax int) (*Request, error) {
	service, method, err := httpmeta.SplitServiceMethod(httpReq.URL.Path)
	if err != nil {
		return nil, err
	}
	dataType, ok := httpmeta.ParseContentType(httpReq.Header.Get("Content-Type"))
	if !ok {
		return nil, status.New(status.MetaError, nil)
	}
	compressType, ok := httpmeta.ParseContentEncoding(httpReq.Header.Get("Content-Encoding"))
	if !ok {
		return nil, status.New(status.MetaError, nil)
	}

	req := NewRequest(pieceMin, pieceMax)
	req.SetServiceName(service)
	req.SetMethodName(method)
	req.SetDataType(dataType)
	req.SetCompressType(compressType)

	body, err := io.ReadAll(httpReq.Body)
	if err != nil {
		return nil, status.New(status.MetaError, err)
	}
	req.Buffer().Write(body)
	if v := httpReq.Header.Get("X-Attachment-Size"); v != "" {
		n, _ := strconv.Atoi(v)
		if n > 0 && n <= req.Buffer().Size() {
			att, ok := req.Buffer().Cut(req.Buffer().Size() - n)
			if ok {
				req.SetAttachmentNocopy(att)
			}
		}
	}
	return req, nil
}

// WriteHTTPResponse renders resp onto w.
func WriteHTTPResponse(resp *Response, w http.ResponseWriter) error {
	h := w.Header()
	h.Set("Content-Type", httpmeta.ContentType(resp.DataType()))
	h.Set("Content-Encoding", httpmeta.ContentEncoding(resp.CompressType()))
	h.Set("BRPC-Status", strconv.Itoa(int(resp.StatusCode())))
	if resp.Error() != nil {
		h.Set("BRPC-Error", resp.ErrorMessage())
	}
	if resp.Attachment() != nil {
		h.Set("X-Attachment-Size", strconv.Itoa(resp.Attachment().Size()))
	}

	w.WriteHeader(status.HTTPStatus(resp.StatusCode()))
	body := resp.Buffer().Bytes()
	if resp.Attachment() != nil {
		body = append(append([]byte{}, body...), resp.Attachment().Bytes()...)
	}
	_, err := w.Write(body)
	return err
}

// ReadHTTPResponse parses an incoming *http.Response into a Response.
func ReadHTTPResponse(httpResp *http.Response, pieceMin, pieceMax int) (*Response, error) {
	dataType, ok := httpmeta.ParseContentType(httpResp.Header.Get("Content-Type"))
	if !ok {
		return nil, status.New(status.MetaError, nil)
	}
	compressType, ok := httpmeta.ParseContentEncoding(httpResp.Header.Get("Content-Encoding"))
	if !ok {
		return nil, status.New(status.MetaError, nil)
	}

	resp := NewResponse(pieceMin, pieceMax)
	resp.SetDataType(dataType)
	resp.SetCompressType(compressType)
	if v := httpResp.Header.Get("BRPC-Status"); v != "" {
		n, _ := strconv.Atoi(v)
		resp.SetStatusCode(status.Code(n))
	}
	if v := httpResp.Header.Get("BRPC-Error"); v != "" {
		resp.SetError(fmt.Errorf("%s", v))
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, status.New(status.MetaError, err)
	}
	resp.Buffer().Write(body)
	if v := httpResp.Header.Get("X-Attachment-Size"); v != "" {
		n, _ := strconv.Atoi(v)
		if n > 0 && n <= resp.Buffer().Size() {
			att, ok := resp.Buffer().Cut(resp.Buffer().Size() - n)
			if ok {
				resp.SetAttachmentNocopy(att)
			}
		}
	}
	return resp, nil
}

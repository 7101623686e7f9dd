package srpcx

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-srpc/srpc/httpmeta"
	"github.com/go-srpc/srpc/status"
)

// WriteHTTPRequest renders req as an outgoing *http.Request body + headers
// (§4.3, §6). The caller supplies method/url; this only sets headers and
// body.
func WriteHTTPRequest(req *Request, httpReq *http.Request) {
	h := httpReq.Header
	h.Set("Content-Type", httpmeta.ContentType(req.DataType()))
	h.Set("Content-Encoding", httpmeta.ContentEncoding(req.CompressType()))
	if req.OriginSize() > 0 {
		h.Set("Origin-Size", strconv.Itoa(req.OriginSize()))
	}
	setTraceHeaders(h, req.ModuleData())

	body := req.Buffer().Bytes()
	httpReq.Body = io.NopCloser(bytes.NewReader(body))
	httpReq.ContentLength = int64(len(body))
}

// ReadHTTPRequest parses an incoming *http.Request into a Request. The
// request-URI is split into service/method per §6; an empty or single-
// segment path is status.URIInvalid.
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
	if originSize := httpReq.Header.Get("Origin-Size"); originSize != "" {
		n, _ := strconv.Atoi(originSize)
		req.SetExpectedSizes(n, 0)
	}
	req.SetModuleData(traceHeadersToModuleData(httpReq.Header))

	body, err := io.ReadAll(httpReq.Body)
	if err != nil {
		return nil, status.New(status.MetaError, err)
	}
	req.Buffer().Write(body)
	return req, nil
}

// WriteHTTPResponse renders resp onto w: status line derived from the
// shared status code, SRPC-Status/SRPC-Error headers, then the body.
func WriteHTTPResponse(resp *Response, w http.ResponseWriter) error {
	h := w.Header()
	h.Set("Content-Type", httpmeta.ContentType(resp.DataType()))
	h.Set("Content-Encoding", httpmeta.ContentEncoding(resp.CompressType()))
	h.Set("SRPC-Status", strconv.Itoa(int(resp.StatusCode())))
	if resp.Error() != nil {
		h.Set("SRPC-Error", resp.ErrorMessage())
	}
	if resp.OriginSize() > 0 {
		h.Set("Origin-Size", strconv.Itoa(resp.OriginSize()))
	}
	setTraceHeaders(h, resp.ModuleData())

	w.WriteHeader(status.HTTPStatus(resp.StatusCode()))
	_, err := w.Write(resp.Buffer().Bytes())
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
	if v := httpResp.Header.Get("SRPC-Status"); v != "" {
		n, _ := strconv.Atoi(v)
		resp.SetStatusCode(status.Code(n))
	}
	if v := httpResp.Header.Get("SRPC-Error"); v != "" {
		resp.SetError(fmt.Errorf("%s", v))
	}
	if originSize := httpResp.Header.Get("Origin-Size"); originSize != "" {
		n, _ := strconv.Atoi(originSize)
		resp.SetExpectedSizes(n, 0)
	}
	resp.SetModuleData(traceHeadersToModuleData(httpResp.Header))

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, status.New(status.MetaError, err)
	}
	resp.Buffer().Write(body)
	return resp, nil
}

func setTraceHeaders(h http.Header, moduleData map[string]string) {
	if v, ok := moduleData["trace_id"]; ok {
		h.Set("Trace-Id", v)
	}
	if v, ok := moduleData["span_id"]; ok {
		h.Set("Span-Id", v)
	}
}

func traceHeadersToModuleData(h http.Header) map[string]string {
	m := map[string]string{}
	if v := h.Get("Trace-Id"); v != "" {
		m["trace_id"] = v
	}
	if v := h.Get("Span-Id"); v != "" {
		m["span_id"] = v
	}
	return m
}

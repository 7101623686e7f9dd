package trpcx

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-srpc/srpc/httpmeta"
	"github.com/go-srpc/srpc/status"
)

// WriteHTTPRequest renders req onto httpReq, setting the full trpc-* header
// set (§6) plus a traceparent header composed from the request's trace_id/
// span_id module-data entries, when present.
func WriteHTTPRequest(req *Request, httpReq *http.Request) {
	h := httpReq.Header
	h.Set("Content-Type", httpmeta.ContentType(req.DataType()))
	h.Set("Content-Encoding", httpmeta.ContentEncoding(req.CompressType()))
	h.Set("trpc-call-type", "0")
	h.Set("trpc-request-id", strconv.FormatInt(req.SequenceID(), 10))
	if t := req.Timeout(); t != 0 {
		h.Set("trpc-timeout", strconv.Itoa(int(t)))
	}
	if v := req.Caller(); v != "" {
		h.Set("trpc-caller", v)
	}
	if v := req.Callee(); v != "" {
		h.Set("trpc-callee", v)
	}
	h.Set("trpc-func", "/"+req.ServiceName()+"/"+req.MethodName())
	h.Set("trpc-message-type", "0")
	setTransInfoHeader(h, req.ModuleData())

	body := req.Buffer().Bytes()
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
	if v := httpReq.Header.Get("trpc-request-id"); v != "" {
		n, _ := strconv.ParseInt(v, 10, 64)
		req.SetSequenceID(n)
	}
	if v := httpReq.Header.Get("trpc-timeout"); v != "" {
		n, _ := strconv.Atoi(v)
		req.SetTimeout(int32(n))
	}
	req.SetCaller(httpReq.Header.Get("trpc-caller"))
	req.SetCallee(httpReq.Header.Get("trpc-callee"))
	req.SetModuleData(transInfoFromHeader(httpReq.Header))

	body, err := io.ReadAll(httpReq.Body)
	if err != nil {
		return nil, status.New(status.MetaError, err)
	}
	req.Buffer().Write(body)
	return req, nil
}

// WriteHTTPResponse renders resp onto w.
func WriteHTTPResponse(resp *Response, w http.ResponseWriter) error {
	h := w.Header()
	h.Set("Content-Type", httpmeta.ContentType(resp.DataType()))
	h.Set("Content-Encoding", httpmeta.ContentEncoding(resp.CompressType()))
	h.Set("trpc-ret", strconv.Itoa(int(status.ToTRPC(resp.StatusCode()))))
	h.Set("trpc-func-ret", "0")
	if resp.Error() != nil {
		h.Set("trpc-error-msg", resp.ErrorMessage())
	}
	setTransInfoHeader(h, resp.ModuleData())

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
	if v := httpResp.Header.Get("trpc-ret"); v != "" {
		n, _ := strconv.Atoi(v)
		resp.SetStatusCode(status.FromTRPC(status.TRPCCode(n)))
	}
	if v := httpResp.Header.Get("trpc-error-msg"); v != "" {
		resp.SetError(fmt.Errorf("%s", v))
	}
	resp.SetModuleData(transInfoFromHeader(httpResp.Header))

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, status.New(status.MetaError, err)
	}
	resp.Buffer().Write(body)
	return resp, nil
}

// setTransInfoHeader composes the trpc-trans-info header (a JSON object,
// each value base64-encoded) and, when the map carries trace_id/span_id,
// also sets a W3C traceparent header derived from them.
func setTransInfoHeader(h http.Header, moduleData map[string]string) {
	if len(moduleData) == 0 {
		return
	}
	encoded := make(map[string]string, len(moduleData))
	for k, v := range moduleData {
		encoded[k] = base64.StdEncoding.EncodeToString([]byte(v))
	}
	if b, err := json.Marshal(encoded); err == nil {
		h.Set("trpc-trans-info", string(b))
	}
	if traceID, ok := moduleData["trace_id"]; ok {
		if spanID, ok := moduleData["span_id"]; ok {
			h.Set("traceparent", composeTraceparent(traceID, spanID))
		}
	}
}

// transInfoFromHeader reconstructs the trans_info map from the
// trpc-trans-info header (each value base64-decoded; undecodable values are
// kept raw) merged with a traceparent header parsed into trace_id/span_id,
// per §4.3 and §6.
func transInfoFromHeader(h http.Header) map[string]string {
	m := map[string]string{}
	if v := h.Get("trpc-trans-info"); v != "" {
		var raw map[string]string
		if err := json.Unmarshal([]byte(v), &raw); err == nil {
			for k, enc := range raw {
				if decoded, err := base64.StdEncoding.DecodeString(enc); err == nil {
					m[k] = string(decoded)
				} else {
					m[k] = enc
				}
			}
		}
	}
	if v := h.Get("traceparent"); v != "" {
		if traceID, spanID, ok := parseTraceparent(v); ok {
			m["trace_id"] = traceID
			m["span_id"] = spanID
		}
	}
	return m
}

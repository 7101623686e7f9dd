package thriftx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-srpc/srpc/buffer"
	"github.com/go-srpc/srpc/status"
	"github.com/go-srpc/srpc/thriftx"
)

func flatten(t *testing.T, iovs []buffer.IOVec) []byte {
	t.Helper()
	var out []byte
	for _, v := range iovs {
		out = append(out, v.Base...)
	}
	return out
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	req := thriftx.NewRequest(0, 0)
	req.SetMethodName("Echo")
	req.SetSequenceID(42)
	req.Buffer().Write([]byte("struct-bytes"))

	iovs, ok := req.Encode(16)
	require.True(t, ok)
	wire := flatten(t, iovs)

	dec := thriftx.NewDecoder(0)
	consumed, done, err := dec.Feed(wire)
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, len(wire), consumed)

	got, err := thriftx.DecodeRequest(dec.Body(), 0, 0, false)
	require.NoError(t, err)
	require.Equal(t, "Echo", got.MethodName())
	require.Equal(t, "Echo", got.ServiceName())
	require.Equal(t, int64(42), got.SequenceID())
	require.Equal(t, "struct-bytes", string(got.Buffer().Bytes()))
}

func TestDecoderFeedAcrossMultipleCalls(t *testing.T) {
	req := thriftx.NewRequest(0, 0)
	req.SetMethodName("M")
	req.Buffer().Write([]byte("payload-bytes-here"))
	iovs, ok := req.Encode(16)
	require.True(t, ok)
	wire := flatten(t, iovs)

	dec := thriftx.NewDecoder(0)
	total := 0
	var done bool
	for i := 0; i < len(wire); i += 3 {
		end := i + 3
		if end > len(wire) {
			end = len(wire)
		}
		n, d, err := dec.Feed(wire[i:end])
		require.NoError(t, err)
		total += n
		if d {
			done = true
			break
		}
	}
	require.True(t, done)
	require.Equal(t, len(wire), total)
}

func TestDecoderRejectsOversizedFrame(t *testing.T) {
	dec := thriftx.NewDecoder(10)
	header := thriftx.EncodeHeader(1 << 20)
	_, _, err := dec.Feed(header)
	require.Error(t, err)
}

func TestExceptionRoundTrip(t *testing.T) {
	resp := thriftx.NewResponse(0, 0)
	resp.SetMethodName("Echo")
	resp.SetSequenceID(5)
	resp.SetStatusCode(status.MethodNotFound)
	resp.SetError(status.New(status.MethodNotFound, nil))

	iovs, ok := resp.Encode(16)
	require.True(t, ok)
	wire := flatten(t, iovs)

	dec := thriftx.NewDecoder(0)
	_, done, err := dec.Feed(wire)
	require.NoError(t, err)
	require.True(t, done)

	got, err := thriftx.DecodeResponse(dec.Body(), 0, 0, false)
	require.NoError(t, err)
	require.Equal(t, status.MethodNotFound, got.StatusCode())
}

func TestOKResponseRoundTrip(t *testing.T) {
	resp := thriftx.NewResponse(0, 0)
	resp.SetMethodName("Echo")
	resp.SetSequenceID(5)
	resp.SetStatusCode(status.OK)
	resp.Buffer().Write([]byte("reply-bytes"))

	iovs, ok := resp.Encode(16)
	require.True(t, ok)
	wire := flatten(t, iovs)

	dec := thriftx.NewDecoder(0)
	_, done, err := dec.Feed(wire)
	require.NoError(t, err)
	require.True(t, done)

	got, err := thriftx.DecodeResponse(dec.Body(), 0, 0, false)
	require.NoError(t, err)
	require.Equal(t, status.OK, got.StatusCode())
	require.Equal(t, "reply-bytes", string(got.Buffer().Bytes()))
}

func TestHTTPTunnelRoundTrip(t *testing.T) {
	req := thriftx.NewRequest(0, 0)
	req.SetMethodName("Echo")
	req.SetSequenceID(3)
	req.Buffer().Write([]byte("json-free-struct"))

	httpReq := httptest.NewRequest(http.MethodPost, "/Example/Echo", nil)
	require.NoError(t, thriftx.WriteHTTPRequest(req, httpReq))

	parsed, err := thriftx.ReadHTTPRequest(httpReq, 0, 0)
	require.NoError(t, err)
	require.Equal(t, "Echo", parsed.MethodName())
	require.Equal(t, "json-free-struct", string(parsed.Buffer().Bytes()))

	resp := thriftx.NewResponse(0, 0)
	resp.SetMethodName("Echo")
	resp.SetSequenceID(3)
	resp.SetStatusCode(status.OK)
	resp.Buffer().Write([]byte("ok-bytes"))

	rec := httptest.NewRecorder()
	require.NoError(t, thriftx.WriteHTTPResponse(resp, rec))
	require.Equal(t, 200, rec.Code)

	gotResp, err := thriftx.ReadHTTPResponse(rec.Result(), 0, 0)
	require.NoError(t, err)
	require.Equal(t, status.OK, gotResp.StatusCode())
	require.Equal(t, "ok-bytes", string(gotResp.Buffer().Bytes()))
}

package trpcx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-srpc/srpc/buffer"
	"github.com/go-srpc/srpc/rpc"
	"github.com/go-srpc/srpc/status"
	"github.com/go-srpc/srpc/trpcx"
)

func flatten(t *testing.T, iovs []buffer.IOVec) []byte {
	t.Helper()
	var out []byte
	for _, v := range iovs {
		out = append(out, v.Base...)
	}
	return out
}

func TestEncodeDecodeRoundTripTrimsMethodPrefix(t *testing.T) {
	req := trpcx.NewRequest(0, 0)
	req.SetServiceName("Example")
	req.SetMethodName("Echo")
	req.SetSequenceID(3)
	req.SetDataType(rpc.Protobuf)
	req.Buffer().Write([]byte("hello"))

	iovs, ok := req.Encode(16)
	require.True(t, ok)
	wire := flatten(t, iovs)

	dec := trpcx.NewDecoder(0)
	consumed, done, err := dec.Feed(wire)
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, len(wire), consumed)

	got, err := trpcx.DecodeRequest(dec, 0, 0, false)
	require.NoError(t, err)
	require.Equal(t, "Example", got.ServiceName())
	require.Equal(t, "Echo", got.MethodName())
	require.Equal(t, int64(3), got.SequenceID())
	require.Equal(t, "hello", string(got.Buffer().Bytes()))
}

func TestDecoderFeedAcrossMultipleCalls(t *testing.T) {
	req := trpcx.NewRequest(0, 0)
	req.SetServiceName("S")
	req.SetMethodName("M")
	req.Buffer().Write([]byte("payload-bytes-here"))
	iovs, ok := req.Encode(16)
	require.True(t, ok)
	wire := flatten(t, iovs)

	dec := trpcx.NewDecoder(0)
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

func TestDecoderRejectsBadMagic(t *testing.T) {
	dec := trpcx.NewDecoder(0)
	bad := make([]byte, 16)
	_, _, err := dec.Feed(bad)
	require.Error(t, err)
}

func TestStatusCodeRoundTripsThroughTRPCMapping(t *testing.T) {
	resp := trpcx.NewResponse(0, 0)
	resp.SetServiceName("S")
	resp.SetMethodName("M")
	resp.SetStatusCode(status.ServiceNotFound)
	iovs, ok := resp.Encode(16)
	require.True(t, ok)
	wire := flatten(t, iovs)

	dec := trpcx.NewDecoder(0)
	_, done, err := dec.Feed(wire)
	require.NoError(t, err)
	require.True(t, done)

	got, err := trpcx.DecodeResponse(dec, 0, 0, false)
	require.NoError(t, err)
	require.Equal(t, status.ServiceNotFound, got.StatusCode())
}

func TestHTTPTunnelTraceparentRoundTrip(t *testing.T) {
	req := trpcx.NewRequest(0, 0)
	req.SetServiceName("Example")
	req.SetMethodName("Echo")
	req.SetDataType(rpc.JSON)
	req.SetModuleData(map[string]string{
		"trace_id": "0af7651916cd43dd8448eb211c80319c",
		"span_id":  "b7ad6b7169203331",
	})
	req.Buffer().Write([]byte(`{"a":1}`))

	httpReq := httptest.NewRequest(http.MethodPost, "/Example/Echo", nil)
	trpcx.WriteHTTPRequest(req, httpReq)
	require.Equal(t, "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01", httpReq.Header.Get("traceparent"))

	parsed, err := trpcx.ReadHTTPRequest(httpReq, 0, 0)
	require.NoError(t, err)
	require.Equal(t, "0af7651916cd43dd8448eb211c80319c", parsed.ModuleData()["trace_id"])
	require.Equal(t, "b7ad6b7169203331", parsed.ModuleData()["span_id"])

	resp := trpcx.NewResponse(0, 0)
	resp.SetStatusCode(status.OK)
	resp.SetDataType(rpc.JSON)
	resp.Buffer().Write([]byte(`{"ok":true}`))

	rec := httptest.NewRecorder()
	require.NoError(t, trpcx.WriteHTTPResponse(resp, rec))

	httpResp := rec.Result()
	gotResp, err := trpcx.ReadHTTPResponse(httpResp, 0, 0)
	require.NoError(t, err)
	require.Equal(t, status.OK, gotResp.StatusCode())
	require.Equal(t, `{"ok":true}`, string(gotResp.Buffer().Bytes()))
}

func TestReadHTTPRequestRejectsEmptyPath(t *testing.T) {
	httpReq := httptest.NewRequest(http.MethodPost, "/", nil)
	_, err := trpcx.ReadHTTPRequest(httpReq, 0, 0)
	require.Error(t, err)
}

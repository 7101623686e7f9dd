package srpcx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-srpc/srpc/buffer"
	"github.com/go-srpc/srpc/compress"
	"github.com/go-srpc/srpc/rpc"
	"github.com/go-srpc/srpc/srpcx"
	"github.com/go-srpc/srpc/status"
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
	req := srpcx.NewRequest(0, 0)
	req.SetServiceName("Example")
	req.SetMethodName("Echo")
	req.SetSequenceID(7)
	req.SetDataType(rpc.Protobuf)
	req.SetModuleData(map[string]string{"trace_id": "0102030405060708090a0b0c0d0e0f10"})
	req.Buffer().Write([]byte("hello"))

	iovs, ok := req.Encode(16)
	require.True(t, ok)
	wire := flatten(t, iovs)

	dec := srpcx.NewDecoder(0)
	consumed, done, err := dec.Feed(wire)
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, len(wire), consumed)

	got, err := srpcx.DecodeRequest(dec, 0, 0, false)
	require.NoError(t, err)
	require.Equal(t, "Example", got.ServiceName())
	require.Equal(t, "Echo", got.MethodName())
	require.Equal(t, int64(7), got.SequenceID())
	require.Equal(t, "hello", string(got.Buffer().Bytes()))
	require.Equal(t, "0102030405060708090a0b0c0d0e0f10", got.ModuleData()["trace_id"])
}

func TestDecoderFeedAcrossMultipleCalls(t *testing.T) {
	req := srpcx.NewRequest(0, 0)
	req.SetServiceName("S")
	req.SetMethodName("M")
	req.Buffer().Write([]byte("payload-bytes"))
	iovs, ok := req.Encode(16)
	require.True(t, ok)
	wire := flatten(t, iovs)

	dec := srpcx.NewDecoder(0)
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
	dec := srpcx.NewDecoder(0)
	bad := make([]byte, 16)
	copy(bad, "XXXX")
	_, _, err := dec.Feed(bad)
	require.Error(t, err)
}

func TestHTTPTunnelRoundTrip(t *testing.T) {
	req := srpcx.NewRequest(0, 0)
	req.SetServiceName("Example")
	req.SetMethodName("Echo")
	req.SetDataType(rpc.JSON)
	req.SetCompressType(compress.None)
	req.SetModuleData(map[string]string{"trace_id": "0102030405060708090a0b0c0d0e0f10"})
	req.Buffer().Write([]byte(`{"a":1}`))

	httpReq := httptest.NewRequest(http.MethodPost, "/Example/Echo", nil)
	srpcx.WriteHTTPRequest(req, httpReq)

	parsed, err := srpcx.ReadHTTPRequest(httpReq, 0, 0)
	require.NoError(t, err)
	require.Equal(t, "Example", parsed.ServiceName())
	require.Equal(t, "Echo", parsed.MethodName())
	require.Equal(t, rpc.JSON, parsed.DataType())
	require.Equal(t, `{"a":1}`, string(parsed.Buffer().Bytes()))
	require.Equal(t, "0102030405060708090a0b0c0d0e0f10", parsed.ModuleData()["trace_id"])

	resp := srpcx.NewResponse(0, 0)
	resp.SetStatusCode(status.OK)
	resp.SetDataType(rpc.JSON)
	resp.Buffer().Write([]byte(`{"ok":true}`))

	rec := httptest.NewRecorder()
	require.NoError(t, srpcx.WriteHTTPResponse(resp, rec))
	require.Equal(t, 200, rec.Code)

	httpResp := rec.Result()
	gotResp, err := srpcx.ReadHTTPResponse(httpResp, 0, 0)
	require.NoError(t, err)
	require.Equal(t, status.OK, gotResp.StatusCode())
	require.Equal(t, `{"ok":true}`, string(gotResp.Buffer().Bytes()))
}

func TestReadHTTPRequestRejectsEmptyPath(t *testing.T) {
	httpReq := httptest.NewRequest(http.MethodPost, "/", nil)
	_, err := srpcx.ReadHTTPRequest(httpReq, 0, 0)
	require.Error(t, err)
}

func TestNewRequestWithNewTraceAssignsDistinctTraceAndSpanIDs(t *testing.T) {
	req1, err := srpcx.NewRequestWithNewTrace(0, 0)
	require.NoError(t, err)
	req2, err := srpcx.NewRequestWithNewTrace(0, 0)
	require.NoError(t, err)

	md1 := req1.ModuleData()
	md2 := req2.ModuleData()

	require.Len(t, md1["trace_id"], 32)
	require.Len(t, md1["span_id"], 16)
	require.NotEqual(t, md1["trace_id"], md2["trace_id"])
	require.NotEqual(t, md1["span_id"], md2["span_id"])
}

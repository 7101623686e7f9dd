package metapb_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/go-srpc/srpc/metapb"
)

func TestSRPCMetaRoundTrip(t *testing.T) {
	in := &metapb.SRPCMeta{
		ServiceName:  "Example",
		MethodName:   "Echo",
		StatusCode:   1,
		CompressType: 2,
		DataType:     0,
		TraceID:      []byte("0123456789abcdef"),
		SpanID:       []byte("01234567"),
		TransInfo:    map[string]string{"trace_id": "0123456789abcdef", "span_id": "01234567"},
	}
	buf := in.Marshal()

	var out metapb.SRPCMeta
	require.NoError(t, out.Unmarshal(buf))
	require.Equal(t, in.ServiceName, out.ServiceName)
	require.Equal(t, in.MethodName, out.MethodName)
	require.Equal(t, in.StatusCode, out.StatusCode)
	require.Equal(t, in.TraceID, out.TraceID)
	require.Equal(t, in.SpanID, out.SpanID)
	require.Equal(t, in.TransInfo, out.TransInfo)
}

func TestBRPCMetaRoundTripWithAttachment(t *testing.T) {
	in := &metapb.BRPCMeta{
		ServiceName:    "Example",
		MethodName:     "Echo",
		AttachmentSize: 11,
	}
	buf := in.Marshal()

	var out metapb.BRPCMeta
	require.NoError(t, out.Unmarshal(buf))
	require.Equal(t, int32(11), out.AttachmentSize)
}

func TestTRPCMetaRoundTripPreservesTransInfo(t *testing.T) {
	in := &metapb.TRPCMeta{
		Callee:         "trpc.example.echo.Echo",
		FullMethodName: "/trpc.example.echo.Echo/Echo",
		TransInfo: map[string]string{
			"traceparent": "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01",
		},
	}
	buf := in.Marshal()

	var out metapb.TRPCMeta
	require.NoError(t, out.Unmarshal(buf))
	require.Equal(t, in.TransInfo, out.TransInfo)
	require.Equal(t, in.FullMethodName, out.FullMethodName)
}

// TestSRPCMetaRoundTripStructural compares the whole struct rather than
// field-by-field, using go-cmp so that a mismatch is reported as a
// field-level diff.
func TestSRPCMetaRoundTripStructural(t *testing.T) {
	in := &metapb.SRPCMeta{
		ServiceName: "Example",
		MethodName:  "Echo",
		StatusCode:  1,
		TraceID:     []byte("0123456789abcdef"),
		SpanID:      []byte("01234567"),
	}
	buf := in.Marshal()

	out := &metapb.SRPCMeta{}
	require.NoError(t, out.Unmarshal(buf))

	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("SRPCMeta round trip mismatch (-in +out):\n%s", diff)
	}
}

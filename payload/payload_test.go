package payload_test

import (
	"context"
	"testing"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/go-srpc/srpc/buffer"
	"github.com/go-srpc/srpc/payload"
	"github.com/go-srpc/srpc/status"
)

func newBuffer() *buffer.Buffer {
	return buffer.New(0, 0)
}

func TestProtobufRoundTrip(t *testing.T) {
	in, err := structpb.NewStruct(map[string]interface{}{"hello": "world", "n": 3.0})
	require.NoError(t, err)

	buf := newBuffer()
	require.NoError(t, payload.MarshalProtobuf(buf, in, status.ReqSerializeError))

	var out structpb.Struct
	require.NoError(t, payload.UnmarshalProtobuf(buf, &out, status.ReqDeserializeError))
	require.Equal(t, in.Fields["hello"].GetStringValue(), out.Fields["hello"].GetStringValue())
}

func TestProtobufJSONRoundTrip(t *testing.T) {
	in, err := structpb.NewStruct(map[string]interface{}{"a": 1.0})
	require.NoError(t, err)

	buf := newBuffer()
	opts := payload.JSONOptions{PreserveProtoFieldNames: true}
	require.NoError(t, payload.MarshalProtobufJSON(buf, in, opts, status.RespSerializeError))
	require.Contains(t, string(buf.Bytes()), "\"a\"")

	var out structpb.Struct
	require.NoError(t, payload.UnmarshalProtobufJSON(buf, &out, status.RespDeserializeError))
	require.Equal(t, 1.0, out.Fields["a"].GetNumberValue())
}

func TestProtobufJSONEmptyBodySynthesizesEmptyObject(t *testing.T) {
	buf := newBuffer()
	var out structpb.Struct
	require.NoError(t, payload.UnmarshalProtobufJSON(buf, &out, status.RespDeserializeError))
	require.Empty(t, out.Fields)
}

// echoStruct is a hand-written stand-in for a generated Thrift struct: one
// string field, tag 1. Real callers plug in their own IDL-generated type;
// this package only needs the thrift.TStruct interface.
type echoStruct struct {
	Message string
}

func (e *echoStruct) Write(ctx context.Context, oprot thrift.TProtocol) error {
	if err := oprot.WriteStructBegin(ctx, "Echo"); err != nil {
		return err
	}
	if err := oprot.WriteFieldBegin(ctx, "message", thrift.STRING, 1); err != nil {
		return err
	}
	if err := oprot.WriteString(ctx, e.Message); err != nil {
		return err
	}
	if err := oprot.WriteFieldEnd(ctx); err != nil {
		return err
	}
	if err := oprot.WriteFieldStop(ctx); err != nil {
		return err
	}
	return oprot.WriteStructEnd(ctx)
}

func (e *echoStruct) Read(ctx context.Context, iprot thrift.TProtocol) error {
	if _, err := iprot.ReadStructBegin(ctx); err != nil {
		return err
	}
	for {
		_, typeID, id, err := iprot.ReadFieldBegin(ctx)
		if err != nil {
			return err
		}
		if typeID == thrift.STOP {
			break
		}
		if id == 1 && typeID == thrift.STRING {
			v, err := iprot.ReadString(ctx)
			if err != nil {
				return err
			}
			e.Message = v
		} else if err := iprot.Skip(ctx, typeID); err != nil {
			return err
		}
		if err := iprot.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}
	return iprot.ReadStructEnd(ctx)
}

func TestThriftRoundTrip(t *testing.T) {
	in := &echoStruct{Message: "ping"}
	buf := newBuffer()
	require.NoError(t, payload.MarshalThrift(context.Background(), buf, in, status.ReqSerializeError))

	var out echoStruct
	require.NoError(t, payload.UnmarshalThrift(context.Background(), buf, &out, status.ReqDeserializeError))
	require.Equal(t, in.Message, out.Message)
}

func TestThriftJSONRoundTrip(t *testing.T) {
	in := &echoStruct{Message: "pong"}
	buf := newBuffer()
	require.NoError(t, payload.MarshalThriftJSON(context.Background(), buf, in, status.RespSerializeError))

	var out echoStruct
	require.NoError(t, payload.UnmarshalThriftJSON(context.Background(), buf, &out, status.RespDeserializeError))
	require.Equal(t, in.Message, out.Message)
}

func TestThriftJSONEmptyBodySynthesizesEmptyObject(t *testing.T) {
	buf := newBuffer()
	var out echoStruct
	require.NoError(t, payload.UnmarshalThriftJSON(context.Background(), buf, &out, status.RespDeserializeError))
	require.Empty(t, out.Message)
}

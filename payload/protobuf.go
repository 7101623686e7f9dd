package payload

import (
	"google.golang.org/protobuf/proto"

	"github.com/go-srpc/srpc/buffer"
	"github.com/go-srpc/srpc/status"
)

// MarshalProtobuf serializes msg directly into buf. This is the Go rendering
// of the original's zero-copy-stream path: protobuf-go has no
// CodedOutputStream equivalent, so the bytes are produced with proto.Marshal
// and then copied into buf's owned chunks via buffer.Write, which is itself
// Acquire-backed.
//
// errCode is the status.Code to wrap a marshal failure in — callers pass
// status.ReqSerializeError or status.RespSerializeError depending on which
// side of the exchange is being produced.
func MarshalProtobuf(buf *buffer.Buffer, msg proto.Message, errCode status.Code) error {
	data, err := proto.Marshal(msg)
	if err != nil {
		return status.New(errCode, err)
	}
	buf.Write(data)
	return nil
}

// UnmarshalProtobuf parses buf's full contents into msg. errCode plays the
// same role as in MarshalProtobuf, for the deserialize direction
// (status.ReqDeserializeError / status.RespDeserializeError).
func UnmarshalProtobuf(buf *buffer.Buffer, msg proto.Message, errCode status.Code) error {
	if err := proto.Unmarshal(buf.Bytes(), msg); err != nil {
		return status.New(errCode, err)
	}
	return nil
}

package metapb

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// SRPCMeta is the Protobuf-shaped meta message carried by the SRPC frame
// codec (§4.4). Field numbers below are fixed for this module.
type SRPCMeta struct {
	ServiceName    string
	MethodName     string
	SequenceID     int64
	StatusCode     int32
	ErrorCode      int32
	ErrorMessage   string
	CompressType   int32
	DataType       int32
	OriginSize     int32
	CompressedSize int32
	TraceID        []byte // 16 bytes when present
	SpanID         []byte // 8 bytes when present
	ParentSpanID   []byte
	// TransInfo carries module data (tracing key-values and any other
	// key/value the RPCModuleData mechanism attaches); round-tripping this
	// map byte-for-byte for trace_id/span_id is §8 invariant 5.
	TransInfo map[string]string
}

const (
	srpcFieldServiceName    protowire.Number = 1
	srpcFieldMethodName     protowire.Number = 2
	srpcFieldStatusCode     protowire.Number = 3
	srpcFieldErrorCode      protowire.Number = 4
	srpcFieldErrorMessage   protowire.Number = 5
	srpcFieldCompressType   protowire.Number = 6
	srpcFieldDataType       protowire.Number = 7
	srpcFieldOriginSize     protowire.Number = 8
	srpcFieldCompressedSize protowire.Number = 9
	srpcFieldTraceID        protowire.Number = 10
	srpcFieldSpanID         protowire.Number = 11
	srpcFieldParentSpanID   protowire.Number = 12
	srpcFieldTransInfo      protowire.Number = 13
	srpcFieldSequenceID     protowire.Number = 14
)

// Marshal serializes m to its Protobuf wire-format bytes.
func (m *SRPCMeta) Marshal() []byte {
	w := writer{}
	w.string(srpcFieldServiceName, m.ServiceName)
	w.string(srpcFieldMethodName, m.MethodName)
	w.varint(srpcFieldStatusCode, int64(m.StatusCode))
	w.varint(srpcFieldErrorCode, int64(m.ErrorCode))
	w.string(srpcFieldErrorMessage, m.ErrorMessage)
	w.varint(srpcFieldCompressType, int64(m.CompressType))
	w.varint(srpcFieldDataType, int64(m.DataType))
	w.varint(srpcFieldOriginSize, int64(m.OriginSize))
	w.varint(srpcFieldCompressedSize, int64(m.CompressedSize))
	w.bytes(srpcFieldTraceID, m.TraceID)
	w.bytes(srpcFieldSpanID, m.SpanID)
	w.bytes(srpcFieldParentSpanID, m.ParentSpanID)
	w.stringMap(srpcFieldTransInfo, m.TransInfo)
	w.varint(srpcFieldSequenceID, m.SequenceID)
	return w.buf
}

// Unmarshal parses buf into m, replacing its contents.
func (m *SRPCMeta) Unmarshal(buf []byte) error {
	*m = SRPCMeta{}
	return decode(buf, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case srpcFieldServiceName:
			m.ServiceName = string(val)
		case srpcFieldMethodName:
			m.MethodName = string(val)
		case srpcFieldStatusCode:
			m.StatusCode = int32(decodeVarint(val))
		case srpcFieldErrorCode:
			m.ErrorCode = int32(decodeVarint(val))
		case srpcFieldErrorMessage:
			m.ErrorMessage = string(val)
		case srpcFieldCompressType:
			m.CompressType = int32(decodeVarint(val))
		case srpcFieldDataType:
			m.DataType = int32(decodeVarint(val))
		case srpcFieldOriginSize:
			m.OriginSize = int32(decodeVarint(val))
		case srpcFieldCompressedSize:
			m.CompressedSize = int32(decodeVarint(val))
		case srpcFieldTraceID:
			m.TraceID = append([]byte{}, val...)
		case srpcFieldSpanID:
			m.SpanID = append([]byte{}, val...)
		case srpcFieldParentSpanID:
			m.ParentSpanID = append([]byte{}, val...)
		case srpcFieldTransInfo:
			key, value, err := decodeStringMapEntry(val)
			if err != nil {
				return err
			}
			if m.TransInfo == nil {
				m.TransInfo = map[string]string{}
			}
			m.TransInfo[key] = value
		case srpcFieldSequenceID:
			m.SequenceID = decodeVarint(val)
		}
		return nil
	})
}

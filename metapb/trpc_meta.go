package metapb

import "google.golang.org/protobuf/encoding/protowire"

// TRPCMeta is the Protobuf-shaped meta message carried by the TRPC frame
// codec (§4.4). FullMethodName carries the "/service/method" path; trpcx
// splits it into the service name and the trailing method segment when it
// decodes a frame (§4.3), leaving FullMethodName itself unchanged.
type TRPCMeta struct {
	Callee         string
	Caller         string
	FuncName       string
	FullMethodName string
	SequenceID     int64
	Timeout        int32
	StatusCode     int32 // transport-native in TRPC (§4.4)
	ErrorCode      int32
	ErrorMessage   string
	CompressType   int32
	DataType       int32
	// TransInfo carries tracing key-values, including the W3C traceparent
	// composition described in §4.3 and §6.
	TransInfo map[string]string
}

const (
	trpcFieldCallee         protowire.Number = 1
	trpcFieldCaller         protowire.Number = 2
	trpcFieldFunc           protowire.Number = 3
	trpcFieldFullMethodName protowire.Number = 4
	trpcFieldTimeout        protowire.Number = 5
	trpcFieldStatusCode     protowire.Number = 6
	trpcFieldErrorCode      protowire.Number = 7
	trpcFieldErrorMessage   protowire.Number = 8
	trpcFieldCompressType   protowire.Number = 9
	trpcFieldDataType       protowire.Number = 10
	trpcFieldTransInfo      protowire.Number = 11
	trpcFieldSequenceID     protowire.Number = 12
)

// Marshal serializes m to its Protobuf wire-format bytes.
func (m *TRPCMeta) Marshal() []byte {
	w := writer{}
	w.string(trpcFieldCallee, m.Callee)
	w.string(trpcFieldCaller, m.Caller)
	w.string(trpcFieldFunc, m.FuncName)
	w.string(trpcFieldFullMethodName, m.FullMethodName)
	w.varint(trpcFieldTimeout, int64(m.Timeout))
	w.varint(trpcFieldStatusCode, int64(m.StatusCode))
	w.varint(trpcFieldErrorCode, int64(m.ErrorCode))
	w.string(trpcFieldErrorMessage, m.ErrorMessage)
	w.varint(trpcFieldCompressType, int64(m.CompressType))
	w.varint(trpcFieldDataType, int64(m.DataType))
	w.stringMap(trpcFieldTransInfo, m.TransInfo)
	w.varint(trpcFieldSequenceID, m.SequenceID)
	return w.buf
}

// Unmarshal parses buf into m, replacing its contents.
func (m *TRPCMeta) Unmarshal(buf []byte) error {
	*m = TRPCMeta{}
	return decode(buf, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case trpcFieldCallee:
			m.Callee = string(val)
		case trpcFieldCaller:
			m.Caller = string(val)
		case trpcFieldFunc:
			m.FuncName = string(val)
		case trpcFieldFullMethodName:
			m.FullMethodName = string(val)
		case trpcFieldTimeout:
			m.Timeout = int32(decodeVarint(val))
		case trpcFieldStatusCode:
			m.StatusCode = int32(decodeVarint(val))
		case trpcFieldErrorCode:
			m.ErrorCode = int32(decodeVarint(val))
		case trpcFieldErrorMessage:
			m.ErrorMessage = string(val)
		case trpcFieldCompressType:
			m.CompressType = int32(decodeVarint(val))
		case trpcFieldDataType:
			m.DataType = int32(decodeVarint(val))
		case trpcFieldTransInfo:
			key, value, err := decodeStringMapEntry(val)
			if err != nil {
				return err
			}
			if m.TransInfo == nil {
				m.TransInfo = map[string]string{}
			}
			m.TransInfo[key] = value
		case trpcFieldSequenceID:
			m.SequenceID = decodeVarint(val)
		}
		return nil
	})
}

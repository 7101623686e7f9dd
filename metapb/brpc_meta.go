package metapb

import "google.golang.org/protobuf/encoding/protowire"

// BRPCMeta is the Protobuf-shaped meta message carried by the BRPC frame
// codec (§4.4). BRPC is the only transport with an attachment; its size is
// carried here and the attachment bytes themselves travel alongside the
// payload in the frame body (§3, §4.3).
type BRPCMeta struct {
	ServiceName    string
	MethodName     string
	SequenceID     int64
	StatusCode     int32 // transport-native in BRPC (§4.4)
	ErrorCode      int32
	ErrorMessage   string
	CompressType   int32
	DataType       int32
	AttachmentSize int32
	TransInfo      map[string]string
}

const (
	brpcFieldServiceName    protowire.Number = 1
	brpcFieldMethodName     protowire.Number = 2
	brpcFieldStatusCode     protowire.Number = 3
	brpcFieldErrorCode      protowire.Number = 4
	brpcFieldErrorMessage   protowire.Number = 5
	brpcFieldCompressType   protowire.Number = 6
	brpcFieldDataType       protowire.Number = 7
	brpcFieldAttachmentSize protowire.Number = 8
	brpcFieldTransInfo      protowire.Number = 9
	brpcFieldSequenceID     protowire.Number = 10
)

// Marshal serializes m to its Protobuf wire-format bytes.
func (m *BRPCMeta) Marshal() []byte {
	w := writer{}
	w.string(brpcFieldServiceName, m.ServiceName)
	w.string(brpcFieldMethodName, m.MethodName)
	w.varint(brpcFieldStatusCode, int64(m.StatusCode))
	w.varint(brpcFieldErrorCode, int64(m.ErrorCode))
	w.string(brpcFieldErrorMessage, m.ErrorMessage)
	w.varint(brpcFieldCompressType, int64(m.CompressType))
	w.varint(brpcFieldDataType, int64(m.DataType))
	w.varint(brpcFieldAttachmentSize, int64(m.AttachmentSize))
	w.stringMap(brpcFieldTransInfo, m.TransInfo)
	w.varint(brpcFieldSequenceID, m.SequenceID)
	return w.buf
}

// Unmarshal parses buf into m, replacing its contents.
func (m *BRPCMeta) Unmarshal(buf []byte) error {
	*m = BRPCMeta{}
	return decode(buf, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case brpcFieldServiceName:
			m.ServiceName = string(val)
		case brpcFieldMethodName:
			m.MethodName = string(val)
		case brpcFieldStatusCode:
			m.StatusCode = int32(decodeVarint(val))
		case brpcFieldErrorCode:
			m.ErrorCode = int32(decodeVarint(val))
		case brpcFieldErrorMessage:
			m.ErrorMessage = string(val)
		case brpcFieldCompressType:
			m.CompressType = int32(decodeVarint(val))
		case brpcFieldDataType:
			m.DataType = int32(decodeVarint(val))
		case brpcFieldAttachmentSize:
			m.AttachmentSize = int32(decodeVarint(val))
		case brpcFieldTransInfo:
			key, value, err := decodeStringMapEntry(val)
			if err != nil {
				return err
			}
			if m.TransInfo == nil {
				m.TransInfo = map[string]string{}
			}
			m.TransInfo[key] = value
		case brpcFieldSequenceID:
			m.SequenceID = decodeVarint(val)
		}
		return nil
	})
}

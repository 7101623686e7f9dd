// Package metapb implements the Protobuf-shaped meta messages carried by
// the SRPC, BRPC and TRPC frame codecs (§4.4). Rather than depending on a
// generated .pb.go (no .proto source for these wire schemas ships with this
// module — see DESIGN.md), each meta type hand-encodes its fields directly
// against google.golang.org/protobuf/encoding/protowire, the same
// low-level package generated protobuf code itself compiles down to. Field
// numbers are fixed within this module and must not drift, exactly as §4.4
// requires of the reference schemas.
package metapb

import (
	"github.com/go-srpc/srpc/status"
	"google.golang.org/protobuf/encoding/protowire"
)

// writer accumulates a protobuf wire-format message.
type writer struct {
	buf []byte
}

func (w *writer) string(num protowire.Number, v string) {
	if v == "" {
		return
	}
	w.buf = protowire.AppendTag(w.buf, num, protowire.BytesType)
	w.buf = protowire.AppendString(w.buf, v)
}

func (w *writer) bytes(num protowire.Number, v []byte) {
	if len(v) == 0 {
		return
	}
	w.buf = protowire.AppendTag(w.buf, num, protowire.BytesType)
	w.buf = protowire.AppendBytes(w.buf, v)
}

func (w *writer) varint(num protowire.Number, v int64) {
	if v == 0 {
		return
	}
	w.buf = protowire.AppendTag(w.buf, num, protowire.VarintType)
	w.buf = protowire.AppendVarint(w.buf, uint64(v))
}

// stringMap encodes a map<string, string> field as a repeated submessage
// {1: key string, 2: value string}, the standard protobuf map encoding.
func (w *writer) stringMap(num protowire.Number, m map[string]string) {
	// Sort for determinism so Marshal is reproducible across calls, which
	// payload-level size fields and tests depend on.
	keys := sortedKeys(m)
	for _, k := range keys {
		entry := writer{}
		entry.string(1, k)
		entry.string(2, m[k])
		w.buf = protowire.AppendTag(w.buf, num, protowire.BytesType)
		w.buf = protowire.AppendBytes(w.buf, entry.buf)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// fieldVisitor is called once per top-level field encountered while
// decoding, with val holding that field's value bytes (decode has already
// consumed the tag and framing); a non-nil error stops the walk.
type fieldVisitor func(num protowire.Number, typ protowire.Type, val []byte) error

// decode walks a flat protobuf message, calling visit for each field. It
// returns status.MetaError on any malformed tag/value.
func decode(buf []byte, visit fieldVisitor) error {
	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		if n < 0 {
			return status.New(status.MetaError, nil)
		}
		buf = buf[n:]

		var val []byte
		switch typ {
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(buf)
			if n < 0 {
				return status.New(status.MetaError, nil)
			}
			val = protowire.AppendVarint(nil, v)
			buf = buf[n:]
		case protowire.BytesType:
			v, n := protowire.ConsumeBytes(buf)
			if n < 0 {
				return status.New(status.MetaError, nil)
			}
			val = v
			buf = buf[n:]
		case protowire.Fixed32Type:
			_, n := protowire.ConsumeFixed32(buf)
			if n < 0 {
				return status.New(status.MetaError, nil)
			}
			buf = buf[n:]
			continue
		case protowire.Fixed64Type:
			_, n := protowire.ConsumeFixed64(buf)
			if n < 0 {
				return status.New(status.MetaError, nil)
			}
			buf = buf[n:]
			continue
		default:
			return status.New(status.MetaError, nil)
		}

		if err := visit(num, typ, val); err != nil {
			return err
		}
	}
	return nil
}

func decodeVarint(val []byte) int64 {
	v, _ := protowire.ConsumeVarint(val)
	return int64(v)
}

// decodeStringMapEntry parses one {1: key, 2: value} submessage value.
func decodeStringMapEntry(val []byte) (key, value string, err error) {
	err = decode(val, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch num {
		case 1:
			key = string(v)
		case 2:
			value = string(v)
		}
		return nil
	})
	return key, value, err
}

// Package srpcx implements the SRPC wire-frame codec (§3, §4.3): the 16-byte
// TCP frame, its Protobuf meta (package metapb), and the HTTP-tunneled
// variant (http.go).
package srpcx

import (
	"encoding/binary"

	"github.com/go-srpc/srpc/status"
)

const (
	magic        = "SRPC"
	headerSize   = 16
	defaultLimit = 2*1024*1024*1024 - 1 // 2 GiB - 1, §5
)

type parseState int

const (
	stateHeader parseState = iota
	stateBody
	stateDone
)

// Decoder is the streaming frame parser described in §4.3: a two-state
// machine over "reading header" and "reading body" that can be fed
// arbitrary byte slices across multiple calls.
type Decoder struct {
	state     parseState
	sizeLimit int

	header      [headerSize]byte
	headerFill  int
	metaLen     int
	payloadLen  int

	body     []byte
	bodyFill int
}

// NewDecoder constructs a Decoder. sizeLimit <= 0 uses defaultLimit.
func NewDecoder(sizeLimit int) *Decoder {
	if sizeLimit <= 0 {
		sizeLimit = defaultLimit
	}
	return &Decoder{sizeLimit: sizeLimit}
}

// Feed consumes up to len(data) bytes, advancing the state machine. It
// returns the number of bytes actually consumed (never more than belongs to
// the frame currently being parsed), whether the frame is now complete, and
// an error for a bad magic/reserved field or a frame exceeding sizeLimit.
func (d *Decoder) Feed(data []byte) (consumed int, done bool, err error) {
	for len(data) > 0 && d.state != stateDone {
		switch d.state {
		case stateHeader:
			n := copy(d.header[d.headerFill:], data)
			d.headerFill += n
			consumed += n
			data = data[n:]
			if d.headerFill == headerSize {
				if err := d.parseHeader(); err != nil {
					return consumed, false, err
				}
				d.state = stateBody
				d.body = make([]byte, d.metaLen+d.payloadLen)
				if len(d.body) == 0 {
					d.state = stateDone
				}
			}
		case stateBody:
			n := copy(d.body[d.bodyFill:], data)
			d.bodyFill += n
			consumed += n
			data = data[n:]
			if d.bodyFill == len(d.body) {
				d.state = stateDone
			}
		}
	}
	return consumed, d.state == stateDone, nil
}

func (d *Decoder) parseHeader() error {
	if string(d.header[0:4]) != magic {
		return status.New(status.MetaError, nil)
	}
	metaLen := binary.BigEndian.Uint32(d.header[4:8])
	payloadLen := binary.BigEndian.Uint32(d.header[8:12])
	total := int64(metaLen) + int64(payloadLen)
	if total > int64(d.sizeLimit) {
		return status.New(status.MetaError, nil)
	}
	d.metaLen = int(metaLen)
	d.payloadLen = int(payloadLen)
	return nil
}

// Meta returns the raw meta bytes once Feed has reported done.
func (d *Decoder) Meta() []byte {
	return d.body[:d.metaLen]
}

// Payload returns the raw payload bytes once Feed has reported done.
func (d *Decoder) Payload() []byte {
	return d.body[d.metaLen:]
}

// EncodeHeader renders the 16-byte SRPC header for the given meta/payload
// lengths.
func EncodeHeader(metaLen, payloadLen int) []byte {
	h := make([]byte, headerSize)
	copy(h[0:4], magic)
	binary.BigEndian.PutUint32(h[4:8], uint32(metaLen))
	binary.BigEndian.PutUint32(h[8:12], uint32(payloadLen))
	return h
}

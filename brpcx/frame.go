// Package brpcx implements the BRPC wire-frame codec (§3, §4.3): the
// 12-byte TCP frame (with its optional trailing attachment split via
// buffer.Cut), its Protobuf meta (package metapb), and the HTTP-tunneled
// variant (http.go).
package brpcx

import (
	"encoding/binary"

	"github.com/go-srpc/srpc/status"
)

const (
	magic        = "PRPC"
	headerSize   = 12
	defaultLimit = 2*1024*1024*1024 - 1
)

type parseState int

const (
	stateHeader parseState = iota
	stateBody
	stateDone
)

// Decoder is BRPC's streaming frame parser. Unlike SRPC, the header's
// body-length covers meta+payload+attachment together; splitting the
// payload from any trailing attachment happens once the meta is parsed (see
// message.go), since the attachment's size is a meta field, not a header
// field.
type Decoder struct {
	state     parseState
	sizeLimit int

	header     [headerSize]byte
	headerFill int
	bodyLen    int
	metaLen    int

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

// Feed behaves exactly as srpcx.Decoder.Feed.
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
				d.body = make([]byte, d.bodyLen)
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
	bodyLen := binary.BigEndian.Uint32(d.header[4:8])
	metaLen := binary.BigEndian.Uint32(d.header[8:12])
	if int64(bodyLen) > int64(d.sizeLimit) || metaLen > bodyLen {
		return status.New(status.MetaError, nil)
	}
	d.bodyLen = int(bodyLen)
	d.metaLen = int(metaLen)
	return nil
}

// Meta returns the raw meta bytes once Feed has reported done.
func (d *Decoder) Meta() []byte {
	return d.body[:d.metaLen]
}

// Rest returns payload+attachment combined, once Feed has reported done;
// message.go splits the trailing attachment_size bytes off once it knows
// the value from the parsed meta.
func (d *Decoder) Rest() []byte {
	return d.body[d.metaLen:]
}

// EncodeHeader renders the 12-byte BRPC header.
func EncodeHeader(bodyLen, metaLen int) []byte {
	h := make([]byte, headerSize)
	copy(h[0:4], magic)
	binary.BigEndian.PutUint32(h[4:8], uint32(bodyLen))
	binary.BigEndian.PutUint32(h[8:12], uint32(metaLen))
	return h
}

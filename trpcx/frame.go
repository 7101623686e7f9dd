// Package trpcx implements the TRPC wire-frame codec (§3, §4.3, §4.4): the
// 16-byte TCP frame, its Protobuf meta (package metapb), method-name prefix
// trimming, W3C traceparent composition/parsing, and the HTTP-tunneled
// variant (http.go).
package trpcx

import (
	"encoding/binary"

	"github.com/go-srpc/srpc/status"
)

const (
	magic        uint16 = 0x0930
	headerSize          = 16
	frameTypeUnary byte = 0
	defaultLimit        = 2*1024*1024*1024 - 1
)

type parseState int

const (
	stateHeader parseState = iota
	stateBody
	stateDone
)

// Decoder is TRPC's streaming frame parser: the 4-byte total-size header
// field covers header+meta+payload together, so the body length fed to the
// byte-accumulation state is total-size minus the fixed 16-byte header.
type Decoder struct {
	state     parseState
	sizeLimit int

	header     [headerSize]byte
	headerFill int
	bodyLen    int
	metaLen    int
	streamID   uint16
	frameType  byte
	frameState byte

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
	if binary.BigEndian.Uint16(d.header[0:2]) != magic {
		return status.New(status.MetaError, nil)
	}
	d.frameType = d.header[2]
	d.frameState = d.header[3]
	totalSize := binary.BigEndian.Uint32(d.header[4:8])
	metaLen := binary.BigEndian.Uint16(d.header[8:10])
	d.streamID = binary.BigEndian.Uint16(d.header[10:12])
	if d.header[12] != 0 || d.header[13] != 0 || d.header[14] != 0 || d.header[15] != 0 {
		return status.New(status.MetaError, nil)
	}
	if int64(totalSize) < headerSize || int64(totalSize) > int64(d.sizeLimit) {
		return status.New(status.MetaError, nil)
	}
	bodyLen := int(totalSize) - headerSize
	if int(metaLen) > bodyLen {
		return status.New(status.MetaError, nil)
	}
	d.bodyLen = bodyLen
	d.metaLen = int(metaLen)
	return nil
}

// Meta returns the raw meta bytes once Feed has reported done.
func (d *Decoder) Meta() []byte {
	return d.body[:d.metaLen]
}

// Payload returns the payload bytes once Feed has reported done.
func (d *Decoder) Payload() []byte {
	return d.body[d.metaLen:]
}

// StreamID returns the parsed stream-id header field.
func (d *Decoder) StreamID() uint16 { return d.streamID }

// EncodeHeader renders the 16-byte TRPC header.
func EncodeHeader(bodyLen, metaLen int, streamID uint16) []byte {
	h := make([]byte, headerSize)
	binary.BigEndian.PutUint16(h[0:2], magic)
	h[2] = frameTypeUnary
	h[3] = 0
	binary.BigEndian.PutUint32(h[4:8], uint32(headerSize+bodyLen))
	binary.BigEndian.PutUint16(h[8:10], uint16(metaLen))
	binary.BigEndian.PutUint16(h[10:12], streamID)
	return h
}

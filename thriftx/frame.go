// Package thriftx implements the Thrift-framed wire codec (§3, §4.3): the
// 4-byte big-endian frame-size prefix, the Thrift message-begin/message-end
// envelope (strict on write, either form on read), EXCEPTION-typed error
// replies, and the HTTP-tunneled variant (http.go).
package thriftx

import (
	"encoding/binary"

	"github.com/go-srpc/srpc/status"
)

const (
	headerSize   = 4
	defaultLimit = 2*1024*1024*1024 - 1
)

type parseState int

const (
	stateHeader parseState = iota
	stateBody
	stateDone
)

// Decoder is the Thrift-framed transport's streaming frame parser: a plain
// 4-byte BE length prefix followed by that many bytes of Thrift-encoded
// message (envelope + struct).
type Decoder struct {
	state     parseState
	sizeLimit int

	header     [headerSize]byte
	headerFill int
	bodyLen    int

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
				bodyLen := binary.BigEndian.Uint32(d.header[:])
				if int64(bodyLen) > int64(d.sizeLimit) {
					return consumed, false, status.New(status.MetaError, nil)
				}
				d.bodyLen = int(bodyLen)
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

// Body returns the raw framed body (message envelope + struct bytes) once
// Feed has reported done.
func (d *Decoder) Body() []byte {
	return d.body
}

// EncodeHeader renders the 4-byte BE frame-size prefix.
func EncodeHeader(bodyLen int) []byte {
	h := make([]byte, headerSize)
	binary.BigEndian.PutUint32(h, uint32(bodyLen))
	return h
}

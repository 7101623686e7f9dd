// Package payload implements the typed-message codec (§4.5): turning a
// Protobuf message, a Thrift struct, or JSON text into bytes inside a
// segmented buffer, and back.
//
// The package never owns meta accounting. Callers (the per-transport frame
// codecs and, above them, the message façade) are responsible for setting
// message_len/origin_size/compressed_size on the surrounding meta once a
// Marshal call returns, and for running compression (package compress)
// before/after these functions as appropriate — this package only moves
// bytes between a typed value and a buffer.Buffer.
package payload

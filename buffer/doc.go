// Package buffer implements the segmented, scatter/gather byte container
// shared by every wire-frame codec in this module.
//
// A Buffer is an ordered sequence of chunks. Each chunk is tagged with how
// the buffer came to own (or not own) its bytes: Copy chunks are allocated
// and owned by the buffer itself; Borrowed chunks point at memory the caller
// guarantees will outlive the buffer (for example the body slice handed to
// us by the HTTP parser on the tunneled transports) and are never copied or
// freed by the buffer.
//
// Buffer is not safe for concurrent use: exactly one RPC message owns a
// given buffer at a time, and the surrounding task runtime is responsible
// for not handing it to two goroutines at once (see the concurrency model
// in the module's design notes).
package buffer

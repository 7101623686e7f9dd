// Package compress implements the compression registry (§4.2) that binds a
// compression-type tag to four function slots — block compress/decompress,
// iovec (segmented-buffer) compress/decompress, and an upper-bound
// estimator — plus the bundled Snappy/Gzip/Zlib/LZ4 handlers.
//
// This package never implements a compression algorithm itself: every
// bundled handler is a thin adapter over a real third-party library, and
// user code can register additional tags the same way.
package compress

import (
	"sync"

	"github.com/go-srpc/srpc/buffer"
)

// Type is a compression-type tag, as carried in meta's compress_type field.
type Type int

const (
	None   Type = 0
	Snappy Type = 1
	Gzip   Type = 2
	Zlib   Type = 3
	LZ4    Type = 4

	// MaxType bounds the registry's fixed-size table. Tags must satisfy
	// 0 <= tag < MaxType.
	MaxType Type = 16
)

// Result codes returned by block/iovec compress and decompress functions,
// mirroring the original C++ contract (rpc_compress.h):
//   >0  number of bytes produced (or, for decompress, the decompressed size;
//       0 is a valid "empty payload" result, not an error)
//   -1  algorithm failure
//   -2  unsupported compression type / missing handler slot
const (
	ResultAlgorithmError    = -1
	ResultNotSupported      = -2
)

// BlockFunc compresses/decompresses a flat byte slice into dst, returning
// one of the Result* codes above or the number of bytes written.
type BlockFunc func(src []byte, dst []byte) int

// IOVecFunc compresses/decompresses from src into dst, both segmented
// buffers, returning one of the Result* codes above or the number of bytes
// produced.
type IOVecFunc func(src, dst *buffer.Buffer) int

// UpperBoundFunc returns the worst-case compressed size for an input of
// originSize bytes.
type UpperBoundFunc func(originSize int) int

// Handler is the four-slot function-pointer table for one compression tag.
type Handler struct {
	CompressBlock     BlockFunc
	DecompressBlock   BlockFunc
	CompressIOVec     IOVecFunc
	DecompressIOVec   IOVecFunc
	UpperBound        UpperBoundFunc
}

// empty reports whether every slot of h is nil. Handlers registered for
// block-only use are valid; Find still returns them, and RegisterHandler
// rejects only a wholly-empty handler.
func (h Handler) empty() bool {
	return h.CompressBlock == nil && h.DecompressBlock == nil &&
		h.CompressIOVec == nil && h.DecompressIOVec == nil && h.UpperBound == nil
}

// RegisterResult is returned by Register/RegisterHandler, mirroring the
// three-way return convention of the original RPCCompressor::add /
// add_handler (0 success, 1 replaced an existing handler, -2 invalid tag or
// incomplete handler).
type RegisterResult int

const (
	Registered RegisterResult = 0
	Replaced   RegisterResult = 1
	Invalid    RegisterResult = -2
)

// Registry is a fixed-size, process-wide table of compression handlers. The
// zero value is not usable; use NewRegistry or the package-level Default.
type Registry struct {
	mu       sync.RWMutex
	handlers [MaxType]Handler
	set      [MaxType]bool
}

// NewRegistry returns an empty registry with none of the bundled handlers
// registered. Most callers want Default instead.
func NewRegistry() *Registry {
	return &Registry{}
}

// RegisterHandler installs handler for tag. Re-registering an already
// populated tag is allowed (returns Replaced); an out-of-range tag or a
// wholly-empty handler is rejected (returns Invalid).
func (r *Registry) RegisterHandler(tag Type, handler Handler) RegisterResult {
	if tag <= None || tag >= MaxType || handler.empty() {
		return Invalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existed := r.set[tag]
	r.handlers[tag] = handler
	r.set[tag] = true
	if existed {
		return Replaced
	}
	return Registered
}

// FindHandler returns the handler registered for tag, or ok == false if
// none is registered (including tag == None, which never has a handler —
// "no compression" is handled by the caller, not by this registry).
func (r *Registry) FindHandler(tag Type) (Handler, bool) {
	if tag <= None || tag >= MaxType {
		return Handler{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.set[tag] {
		return Handler{}, false
	}
	return r.handlers[tag], true
}

// Clear removes every registered handler.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = [MaxType]Handler{}
	r.set = [MaxType]bool{}
}

// CompressBlock compresses src into dst using tag's handler, returning one
// of the Result* codes or the number of bytes written.
func (r *Registry) CompressBlock(tag Type, src, dst []byte) int {
	h, ok := r.FindHandler(tag)
	if !ok || h.CompressBlock == nil {
		return ResultNotSupported
	}
	return h.CompressBlock(src, dst)
}

// DecompressBlock decompresses src into dst using tag's handler.
func (r *Registry) DecompressBlock(tag Type, src, dst []byte) int {
	h, ok := r.FindHandler(tag)
	if !ok || h.DecompressBlock == nil {
		return ResultNotSupported
	}
	return h.DecompressBlock(src, dst)
}

// CompressIOVec compresses src into dst using tag's handler.
func (r *Registry) CompressIOVec(tag Type, src, dst *buffer.Buffer) int {
	h, ok := r.FindHandler(tag)
	if !ok || h.CompressIOVec == nil {
		return ResultNotSupported
	}
	return h.CompressIOVec(src, dst)
}

// DecompressIOVec decompresses src into dst using tag's handler.
func (r *Registry) DecompressIOVec(tag Type, src, dst *buffer.Buffer) int {
	h, ok := r.FindHandler(tag)
	if !ok || h.DecompressIOVec == nil {
		return ResultNotSupported
	}
	return h.DecompressIOVec(src, dst)
}

// UpperBound returns the worst-case compressed size for tag, or
// ResultNotSupported if tag has no handler or no UpperBound slot.
func (r *Registry) UpperBound(tag Type, originSize int) int {
	h, ok := r.FindHandler(tag)
	if !ok || h.UpperBound == nil {
		return ResultNotSupported
	}
	return h.UpperBound(originSize)
}

var defaultOnce sync.Once
var defaultRegistry *Registry

// Default returns the process-wide registry with the bundled
// Snappy/Gzip/Zlib/LZ4 handlers registered. It is sealed by convention after
// first use: custom handlers should be added during process init, not
// concurrently with request handling.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		defaultRegistry.RegisterHandler(Snappy, snappyHandler)
		defaultRegistry.RegisterHandler(Gzip, gzipHandler)
		defaultRegistry.RegisterHandler(Zlib, zlibHandler)
		defaultRegistry.RegisterHandler(LZ4, lz4Handler)
	})
	return defaultRegistry
}

//go:build unix

package buffer

import "golang.org/x/sys/unix"

// largeChunkThreshold is the size at or above which Acquire maps an anonymous
// region directly via mmap instead of routing through the Go allocator/GC —
// the equivalent of the original's GIFT_MALLOC path for large chunks, where
// a dedicated allocation outperforms a GC-scanned one.
const largeChunkThreshold = 1 << 20

// allocChunk allocates size bytes, using mmap for chunks at or above
// largeChunkThreshold. The returned func, when non-nil, must be called
// exactly once to munmap the region; a failed mmap falls back to make().
func allocChunk(size int) ([]byte, func()) {
	if size < largeChunkThreshold {
		return make([]byte, size), nil
	}

	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return make([]byte, size), nil
	}
	return data, func() { unix.Munmap(data) }
}

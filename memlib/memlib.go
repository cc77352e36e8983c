// Package memlib simulates the sbrk-style heap primitive an allocator treats
// as an external collaborator: a single, monotonically growing byte region
// with a base-address query and an extend operation. It is a stand-in
// for what a real allocator would get from the operating system.
//
// The region is reserved once, at its maximum size, and never moved or
// reallocated: Sbrk only ever bumps a length within that fixed capacity.
// This is what lets the rest of the allocator address the heap by stable
// byte offset (block.Offset) for the whole process lifetime.
package memlib

import (
	"fmt"

	"github.com/bytedance/gopkg/lang/dirtmake"
)

// DefaultMaxHeap is the default maximum heap size: large enough for long
// scripted test sequences to run to completion without exhausting the
// simulated address space.
const DefaultMaxHeap = 20 << 20 // 20MB

// Heap is a single simulated memory region. It is not safe for concurrent
// use: callers are expected to be single-threaded and synchronous, with no
// reentrant calls into the same Heap.
type Heap struct {
	mem []byte // len(mem) == 0..cap(mem); cap(mem) == maxHeap, fixed at New
	used int
}

// New reserves a heap of the given maximum size and returns it uninitialized
// (zero length, as if freshly mem_init'd). It panics if maxHeap <= 0, since
// that is a programmer error, not a runtime condition callers should branch
// on.
func New(maxHeap int) *Heap {
	if maxHeap <= 0 {
		panic(fmt.Sprintf("memlib: invalid maxHeap %d", maxHeap))
	}
	return &Heap{mem: dirtmake.Bytes(0, maxHeap)}
}

// Init resets the heap to zero length. It is safe to call Init again to
// start a fresh heap without re-reserving the backing array.
func (h *Heap) Init() {
	h.mem = h.mem[:0]
	h.used = 0
}

// Sbrk extends the heap by n bytes and returns the byte offset (relative to
// the heap's base) of the first new byte. It returns ok=false, mirroring
// mem_sbrk's (void *)-1 sentinel, when n is not positive or the heap's
// reserved capacity would be exceeded.
func (h *Heap) Sbrk(n int) (offset int, ok bool) {
	if n <= 0 {
		return 0, false
	}
	if len(h.mem)+n > cap(h.mem) {
		return 0, false
	}
	offset = len(h.mem)
	h.mem = h.mem[:len(h.mem)+n]
	h.used += n
	return offset, true
}

// Bytes returns the live heap region as a byte slice, indexable by the
// offsets Sbrk has returned so far. The slice is the allocator's sole
// arena; block.Arena is an alias for []byte so the allocator packages use
// this directly.
func (h *Heap) Bytes() []byte {
	return h.mem
}

// Len returns the current (used) length of the heap in bytes.
func (h *Heap) Len() int {
	return len(h.mem)
}

// MaxLen returns the fixed maximum size the heap was reserved with.
func (h *Heap) MaxLen() int {
	return cap(h.mem)
}

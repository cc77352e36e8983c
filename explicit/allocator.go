// Package explicit implements the explicit-list allocator variant: free
// blocks are discovered via a doubly linked list threaded through the
// payloads of free blocks only, rather than by walking every physical
// block. It shares block layout, coalescing semantics, and splitting
// policy with package implicit; the free list is the only additional
// state.
package explicit

import (
	"fmt"

	"github.com/heaplab/malloclab/block"
	"github.com/heaplab/malloclab/freelist"
	"github.com/heaplab/malloclab/memlib"
	"github.com/heaplab/malloclab/policy"
)

// Allocator is the explicit-list allocator. The zero value is not usable;
// construct with New.
type Allocator struct {
	heap      *memlib.Heap
	arena     block.Arena
	free      freelist.List
	heapStart block.Offset // payload offset of the first real (post-prologue) block
	current   block.Offset // next-fit roving cursor: a free-list member, or 0
	fit       policy.Fit
}

// New reserves a heap of maxHeap bytes, runs mm_init, and returns a ready
// allocator using the given placement policy.
func New(maxHeap int, fit policy.Fit) (*Allocator, error) {
	a := &Allocator{heap: memlib.New(maxHeap), fit: fit}
	if err := a.Init(); err != nil {
		return nil, err
	}
	return a, nil
}

// Init lays out pad/prologue/epilogue, clears the free list, and performs
// the first extend_heap.
func (a *Allocator) Init() error {
	a.heap.Init()
	off, ok := a.heap.Sbrk(4 * block.WordSize)
	if !ok {
		return fmt.Errorf("explicit: mem_init failed to reserve %d bytes", 4*block.WordSize)
	}
	a.arena = a.heap.Bytes()
	base := block.Offset(off)

	block.WriteWord(a.arena, base, 0) // pad
	prologueBp := base + 2*block.WordSize
	block.WriteWord(a.arena, base+block.WordSize, block.Pack(block.DWordSize, 1)) // prologue header
	block.WriteWord(a.arena, prologueBp, block.Pack(block.DWordSize, 1))          // prologue footer
	block.WriteWord(a.arena, prologueBp+block.WordSize, block.Pack(0, 1))         // epilogue header

	a.heapStart = block.NextBlock(a.arena, prologueBp)
	a.free = freelist.List{}
	a.current = 0

	if _, err := a.extendHeap(block.ChunkSize / block.WordSize); err != nil {
		return err
	}
	a.current = a.free.First
	return nil
}

// Malloc returns the payload offset of a block of at least size bytes, or
// 0 if size is non-positive or the heap cannot be extended further.
func (a *Allocator) Malloc(size int) block.Offset {
	if size <= 0 {
		return 0
	}
	asize := uint32(block.AdjustedSize(size))

	bp := policy.Select(a, a.fit, a.current, asize)
	if bp == 0 {
		extendSize := asize
		if extendSize < block.ChunkSize {
			extendSize = block.ChunkSize
		}
		var err error
		bp, err = a.extendHeap(int(extendSize) / block.WordSize)
		if err != nil {
			return 0
		}
	}

	// Capture the free-list successor of the consumed block before place()
	// overwrites its links (via split-replace or removal), so the cursor
	// is left pointing at a currently-free block.
	next := block.Succ(a.arena, bp)
	a.place(bp, asize)
	a.current = next
	return bp
}

// Free returns bp to the heap, reinserts it at the head of the free list,
// and coalesces it with any physically adjacent free neighbors. Freeing 0
// or an already-free block is a no-op.
func (a *Allocator) Free(bp block.Offset) {
	if bp == 0 {
		return
	}
	hdr := block.ReadWord(a.arena, block.Header(bp))
	if block.AllocOf(hdr) == 0 {
		return
	}
	size := block.SizeOf(hdr)
	block.SetHeaderFooter(a.arena, bp, size, 0)
	a.free.InsertInFront(a.arena, bp)
	a.coalesce(bp)
}

// Realloc resizes the allocation at bp to size bytes.
func (a *Allocator) Realloc(bp block.Offset, size int) block.Offset {
	if bp == 0 {
		return a.Malloc(size)
	}
	if size <= 0 {
		a.Free(bp)
		return 0
	}

	oldSize := block.SizeOf(block.ReadWord(a.arena, block.Header(bp)))
	if oldSize >= uint32(size)+block.WordSize+block.WordSize {
		return bp
	}

	newBp := a.Malloc(size)
	if newBp == 0 {
		return 0
	}

	payloadCap := oldSize - 2*block.WordSize
	copySize := block.Offset(size)
	if block.Offset(payloadCap) < copySize {
		copySize = block.Offset(payloadCap)
	}
	copy(a.arena[newBp:newBp+copySize], a.arena[bp:bp+copySize])
	a.Free(bp)
	return newBp
}

// place commits bp to an allocation of asize bytes. When the
// remainder after the request is at least MinBlockSize, the tail is split
// off and inherits bp's exact free-list position (so next-fit's cursor
// stays meaningful); otherwise bp is removed from the free list whole.
func (a *Allocator) place(bp block.Offset, asize uint32) {
	csize := block.SizeOf(block.ReadWord(a.arena, block.Header(bp)))

	if csize-asize >= block.MinBlockSize {
		tailSize := csize - asize
		// Compute the tail's offset before bp's header is overwritten:
		// it sits exactly asize bytes into the current block.
		tail := bp + block.Offset(asize)

		a.free.ReplaceInPlace(a.arena, bp, tail)

		block.SetHeaderFooter(a.arena, bp, asize, 1)
		block.SetHeaderFooter(a.arena, tail, tailSize, 0)
		return
	}

	a.free.Remove(a.arena, bp)
	block.SetHeaderFooter(a.arena, bp, csize, 1)
}

// coalesce merges bp with its physically adjacent free neighbors,
// maintaining the free list, and repairs the next-fit cursor. bp must
// already be linked into the free list (Free and extendHeap both call
// InsertInFront before coalesce).
func (a *Allocator) coalesce(bp block.Offset) block.Offset {
	prevBp := block.PrevBlock(a.arena, bp)
	nextBp := block.NextBlock(a.arena, bp)

	prevAlloc := block.AllocOf(block.ReadWord(a.arena, block.Footer(a.arena, prevBp)))
	nextAlloc := block.AllocOf(block.ReadWord(a.arena, block.Header(nextBp)))
	size := block.SizeOf(block.ReadWord(a.arena, block.Header(bp)))

	cursorNeedsReset := false

	switch {
	case prevAlloc == 1 && nextAlloc == 1:
		// case 1: no merge.
	case prevAlloc == 1 && nextAlloc == 0:
		a.free.Remove(a.arena, nextBp)
		size += block.SizeOf(block.ReadWord(a.arena, block.Header(nextBp)))
		block.SetHeaderFooter(a.arena, bp, size, 0)
		if a.current == nextBp {
			cursorNeedsReset = true
		}
	case prevAlloc == 0 && nextAlloc == 1:
		a.free.Remove(a.arena, bp)
		size += block.SizeOf(block.ReadWord(a.arena, block.Header(prevBp)))
		block.SetHeaderFooter(a.arena, prevBp, size, 0)
		if a.current == bp {
			cursorNeedsReset = true
		}
		bp = prevBp
	default: // both free
		a.free.Remove(a.arena, bp)
		a.free.Remove(a.arena, nextBp)
		size += block.SizeOf(block.ReadWord(a.arena, block.Header(prevBp))) +
			block.SizeOf(block.ReadWord(a.arena, block.Header(nextBp)))
		block.SetHeaderFooter(a.arena, prevBp, size, 0)
		if a.current == bp || a.current == nextBp {
			cursorNeedsReset = true
		}
		bp = prevBp
	}

	// The cursor is always a free-block payload pointer for the explicit
	// variant; once a neighbor has been spliced out of the free list the
	// cursor can no longer be resolved to it, so it is reset to the list
	// head (or null if the list is now empty).
	if cursorNeedsReset {
		a.current = a.free.First
	}
	return bp
}

// extendHeap requests `words` (rounded up to even) more words from the
// heap primitive, frames the new space as one free block topped with a
// fresh epilogue, inserts it at the head of the free list, and coalesces
// it with the previous top block.
func (a *Allocator) extendHeap(words int) (block.Offset, error) {
	if words%2 != 0 {
		words++
	}
	size := words * block.WordSize

	off, ok := a.heap.Sbrk(size)
	if !ok {
		return 0, fmt.Errorf("explicit: out of memory extending heap by %d bytes", size)
	}
	a.arena = a.heap.Bytes()
	bp := block.Offset(off)

	block.SetHeaderFooter(a.arena, bp, uint32(size), 0)
	next := block.NextBlock(a.arena, bp)
	block.WriteWord(a.arena, block.Header(next), block.Pack(0, 1)) // new epilogue

	a.free.InsertInFront(a.arena, bp)
	return a.coalesce(bp), nil
}

// Arena returns the allocator's backing byte slice.
func (a *Allocator) Arena() block.Arena { return a.arena }

// FreeListHead returns the head of the explicit free list, for diagnostics.
func (a *Allocator) FreeListHead() block.Offset { return a.free.First }

// HeapStart returns the payload offset of the first real block, for
// diagnostics that need to walk every physical block rather than just the
// free list.
func (a *Allocator) HeapStart() block.Offset { return a.heapStart }

// Fit policy.Domain implementation: the free list itself, so every member
// is already eligible.

func (a *Allocator) First() block.Offset { return a.free.First }

func (a *Allocator) Next(o block.Offset) block.Offset {
	return block.Succ(a.arena, o)
}

func (a *Allocator) Eligible(block.Offset) bool { return true }

func (a *Allocator) SizeOf(o block.Offset) uint32 {
	return block.SizeOf(block.ReadWord(a.arena, block.Header(o)))
}

// Package implicit implements the implicit-list allocator variant: free
// blocks are discovered by linearly walking every physical block in the
// heap, with no separate free-block index. It shares block layout,
// coalescing semantics, and splitting policy with package explicit.
package implicit

import (
	"fmt"

	"github.com/heaplab/malloclab/block"
	"github.com/heaplab/malloclab/memlib"
	"github.com/heaplab/malloclab/policy"
)

// Allocator is the implicit-list allocator. The zero value is not usable;
// construct with New.
type Allocator struct {
	heap      *memlib.Heap
	arena     block.Arena
	heapStart block.Offset // payload offset of the first real (post-prologue) block
	current   block.Offset // next-fit roving cursor: a physical block offset, or 0
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

// Init lays out pad/prologue/epilogue and performs the first extend_heap.
// It may be called again to reset the allocator to a fresh empty heap.
func (a *Allocator) Init() error {
	a.heap.Init()
	off, ok := a.heap.Sbrk(4 * block.WordSize)
	if !ok {
		return fmt.Errorf("implicit: mem_init failed to reserve %d bytes", 4*block.WordSize)
	}
	a.arena = a.heap.Bytes()
	base := block.Offset(off)

	block.WriteWord(a.arena, base, 0) // pad
	prologueBp := base + 2*block.WordSize
	block.WriteWord(a.arena, base+block.WordSize, block.Pack(block.DWordSize, 1)) // prologue header
	block.WriteWord(a.arena, prologueBp, block.Pack(block.DWordSize, 1))          // prologue footer
	block.WriteWord(a.arena, prologueBp+block.WordSize, block.Pack(0, 1))         // epilogue header

	a.heapStart = block.NextBlock(a.arena, prologueBp)
	a.current = a.heapStart

	if _, err := a.extendHeap(block.ChunkSize / block.WordSize); err != nil {
		return err
	}
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

	a.place(bp, asize)
	a.current = block.NextBlock(a.arena, bp)
	return bp
}

// Free returns bp to the heap and immediately coalesces it with any
// physically adjacent free neighbors. Freeing 0 or an already-free block is
// a no-op.
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

// place commits bp to an allocation of asize bytes, splitting the tail
// back into the heap when the remainder is at least MinBlockSize.
func (a *Allocator) place(bp block.Offset, asize uint32) {
	csize := block.SizeOf(block.ReadWord(a.arena, block.Header(bp)))

	if csize-asize >= block.MinBlockSize {
		block.SetHeaderFooter(a.arena, bp, asize, 1)
		tail := block.NextBlock(a.arena, bp)
		block.SetHeaderFooter(a.arena, tail, csize-asize, 0)
		return
	}

	block.SetHeaderFooter(a.arena, bp, csize, 1)
}

// coalesce merges bp with its physically adjacent free neighbors and
// repairs the next-fit cursor if it now points into the interior of the
// merged block. It returns the offset of the (possibly larger) free block.
func (a *Allocator) coalesce(bp block.Offset) block.Offset {
	prevBp := block.PrevBlock(a.arena, bp)
	nextBp := block.NextBlock(a.arena, bp)

	prevAlloc := block.AllocOf(block.ReadWord(a.arena, block.Footer(a.arena, prevBp)))
	nextAlloc := block.AllocOf(block.ReadWord(a.arena, block.Header(nextBp)))
	size := block.SizeOf(block.ReadWord(a.arena, block.Header(bp)))

	switch {
	case prevAlloc == 1 && nextAlloc == 1:
		// case 1: no merge.
	case prevAlloc == 1 && nextAlloc == 0:
		size += block.SizeOf(block.ReadWord(a.arena, block.Header(nextBp)))
		block.SetHeaderFooter(a.arena, bp, size, 0)
	case prevAlloc == 0 && nextAlloc == 1:
		size += block.SizeOf(block.ReadWord(a.arena, block.Header(prevBp)))
		block.SetHeaderFooter(a.arena, prevBp, size, 0)
		bp = prevBp
	default: // both free
		size += block.SizeOf(block.ReadWord(a.arena, block.Header(prevBp))) +
			block.SizeOf(block.ReadWord(a.arena, block.Header(nextBp)))
		block.SetHeaderFooter(a.arena, prevBp, size, 0)
		bp = prevBp
	}

	if a.current > bp && a.current < bp+block.Offset(size) {
		a.current = bp
	}
	return bp
}

// extendHeap requests `words` (rounded up to even) more words from the
// heap primitive, frames the new space as one free block topped with a
// fresh epilogue, and coalesces it with the previous top block.
func (a *Allocator) extendHeap(words int) (block.Offset, error) {
	if words%2 != 0 {
		words++
	}
	size := words * block.WordSize

	off, ok := a.heap.Sbrk(size)
	if !ok {
		return 0, fmt.Errorf("implicit: out of memory extending heap by %d bytes", size)
	}
	a.arena = a.heap.Bytes()
	bp := block.Offset(off)

	block.SetHeaderFooter(a.arena, bp, uint32(size), 0)
	next := block.NextBlock(a.arena, bp)
	block.WriteWord(a.arena, block.Header(next), block.Pack(0, 1)) // new epilogue

	return a.coalesce(bp), nil
}

// Arena returns the allocator's backing byte slice.
func (a *Allocator) Arena() block.Arena { return a.arena }

// HeapStart returns the payload offset of the first real block.
func (a *Allocator) HeapStart() block.Offset { return a.heapStart }

// Fit policy.Domain implementation: every physical block, filtered to free
// ones by Eligible.

func (a *Allocator) First() block.Offset { return a.heapStart }

func (a *Allocator) Next(o block.Offset) block.Offset {
	sz := block.SizeOf(block.ReadWord(a.arena, block.Header(o)))
	if sz == 0 {
		return 0
	}
	return o + block.Offset(sz)
}

func (a *Allocator) Eligible(o block.Offset) bool {
	w := block.ReadWord(a.arena, block.Header(o))
	return block.SizeOf(w) > 0 && block.AllocOf(w) == 0
}

func (a *Allocator) SizeOf(o block.Offset) uint32 {
	return block.SizeOf(block.ReadWord(a.arena, block.Header(o)))
}

// Package malloclab is the allocator façade: a common Allocator interface
// satisfied by both the implicit-list and explicit-list variants, a Kind
// selector between them, and a debug-mode invariant Checker following a
// panic-on-impossible-state convention.
package malloclab

import (
	"fmt"

	"github.com/heaplab/malloclab/block"
	"github.com/heaplab/malloclab/explicit"
	"github.com/heaplab/malloclab/implicit"
	"github.com/heaplab/malloclab/policy"
)

// Allocator is the surface both variants expose: mm_init (via the
// constructor), mm_malloc, mm_free, mm_realloc, plus read access to the
// backing arena for diagnostics.
type Allocator interface {
	Malloc(size int) block.Offset
	Free(bp block.Offset)
	Realloc(bp block.Offset, size int) block.Offset
	Arena() block.Arena
	HeapStart() block.Offset
}

// Kind selects which allocator variant New constructs.
type Kind int

const (
	Implicit Kind = iota + 1
	Explicit
)

func (k Kind) String() string {
	switch k {
	case Implicit:
		return "implicit"
	case Explicit:
		return "explicit"
	default:
		return "unknown"
	}
}

// ParseKind maps the CLI spelling ("implicit", "explicit") to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "implicit":
		return Implicit, true
	case "explicit":
		return Explicit, true
	default:
		return 0, false
	}
}

// New reserves a heap of maxHeap bytes and returns a ready Allocator of the
// requested kind, using the given placement policy.
func New(kind Kind, fit policy.Fit, maxHeap int) (Allocator, error) {
	switch kind {
	case Implicit:
		return implicit.New(maxHeap, fit)
	case Explicit:
		return explicit.New(maxHeap, fit)
	default:
		return nil, fmt.Errorf("malloclab: unknown allocator kind %d", kind)
	}
}

// freeListHead is implemented only by the explicit variant; Checker type-
// asserts for it to decide whether free-list invariants are checkable.
type freeListHead interface {
	FreeListHead() block.Offset
}

// Checker walks an Allocator's heap and panics at the first invariant
// violation it finds. It is meant to be invoked between steps of a scripted
// test sequence in debug builds: panic on impossible state, stay silent in
// production. The allocator core itself never calls this, only callers
// that have opted into debug-mode checking do.
type Checker struct {
	a Allocator
}

// NewChecker wraps an Allocator for invariant checking.
func NewChecker(a Allocator) *Checker {
	return &Checker{a: a}
}

// Check walks every physical block in the heap and panics if it finds:
// two physically adjacent free blocks (a missed coalesce), a header/footer
// mismatch, or a free-list member that isn't actually free (when the
// wrapped allocator is the explicit variant).
func (c *Checker) Check() {
	arena := c.a.Arena()
	prevFree := false
	for bp := c.a.HeapStart(); ; {
		hdr := block.ReadWord(arena, block.Header(bp))
		size := block.SizeOf(hdr)
		if size == 0 {
			break
		}
		ftr := block.ReadWord(arena, block.Footer(arena, bp))
		if hdr != ftr {
			panic(fmt.Sprintf("malloclab: header/footer mismatch at block %d: %#x != %#x", bp, hdr, ftr))
		}

		free := block.AllocOf(hdr) == 0
		if free && prevFree {
			panic(fmt.Sprintf("malloclab: two adjacent free blocks at/before %d: missed coalesce", bp))
		}
		prevFree = free

		bp = bp + block.Offset(size)
	}

	if fl, ok := c.a.(freeListHead); ok {
		seen := map[block.Offset]bool{}
		for o := fl.FreeListHead(); o != 0; o = block.Succ(arena, o) {
			if seen[o] {
				panic(fmt.Sprintf("malloclab: free list cycle detected at %d", o))
			}
			seen[o] = true
			hdr := block.ReadWord(arena, block.Header(o))
			if block.AllocOf(hdr) != 0 {
				panic(fmt.Sprintf("malloclab: free list member %d is marked allocated", o))
			}
		}
	}
}

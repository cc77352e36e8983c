// Package freelist implements the doubly linked list of free blocks used by
// the explicit-list allocator variant. The list is threaded
// through the pred/succ words embedded in each free block's own payload
// (see package block); this package owns only the two anchors and the
// O(1) insert/remove discipline, never the block's size/alloc bits.
package freelist

import "github.com/heaplab/malloclab/block"

// List is the explicit free list: a LIFO-ordered doubly linked list of
// block.Offset values, threaded through block.Pred/block.Succ.
type List struct {
	First block.Offset // head; block.Offset(0) means empty
	Last  block.Offset // tail
}

// InsertInFront pushes bp onto the head of the free list. Newly freed
// blocks become the new head (LIFO).
func (l *List) InsertInFront(a block.Arena, bp block.Offset) {
	block.SetPred(a, bp, 0)
	block.SetSucc(a, bp, l.First)
	if l.First != 0 {
		block.SetPred(a, l.First, bp)
	}
	l.First = bp
	if l.Last == 0 {
		l.Last = bp
	}
}

// Remove splices bp out of the free list. bp must currently be a member.
func (l *List) Remove(a block.Arena, bp block.Offset) {
	pred := block.Pred(a, bp)
	succ := block.Succ(a, bp)

	if pred != 0 {
		block.SetSucc(a, pred, succ)
	} else {
		l.First = succ
	}

	if succ != 0 {
		block.SetPred(a, succ, pred)
	} else {
		l.Last = pred
	}
}

// ReplaceInPlace swaps an existing member `old` for `new` at the same
// position in the list, copying `old`'s pred/succ links onto `new` and
// patching the anchors and neighbors accordingly. This is used by place()
// when a free block is split: the tail inherits the consumed block's
// position so the list (and, for next-fit, the scan cursor) does not need
// the allocated prefix to be removed and the tail reinserted at the head.
func (l *List) ReplaceInPlace(a block.Arena, old, new block.Offset) {
	pred := block.Pred(a, old)
	succ := block.Succ(a, old)

	block.SetPred(a, new, pred)
	block.SetSucc(a, new, succ)

	if pred != 0 {
		block.SetSucc(a, pred, new)
	} else {
		l.First = new
	}
	if succ != 0 {
		block.SetPred(a, succ, new)
	} else {
		l.Last = new
	}
}

// Empty reports whether the free list currently holds no blocks.
func (l *List) Empty() bool {
	return l.First == 0
}

// Contains reports whether bp is currently linked into the list. It is an
// O(n) diagnostic used only by tests, never by the allocator's hot paths.
func (l *List) Contains(a block.Arena, bp block.Offset) bool {
	for o := l.First; o != 0; o = block.Succ(a, o) {
		if o == bp {
			return true
		}
	}
	return false
}

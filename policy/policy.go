// Package policy implements the three placement strategies (first-fit,
// next-fit, best-fit) as pure functions over a small Domain abstraction.
// Both allocator variants satisfy Domain: the implicit
// variant's domain is "every physical block", the explicit variant's domain
// is "every block on the free list" — the fit algorithms themselves don't
// know or care which.
package policy

import "github.com/heaplab/malloclab/block"

// Fit selects a placement policy. The zero value is not a valid Fit; use
// FirstFit as the default.
type Fit int

const (
	FirstFit Fit = iota + 1
	NextFit
	BestFit
)

func (f Fit) String() string {
	switch f {
	case FirstFit:
		return "first"
	case NextFit:
		return "next"
	case BestFit:
		return "best"
	default:
		return "unknown"
	}
}

// ParseFit maps the CLI spelling ("first", "next", "best") to a Fit.
func ParseFit(s string) (Fit, bool) {
	switch s {
	case "first":
		return FirstFit, true
	case "next":
		return NextFit, true
	case "best":
		return BestFit, true
	default:
		return 0, false
	}
}

// Domain abstracts the set of blocks a placement policy scans.
type Domain interface {
	// First returns the first candidate in scan order, or 0 if the
	// domain is currently empty.
	First() block.Offset
	// Next returns the candidate immediately after o in scan order, or 0
	// if o was the last one.
	Next(o block.Offset) block.Offset
	// Eligible reports whether o qualifies as a placement candidate. The
	// explicit variant's domain (the free list) is always eligible since
	// every member is free by construction; the implicit variant's
	// domain (every physical block) must filter out allocated blocks and
	// the zero-size epilogue here.
	Eligible(o block.Offset) bool
	// SizeOf returns the block size recorded at o's header.
	SizeOf(o block.Offset) uint32
}

// Select picks a free block of at least asize bytes from d, using the
// named fit policy. cursor is the next-fit roving pointer; it is ignored
// by FirstFit and BestFit. Select returns 0 if no eligible block satisfies
// the request.
func Select(d Domain, fit Fit, cursor block.Offset, asize uint32) block.Offset {
	switch fit {
	case NextFit:
		return nextFit(d, cursor, asize)
	case BestFit:
		return bestFit(d, asize)
	default:
		return firstFit(d, asize)
	}
}

func firstFit(d Domain, asize uint32) block.Offset {
	for o := d.First(); o != 0; o = d.Next(o) {
		if d.Eligible(o) && d.SizeOf(o) >= asize {
			return o
		}
	}
	return 0
}

func bestFit(d Domain, asize uint32) block.Offset {
	var best block.Offset
	var bestSize uint32
	for o := d.First(); o != 0; o = d.Next(o) {
		if !d.Eligible(o) {
			continue
		}
		sz := d.SizeOf(o)
		if sz < asize {
			continue
		}
		if best == 0 || sz < bestSize {
			best = o
			bestSize = sz
		}
	}
	return best
}

func nextFit(d Domain, cursor block.Offset, asize uint32) block.Offset {
	start := cursor
	if start == 0 {
		start = d.First()
	}

	for o := start; o != 0; o = d.Next(o) {
		if d.Eligible(o) && d.SizeOf(o) >= asize {
			return o
		}
	}
	// Wrap: scan from the beginning up to (exclusive of) start.
	for o := d.First(); o != 0 && o != start; o = d.Next(o) {
		if d.Eligible(o) && d.SizeOf(o) >= asize {
			return o
		}
	}
	return 0
}

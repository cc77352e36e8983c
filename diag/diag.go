// Package diag provides read-only diagnostic walks over an allocator's
// heap: a full physical-block dump and a free-list dump. Neither function
// mutates any state; both exist purely to aid debugging scripted sequences
// run through cmd/malloclab.
package diag

import (
	"fmt"
	"io"

	"github.com/heaplab/malloclab/block"
)

// PrintBlocks walks every physical block from heapStart to the epilogue
// (size 0) and writes one line per block: its payload offset, size, and
// allocation state.
func PrintBlocks(w io.Writer, a block.Arena, heapStart block.Offset) {
	for bp := heapStart; ; {
		hdr := block.ReadWord(a, block.Header(bp))
		size := block.SizeOf(hdr)
		if size == 0 {
			fmt.Fprintf(w, "  [epilogue @%d]\n", bp)
			return
		}
		state := "free"
		if block.AllocOf(hdr) == 1 {
			state = "alloc"
		}
		fmt.Fprintf(w, "  block @%-8d size=%-6d %s\n", bp, size, state)
		bp = bp + block.Offset(size)
	}
}

// PrintFreeList walks the free list forward from head via block.Succ,
// writing one line per member: its payload offset and size.
func PrintFreeList(w io.Writer, a block.Arena, head block.Offset) {
	if head == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	for bp := head; bp != 0; bp = block.Succ(a, bp) {
		size := block.SizeOf(block.ReadWord(a, block.Header(bp)))
		fmt.Fprintf(w, "  free @%-8d size=%d\n", bp, size)
	}
}

package freelist

import (
	"testing"

	"github.com/heaplab/malloclab/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// arena lays out n free blocks of the given size back to back, each wide
// enough to hold header+footer+links, starting at offset 0. It does not
// model prologue/epilogue since freelist operates purely on link words.
func arenaOf(blockSize uint32, n int) (block.Arena, []block.Offset) {
	a := make(block.Arena, int(blockSize)*n)
	offsets := make([]block.Offset, n)
	for i := 0; i < n; i++ {
		bp := block.Offset(i)*block.Offset(blockSize) + block.WordSize
		block.SetHeaderFooter(a, bp, blockSize, 0)
		offsets[i] = bp
	}
	return a, offsets
}

func TestInsertInFrontIsLIFO(t *testing.T) {
	a, bp := arenaOf(32, 3)
	var l List

	l.InsertInFront(a, bp[0])
	l.InsertInFront(a, bp[1])
	l.InsertInFront(a, bp[2])

	require.Equal(t, bp[2], l.First)
	require.Equal(t, bp[0], l.Last)

	var seen []block.Offset
	for o := l.First; o != 0; o = block.Succ(a, o) {
		seen = append(seen, o)
	}
	assert.Equal(t, []block.Offset{bp[2], bp[1], bp[0]}, seen)
}

func TestRemoveMiddle(t *testing.T) {
	a, bp := arenaOf(32, 3)
	var l List
	l.InsertInFront(a, bp[0])
	l.InsertInFront(a, bp[1])
	l.InsertInFront(a, bp[2])

	l.Remove(a, bp[1])

	assert.False(t, l.Contains(a, bp[1]))
	assert.Equal(t, bp[2], l.First)
	assert.Equal(t, bp[0], l.Last)
	assert.Equal(t, bp[0], block.Succ(a, bp[2]))
	assert.Equal(t, bp[2], block.Pred(a, bp[0]))
}

func TestRemoveHeadAndTail(t *testing.T) {
	a, bp := arenaOf(32, 2)
	var l List
	l.InsertInFront(a, bp[0])
	l.InsertInFront(a, bp[1])

	l.Remove(a, bp[1]) // head
	assert.Equal(t, bp[0], l.First)
	assert.Equal(t, bp[0], l.Last)

	l.Remove(a, bp[0]) // now both
	assert.True(t, l.Empty())
	assert.Equal(t, block.Offset(0), l.Last)
}

func TestReplaceInPlacePreservesPosition(t *testing.T) {
	a, bp := arenaOf(32, 4)
	var l List
	l.InsertInFront(a, bp[0])
	l.InsertInFront(a, bp[1])
	l.InsertInFront(a, bp[2])

	replacement := bp[3]
	l.ReplaceInPlace(a, bp[1], replacement)

	assert.False(t, l.Contains(a, bp[1]))
	assert.True(t, l.Contains(a, replacement))
	assert.Equal(t, replacement, block.Succ(a, bp[2]))
	assert.Equal(t, bp[0], block.Succ(a, replacement))
	assert.Equal(t, bp[2], block.Pred(a, replacement))
	assert.Equal(t, replacement, block.Pred(a, bp[0]))
}

func TestReplaceInPlaceAtHeadAndTail(t *testing.T) {
	a, bp := arenaOf(32, 4)
	var l List
	l.InsertInFront(a, bp[0])
	l.InsertInFront(a, bp[1])

	newHead := bp[2]
	l.ReplaceInPlace(a, bp[1], newHead)
	assert.Equal(t, newHead, l.First)

	newTail := bp[3]
	l.ReplaceInPlace(a, bp[0], newTail)
	assert.Equal(t, newTail, l.Last)
}

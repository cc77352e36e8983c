package malloclab

import (
	"testing"

	"github.com/heaplab/malloclab/block"
	"github.com/heaplab/malloclab/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImplicit(t *testing.T) {
	a, err := New(Implicit, policy.FirstFit, 1<<20)
	require.NoError(t, err)
	p := a.Malloc(64)
	assert.NotZero(t, p)
}

func TestNewExplicit(t *testing.T) {
	a, err := New(Explicit, policy.BestFit, 1<<20)
	require.NoError(t, err)
	p := a.Malloc(64)
	assert.NotZero(t, p)
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New(Kind(99), policy.FirstFit, 1<<20)
	assert.Error(t, err)
}

func TestKindStringAndParse(t *testing.T) {
	for _, k := range []Kind{Implicit, Explicit} {
		parsed, ok := ParseKind(k.String())
		assert.True(t, ok)
		assert.Equal(t, k, parsed)
	}
	_, ok := ParseKind("buddy")
	assert.False(t, ok)
}

func TestCheckerPassesOnHealthyHeap(t *testing.T) {
	for _, kind := range []Kind{Implicit, Explicit} {
		a, err := New(kind, policy.FirstFit, 1<<20)
		require.NoError(t, err)
		p1 := a.Malloc(64)
		p2 := a.Malloc(128)
		a.Free(p1)
		_ = p2

		assert.NotPanics(t, func() { NewChecker(a).Check() })
	}
}

func TestCheckerCatchesMissedCoalesce(t *testing.T) {
	// Simulate a missed coalesce by marking two physically adjacent blocks
	// free without going through Free/coalesce.
	a, err := New(Implicit, policy.FirstFit, 1<<20)
	require.NoError(t, err)
	p1 := a.Malloc(64)
	p2 := a.Malloc(64)
	_ = a.Malloc(64) // guard: keeps p2's right neighbor allocated, so p1/p2 is the only free pair

	arena := a.Arena()
	size1 := block.SizeOf(block.ReadWord(arena, block.Header(p1)))
	size2 := block.SizeOf(block.ReadWord(arena, block.Header(p2)))
	block.SetHeaderFooter(arena, p1, size1, 0)
	block.SetHeaderFooter(arena, p2, size2, 0)

	assert.Panics(t, func() { NewChecker(a).Check() })
}

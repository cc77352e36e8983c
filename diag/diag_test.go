package diag_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/heaplab/malloclab/diag"
	"github.com/heaplab/malloclab/explicit"
	"github.com/heaplab/malloclab/implicit"
	"github.com/heaplab/malloclab/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBlocksImplicit(t *testing.T) {
	a, err := implicit.New(1<<20, policy.FirstFit)
	require.NoError(t, err)
	p := a.Malloc(64)
	a.Free(p)

	var buf bytes.Buffer
	diag.PrintBlocks(&buf, a.Arena(), a.HeapStart())

	out := buf.String()
	assert.Contains(t, out, "free")
	assert.Contains(t, out, "epilogue")
}

func TestPrintBlocksExplicit(t *testing.T) {
	a, err := explicit.New(1<<20, policy.FirstFit)
	require.NoError(t, err)
	p := a.Malloc(64)
	_ = p

	var buf bytes.Buffer
	diag.PrintBlocks(&buf, a.Arena(), a.HeapStart())

	out := buf.String()
	assert.Contains(t, out, "alloc")
	assert.Contains(t, out, "epilogue")
}

func TestPrintFreeListEmpty(t *testing.T) {
	var buf bytes.Buffer
	diag.PrintFreeList(&buf, nil, 0)
	assert.Equal(t, "  (empty)\n", buf.String())
}

func TestPrintFreeListWalksAllMembers(t *testing.T) {
	a, err := explicit.New(1<<20, policy.FirstFit)
	require.NoError(t, err)
	p1 := a.Malloc(0x40)
	p2 := a.Malloc(0x40)
	a.Free(p1)
	a.Free(p2)

	var buf bytes.Buffer
	diag.PrintFreeList(&buf, a.Arena(), a.FreeListHead())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.GreaterOrEqual(t, len(lines), 1)
	for _, l := range lines {
		assert.Contains(t, l, "free @")
	}
}

package malloclab

import (
	"testing"

	"github.com/bytedance/gopkg/lang/mcache"
	"github.com/heaplab/malloclab/policy"
)

// payload is a pooled scratch buffer the benchmarks write into malloc'd
// blocks, so the benchmark measures the allocator under test rather than
// make/GC churn from generating workload bytes on every iteration.
var payload = mcache.Malloc(256)

func BenchmarkMallocFreeImplicit(b *testing.B) {
	benchmarkMallocFree(b, Implicit)
}

func BenchmarkMallocFreeExplicit(b *testing.B) {
	benchmarkMallocFree(b, Explicit)
}

func benchmarkMallocFree(b *testing.B, kind Kind) {
	a, err := New(kind, policy.FirstFit, 64<<20)
	if err != nil {
		b.Fatal(err)
	}
	arena := a.Arena()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := a.Malloc(len(payload))
		copy(arena[p:int(p)+len(payload)], payload)
		a.Free(p)
	}
}

func BenchmarkMallocFreeExplicitBestFit(b *testing.B) {
	a, err := New(Explicit, policy.BestFit, 64<<20)
	if err != nil {
		b.Fatal(err)
	}
	arena := a.Arena()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p := a.Malloc(len(payload))
		copy(arena[p:int(p)+len(payload)], payload)
		a.Free(p)
	}
}

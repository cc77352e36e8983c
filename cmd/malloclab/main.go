// Command malloclab drives the allocator through a scripted sequence of
// malloc/free/realloc/assert steps, selecting a placement policy and an
// allocator variant up front. With no script file it runs a small built-in
// demo sequence and always prints the heap; with a script it only prints
// when -v is given. A failed assert exits with status 2.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/bytedance/gopkg/lang/mcache"
	"github.com/heaplab/malloclab/block"
	"github.com/heaplab/malloclab/diag"
	"github.com/heaplab/malloclab/malloclab"
	"github.com/heaplab/malloclab/policy"
)

const maxHeap = 20 << 20 // 20MB, matching memlib.DefaultMaxHeap

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("malloclab", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fitFlag := fs.String("w", "first", "placement policy: first, next, or best")
	listFlag := fs.String("list", "explicit", "free-block discovery: implicit or explicit")
	verbose := fs.Bool("v", false, "print blocks and free list after every scripted step")
	fuzzSteps := fs.Int("fuzz", 0, "generate this many random malloc/free steps instead of reading a script file")
	fuzzSeed := fs.Int64("seed", 1, "seed for -fuzz's workload generator")
	help := fs.Bool("h", false, "print usage and exit")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *help {
		fs.Usage()
		return 0
	}

	fit, ok := policy.ParseFit(*fitFlag)
	if !ok {
		fmt.Fprintf(stderr, "malloclab: unknown fit %q\n", *fitFlag)
		return 2
	}
	kind, ok := malloclab.ParseKind(*listFlag)
	if !ok {
		fmt.Fprintf(stderr, "malloclab: unknown list variant %q\n", *listFlag)
		return 2
	}

	a, err := malloclab.New(kind, fit, maxHeap)
	if err != nil {
		fmt.Fprintf(stderr, "malloclab: %v\n", err)
		return 1
	}

	var script []string
	demo := true
	if *fuzzSteps > 0 {
		script = fuzzScript(*fuzzSteps, *fuzzSeed)
		demo = false
	} else if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(stderr, "malloclab: %v\n", err)
			return 1
		}
		defer f.Close()
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			script = append(script, line)
		}
		demo = false
	} else {
		script = demoScript()
	}

	r := &runner{a: a}
	for i, line := range script {
		if err := r.step(line); err != nil {
			fmt.Fprintf(stderr, "malloclab: step %d (%q): %v\n", i+1, line, err)
			return 2
		}
		if demo || *verbose {
			fmt.Fprintf(stdout, "after %q:\n", line)
			diag.PrintBlocks(stdout, a.Arena(), a.HeapStart())
			if fl, ok := a.(interface{ FreeListHead() block.Offset }); ok {
				diag.PrintFreeList(stdout, a.Arena(), fl.FreeListHead())
			}
		}
	}
	return 0
}

// demoScript is a small built-in sequence of allocations, frees, a reuse,
// and a realloc, large enough to exercise a split and a coalesce without a
// script file.
func demoScript() []string {
	return []string{
		"malloc 296",
		"malloc 280",
		"malloc 376",
		"free 1",
		"malloc 56",
		"realloc 2 600",
		"free 0",
		"free 2",
	}
}

// fuzzScript generates a reproducible sequence of malloc/free steps. Sizes
// are drawn from a pooled scratch buffer (mcache.Malloc) read as a byte
// stream rather than allocated fresh per step, so the generator itself
// doesn't dominate the profile of a large -fuzz run.
func fuzzScript(steps int, seed int64) []string {
	rng := rand.New(rand.NewSource(seed))
	scratch := mcache.Malloc(steps)
	defer mcache.Free(scratch)
	rng.Read(scratch)

	script := make([]string, 0, steps)
	live := 0
	for i := 0; i < steps; i++ {
		if live > 0 && scratch[i]%3 == 0 {
			script = append(script, fmt.Sprintf("free %d", rng.Intn(live)))
			continue
		}
		size := int(scratch[i])*4 + 1
		script = append(script, fmt.Sprintf("malloc %d", size))
		live++
	}
	return script
}

// runner holds the slot table mapping script indices to the offsets
// returned by malloc/realloc, in call order.
type runner struct {
	a     malloclab.Allocator
	slots []block.Offset
}

func (r *runner) step(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "malloc":
		if len(fields) != 2 {
			return fmt.Errorf("malloc requires 1 argument")
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return err
		}
		r.slots = append(r.slots, r.a.Malloc(n))
		return nil

	case "free":
		if len(fields) != 2 {
			return fmt.Errorf("free requires 1 argument")
		}
		idx, err := r.slot(fields[1])
		if err != nil {
			return err
		}
		r.a.Free(r.slots[idx])
		return nil

	case "realloc":
		if len(fields) != 3 {
			return fmt.Errorf("realloc requires 2 arguments")
		}
		idx, err := r.slot(fields[1])
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(fields[2])
		if err != nil {
			return err
		}
		r.slots[idx] = r.a.Realloc(r.slots[idx], n)
		return nil

	case "assert":
		// assert <idx> == <idx>
		if len(fields) != 4 || fields[2] != "==" {
			return fmt.Errorf("assert requires '<idx> == <idx>'")
		}
		li, err := r.slot(fields[1])
		if err != nil {
			return err
		}
		ri, err := r.slot(fields[3])
		if err != nil {
			return err
		}
		if r.slots[li] != r.slots[ri] {
			return fmt.Errorf("placement assertion failed: slot %d (@%d) != slot %d (@%d)",
				li, r.slots[li], ri, r.slots[ri])
		}
		return nil

	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

func (r *runner) slot(s string) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= len(r.slots) {
		return 0, fmt.Errorf("slot %d out of range (%d allocations so far)", idx, len(r.slots))
	}
	return idx, nil
}

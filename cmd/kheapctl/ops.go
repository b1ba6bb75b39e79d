package main

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/joshuapare/kheap/heap"
	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/kheap"
)

// op is one scripted heap call.
//
//	alloc:<size>   allocate size bytes
//	zalloc:<size>  allocate and zero size bytes
//	free:<addr>    free an address
//	free:@<n>      free the address returned by op n (0-based)
type op struct {
	Kind string
	Arg  uint64
	Ref  int // op index for free:@n, -1 otherwise
}

func (o op) String() string {
	if o.Ref >= 0 {
		return fmt.Sprintf("%s @%d", o.Kind, o.Ref)
	}
	if o.Kind == "free" {
		return fmt.Sprintf("%s %#x", o.Kind, o.Arg)
	}
	return fmt.Sprintf("%s %d", o.Kind, o.Arg)
}

func parseOp(s string) (op, error) {
	kind, arg, ok := strings.Cut(s, ":")
	if !ok {
		return op{}, fmt.Errorf("invalid op %q: want kind:arg", s)
	}
	o := op{Kind: kind, Ref: -1}
	switch kind {
	case "alloc", "zalloc":
	case "free":
		if ref, found := strings.CutPrefix(arg, "@"); found {
			n, err := strconv.Atoi(ref)
			if err != nil || n < 0 {
				return op{}, fmt.Errorf("invalid op %q: bad reference", s)
			}
			o.Ref = n
			return o, nil
		}
	default:
		return op{}, fmt.Errorf("invalid op %q: unknown kind %q", s, kind)
	}
	v, err := strconv.ParseUint(arg, 0, 64)
	if err != nil {
		return op{}, fmt.Errorf("invalid op %q: %w", s, err)
	}
	o.Arg = v
	return o, nil
}

func parseOps(args []string) ([]op, error) {
	ops := make([]op, 0, len(args))
	for _, a := range args {
		o, err := parseOp(a)
		if err != nil {
			return nil, err
		}
		ops = append(ops, o)
	}
	return ops, nil
}

// randomOps builds a workload of n calls. Frees refer back to earlier
// allocations that have not been freed yet.
func randomOps(n int, seed uint64, maxBlocks int) []op {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	var live []int
	ops := make([]op, 0, n)
	for i := 0; i < n; i++ {
		if len(live) > 0 && rng.IntN(5) < 2 {
			j := rng.IntN(len(live))
			ops = append(ops, op{Kind: "free", Ref: live[j]})
			live = append(live[:j], live[j+1:]...)
			continue
		}
		size := uint64(rng.IntN(maxBlocks*format.BlockSize)) + 1
		ops = append(ops, op{Kind: "alloc", Arg: size, Ref: -1})
		live = append(live, i)
	}
	return ops
}

type opResult struct {
	Op     string    `json:"op"`
	Addr   heap.Addr `json:"addr,omitempty"`
	Blocks uint64    `json:"blocks,omitempty"`
	Error  string    `json:"error,omitempty"`
}

// applyOps runs ops in order. Failed calls are recorded, not fatal.
func applyOps(k *kheap.KernelHeap, ops []op) []opResult {
	results := make([]opResult, len(ops))
	addrs := make([]heap.Addr, len(ops))
	ok := make([]bool, len(ops))

	for i, o := range ops {
		r := opResult{Op: o.String()}
		var err error
		switch o.Kind {
		case "alloc", "zalloc":
			var addr heap.Addr
			if o.Kind == "alloc" {
				addr, err = k.Malloc(o.Arg)
			} else {
				addr, err = k.Zalloc(o.Arg)
			}
			if err == nil {
				r.Addr, r.Blocks = addr, format.BlocksFor(o.Arg)
				addrs[i], ok[i] = addr, true
			}
		case "free":
			addr := heap.Addr(o.Arg)
			if o.Ref >= 0 {
				if o.Ref >= i || !ok[o.Ref] {
					err = fmt.Errorf("op @%d did not allocate", o.Ref)
					break
				}
				addr = addrs[o.Ref]
			}
			r.Addr = addr
			err = k.Free(addr)
		}
		if err != nil {
			r.Error = err.Error()
		}
		results[i] = r
	}
	return results
}

// Package kheap is the kernel's entry point to dynamic memory. It lays the
// block heap over simulated physical memory according to a Config and adds the
// zero-initializing allocation every collaborator uses.
package kheap

import (
	"fmt"

	"github.com/joshuapare/kheap/heap"
	"github.com/joshuapare/kheap/heap/table"
	"github.com/joshuapare/kheap/internal/logger"
	"github.com/joshuapare/kheap/physmem"
)

// Allocator is what collaborators need from the kernel heap: zeroed
// allocation, release, and access to the allocated bytes.
type Allocator interface {
	Zalloc(size uint64) (heap.Addr, error)
	Free(addr heap.Addr) error
	Bytes(addr heap.Addr, n uint64) ([]byte, error)
}

// KernelHeap owns one block heap and the memory it lives in.
type KernelHeap struct {
	cfg     Config
	mem     *physmem.Memory
	heap    *heap.Heap
	ownsMem bool
}

// Init builds the kernel heap inside mem. The table region is used in place
// as the block table.
func Init(mem *physmem.Memory, cfg Config) (*KernelHeap, error) {
	if err := cfg.Validate(mem.Size()); err != nil {
		return nil, err
	}

	entries, err := mem.Slice(cfg.TableAddress, cfg.TableSize())
	if err != nil {
		return nil, err
	}

	h, err := heap.Create(cfg.HeapAddress, cfg.HeapEnd(), table.New(entries))
	if err != nil {
		return nil, fmt.Errorf("kheap: create heap: %w", err)
	}

	logger.Info("kheap: initialized",
		"heap_addr", fmt.Sprintf("0x%08X", cfg.HeapAddress),
		"heap_size", cfg.HeapSize,
		"table_addr", fmt.Sprintf("0x%08X", cfg.TableAddress),
		"blocks", cfg.Blocks())

	return &KernelHeap{cfg: cfg, mem: mem, heap: h}, nil
}

// Boot reserves physical memory sized for cfg and initializes the heap in it.
// Close releases the memory.
func Boot(cfg Config) (*KernelHeap, error) {
	mem, err := physmem.New(cfg.MemorySize())
	if err != nil {
		return nil, err
	}
	k, err := Init(mem, cfg)
	if err != nil {
		_ = mem.Close()
		return nil, err
	}
	k.ownsMem = true
	return k, nil
}

// Malloc allocates size bytes without clearing them.
func (k *KernelHeap) Malloc(size uint64) (heap.Addr, error) {
	return k.heap.Alloc(size)
}

// Zalloc allocates size bytes and zeroes them.
func (k *KernelHeap) Zalloc(size uint64) (heap.Addr, error) {
	addr, err := k.heap.Alloc(size)
	if err != nil {
		return 0, err
	}
	if err := k.mem.Set(addr, 0, size); err != nil {
		_ = k.heap.Free(addr)
		return 0, err
	}
	return addr, nil
}

// Free releases an allocation made by Malloc or Zalloc.
func (k *KernelHeap) Free(addr heap.Addr) error {
	return k.heap.Free(addr)
}

// Bytes returns the n bytes of memory at addr.
func (k *KernelHeap) Bytes(addr heap.Addr, n uint64) ([]byte, error) {
	return k.mem.Slice(addr, n)
}

// Heap returns the underlying block heap.
func (k *KernelHeap) Heap() *heap.Heap { return k.heap }

// Memory returns the physical memory the heap lives in.
func (k *KernelHeap) Memory() *physmem.Memory { return k.mem }

// Config returns the layout the heap was built with.
func (k *KernelHeap) Config() Config { return k.cfg }

// Close releases physical memory reserved by Boot. It is a no-op for heaps
// created with Init.
func (k *KernelHeap) Close() error {
	if !k.ownsMem {
		return nil
	}
	k.ownsMem = false
	return k.mem.Close()
}

// Compile-time interface check
var _ Allocator = (*KernelHeap)(nil)

package heap

import (
	"fmt"
	"os"
	"sync"

	"github.com/joshuapare/kheap/heap/table"
	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/internal/logger"
)

// Runtime debug flag for allocation logging - controlled by KHEAP_LOG_ALLOC env var.
var logAlloc = os.Getenv("KHEAP_LOG_ALLOC") != ""

// Heap manages the block-aligned range [start, end) using one block table.
// It stores only metadata; the data region itself belongs to whoever
// reserved it.
type Heap struct {
	mu    sync.Mutex
	start Addr
	table *table.Table
	stats counters
}

// Create validates the region and table and returns a heap with every block
// free.
//
// Parameters:
//   - start: base address of the data region, block aligned
//   - end: first address past the data region, block aligned
//   - tbl: entry storage with exactly (end-start)/BlockSize entries
func Create(start, end Addr, tbl *table.Table) (*Heap, error) {
	if !format.IsBlockAligned(start) || !format.IsBlockAligned(end) {
		return nil, fmt.Errorf("%w: start=0x%X end=0x%X", ErrMisalignedRegion, start, end)
	}
	if end < start {
		return nil, fmt.Errorf("%w: end 0x%X before start 0x%X", ErrInvalidArgument, end, start)
	}
	if err := table.Validate(end-start, tbl); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	tbl.Reset()

	return &Heap{
		start: start,
		table: tbl,
	}, nil
}

// Start returns the base address of the managed region.
func (h *Heap) Start() Addr { return h.start }

// End returns the first address past the managed region.
func (h *Heap) End() Addr { return h.BlockToAddress(h.table.Len()) }

// Blocks returns the number of blocks in the region.
func (h *Heap) Blocks() int { return h.table.Len() }

// BlockToAddress returns the address of block i.
func (h *Heap) BlockToAddress(i int) Addr {
	return h.start + Addr(i)*format.BlockSize
}

// AddressToBlock returns the index of the block containing addr, or -1 when
// addr lies outside [Start, End).
func (h *Heap) AddressToBlock(addr Addr) int {
	if addr < h.start || addr >= h.End() {
		return -1
	}
	return int((addr - h.start) / format.BlockSize)
}

// Alloc reserves the first run of free blocks large enough for size bytes and
// returns its address. The table is left untouched on failure.
func (h *Heap) Alloc(size uint64) (Addr, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stats.allocCalls++

	if size == 0 {
		h.stats.failedAllocs++
		return 0, fmt.Errorf("%w: zero-size allocation", ErrInvalidArgument)
	}

	// Checked before rounding: AlignBlock wraps for sizes near the top of the range.
	if size > uint64(h.table.Len())*format.BlockSize {
		h.stats.failedAllocs++
		if logAlloc {
			logger.Debug("heap: request larger than region", "size", size, "blocks", h.table.Len())
		}
		return 0, fmt.Errorf("%w: %d bytes exceeds region of %d blocks", ErrOutOfMemory, size, h.table.Len())
	}

	need := int(format.BlocksFor(size))
	startBlock, ok := h.findRun(need)
	if !ok {
		h.stats.failedAllocs++
		if logAlloc {
			free, largest := h.table.FreeBlocks()
			logger.Debug("heap: no free run",
				"size", size, "need_blocks", need, "free_blocks", free, "largest_free_run", largest)
		}
		return 0, fmt.Errorf("%w: no run of %d free blocks", ErrOutOfMemory, need)
	}

	h.markTaken(startBlock, need)
	h.stats.blocksAlloced += need

	return h.BlockToAddress(startBlock), nil
}

// findRun performs the first-fit scan for need consecutive free blocks.
func (h *Heap) findRun(need int) (int, bool) {
	run := 0
	first := -1
	for i := 0; i < h.table.Len(); i++ {
		if !h.table.At(i).IsFree() {
			run = 0
			first = -1
			continue
		}
		if first == -1 {
			first = i
		}
		run++
		if run == need {
			return first, true
		}
	}
	return 0, false
}

// markTaken writes the run encoding for n blocks starting at start.
func (h *Heap) markTaken(start, n int) {
	last := start + n - 1
	for i := start; i <= last; i++ {
		e := table.Taken
		if i == start {
			e |= table.IsFirst
		}
		if i != last {
			e |= table.HasNext
		}
		h.table.Set(i, e)
	}
}

// Free releases the run that begins at addr. addr must be an address returned
// by Alloc and not yet freed; anything else is rejected with ErrInvalidFree
// and leaves the table unchanged.
func (h *Heap) Free(addr Addr) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.stats.freeCalls++

	if err := h.checkFree(addr); err != nil {
		h.stats.invalidFrees++
		if logAlloc {
			logger.Debug("heap: rejected free", "addr", fmt.Sprintf("0x%X", addr), "error", err)
		}
		return err
	}

	h.stats.blocksReleased += h.releaseRun(h.AddressToBlock(addr))
	return nil
}

func (h *Heap) checkFree(addr Addr) error {
	if addr < h.start || addr >= h.End() {
		return fmt.Errorf("%w: 0x%X outside [0x%X, 0x%X)", ErrInvalidFree, addr, h.start, h.End())
	}
	if !format.IsBlockAligned(addr) {
		return fmt.Errorf("%w: 0x%X not on a block boundary", ErrInvalidFree, addr)
	}
	e := h.table.At(h.AddressToBlock(addr))
	if !e.IsTaken() {
		return fmt.Errorf("%w: block at 0x%X is not allocated", ErrInvalidFree, addr)
	}
	if !e.IsFirst() {
		return fmt.Errorf("%w: 0x%X is inside a run, not its start", ErrInvalidFree, addr)
	}
	return nil
}

// releaseRun frees entries from block i until one without HAS_NEXT has been
// freed, and returns how many were released.
func (h *Heap) releaseRun(i int) int {
	n := 0
	for ; i < h.table.Len(); i++ {
		e := h.table.At(i)
		h.table.Set(i, table.Free)
		n++
		if !e.HasNext() {
			break
		}
	}
	return n
}

// Stats returns occupancy and cumulative call counters.
func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	free, largest := h.table.FreeBlocks()
	return Stats{
		TotalBlocks:    h.table.Len(),
		FreeBlocks:     free,
		UsedBlocks:     h.table.Len() - free,
		LiveRuns:       len(h.table.Runs()),
		LargestFreeRun: largest,
		AllocCalls:     h.stats.allocCalls,
		FailedAllocs:   h.stats.failedAllocs,
		FreeCalls:      h.stats.freeCalls,
		InvalidFrees:   h.stats.invalidFrees,
		BlocksAlloced:  h.stats.blocksAlloced,
		BlocksReleased: h.stats.blocksReleased,
	}
}

// Runs returns every live allocation run in address order.
func (h *Heap) Runs() []table.Run {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.table.Runs()
}

// Snapshot returns a copy of the block table.
func (h *Heap) Snapshot() []table.Entry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.table.Snapshot()
}

// Verify checks the run-shape invariant of the block table.
func (h *Heap) Verify() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return table.Check(h.table)
}

// Compile-time interface check
var _ Allocator = (*Heap)(nil)

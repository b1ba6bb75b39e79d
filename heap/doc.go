// Package heap provides the block heap: a first-fit allocator that carves a
// fixed, block-aligned address range into equal-size blocks and hands out
// contiguous runs of them.
//
// # Overview
//
// Occupancy lives in a side table (package heap/table) rather than in headers
// inside the data region. The heap never reads or writes the bytes it manages;
// it only does address arithmetic and table bookkeeping. Callers that want the
// memory zeroed use the kernel heap wrapper in package kheap.
//
// # Operations
//
//   - Create(start, end, table): validate alignment and table size, mark all blocks free
//   - Alloc(size): round up to whole blocks, first-fit scan, mark the run taken
//   - Free(addr): validate addr, then walk the HAS_NEXT chain freeing each block
//   - BlockToAddress / AddressToBlock: start + i*BlockSize and its inverse
//
// # Run Encoding
//
// Allocating k blocks at index s writes:
//
//	s        TAKEN|IS_FIRST (|HAS_NEXT when k > 1)
//	s+1..    TAKEN|HAS_NEXT
//	s+k-1    TAKEN
//
// Free stops after the first entry without HAS_NEXT, so the run length is
// never stored separately.
//
// # Usage Example
//
//	tbl := table.New(make([]byte, 16))
//	h, err := heap.Create(0x100000, 0x100000+16*format.BlockSize, tbl)
//	if err != nil {
//	    return err
//	}
//	addr, err := h.Alloc(5000) // two blocks
//	if err != nil {
//	    return err
//	}
//	defer h.Free(addr)
//
// # Thread Safety
//
// A Heap serializes Alloc, Free and the diagnostic accessors with an internal
// mutex; the first-fit scan and the marking step happen under the same lock.
//
// # Logging
//
// Set KHEAP_LOG_ALLOC=1 to log failed allocations and rejected frees through
// internal/logger at debug level.
package heap

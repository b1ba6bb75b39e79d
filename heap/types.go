package heap

// Addr is a physical address inside the simulated machine.
type Addr = uint64

// Allocator is the allocate/free contract consumed by the rest of the kernel.
type Allocator interface {
	// Alloc reserves a run of blocks covering at least size bytes and
	// returns the address of its first block.
	Alloc(size uint64) (Addr, error)

	// Free releases a run previously returned by Alloc.
	Free(addr Addr) error
}

// Stats is a point-in-time view of heap occupancy and call counters.
type Stats struct {
	TotalBlocks    int `json:"total_blocks"`
	FreeBlocks     int `json:"free_blocks"`
	UsedBlocks     int `json:"used_blocks"`
	LiveRuns       int `json:"live_runs"`
	LargestFreeRun int `json:"largest_free_run"`

	AllocCalls     int `json:"alloc_calls"`
	FailedAllocs   int `json:"failed_allocs"`
	FreeCalls      int `json:"free_calls"`
	InvalidFrees   int `json:"invalid_frees"`
	BlocksAlloced  int `json:"blocks_allocated"`
	BlocksReleased int `json:"blocks_released"`
}

// counters are the cumulative fields of Stats, updated under the heap lock.
type counters struct {
	allocCalls     int
	failedAllocs   int
	freeCalls      int
	invalidFrees   int
	blocksAlloced  int
	blocksReleased int
}

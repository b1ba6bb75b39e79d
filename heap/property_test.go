package heap

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/kheap/internal/format"
)

type liveRun struct {
	addr   Addr
	blocks int
}

// TestRandomOps_NoOverlap drives random alloc/free sequences and checks after
// every step that live runs never share a block and the table stays well formed.
func TestRandomOps_NoOverlap(t *testing.T) {
	seeds := []uint64{1, 7, 42, 1337}
	for _, seed := range seeds {
		rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		h := newTestHeap(t, 128)
		var live []liveRun

		for step := 0; step < 2000; step++ {
			if len(live) > 0 && rng.IntN(3) == 0 {
				i := rng.IntN(len(live))
				require.NoError(t, h.Free(live[i].addr), "seed=%d step=%d", seed, step)
				live = append(live[:i], live[i+1:]...)
			} else {
				size := uint64(rng.IntN(6*format.BlockSize) + 1)
				addr, err := h.Alloc(size)
				if err != nil {
					require.ErrorIs(t, err, ErrOutOfMemory)
					continue
				}
				live = append(live, liveRun{addr: addr, blocks: int(format.BlocksFor(size))})
			}

			require.NoError(t, h.Verify(), "seed=%d step=%d", seed, step)
			assertNoOverlap(t, h, live)
		}

		for _, r := range live {
			require.NoError(t, h.Free(r.addr))
		}
		st := h.Stats()
		assert.Equal(t, st.TotalBlocks, st.FreeBlocks, "seed=%d: everything freed", seed)
		assert.Equal(t, st.BlocksAlloced, st.BlocksReleased)
	}
}

func assertNoOverlap(t *testing.T, h *Heap, live []liveRun) {
	t.Helper()
	owner := make([]int, h.Blocks())
	for i := range owner {
		owner[i] = -1
	}
	for idx, r := range live {
		b := h.AddressToBlock(r.addr)
		for j := b; j < b+r.blocks; j++ {
			require.Less(t, j, h.Blocks(), "run escapes region")
			require.Equal(t, -1, owner[j], "block %d owned by runs %d and %d", j, owner[j], idx)
			owner[j] = idx
		}
	}
	runs := h.Runs()
	require.Len(t, runs, len(live))
}

// TestConcurrentAllocFree checks that parallel callers never receive
// overlapping runs. Run with -race to exercise the locking.
func TestConcurrentAllocFree(t *testing.T) {
	h := newTestHeap(t, 256)

	const workers = 8
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		owned = make(map[int]int)
	)
	claim := func(w, b, n int) {
		mu.Lock()
		defer mu.Unlock()
		for j := b; j < b+n; j++ {
			if other, ok := owned[j]; ok {
				t.Errorf("block %d handed to worker %d while held by %d", j, w, other)
			}
			owned[j] = w
		}
	}
	release := func(b, n int) {
		mu.Lock()
		defer mu.Unlock()
		for j := b; j < b+n; j++ {
			delete(owned, j)
		}
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewPCG(uint64(w), 99))
			for i := 0; i < 500; i++ {
				n := rng.IntN(4) + 1
				addr, err := h.Alloc(uint64(n) * format.BlockSize)
				if err != nil {
					continue
				}
				b := h.AddressToBlock(addr)
				claim(w, b, n)
				release(b, n)
				if err := h.Free(addr); err != nil {
					t.Errorf("free: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	require.NoError(t, h.Verify())
	assert.Equal(t, 256, h.Stats().FreeBlocks)
}

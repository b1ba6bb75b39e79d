package heap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/kheap/heap/table"
	"github.com/joshuapare/kheap/internal/format"
)

// testStart is an arbitrary block-aligned base used by the tests.
const testStart Addr = 0x01000000

// newTestHeap creates a heap of n blocks at testStart.
func newTestHeap(t testing.TB, n int) *Heap {
	t.Helper()
	h, err := Create(testStart, testStart+Addr(n)*format.BlockSize, table.New(make([]byte, n)))
	require.NoError(t, err)
	return h
}

// requireTable asserts the exact entry sequence of the heap's table.
func requireTable(t testing.TB, h *Heap, want ...table.Entry) {
	t.Helper()
	require.Equal(t, want, h.Snapshot())
}

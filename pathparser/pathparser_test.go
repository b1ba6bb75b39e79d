package pathparser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/kheap/heap"
	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/kheap"
	"github.com/joshuapare/kheap/physmem"
)

func newTestHeap(t *testing.T, blocks uint64) *kheap.KernelHeap {
	t.Helper()
	cfg := kheap.Config{
		HeapAddress:  0x100000,
		HeapSize:     blocks * format.BlockSize,
		TableAddress: format.DefaultTableAddress,
	}
	k, err := kheap.Init(physmem.FromBytes(make([]byte, cfg.MemorySize())), cfg)
	require.NoError(t, err)
	return k
}

func TestParse(t *testing.T) {
	tests := []struct {
		path  string
		drive int
		parts []string
	}{
		{"0:/bin/shell.exe", 0, []string{"bin", "shell.exe"}},
		{"1:/", 1, []string{}},
		{"2:/a", 2, []string{"a"}},
		{"3:/a/b/c/", 3, []string{"a", "b", "c"}},
		{"0:/a//b", 0, []string{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			k := newTestHeap(t, 8)
			p, err := Parse(k, tt.path)
			require.NoError(t, err)

			assert.Equal(t, tt.drive, p.Drive)
			parts, err := p.Parts()
			require.NoError(t, err)
			assert.Equal(t, tt.parts, parts)
			assert.Equal(t, len(tt.parts), k.Heap().Stats().LiveRuns, "one buffer per part")

			require.NoError(t, p.Free())
			assert.Equal(t, 0, k.Heap().Stats().LiveRuns)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	k := newTestHeap(t, 4)

	for _, bad := range []string{"", "0:", "a:/x", "0/x", "0:\\x", "10:/x"} {
		_, err := Parse(k, bad)
		assert.ErrorIs(t, err, ErrBadPath, "path %q", bad)
	}

	_, err := Parse(k, "0:/"+strings.Repeat("a", format.MaxPath))
	assert.ErrorIs(t, err, ErrPathTooLong)
	assert.Equal(t, 0, k.Heap().Stats().LiveRuns)
}

func TestParse_OutOfMemoryReleasesParts(t *testing.T) {
	k := newTestHeap(t, 2)

	_, err := Parse(k, "0:/a/b/c")
	require.ErrorIs(t, err, heap.ErrOutOfMemory)
	assert.Equal(t, 0, k.Heap().Stats().LiveRuns, "partial parse must not leak")
}

func TestPathString(t *testing.T) {
	k := newTestHeap(t, 4)
	p, err := Parse(k, "0:/usr/lib/")
	require.NoError(t, err)
	defer p.Free()

	assert.Equal(t, "0:/usr/lib", p.String())
	assert.Equal(t, 2, p.Len())

	s, err := p.Part(1)
	require.NoError(t, err)
	assert.Equal(t, "lib", s)

	_, err = p.Part(2)
	require.Error(t, err)
}

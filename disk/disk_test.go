package disk

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/kheap/heap"
	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/kheap"
	"github.com/joshuapare/kheap/physmem"
)

// testImage returns n sectors where every byte is its offset modulo 251.
func testImage(n int) []byte {
	img := make([]byte, n*format.SectorSize)
	for i := range img {
		img[i] = byte(i % 251)
	}
	return img
}

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

func TestReadBlock(t *testing.T) {
	img := testImage(4)
	d := FromBytes(img)
	assert.Equal(t, int64(4), d.Sectors())
	assert.Equal(t, TypeReal, d.Type)

	out := make([]byte, 2*format.SectorSize)
	require.NoError(t, d.ReadBlock(1, 2, out))
	assert.Equal(t, img[format.SectorSize:3*format.SectorSize], out)

	require.ErrorIs(t, d.ReadBlock(3, 2, out), ErrIO)
	require.ErrorIs(t, d.ReadBlock(0, 0, out), ErrIO)
	require.ErrorIs(t, d.ReadBlock(0, 3, out), ErrIO)
}

func TestOpenImageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	img := testImage(2)
	require.NoError(t, os.WriteFile(path, img, 0o644))

	d, err := Open(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, d.Close()) }()

	out := make([]byte, format.SectorSize)
	require.NoError(t, d.ReadBlock(1, 1, out))
	assert.Equal(t, img[format.SectorSize:], out)

	_, err = Open(filepath.Join(t.TempDir(), "missing.img"))
	require.Error(t, err)
}

func TestSetGet(t *testing.T) {
	d := FromBytes(testImage(1))
	s := NewSet(d)
	assert.Same(t, d, s.Get(0))
	assert.Nil(t, s.Get(1))
	assert.Nil(t, s.Get(-1))
}

func TestStream_ReadAcrossSectors(t *testing.T) {
	k := newTestHeap(t, 4)
	img := testImage(4)

	st, err := NewStream(NewSet(FromBytes(img)), 0, k)
	require.NoError(t, err)
	assert.Equal(t, 1, k.Heap().Stats().LiveRuns, "sector buffer lives in the kernel heap")

	_, err = st.Seek(500, io.SeekStart)
	require.NoError(t, err)

	got := make([]byte, 600)
	n, err := st.Read(got)
	require.NoError(t, err)
	assert.Equal(t, 600, n)
	assert.Equal(t, img[500:1100], got)
	assert.Equal(t, int64(1100), st.Position())

	require.NoError(t, st.Close())
	require.NoError(t, st.Close())
	assert.Equal(t, 0, k.Heap().Stats().LiveRuns)

	_, err = st.Read(got)
	require.Error(t, err)
}

func TestStream_EOF(t *testing.T) {
	k := newTestHeap(t, 1)
	img := testImage(2)
	st, err := NewStream(NewSet(FromBytes(img)), 0, k)
	require.NoError(t, err)
	defer st.Close()

	pos, err := st.Seek(-10, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(len(img)-10), pos)

	got := make([]byte, 64)
	n, err := st.Read(got)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, img[len(img)-10:], got[:n])

	_, err = st.Read(got)
	assert.ErrorIs(t, err, io.EOF)

	all, err := func() ([]byte, error) {
		if _, err := st.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return io.ReadAll(st)
	}()
	require.NoError(t, err)
	assert.Equal(t, img, all)
}

func TestStream_SeekErrors(t *testing.T) {
	k := newTestHeap(t, 1)
	st, err := NewStream(NewSet(FromBytes(testImage(1))), 0, k)
	require.NoError(t, err)
	defer st.Close()

	_, err = st.Seek(-1, io.SeekStart)
	require.Error(t, err)
	_, err = st.Seek(0, 42)
	require.Error(t, err)
	pos, err := st.Seek(8, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(8), pos)
}

func TestNewStream_Errors(t *testing.T) {
	k := newTestHeap(t, 1)
	set := NewSet(FromBytes(testImage(1)))

	_, err := NewStream(set, 1, k)
	require.ErrorIs(t, err, ErrInvalidDisk)

	// exhaust the heap so the sector buffer cannot be allocated
	_, err = k.Zalloc(format.BlockSize)
	require.NoError(t, err)
	_, err = NewStream(set, 0, k)
	require.ErrorIs(t, err, heap.ErrOutOfMemory)
}

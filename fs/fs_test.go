package fs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/kheap/disk"
	"github.com/joshuapare/kheap/heap"
	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/kheap"
	"github.com/joshuapare/kheap/physmem"
)

type fakeFS struct {
	name  string
	magic byte
}

func (f fakeFS) Name() string { return f.name }

func (f fakeFS) Resolve(d *disk.Disk) error {
	sector := make([]byte, d.SectorSize)
	if err := d.ReadBlock(0, 1, sector); err != nil {
		return err
	}
	if sector[0] != f.magic {
		return errors.New("not mine")
	}
	return nil
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

func TestResolve(t *testing.T) {
	tbl := New(newTestHeap(t, 4))
	require.NoError(t, tbl.Register(fakeFS{"fat16", 0xEB}))
	require.NoError(t, tbl.Register(fakeFS{"ext2", 0x53}))

	img := make([]byte, format.SectorSize*2)
	img[0] = 0x53
	fs, err := tbl.Resolve(disk.FromBytes(img))
	require.NoError(t, err)
	assert.Equal(t, "ext2", fs.Name())

	img[0] = 0
	_, err = tbl.Resolve(disk.FromBytes(img))
	assert.ErrorIs(t, err, ErrNoFilesystem)
}

func TestRegisterLimit(t *testing.T) {
	tbl := New(newTestHeap(t, 1))
	for i := 0; i < format.MaxFilesystems; i++ {
		require.NoError(t, tbl.Register(fakeFS{name: fmt.Sprintf("fs%d", i)}))
	}
	assert.ErrorIs(t, tbl.Register(fakeFS{name: "extra"}), ErrNoFreeSlot)
	assert.Len(t, tbl.Filesystems(), format.MaxFilesystems)
}

func TestDescriptors(t *testing.T) {
	k := newTestHeap(t, 4)
	tbl := New(k)

	d1, err := tbl.NewDescriptor(nil)
	require.NoError(t, err)
	d2, err := tbl.NewDescriptor(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, d1.Index)
	assert.Equal(t, 2, d2.Index)
	assert.NotEqual(t, d1.Record(), d2.Record())

	got, err := tbl.Descriptor(2)
	require.NoError(t, err)
	assert.Same(t, d2, got)

	require.NoError(t, tbl.CloseDescriptor(1))
	_, err = tbl.Descriptor(1)
	assert.ErrorIs(t, err, ErrBadDescriptor)
	assert.ErrorIs(t, tbl.CloseDescriptor(1), ErrBadDescriptor)

	d3, err := tbl.NewDescriptor(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, d3.Index, "lowest free slot is reused")

	for _, fd := range []int{0, -1, format.MaxFileDescriptors + 1} {
		_, err := tbl.Descriptor(fd)
		assert.ErrorIs(t, err, ErrBadDescriptor, "fd %d", fd)
	}
}

func TestDescriptorOutOfMemory(t *testing.T) {
	k := newTestHeap(t, 2)
	tbl := New(k)

	_, err := tbl.NewDescriptor(nil)
	require.NoError(t, err)
	_, err = tbl.NewDescriptor(nil)
	require.NoError(t, err)
	_, err = tbl.NewDescriptor(nil)
	assert.ErrorIs(t, err, heap.ErrOutOfMemory)
}

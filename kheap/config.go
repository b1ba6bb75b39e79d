package kheap

import (
	"fmt"

	"github.com/joshuapare/kheap/heap"
	"github.com/joshuapare/kheap/internal/buf"
	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/physmem"
)

// Config is the boot layout of the kernel heap: where its block table and
// its data region sit in physical memory.
type Config struct {
	// HeapAddress is the base of the data region. Must be block aligned.
	HeapAddress uint64

	// HeapSize is the length of the data region. Must be a whole number of blocks.
	HeapSize uint64

	// TableAddress is where the block table lives, one byte per block.
	// It has no alignment requirement.
	TableAddress uint64
}

// DefaultConfig is the classic layout: a 100 MiB heap at 16 MiB with its table
// in the conventional memory just past the boot sector.
var DefaultConfig = Config{
	HeapAddress:  format.DefaultHeapAddress,
	HeapSize:     format.DefaultHeapSize,
	TableAddress: format.DefaultTableAddress,
}

// Blocks returns the number of blocks in the data region.
func (c Config) Blocks() uint64 { return c.HeapSize / format.BlockSize }

// TableSize returns the size of the block table region in bytes.
func (c Config) TableSize() uint64 { return c.Blocks() * format.EntrySize }

// HeapEnd returns the first address past the data region.
func (c Config) HeapEnd() uint64 { return c.HeapAddress + c.HeapSize }

// MemorySize returns the smallest physical memory that holds the table, the
// data region and the VGA text buffer.
func (c Config) MemorySize() uint64 {
	size := uint64(format.VideoMemoryAddress + format.VGAWidth*format.VGAHeight*2)
	size = max(size, c.TableAddress+c.TableSize())
	size = max(size, c.HeapEnd())
	return size
}

// Validate checks the layout against a physical memory of memSize bytes.
func (c Config) Validate(memSize uint64) error {
	if c.HeapSize == 0 {
		return fmt.Errorf("%w: empty heap", heap.ErrInvalidArgument)
	}
	if _, ok := buf.AddU64(c.HeapAddress, c.HeapSize); !ok {
		return fmt.Errorf("%w: heap range wraps", heap.ErrInvalidArgument)
	}
	if !format.IsBlockAligned(c.HeapAddress) || !format.IsBlockAligned(c.HeapEnd()) {
		return fmt.Errorf("%w: heap [0x%X, 0x%X)", heap.ErrMisalignedRegion, c.HeapAddress, c.HeapEnd())
	}
	if buf.Overlaps(c.TableAddress, c.TableSize(), c.HeapAddress, c.HeapSize) {
		return fmt.Errorf("%w: table [0x%X, 0x%X) and heap [0x%X, 0x%X)",
			ErrOverlap, c.TableAddress, c.TableAddress+c.TableSize(), c.HeapAddress, c.HeapEnd())
	}
	if _, ok := buf.Window(0, memSize, c.TableAddress, c.TableSize()); !ok {
		return fmt.Errorf("%w: table does not fit in %d bytes", physmem.ErrOutOfRange, memSize)
	}
	if _, ok := buf.Window(0, memSize, c.HeapAddress, c.HeapSize); !ok {
		return fmt.Errorf("%w: heap does not fit in %d bytes", physmem.ErrOutOfRange, memSize)
	}
	return nil
}

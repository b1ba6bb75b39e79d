// Package format holds the fixed layout constants shared by the allocator and
// the low-level collaborators that sit on top of it. Nothing in here touches
// memory; it only describes where things live and how big they are.
package format

const (
	// BlockSize is the allocation granularity of the block heap. Every run
	// handed out by the heap is a whole number of blocks.
	BlockSize = 4096

	// BlockAlignmentMask is BlockSize-1, used for round-up arithmetic.
	BlockAlignmentMask = BlockSize - 1

	// EntrySize is the size of one block table record in bytes.
	EntrySize = 1
)

// Block table entry bits. These are independent flags, not an enumeration:
// a taken block may be first of its run, continue into the next block, both,
// or neither.
const (
	// EntryFree is the value of an entry describing an unused block.
	EntryFree byte = 0x00

	// EntryTaken marks the block as part of a live allocation.
	EntryTaken byte = 0x01

	// EntryIsFirst marks the block that begins an allocation run.
	EntryIsFirst byte = 0x40

	// EntryHasNext marks that the following block belongs to the same run.
	EntryHasNext byte = 0x80

	// EntryTypeMask selects the low nibble holding the taken/free state.
	EntryTypeMask byte = 0x0f
)

// Default boot layout of the kernel heap.
const (
	// DefaultHeapSize is the size of the kernel data region (100 MiB).
	DefaultHeapSize = 104857600

	// DefaultHeapAddress is the physical base address of the kernel data region.
	DefaultHeapAddress = 0x01000000

	// DefaultTableAddress is the physical address of the block table. One byte
	// per block, so the default table occupies 25600 bytes.
	DefaultTableAddress = 0x00007E00
)

// Collaborator constants.
const (
	// SectorSize is the size of one disk sector read by the ATA PIO reader.
	SectorSize = 512

	// MaxPath is the longest path accepted by the path parser.
	MaxPath = 108

	// VideoMemoryAddress is the physical address of the VGA text buffer.
	VideoMemoryAddress = 0xB8000

	// VGAWidth and VGAHeight are the text-mode screen dimensions in cells.
	VGAWidth  = 80
	VGAHeight = 25

	// MaxFilesystems is the size of the filesystem registry.
	MaxFilesystems = 12

	// MaxFileDescriptors is the size of the descriptor table.
	MaxFileDescriptors = 512
)

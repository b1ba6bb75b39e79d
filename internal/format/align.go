package format

// Alignment utilities for the block heap.

// AlignBlock returns n aligned up to the next block boundary.
//
// Example:
//
//	AlignBlock(1)    = 4096
//	AlignBlock(4096) = 4096
//	AlignBlock(5000) = 8192
func AlignBlock(n uint64) uint64 {
	return (n + BlockAlignmentMask) &^ BlockAlignmentMask
}

// IsBlockAligned reports whether addr sits on a block boundary.
func IsBlockAligned(addr uint64) bool {
	return addr&BlockAlignmentMask == 0
}

// BlocksFor returns the number of blocks needed to hold n bytes.
func BlocksFor(n uint64) uint64 {
	return AlignBlock(n) / BlockSize
}

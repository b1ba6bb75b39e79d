// Package table implements the block table: a side array holding one state
// record per block of a heap's data region.
//
// The table never points into the data region. Entry i describes the block at
// start + i*BlockSize of whichever region the owning heap manages, and the
// table itself has no idea where that is.
package table

import (
	"fmt"

	"github.com/joshuapare/kheap/internal/format"
)

// Table is a view over externally owned entry storage. The storage is
// typically a reserved window of physical memory; the table mutates it in
// place and never reallocates it.
type Table struct {
	entries []byte
}

// New wraps entries as a block table. The slice length is the block count.
func New(entries []byte) *Table {
	return &Table{entries: entries}
}

// Len returns the number of blocks described by the table.
func (t *Table) Len() int { return len(t.entries) }

// At returns the entry for block i.
func (t *Table) At(i int) Entry { return Entry(t.entries[i]) }

// Set stores e as the entry for block i.
func (t *Table) Set(i int, e Entry) { t.entries[i] = byte(e) }

// Reset marks every block free.
func (t *Table) Reset() {
	for i := range t.entries {
		t.entries[i] = format.EntryFree
	}
}

// Snapshot returns a copy of all entries.
func (t *Table) Snapshot() []Entry {
	out := make([]Entry, len(t.entries))
	for i, b := range t.entries {
		out[i] = Entry(b)
	}
	return out
}

// Validate checks that t has exactly one entry per block of a range that is
// rangeSize bytes long.
func Validate(rangeSize uint64, t *Table) error {
	if t == nil {
		return fmt.Errorf("%w: nil table", ErrSizeMismatch)
	}
	want := rangeSize / format.BlockSize
	if uint64(t.Len()) != want {
		return fmt.Errorf("%w: have %d entries, range needs %d", ErrSizeMismatch, t.Len(), want)
	}
	return nil
}

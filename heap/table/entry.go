package table

import (
	"strings"

	"github.com/joshuapare/kheap/internal/format"
)

// Entry is the one-byte state record of a single block.
type Entry byte

// Entry flags. Combine with bitwise OR.
const (
	Free    = Entry(format.EntryFree)
	Taken   = Entry(format.EntryTaken)
	IsFirst = Entry(format.EntryIsFirst)
	HasNext = Entry(format.EntryHasNext)
)

// IsFree reports whether the block is unused. Only the type nibble is
// consulted; the run flags are meaningless on a free block.
func (e Entry) IsFree() bool { return byte(e)&format.EntryTypeMask == format.EntryFree }

// IsTaken reports whether the block belongs to a live allocation.
func (e Entry) IsTaken() bool { return byte(e)&format.EntryTypeMask == format.EntryTaken }

// IsFirst reports whether the block begins an allocation run.
func (e Entry) IsFirst() bool { return e&IsFirst != 0 }

// HasNext reports whether the next block continues the same run.
func (e Entry) HasNext() bool { return e&HasNext != 0 }

// String renders the entry as its set flags, e.g. "TAKEN|IS_FIRST|HAS_NEXT".
func (e Entry) String() string {
	if e == Free {
		return "FREE"
	}
	var parts []string
	if e.IsTaken() {
		parts = append(parts, "TAKEN")
	} else if !e.IsFree() {
		parts = append(parts, "INVALID")
	}
	if e.IsFirst() {
		parts = append(parts, "IS_FIRST")
	}
	if e.HasNext() {
		parts = append(parts, "HAS_NEXT")
	}
	if len(parts) == 0 {
		return "FREE"
	}
	return strings.Join(parts, "|")
}

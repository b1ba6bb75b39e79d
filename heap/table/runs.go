package table

import "fmt"

// Run is a maximal chain of taken blocks starting at an IS_FIRST entry.
type Run struct {
	Start  int // index of the IS_FIRST entry
	Blocks int // number of blocks in the chain
}

// Runs walks the table and returns every allocation run in index order.
// It assumes a well-formed table; use Check first when that is in doubt.
func (t *Table) Runs() []Run {
	var runs []Run
	for i := 0; i < t.Len(); {
		e := t.At(i)
		if !e.IsTaken() {
			i++
			continue
		}
		start := i
		for i < t.Len() {
			cur := t.At(i)
			i++
			if !cur.HasNext() {
				break
			}
		}
		runs = append(runs, Run{Start: start, Blocks: i - start})
	}
	return runs
}

// FreeBlocks returns the number of free entries and the length of the
// longest stretch of consecutive free entries.
func (t *Table) FreeBlocks() (total, largest int) {
	cur := 0
	for i := 0; i < t.Len(); i++ {
		if !t.At(i).IsFree() {
			cur = 0
			continue
		}
		total++
		cur++
		if cur > largest {
			largest = cur
		}
	}
	return total, largest
}

// Check verifies the run-shape invariant: every run of taken entries begins
// with exactly one IS_FIRST entry, every entry of the run except the last
// carries HAS_NEXT, and free entries carry no flags.
func Check(t *Table) error {
	inRun := false
	for i := 0; i < t.Len(); i++ {
		e := t.At(i)
		switch {
		case e.IsFree():
			if e != Free {
				return &ValidationError{
					Type:    "FreeEntry",
					Message: fmt.Sprintf("free entry carries flags %s (0x%02X)", e, byte(e)),
					Index:   i,
				}
			}
			if inRun {
				return &ValidationError{
					Type:    "RunChain",
					Message: "HAS_NEXT on previous entry points at a free block",
					Index:   i,
				}
			}
		case e.IsTaken():
			if !inRun && !e.IsFirst() {
				return &ValidationError{
					Type:    "RunStart",
					Message: "taken block starts a run without IS_FIRST",
					Index:   i,
				}
			}
			if inRun && e.IsFirst() {
				return &ValidationError{
					Type:    "RunChain",
					Message: "IS_FIRST inside a run",
					Index:   i,
				}
			}
			inRun = e.HasNext()
		default:
			return &ValidationError{
				Type:    "EntryType",
				Message: fmt.Sprintf("unknown entry type 0x%02X", byte(e)),
				Index:   i,
			}
		}
	}
	if inRun {
		return &ValidationError{
			Type:    "RunChain",
			Message: "last entry carries HAS_NEXT past the end of the table",
			Index:   t.Len() - 1,
		}
	}
	return nil
}

package table

import (
	"errors"
	"fmt"
)

// ErrSizeMismatch indicates the table length does not match the range it describes.
var ErrSizeMismatch = errors.New("table: entry count does not match range size")

// ValidationError describes a run-shape violation found by Check.
type ValidationError struct {
	Type    string
	Message string
	Index   int
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s at block %d: %s", e.Type, e.Index, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

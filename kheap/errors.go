package kheap

import "errors"

// ErrOverlap indicates that the block table and the data region share bytes.
var ErrOverlap = errors.New("kheap: table and heap regions overlap")

package disk

import "errors"

var (
	// ErrIO indicates a sector read that the disk cannot satisfy.
	ErrIO = errors.New("disk: i/o error")

	// ErrInvalidDisk indicates a request for a disk that does not exist.
	ErrInvalidDisk = errors.New("disk: no such disk")
)

package heap

import "errors"

var (
	// ErrInvalidArgument indicates malformed construction parameters or a request
	// the heap cannot express (such as a zero-byte allocation).
	ErrInvalidArgument = errors.New("heap: invalid argument")

	// ErrMisalignedRegion indicates a region start or end that is not block aligned.
	ErrMisalignedRegion = errors.New("heap: region not block aligned")

	// ErrOutOfMemory indicates that no free run large enough was found.
	ErrOutOfMemory = errors.New("heap: out of memory")

	// ErrInvalidFree indicates an attempt to free an address that does not start
	// a live allocation.
	ErrInvalidFree = errors.New("heap: invalid free")
)

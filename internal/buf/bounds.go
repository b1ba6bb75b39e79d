package buf

import (
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// AddU64 adds a and b, returning ok = false when the result would wrap.
func AddU64(a, b uint64) (uint64, bool) {
	if a > math.MaxUint64-b {
		return 0, false
	}
	return a + b, true
}

// Window translates the address range [addr, addr+n) into offsets of a window
// that starts at base and is size bytes long. ok is false when any part of the
// range falls outside the window or the arithmetic would wrap.
func Window(base, size, addr, n uint64) (int, bool) {
	if addr < base {
		return 0, false
	}
	off := addr - base
	end, ok := AddU64(off, n)
	if !ok || end > size || end > math.MaxInt {
		return 0, false
	}
	return int(off), true
}

// Overlaps reports whether [a, a+an) and [b, b+bn) share at least one byte.
// Empty ranges never overlap.
func Overlaps(a, an, b, bn uint64) bool {
	if an == 0 || bn == 0 {
		return false
	}
	return a < b+bn && b < a+an
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off, n int) bool {
	_, ok := Slice(b, off, n)
	return ok
}

// Package physmem simulates the flat physical address space the kernel runs
// in. Address 0 maps to the first byte of the backing store; the heap table,
// the heap data region and the VGA text buffer are all windows into it.
package physmem

import (
	"errors"
	"fmt"

	"github.com/joshuapare/kheap/internal/buf"
	"github.com/joshuapare/kheap/internal/mmfile"
)

// ErrOutOfRange indicates an access outside the simulated memory.
var ErrOutOfRange = errors.New("physmem: address range out of bounds")

// Memory is a byte-addressable physical memory of fixed size.
type Memory struct {
	data    []byte
	release func() error
}

// New reserves size bytes of zeroed memory backed by an anonymous mapping.
// Call Close to release it.
func New(size uint64) (*Memory, error) {
	if size == 0 || size > uint64(^uint(0)>>1) {
		return nil, fmt.Errorf("physmem: invalid size %d", size)
	}
	data, release, err := mmfile.MapAnon(int(size))
	if err != nil {
		return nil, err
	}
	return &Memory{data: data, release: release}, nil
}

// FromBytes wraps an existing buffer as physical memory starting at address 0.
func FromBytes(b []byte) *Memory {
	return &Memory{data: b}
}

// Size returns the number of addressable bytes.
func (m *Memory) Size() uint64 { return uint64(len(m.data)) }

// Slice returns the n bytes at addr. The slice aliases the memory.
func (m *Memory) Slice(addr, n uint64) ([]byte, error) {
	off, ok := buf.Window(0, m.Size(), addr, n)
	if !ok {
		return nil, fmt.Errorf("%w: [0x%X, +%d) in %d bytes", ErrOutOfRange, addr, n, m.Size())
	}
	return m.data[off : off+int(n)], nil
}

// Set fills n bytes at addr with c.
func (m *Memory) Set(addr uint64, c byte, n uint64) error {
	b, err := m.Slice(addr, n)
	if err != nil {
		return err
	}
	if c == 0 {
		clear(b)
		return nil
	}
	for i := range b {
		b[i] = c
	}
	return nil
}

// Write copies p to addr.
func (m *Memory) Write(addr uint64, p []byte) error {
	b, err := m.Slice(addr, uint64(len(p)))
	if err != nil {
		return err
	}
	copy(b, p)
	return nil
}

// Read copies len(p) bytes from addr into p.
func (m *Memory) Read(addr uint64, p []byte) error {
	b, err := m.Slice(addr, uint64(len(p)))
	if err != nil {
		return err
	}
	copy(p, b)
	return nil
}

// Close releases the backing mapping. Memory obtained through FromBytes has
// nothing to release.
func (m *Memory) Close() error {
	if m.release == nil {
		return nil
	}
	err := m.release()
	m.release = nil
	m.data = nil
	return err
}

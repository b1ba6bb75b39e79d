// Package pathparser splits drive-qualified paths such as "0:/bin/shell.exe"
// into a drive number and path parts. Each part is stored in its own buffer
// in kernel memory, the way the rest of the kernel expects to find strings.
package pathparser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/joshuapare/kheap/heap"
	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/kheap"
)

var (
	// ErrBadPath indicates a path that does not start with "<digit>:/".
	ErrBadPath = errors.New("pathparser: bad path")

	// ErrPathTooLong indicates a path longer than format.MaxPath bytes.
	ErrPathTooLong = errors.New("pathparser: path too long")
)

// part is one path component held in kernel memory.
type part struct {
	addr heap.Addr
	n    int
}

// Path is a parsed path. Call Free to release its parts.
type Path struct {
	Drive int

	alloc kheap.Allocator
	parts []part
}

// Parse validates path and copies each of its components into kernel memory
// allocated from alloc. Parsing stops at the first empty component, so
// "0:/a//b" yields only "a".
func Parse(alloc kheap.Allocator, path string) (*Path, error) {
	if len(path) > format.MaxPath {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPathTooLong, len(path), format.MaxPath)
	}
	if !validFormat(path) {
		return nil, fmt.Errorf("%w: %q", ErrBadPath, path)
	}

	p := &Path{
		Drive: int(path[0] - '0'),
		alloc: alloc,
	}

	rest := path[3:]
	for {
		name, next := nextPart(rest)
		if name == "" {
			break
		}
		if err := p.appendPart(name); err != nil {
			return nil, errors.Join(err, p.Free())
		}
		rest = next
	}
	return p, nil
}

func validFormat(path string) bool {
	return len(path) >= 3 && path[0] >= '0' && path[0] <= '9' && path[1:3] == ":/"
}

// nextPart returns the component at the start of s and the remainder after
// its trailing slash.
func nextPart(s string) (string, string) {
	i := strings.IndexByte(s, '/')
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}

func (p *Path) appendPart(name string) error {
	addr, err := p.alloc.Zalloc(format.MaxPath)
	if err != nil {
		return fmt.Errorf("pathparser: allocate part %q: %w", name, err)
	}
	b, err := p.alloc.Bytes(addr, uint64(len(name)))
	if err != nil {
		return errors.Join(err, p.alloc.Free(addr))
	}
	copy(b, name)
	p.parts = append(p.parts, part{addr: addr, n: len(name)})
	return nil
}

// Len returns the number of parts.
func (p *Path) Len() int { return len(p.parts) }

// Part returns component i, read back from kernel memory.
func (p *Path) Part(i int) (string, error) {
	if i < 0 || i >= len(p.parts) {
		return "", fmt.Errorf("pathparser: part %d out of range", i)
	}
	b, err := p.alloc.Bytes(p.parts[i].addr, uint64(p.parts[i].n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Parts returns every component in order.
func (p *Path) Parts() ([]string, error) {
	out := make([]string, 0, len(p.parts))
	for i := range p.parts {
		s, err := p.Part(i)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// String renders the path in canonical form.
func (p *Path) String() string {
	parts, err := p.Parts()
	if err != nil {
		return strconv.Itoa(p.Drive) + ":/<unreadable>"
	}
	return strconv.Itoa(p.Drive) + ":/" + strings.Join(parts, "/")
}

// Free releases every part buffer. The Path must not be used afterwards.
func (p *Path) Free() error {
	var errs []error
	for _, pt := range p.parts {
		if err := p.alloc.Free(pt.addr); err != nil {
			errs = append(errs, err)
		}
	}
	p.parts = nil
	return errors.Join(errs...)
}

// Package fs keeps the table of registered filesystems and the open file
// descriptor table. No concrete filesystem is bundled; callers register
// their own drivers.
package fs

import (
	"errors"
	"fmt"
	"sync"

	"github.com/joshuapare/kheap/disk"
	"github.com/joshuapare/kheap/heap"
	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/internal/logger"
	"github.com/joshuapare/kheap/kheap"
)

var (
	// ErrNoFreeSlot is returned when a table has no room left.
	ErrNoFreeSlot = errors.New("fs: no free slot")

	// ErrNoFilesystem is returned when no registered filesystem claims a disk.
	ErrNoFilesystem = errors.New("fs: no filesystem recognizes disk")

	// ErrBadDescriptor is returned for an unknown or closed descriptor.
	ErrBadDescriptor = errors.New("fs: bad file descriptor")
)

// Filesystem is a driver that can recognize a disk.
type Filesystem interface {
	Name() string
	// Resolve returns nil when the driver understands the disk's layout.
	Resolve(d *disk.Disk) error
}

// Descriptor is an open file. Its record lives in kernel memory.
type Descriptor struct {
	Index  int
	FS     Filesystem
	record heap.Addr
}

// Record returns the kernel address of the descriptor's record.
func (d *Descriptor) Record() heap.Addr { return d.record }

// descriptorRecordSize is the kernel allocation backing each descriptor.
const descriptorRecordSize = 16

// Table is the filesystem registry plus the descriptor table.
type Table struct {
	mu          sync.Mutex
	alloc       kheap.Allocator
	filesystems [format.MaxFilesystems]Filesystem
	descriptors [format.MaxFileDescriptors]*Descriptor
}

// New returns an empty table whose descriptor records come from alloc.
func New(alloc kheap.Allocator) *Table {
	return &Table{alloc: alloc}
}

// Register adds fs to the first free registry slot.
func (t *Table) Register(fs Filesystem) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, slot := range t.filesystems {
		if slot == nil {
			t.filesystems[i] = fs
			logger.Debug("filesystem registered", "name", fs.Name(), "slot", i)
			return nil
		}
	}
	return fmt.Errorf("%w: filesystem %q (limit %d)", ErrNoFreeSlot, fs.Name(), format.MaxFilesystems)
}

// Filesystems returns the registered drivers in slot order.
func (t *Table) Filesystems() []Filesystem {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Filesystem
	for _, fs := range t.filesystems {
		if fs != nil {
			out = append(out, fs)
		}
	}
	return out
}

// Resolve returns the first registered filesystem that recognizes d.
func (t *Table) Resolve(d *disk.Disk) (Filesystem, error) {
	for _, fs := range t.Filesystems() {
		if err := fs.Resolve(d); err == nil {
			return fs, nil
		}
	}
	return nil, ErrNoFilesystem
}

// NewDescriptor takes the lowest free descriptor. Indices start at 1.
func (t *Table) NewDescriptor(fs Filesystem) (*Descriptor, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, slot := range t.descriptors {
		if slot != nil {
			continue
		}
		addr, err := t.alloc.Zalloc(descriptorRecordSize)
		if err != nil {
			return nil, fmt.Errorf("fs: allocate descriptor: %w", err)
		}
		desc := &Descriptor{Index: i + 1, FS: fs, record: addr}
		t.descriptors[i] = desc
		return desc, nil
	}
	return nil, fmt.Errorf("%w: descriptors (limit %d)", ErrNoFreeSlot, format.MaxFileDescriptors)
}

// Descriptor looks up fd.
func (t *Table) Descriptor(fd int) (*Descriptor, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lookup(fd)
}

func (t *Table) lookup(fd int) (*Descriptor, error) {
	if fd < 1 || fd > format.MaxFileDescriptors {
		return nil, fmt.Errorf("%w: %d", ErrBadDescriptor, fd)
	}
	desc := t.descriptors[fd-1]
	if desc == nil {
		return nil, fmt.Errorf("%w: %d", ErrBadDescriptor, fd)
	}
	return desc, nil
}

// CloseDescriptor releases fd and its kernel record.
func (t *Table) CloseDescriptor(fd int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	desc, err := t.lookup(fd)
	if err != nil {
		return err
	}
	t.descriptors[fd-1] = nil
	return t.alloc.Free(desc.record)
}

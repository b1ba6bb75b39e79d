// Package disk reads sectors from the primary ATA disk and layers a byte
// stream over it. The disk is backed by an image file mapped read-only.
package disk

import (
	"fmt"

	"github.com/joshuapare/kheap/internal/buf"
	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/internal/mmfile"
)

// Type identifies the kind of device behind a Disk.
type Type uint32

// TypeReal is a physical hard disk.
const TypeReal Type = 0

// Disk is a sector-addressed block device.
type Disk struct {
	Type       Type
	SectorSize int

	data    []byte
	release func() error
}

// Open maps the disk image at path.
func Open(path string) (*Disk, error) {
	data, release, err := mmfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("disk: open %s: %w", path, err)
	}
	d := FromBytes(data)
	d.release = release
	return d, nil
}

// FromBytes wraps an in-memory image as a disk.
func FromBytes(data []byte) *Disk {
	return &Disk{
		Type:       TypeReal,
		SectorSize: format.SectorSize,
		data:       data,
	}
}

// Size returns the image size in bytes.
func (d *Disk) Size() int64 { return int64(len(d.data)) }

// Sectors returns the number of whole sectors on the disk.
func (d *Disk) Sectors() int64 { return d.Size() / int64(d.SectorSize) }

// ReadBlock reads total sectors starting at lba into out.
func (d *Disk) ReadBlock(lba uint32, total int, out []byte) error {
	if total <= 0 {
		return fmt.Errorf("%w: sector count %d", ErrIO, total)
	}
	n := total * d.SectorSize
	if len(out) < n {
		return fmt.Errorf("%w: buffer of %d bytes for %d sectors", ErrIO, len(out), total)
	}
	if int64(lba)+int64(total) > d.Sectors() {
		return fmt.Errorf("%w: sectors [%d, %d) past end of disk (%d sectors)", ErrIO, lba, int64(lba)+int64(total), d.Sectors())
	}
	src, ok := buf.Slice(d.data, int(lba)*d.SectorSize, n)
	if !ok {
		return fmt.Errorf("%w: lba %d out of range", ErrIO, lba)
	}
	copy(out, src)
	return nil
}

// Close unmaps the image.
func (d *Disk) Close() error {
	if d.release == nil {
		return nil
	}
	err := d.release()
	d.release = nil
	return err
}

// Set holds the disks found at boot. Only the primary disk is supported.
type Set struct {
	primary *Disk
}

// NewSet registers primary as disk 0.
func NewSet(primary *Disk) *Set {
	return &Set{primary: primary}
}

// Get returns disk index, or nil when there is no such disk.
func (s *Set) Get(index int) *Disk {
	if index != 0 {
		return nil
	}
	return s.primary
}

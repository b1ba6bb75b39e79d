package disk

import (
	"errors"
	"fmt"
	"io"

	"github.com/joshuapare/kheap/heap"
	"github.com/joshuapare/kheap/kheap"
)

// Stream reads arbitrary byte ranges from a disk by going through a one
// sector buffer held in kernel memory.
type Stream struct {
	disk   *Disk
	pos    int64
	alloc  kheap.Allocator
	sector heap.Addr
	closed bool
}

// NewStream opens a stream on disk id. The sector buffer is allocated from
// alloc and released by Close.
func NewStream(set *Set, id int, alloc kheap.Allocator) (*Stream, error) {
	d := set.Get(id)
	if d == nil {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDisk, id)
	}
	addr, err := alloc.Zalloc(uint64(d.SectorSize))
	if err != nil {
		return nil, fmt.Errorf("disk: allocate sector buffer: %w", err)
	}
	return &Stream{disk: d, alloc: alloc, sector: addr}, nil
}

// Seek sets the byte position for the next Read.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = s.pos + offset
	case io.SeekEnd:
		pos = s.disk.Size() + offset
	default:
		return s.pos, errors.New("disk: invalid whence")
	}
	if pos < 0 {
		return s.pos, errors.New("disk: negative position")
	}
	s.pos = pos
	return pos, nil
}

// Read fills p from the current position, crossing sector boundaries as
// needed. It returns io.EOF once the end of the disk is reached.
func (s *Stream) Read(p []byte) (int, error) {
	if s.closed {
		return 0, errors.New("disk: stream closed")
	}
	end := s.disk.Sectors() * int64(s.disk.SectorSize)
	if s.pos >= end {
		return 0, io.EOF
	}

	sectorBuf, err := s.alloc.Bytes(s.sector, uint64(s.disk.SectorSize))
	if err != nil {
		return 0, err
	}

	size := int64(s.disk.SectorSize)
	done := 0
	for done < len(p) && s.pos < end {
		lba := s.pos / size
		off := int(s.pos % size)
		if err := s.disk.ReadBlock(uint32(lba), 1, sectorBuf); err != nil {
			return done, err
		}
		n := copy(p[done:], sectorBuf[off:])
		done += n
		s.pos += int64(n)
	}
	return done, nil
}

// Position returns the current byte position.
func (s *Stream) Position() int64 { return s.pos }

// Close releases the sector buffer.
func (s *Stream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.alloc.Free(s.sector)
}

var _ io.ReadSeekCloser = (*Stream)(nil)

// Package console drives the VGA text-mode buffer. Each screen cell is a
// little-endian 16-bit word: the CP437 character in the low byte and the
// attribute (color) in the high byte.
package console

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/joshuapare/kheap/internal/buf"
	"github.com/joshuapare/kheap/internal/format"
	"github.com/joshuapare/kheap/physmem"
)

const (
	// Width and Height are the screen size in cells.
	Width  = format.VGAWidth
	Height = format.VGAHeight

	// DefaultColor is bright white on black.
	DefaultColor byte = 15

	cellSize = 2
)

// Terminal writes characters into video memory, tracking a cursor.
type Terminal struct {
	vram  []byte
	row   int
	col   int
	color byte
}

// New attaches a terminal to the VGA window of mem.
func New(mem *physmem.Memory) (*Terminal, error) {
	vram, err := mem.Slice(format.VideoMemoryAddress, Width*Height*cellSize)
	if err != nil {
		return nil, err
	}
	return &Terminal{vram: vram, color: DefaultColor}, nil
}

// MakeChar packs a character and attribute into one screen cell.
func MakeChar(c, color byte) uint16 {
	return uint16(color)<<8 | uint16(c)
}

// Initialize blanks the screen and homes the cursor.
func (t *Terminal) Initialize() {
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			t.PutChar(x, y, ' ', 0)
		}
	}
	t.row, t.col = 0, 0
}

// SetColor sets the attribute used by Write.
func (t *Terminal) SetColor(color byte) { t.color = color }

// Cursor returns the current column and row.
func (t *Terminal) Cursor() (x, y int) { return t.col, t.row }

// PutChar writes one cell. Coordinates outside the screen are ignored.
func (t *Terminal) PutChar(x, y int, c, color byte) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return
	}
	off := (y*Width + x) * cellSize
	buf.PutU16LE(t.vram[off:off+cellSize], MakeChar(c, color))
}

// Cell returns the character and attribute at x, y. Coordinates outside the
// screen read as zero.
func (t *Terminal) Cell(x, y int) (c, color byte) {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return 0, 0
	}
	off := (y*Width + x) * cellSize
	v := buf.U16LE(t.vram[off : off+cellSize])
	return byte(v), byte(v >> 8)
}

// WriteChar writes c at the cursor and advances it. '\n' moves to the start
// of the next line. The screen scrolls up when the cursor leaves the last row.
func (t *Terminal) WriteChar(c, color byte) {
	if c == '\n' {
		t.newline()
		return
	}
	t.PutChar(t.col, t.row, c, color)
	t.col++
	if t.col >= Width {
		t.newline()
	}
}

func (t *Terminal) newline() {
	t.col = 0
	t.row++
	if t.row >= Height {
		t.scroll()
		t.row = Height - 1
	}
}

func (t *Terminal) scroll() {
	rowBytes := Width * cellSize
	copy(t.vram, t.vram[rowBytes:])
	for x := 0; x < Width; x++ {
		t.PutChar(x, Height-1, ' ', 0)
	}
}

// Write encodes p from UTF-8 to code page 437 and prints it with the current
// color. Runes with no CP437 form are shown as '?'.
func (t *Terminal) Write(p []byte) (int, error) {
	for i := 0; i < len(p); {
		r, size := utf8.DecodeRune(p[i:])
		i += size
		if r == '\n' {
			t.newline()
			continue
		}
		b, ok := charmap.CodePage437.EncodeRune(r)
		if !ok || r == utf8.RuneError {
			b = '?'
		}
		t.WriteChar(b, t.color)
	}
	return len(p), nil
}

// Print writes s with the current color.
func (t *Terminal) Print(s string) {
	_, _ = t.Write([]byte(s))
}

// Line returns row y decoded back to UTF-8 with trailing blanks removed.
func (t *Terminal) Line(y int) string {
	var sb strings.Builder
	for x := 0; x < Width; x++ {
		c, _ := t.Cell(x, y)
		sb.WriteRune(charmap.CodePage437.DecodeByte(c))
	}
	return strings.TrimRight(sb.String(), " \x00")
}

// Screen returns all rows, as Line does.
func (t *Terminal) Screen() []string {
	lines := make([]string, Height)
	for y := range lines {
		lines[y] = t.Line(y)
	}
	return lines
}

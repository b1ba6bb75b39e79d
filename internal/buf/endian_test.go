package buf

import "testing"

func TestEndianHelpers(t *testing.T) {
	data := []byte{0x01, 0x23}

	if got := U16LE(data); got != 0x2301 {
		t.Fatalf("U16LE = 0x%x, want 0x2301", got)
	}

	PutU16LE(data, 0x0f41)
	if data[0] != 0x41 || data[1] != 0x0f {
		t.Fatalf("PutU16LE wrote %x, want 41 0f", data)
	}

	short := []byte{0xAA}
	if U16LE(short) != 0 {
		t.Fatalf("U16LE short should be 0")
	}
	PutU16LE(short, 0xffff)
	if short[0] != 0xAA {
		t.Fatalf("PutU16LE short should not write")
	}
}

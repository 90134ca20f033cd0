package codec

import (
	"errors"
	"testing"
)

func TestFixedWidthRoundTrip(t *testing.T) {
	t.Run("u8", func(t *testing.T) {
		for _, v := range []uint8{0, 1, 250, 255} {
			c := NewCursor(AppendU8(nil, v))
			got, err := c.ReadU8("v")
			if err != nil || got != v {
				t.Fatalf("u8 %d: got %d, %v", v, got, err)
			}
		}
	})
	t.Run("u16", func(t *testing.T) {
		for _, v := range []uint16{0, 1, 0xfffe, 0xffff} {
			c := NewCursor(AppendU16(nil, v))
			got, err := c.ReadU16("v")
			if err != nil || got != v {
				t.Fatalf("u16 %d: got %d, %v", v, got, err)
			}
		}
	})
	t.Run("u24", func(t *testing.T) {
		for _, v := range []uint32{0, 1, 0xfffffe, 0xffffff} {
			c := NewCursor(AppendU24(nil, v))
			got, err := c.ReadU24("v")
			if err != nil || got != v {
				t.Fatalf("u24 %d: got %d, %v", v, got, err)
			}
		}
	})
	t.Run("u32", func(t *testing.T) {
		for _, v := range []uint32{0, 1, 0xfffffffe, 0xffffffff} {
			c := NewCursor(AppendU32(nil, v))
			got, err := c.ReadU32("v")
			if err != nil || got != v {
				t.Fatalf("u32 %d: got %d, %v", v, got, err)
			}
		}
	})
	t.Run("u48", func(t *testing.T) {
		for _, v := range []uint64{0, 1, 0xfffffffffffe, 0xffffffffffff} {
			c := NewCursor(AppendU48(nil, v))
			got, err := c.ReadU48("v")
			if err != nil || got != v {
				t.Fatalf("u48 %d: got %d, %v", v, got, err)
			}
		}
	})
	t.Run("u64", func(t *testing.T) {
		for _, v := range []uint64{0, 1, 0xfffffffffffffffe, 0xffffffffffffffff} {
			c := NewCursor(AppendU64(nil, v))
			got, err := c.ReadU64("v")
			if err != nil || got != v {
				t.Fatalf("u64 %d: got %d, %v", v, got, err)
			}
		}
	})
}

func TestLenEncIntRoundTripAndBoundaries(t *testing.T) {
	cases := []struct {
		v        uint64
		wantSize int
	}{
		{0, 1}, {250, 1}, {251, 3}, {65535, 3}, {65536, 4},
		{16777215, 4}, {16777216, 9}, {1 << 40, 9},
	}
	for _, tc := range cases {
		enc := AppendLenEncInt(nil, tc.v)
		if len(enc) != tc.wantSize {
			t.Fatalf("value %d: encoded to %d bytes, want %d", tc.v, len(enc), tc.wantSize)
		}
		if got := LenEncIntSize(tc.v); got != tc.wantSize {
			t.Fatalf("LenEncIntSize(%d) = %d, want %d", tc.v, got, tc.wantSize)
		}
		c := NewCursor(enc)
		got, consumed, err := c.ReadLenEncInt("v")
		if err != nil {
			t.Fatalf("value %d: decode error %v", tc.v, err)
		}
		if got != tc.v {
			t.Fatalf("value %d: round-tripped to %d", tc.v, got)
		}
		if consumed != tc.wantSize {
			t.Fatalf("value %d: consumed %d, want %d", tc.v, consumed, tc.wantSize)
		}
	}
}

func TestLenEncIntForbiddenLeadByte(t *testing.T) {
	c := NewCursor([]byte{0xff})
	_, _, err := c.ReadLenEncInt("v")
	if !errors.Is(err, ErrInvalidData) {
		t.Fatalf("expected InvalidData, got %v", err)
	}
}

func TestNullTerminatedString(t *testing.T) {
	c := NewCursor([]byte("hello\x00world"))
	s, err := c.ReadNullTerminatedString("s")
	if err != nil || s != "hello" {
		t.Fatalf("got %q, %v", s, err)
	}
	rest := c.ReadRest()
	if string(rest) != "world" {
		t.Fatalf("rest = %q", rest)
	}
}

func TestNullTerminatedMissingTerminator(t *testing.T) {
	c := NewCursor([]byte("noterminator"))
	_, err := c.ReadNullTerminatedBytes("s")
	if !errors.Is(err, ErrMissingNullTerminator) {
		t.Fatalf("expected MissingNullTerminator, got %v", err)
	}
}

func TestNotEnoughData(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02})
	_, err := c.ReadU32("v")
	if !errors.Is(err, ErrNotEnoughData) {
		t.Fatalf("expected NotEnoughData, got %v", err)
	}
}

func TestInvalidUTF8(t *testing.T) {
	c := NewCursor([]byte{0xff, 0xfe, 0x00})
	_, err := c.ReadNullTerminatedString("s")
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected InvalidUtf8, got %v", err)
	}
}

func TestSubCursorLeavesNoUnreadOnExactConsume(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02, 0x03, 0x04, 0x05})
	sub, err := c.Sub(3, "payload")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sub.ReadN(3, "all"); err != nil {
		t.Fatal(err)
	}
	if sub.Remaining() != 0 {
		t.Fatalf("expected 0 remaining, got %d", sub.Remaining())
	}
	if c.Remaining() != 2 {
		t.Fatalf("parent cursor should have 2 remaining, got %d", c.Remaining())
	}
}

package codec

import "unicode/utf8"

// Cursor is a bounds-checked reader over an in-memory byte slice. Every
// primitive either succeeds and advances pos, or fails and leaves pos
// untouched. It backs both the in-memory binlog-file parser and the
// packet-oriented protocol decoders: both consume a fully-buffered payload,
// never a live stream, so a single concrete type (rather than an io.Reader
// abstraction) keeps the hot decode path allocation-free.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor wraps buf for reading. buf is not copied; callers must not
// mutate it while the cursor is in use.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// Pos returns the current read offset, useful for error messages that want
// to report a file offset.
func (c *Cursor) Pos() int {
	return c.pos
}

// Len returns the total buffer length.
func (c *Cursor) Len() int {
	return len(c.buf)
}

// Peek returns the next n bytes without advancing the cursor. The returned
// slice aliases the cursor's backing array.
func (c *Cursor) Peek(n int, field string) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, newErr(NotEnoughData, field)
	}
	return c.buf[c.pos : c.pos+n], nil
}

// Advance skips n bytes, failing if fewer than n remain.
func (c *Cursor) Advance(n int, field string) error {
	if n < 0 || c.Remaining() < n {
		return newErr(NotEnoughData, field)
	}
	c.pos += n
	return nil
}

// ReadN copies and returns the next n bytes, advancing the cursor.
func (c *Cursor) ReadN(n int, field string) ([]byte, error) {
	b, err := c.Peek(n, field)
	if err != nil {
		return nil, err
	}
	c.pos += n
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadRest returns and consumes every remaining byte.
func (c *Cursor) ReadRest() []byte {
	b := c.buf[c.pos:]
	c.pos = len(c.buf)
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// ReadU8 reads a single byte.
func (c *Cursor) ReadU8(field string) (uint8, error) {
	if c.Remaining() < 1 {
		return 0, newErr(NotEnoughData, field)
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

// ReadU16 reads a 2-byte little-endian unsigned integer.
func (c *Cursor) ReadU16(field string) (uint16, error) {
	b, err := c.Peek(2, field)
	if err != nil {
		return 0, err
	}
	c.pos += 2
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// ReadU24 reads a 3-byte little-endian unsigned integer, widened to uint32.
func (c *Cursor) ReadU24(field string) (uint32, error) {
	b, err := c.Peek(3, field)
	if err != nil {
		return 0, err
	}
	c.pos += 3
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, nil
}

// ReadU32 reads a 4-byte little-endian unsigned integer.
func (c *Cursor) ReadU32(field string) (uint32, error) {
	b, err := c.Peek(4, field)
	if err != nil {
		return 0, err
	}
	c.pos += 4
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// ReadU48 reads a 6-byte little-endian unsigned integer, widened to uint64.
func (c *Cursor) ReadU48(field string) (uint64, error) {
	b, err := c.Peek(6, field)
	if err != nil {
		return 0, err
	}
	c.pos += 6
	var v uint64
	for i := 5; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

// ReadU64 reads an 8-byte little-endian unsigned integer.
func (c *Cursor) ReadU64(field string) (uint64, error) {
	b, err := c.Peek(8, field)
	if err != nil {
		return 0, err
	}
	c.pos += 8
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

// ReadI32 reads a 4-byte little-endian signed integer.
func (c *Cursor) ReadI32(field string) (int32, error) {
	v, err := c.ReadU32(field)
	return int32(v), err
}

// ReadI64 reads an 8-byte little-endian signed integer.
func (c *Cursor) ReadI64(field string) (int64, error) {
	v, err := c.ReadU64(field)
	return int64(v), err
}

// ReadNullTerminatedBytes scans forward for the first 0x00, consumes up to
// but not including it, and consumes the terminator itself.
func (c *Cursor) ReadNullTerminatedBytes(field string) ([]byte, error) {
	idx := -1
	for i := c.pos; i < len(c.buf); i++ {
		if c.buf[i] == 0x00 {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, newErr(MissingNullTerminator, field)
	}
	out := make([]byte, idx-c.pos)
	copy(out, c.buf[c.pos:idx])
	c.pos = idx + 1
	return out, nil
}

// ReadNullTerminatedString is ReadNullTerminatedBytes with UTF-8 validation.
func (c *Cursor) ReadNullTerminatedString(field string) (string, error) {
	start := c.pos
	b, err := c.ReadNullTerminatedBytes(field)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		c.pos = start
		return "", newErr(InvalidUTF8, field)
	}
	return string(b), nil
}

// ReadLenEncInt decodes a length-encoded integer (spec.md §3) and returns
// the value along with the number of bytes the encoding consumed (1, 3, 4,
// or 9) so callers computing a variable-length remainder (event_size minus
// a fixed part) don't have to re-derive it from the value's magnitude.
func (c *Cursor) ReadLenEncInt(field string) (value uint64, consumed int, err error) {
	start := c.pos
	defer func() {
		if err != nil {
			c.pos = start
		}
	}()
	lead, err := c.ReadU8(field)
	if err != nil {
		return 0, 0, err
	}
	switch {
	case lead < 0xfb:
		return uint64(lead), 1, nil
	case lead == 0xfc:
		v, err := c.ReadU16(field)
		if err != nil {
			return 0, 0, err
		}
		return uint64(v), 3, nil
	case lead == 0xfd:
		v, err := c.ReadU24(field)
		if err != nil {
			return 0, 0, err
		}
		return uint64(v), 4, nil
	case lead == 0xfe:
		v, err := c.ReadU64(field)
		if err != nil {
			return 0, 0, err
		}
		return v, 9, nil
	default: // 0xff is reserved as an error marker, never a valid lead byte.
		return 0, 0, newErr(InvalidData, field)
	}
}

// ReadLenEncBytes reads a length-encoded integer followed by that many
// raw bytes.
func (c *Cursor) ReadLenEncBytes(field string) ([]byte, error) {
	start := c.pos
	n, _, err := c.ReadLenEncInt(field)
	if err != nil {
		return nil, err
	}
	b, err := c.ReadN(int(n), field)
	if err != nil {
		c.pos = start
		return nil, err
	}
	return b, nil
}

// ReadLenEncString is ReadLenEncBytes with UTF-8 validation.
func (c *Cursor) ReadLenEncString(field string) (string, error) {
	start := c.pos
	b, err := c.ReadLenEncBytes(field)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		c.pos = start
		return "", newErr(InvalidUTF8, field)
	}
	return string(b), nil
}

// Sub carves out a child cursor over the next n bytes and advances past
// them, mirroring the packet framer's "slice a sub-cursor of exactly that
// length" step (spec.md §4.2).
func (c *Cursor) Sub(n int, field string) (*Cursor, error) {
	b, err := c.ReadN(n, field)
	if err != nil {
		return nil, err
	}
	return NewCursor(b), nil
}

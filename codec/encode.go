package codec

import "fmt"

// AppendU8 appends a 1-byte integer.
func AppendU8(dst []byte, v uint8) []byte {
	return append(dst, v)
}

// AppendU16 appends a 2-byte little-endian integer.
func AppendU16(dst []byte, v uint16) []byte {
	return append(dst, byte(v), byte(v>>8))
}

// AppendU24 appends a 3-byte little-endian integer. v must fit in 24 bits;
// callers that decoded it from the wire already satisfy this, and
// NewU24 range-checks values built by hand.
func AppendU24(dst []byte, v uint32) []byte {
	return append(dst, byte(v), byte(v>>8), byte(v>>16))
}

// AppendU32 appends a 4-byte little-endian integer.
func AppendU32(dst []byte, v uint32) []byte {
	return append(dst, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// AppendU48 appends a 6-byte little-endian integer.
func AppendU48(dst []byte, v uint64) []byte {
	return append(dst, byte(v), byte(v>>8), byte(v>>16), byte(v>>24), byte(v>>32), byte(v>>40))
}

// AppendU64 appends an 8-byte little-endian integer.
func AppendU64(dst []byte, v uint64) []byte {
	return append(dst,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

// NewU24 range-checks v against the 24-bit width before encoding, per
// spec.md §3's "range checks on encode forbid values exceeding 2^(8N)-1".
func NewU24(v uint32) (uint32, error) {
	if v > 0xffffff {
		return 0, fmt.Errorf("codec: value %d exceeds 24-bit range", v)
	}
	return v, nil
}

// NewU48 range-checks v against the 48-bit width before encoding.
func NewU48(v uint64) (uint64, error) {
	if v > 0xffffffffffff {
		return 0, fmt.Errorf("codec: value %d exceeds 48-bit range", v)
	}
	return v, nil
}

// AppendLenEncInt encodes v using the minimum representation: 1 byte for
// v <= 250, 3 bytes (0xfc prefix) for v <= 0xffff, 4 bytes (0xfd prefix)
// for v <= 0xffffff, else 9 bytes (0xfe prefix).
func AppendLenEncInt(dst []byte, v uint64) []byte {
	switch {
	case v <= 250:
		return append(dst, byte(v))
	case v <= 0xffff:
		dst = append(dst, 0xfc)
		return AppendU16(dst, uint16(v))
	case v <= 0xffffff:
		dst = append(dst, 0xfd)
		return AppendU24(dst, uint32(v))
	default:
		dst = append(dst, 0xfe)
		return AppendU64(dst, v)
	}
}

// LenEncIntSize returns the number of bytes AppendLenEncInt would use for v,
// without allocating — used by writeHandshakeResponsePacket-style callers
// that need to pre-size a buffer (spec.md §4.3, auth_response length).
func LenEncIntSize(v uint64) int {
	switch {
	case v <= 250:
		return 1
	case v <= 0xffff:
		return 3
	case v <= 0xffffff:
		return 4
	default:
		return 9
	}
}

// AppendNullTerminatedBytes appends b followed by a 0x00 terminator.
func AppendNullTerminatedBytes(dst []byte, b []byte) []byte {
	dst = append(dst, b...)
	return append(dst, 0x00)
}

// AppendNullTerminatedString is AppendNullTerminatedBytes for a string.
func AppendNullTerminatedString(dst []byte, s string) []byte {
	return AppendNullTerminatedBytes(dst, []byte(s))
}

// AppendLenEncBytes appends a length-encoded integer followed by b.
func AppendLenEncBytes(dst []byte, b []byte) []byte {
	dst = AppendLenEncInt(dst, uint64(len(b)))
	return append(dst, b...)
}

// AppendLenEncString is AppendLenEncBytes for a string.
func AppendLenEncString(dst []byte, s string) []byte {
	return AppendLenEncBytes(dst, []byte(s))
}

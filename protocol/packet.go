// Package protocol implements the client side of the database's
// client/server wire protocol: packet framing, the handshake/auth/query
// state machine, and the typed messages exchanged during the connection
// phase. It is adapted from the go-sql-driver/mysql packet layer
// (packets.go, buffer.go), generalized to serve a binlog-streaming client
// rather than a database/sql driver.
package protocol

import (
	"fmt"
	"io"

	"github.com/shogo82148/binlogtail/codec"
)

// MaxPacketSize is the largest payload a single physical packet may carry
// before the protocol requires it to be split into a chain of packets
// (the last of which may be length 0 if the logical payload is an exact
// multiple of MaxPacketSize).
const MaxPacketSize = 1<<24 - 1

// Framer reads and writes packets: a 3-byte little-endian length, a 1-byte
// sequence id, and that many payload bytes (spec.md §3, §4.2, §6). Per
// spec.md §4.2 the framer neither tracks nor validates the sequence
// counter — that is the caller's responsibility, since the server resets
// it per command and the framer has no notion of "command".
//
// ReadPacket's single-physical-packet fast path returns a slice backed by
// an internal scratch buffer (buffer.go, adapted from the teacher's
// zero-copy-ish bufio) that is only valid until the next ReadPacket call.
// This is safe because every decoder in this module copies the bytes it
// needs out via codec.Cursor.ReadN before returning — callers must not
// retain a ReadPacket payload across a subsequent call.
type Framer struct {
	r    io.Reader
	w    io.Writer
	body *readBuffer
}

// NewFramer wraps a transport. r and w are usually the same net.Conn; they
// are accepted separately so tests can frame arbitrary readers/writers.
func NewFramer(r io.Reader, w io.Writer) *Framer {
	return &Framer{r: r, w: w, body: newReadBuffer()}
}

// ReadPacket reads one logical packet, transparently reassembling a chain
// of physical packets when the payload is MaxPacketSize bytes or longer
// (the protocol's large-payload splitting convention). It returns the sequence
// id of the *last* physical packet read and the concatenated payload.
func (f *Framer) ReadPacket() (seqID uint8, payload []byte, err error) {
	var out []byte
	for {
		var hdr [4]byte
		if _, err := io.ReadFull(f.r, hdr[:]); err != nil {
			return 0, nil, fmt.Errorf("protocol: read packet header: %w", err)
		}
		pktLen := int(hdr[0]) | int(hdr[1])<<8 | int(hdr[2])<<16
		seqID = hdr[3]

		if pktLen == 0 && out != nil {
			// A zero-length packet terminates a previous packet that was
			// an exact multiple of MaxPacketSize.
			return seqID, out, nil
		}

		if pktLen < MaxPacketSize {
			if pktLen == 0 {
				if out == nil {
					return seqID, nil, nil
				}
				return seqID, out, nil
			}
			body, err := f.body.readN(f.r, pktLen)
			if err != nil {
				return 0, nil, fmt.Errorf("protocol: read packet payload: %w", err)
			}
			if out == nil {
				return seqID, body, nil
			}
			return seqID, append(out, body...), nil
		}

		// A chained payload: copy this physical packet out of the scratch
		// buffer before it's reused by the next iteration's read.
		body, err := f.body.readN(f.r, pktLen)
		if err != nil {
			return 0, nil, fmt.Errorf("protocol: read packet payload: %w", err)
		}
		chunk := make([]byte, len(body))
		copy(chunk, body)
		out = append(out, chunk...)
	}
}

// WritePacket writes payload as one or more physical packets under seqID,
// splitting and incrementing the sequence id for payloads of MaxPacketSize
// bytes or more, exactly mirroring ReadPacket's reassembly.
func (f *Framer) WritePacket(seqID uint8, payload []byte) error {
	for {
		n := len(payload)
		if n > MaxPacketSize {
			n = MaxPacketSize
		}
		hdr := [4]byte{byte(n), byte(n >> 8), byte(n >> 16), seqID}
		if _, err := f.w.Write(hdr[:]); err != nil {
			return fmt.Errorf("protocol: write packet header: %w", err)
		}
		if n > 0 {
			if _, err := f.w.Write(payload[:n]); err != nil {
				return fmt.Errorf("protocol: write packet payload: %w", err)
			}
		}
		payload = payload[n:]
		seqID++
		if n < MaxPacketSize {
			return nil
		}
	}
}

// EncodePacket is the allocation-based encode path used by tests and by
// callers that already have a complete in-memory payload smaller than
// MaxPacketSize: it returns the 4-byte-header-prefixed packet rather than
// writing it, so decode(encode(...)) round-trips can be asserted directly
// (spec.md §8, invariant 5).
func EncodePacket(seqID uint8, payload []byte) []byte {
	n := len(payload)
	out := make([]byte, 4, 4+n)
	out[0], out[1], out[2], out[3] = byte(n), byte(n>>8), byte(n>>16), seqID
	return append(out, payload...)
}

// DecodePacket decodes a single physical packet from buf, returning the
// sequence id, the payload, and the number of bytes of buf consumed.
// Trailing bytes in buf beyond the decoded packet are left untouched,
// matching the framer's "trailing data is discarded, not an error" policy
// for forward compatibility (spec.md §4.2).
func DecodePacket(buf []byte) (seqID uint8, payload []byte, consumed int, err error) {
	c := codec.NewCursor(buf)
	length, err := c.ReadU24("packet length")
	if err != nil {
		return 0, nil, 0, err
	}
	seq, err := c.ReadU8("packet seq_id")
	if err != nil {
		return 0, nil, 0, err
	}
	body, err := c.ReadN(int(length), "packet payload")
	if err != nil {
		return 0, nil, 0, err
	}
	return seq, body, c.Pos(), nil
}

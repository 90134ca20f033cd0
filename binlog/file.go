package binlog

import (
	"github.com/shogo82148/binlogtail/codec"
)

// Magic is the 4-byte marker at the start of every binlog file
// (spec.md §6).
var Magic = [4]byte{0xfe, 'b', 'i', 'n'}

// ReadFile parses every event from a complete in-memory binlog file,
// validating the leading magic and returning one DecoderContext-scoped
// Event per entry. Decoding stops at the first error; the caller learns
// how many events were successfully parsed via len(events).
func ReadFile(ctx *DecoderContext, data []byte) ([]*Event, error) {
	cur := codec.NewCursor(data)
	magic, err := cur.ReadN(4, "magic")
	if err != nil {
		return nil, err
	}
	if magic[0] != Magic[0] || magic[1] != Magic[1] || magic[2] != Magic[2] || magic[3] != Magic[3] {
		return nil, &codec.Error{Kind: codec.InvalidData, Field: "binlog file magic"}
	}

	var events []*Event
	for cur.Remaining() > 0 {
		ev, err := Decode(ctx, cur)
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}

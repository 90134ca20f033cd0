package binlog

import (
	"github.com/shogo82148/binlogtail/codec"
)

// Row is one decoded row image: one Value per present column, in column
// order. Absent columns (not set in the present-bitmap) are simply
// omitted rather than represented as an explicit hole, matching spec.md
// §4.4's "decode that column's value... [only] if the corresponding
// present-bit is set".
type Row struct {
	Values []*Value
}

// RowsEvent is the shared decode of WriteRows/UpdateRows/DeleteRows V0-V2
// (spec.md §4.4). Before is non-nil only for update events, one entry per
// Rows (the pre-image), matching each entry of Rows (the post-image).
type RowsEvent struct {
	TableID   uint64
	TableMap  *TableMapEvent
	Flags     uint16
	ExtraData []byte

	PresentBefore []bool // update: before-image present-columns mask
	PresentAfter  []bool // write/delete: present-columns mask; update: after-image mask

	Before []Row // only for update events, same length as Rows
	Rows   []Row
}

// DecodeRowsEvent decodes a row event body. h.EventType selects the V0/V1/
// V2 wire shape and whether an update's two masks are both read.
func DecodeRowsEvent(ctx *DecoderContext, h *EventHeader, cur *codec.Cursor) (*RowsEvent, error) {
	e := &RowsEvent{}

	var tableID uint64
	if ctx.postHeaderLength(h.EventType, 8) == 6 {
		v, err := cur.ReadU32("table_id")
		if err != nil {
			return nil, err
		}
		tableID = uint64(v)
	} else {
		v, err := cur.ReadU48("table_id")
		if err != nil {
			return nil, err
		}
		tableID = v
	}
	e.TableID = tableID

	flags, err := cur.ReadU16("flags")
	if err != nil {
		return nil, err
	}
	e.Flags = flags

	if h.EventType == WriteRowsEventV2 || h.EventType == UpdateRowsEventV2 || h.EventType == DeleteRowsEventV2 {
		extraLen, err := cur.ReadU16("extra_data_len")
		if err != nil {
			return nil, err
		}
		if extraLen < 2 {
			return nil, &codec.Error{Kind: codec.InvalidData, Field: "extra_data_len below minimum of 2"}
		}
		extra, err := cur.ReadN(int(extraLen)-2, "extra_data")
		if err != nil {
			return nil, err
		}
		e.ExtraData = extra
	}

	if tableID != 0x00ffffff {
		tm, err := ctx.LookupTableMap(tableID)
		if err != nil {
			return nil, err
		}
		e.TableMap = tm
	}

	numCol, _, err := cur.ReadLenEncInt("column_count")
	if err != nil {
		return nil, err
	}

	presentLen := int(numCol+7) / 8
	firstMask, err := cur.ReadN(presentLen, "present_bitmap")
	if err != nil {
		return nil, err
	}

	if h.EventType.IsUpdateRows() {
		e.PresentBefore = bitsToBools(firstMask, int(numCol))
		secondMask, err := cur.ReadN(presentLen, "present_bitmap_after")
		if err != nil {
			return nil, err
		}
		e.PresentAfter = bitsToBools(secondMask, int(numCol))
	} else {
		e.PresentAfter = bitsToBools(firstMask, int(numCol))
	}

	if e.TableMap == nil {
		// Dummy row event (table_id sentinel); no row images follow.
		return e, nil
	}

	for cur.Remaining() > checksumSize {
		if h.EventType.IsUpdateRows() {
			before, err := decodeRowImage(cur, e.TableMap, e.PresentBefore)
			if err != nil {
				return nil, err
			}
			after, err := decodeRowImage(cur, e.TableMap, e.PresentAfter)
			if err != nil {
				return nil, err
			}
			e.Before = append(e.Before, before)
			e.Rows = append(e.Rows, after)
		} else {
			row, err := decodeRowImage(cur, e.TableMap, e.PresentAfter)
			if err != nil {
				return nil, err
			}
			e.Rows = append(e.Rows, row)
		}
	}

	return e, nil
}

// decodeRowImage decodes one row image: a null-bit mask sized to the
// number of *present* columns, then one Value per present, non-null
// column (spec.md §4.4).
func decodeRowImage(cur *codec.Cursor, tm *TableMapEvent, present []bool) (Row, error) {
	numPresent := 0
	for _, p := range present {
		if p {
			numPresent++
		}
	}

	nullLen := int(numPresent+7) / 8
	nullBitmap, err := cur.ReadN(nullLen, "row null_bitmap")
	if err != nil {
		return Row{}, err
	}

	row := Row{}
	presentIdx := 0
	for i, p := range present {
		if !p {
			continue
		}
		isNull := bitSet(nullBitmap, presentIdx)
		presentIdx++
		if isNull {
			row.Values = append(row.Values, &Value{Type: tm.Columns[i].Type, Null: true})
			continue
		}
		v, err := DecodeValue(cur, &tm.Columns[i])
		if err != nil {
			return Row{}, err
		}
		row.Values = append(row.Values, v)
	}
	return row, nil
}

func bitsToBools(bitmap []byte, n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = bitSet(bitmap, i)
	}
	return out
}

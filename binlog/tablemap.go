package binlog

import (
	"encoding/binary"
	"fmt"

	"github.com/shogo82148/binlogtail/codec"
)

// TableMapEvent precedes row-image events and publishes the schema
// (schema name, table name, and per-column type/metadata) that those row
// events are decoded against. Grounded on santhosh-tekuri/binlog's
// TableMapEvent.decode.
type TableMapEvent struct {
	TableID    uint64
	Flags      uint16
	SchemaName string
	TableName  string
	Columns    []Column
}

// DecodeTableMapEvent decodes a table-map event body. cur must be
// positioned immediately after the 19-byte event header.
func DecodeTableMapEvent(cur *codec.Cursor) (*TableMapEvent, error) {
	e := &TableMapEvent{}

	tableID, err := cur.ReadU48("table_id")
	if err != nil {
		return nil, err
	}
	e.TableID = tableID

	flags, err := cur.ReadU16("flags")
	if err != nil {
		return nil, err
	}
	e.Flags = flags

	if _, err := cur.ReadU8("schema_name_length"); err != nil {
		return nil, err
	}
	schema, err := cur.ReadNullTerminatedString("schema_name")
	if err != nil {
		return nil, err
	}
	e.SchemaName = schema

	if _, err := cur.ReadU8("table_name_length"); err != nil {
		return nil, err
	}
	table, err := cur.ReadNullTerminatedString("table_name")
	if err != nil {
		return nil, err
	}
	e.TableName = table

	numCol, _, err := cur.ReadLenEncInt("column_count")
	if err != nil {
		return nil, err
	}

	e.Columns = make([]Column, numCol)
	for i := range e.Columns {
		e.Columns[i].Ordinal = i
		b, err := cur.ReadU8(fmt.Sprintf("column[%d] type", i))
		if err != nil {
			return nil, err
		}
		e.Columns[i].Type = ColumnType(b)
	}

	metaBlock, err := cur.ReadLenEncBytes("column_meta_block")
	if err != nil {
		return nil, err
	}
	if err := decodeColumnMeta(e.Columns, metaBlock); err != nil {
		return nil, err
	}

	nullBitmapLen := int(numCol+7) / 8
	nullBitmap, err := cur.ReadN(nullBitmapLen, "null_bitmap")
	if err != nil {
		return nil, err
	}
	for i := range e.Columns {
		e.Columns[i].Nullable = bitSet(nullBitmap, i)
	}

	if err := decodeExtraMetadata(cur, e); err != nil {
		return nil, err
	}

	return e, nil
}

// decodeColumnMeta walks the metadata block, assigning each column's Meta
// (and for TypeString, possibly remapping its real Type) per the
// type-keyed width table in the santhosh-tekuri/binlog reference.
func decodeColumnMeta(cols []Column, block []byte) error {
	mc := codec.NewCursor(block)
	for i := range cols {
		switch cols[i].Type {
		case TypeBlob, TypeDouble, TypeFloat, TypeGeometry, TypeJSON,
			TypeTime2, TypeDateTime2, TypeTimestamp2:
			b, err := mc.ReadU8("meta byte")
			if err != nil {
				return err
			}
			cols[i].Meta = uint16(b)
		case TypeVarchar, TypeBit, TypeDecimal, TypeNewDecimal,
			TypeSet, TypeEnum, TypeVarString:
			v, err := mc.ReadU16("meta u16")
			if err != nil {
				return err
			}
			cols[i].Meta = v
		case TypeString:
			b, err := mc.ReadN(2, "meta string bytes")
			if err != nil {
				return err
			}
			meta := binary.BigEndian.Uint16(b)
			if meta >= 256 {
				b0, b1 := b[0], b[1]
				if b0&0x30 != 0x30 {
					cols[i].Meta = uint16(b1) | (uint16((b0&0x30)^0x30) << 4)
					cols[i].Type = ColumnType(b0 | 0x30)
				} else {
					cols[i].Meta = uint16(b1)
					cols[i].Type = ColumnType(b0)
				}
			} else {
				cols[i].Meta = meta
			}
		default:
			// no metadata for this type
		}
	}
	return nil
}

// decodeExtraMetadata walks the table-map's extended metadata chain
// (server worklog WL#4618), populated only when binlog_row_metadata=FULL.
// Unknown typ bytes are skipped by size rather than rejected, per spec.md
// §9's "prefer Other(u8) / forward-compatible skip" design note.
func decodeExtraMetadata(cur *codec.Cursor, e *TableMapEvent) error {
	for cur.Remaining() > checksumSize {
		typ, err := cur.ReadU8("extra metadata type")
		if err != nil {
			return err
		}
		size, _, err := cur.ReadLenEncInt("extra metadata size")
		if err != nil {
			return err
		}
		sub, err := cur.Sub(int(size), "extra metadata payload")
		if err != nil {
			return err
		}
		switch typ {
		case 1: // UNSIGNED flag of numeric columns
			if err := decodeUnsignedFlags(sub, e.Columns); err != nil {
				return err
			}
		case 2: // default charset of string columns
			if err := decodeDefaultCharset(sub, e.Columns, ColumnType.isString); err != nil {
				return err
			}
		case 3: // per-column charset of string columns
			if err := decodePerColumnCharset(sub, e.Columns, ColumnType.isString); err != nil {
				return err
			}
		case 4: // column name
			for i := range e.Columns {
				name, err := sub.ReadLenEncString("column name")
				if err != nil {
					return err
				}
				e.Columns[i].Name = name
			}
		case 5: // enum/set string values: SET
			if err := decodeEnumSetValues(sub, e.Columns, TypeSet); err != nil {
				return err
			}
		case 6: // enum/set string values: ENUM
			if err := decodeEnumSetValues(sub, e.Columns, TypeEnum); err != nil {
				return err
			}
		case 10:
			if err := decodeDefaultCharset(sub, e.Columns, ColumnType.isEnumSet); err != nil {
				return err
			}
		case 11:
			if err := decodePerColumnCharset(sub, e.Columns, ColumnType.isEnumSet); err != nil {
				return err
			}
		default:
			// 7 geometry type, 8/9 primary key, 12 column visibility: opaque.
		}
	}
	return nil
}

func decodeUnsignedFlags(cur *codec.Cursor, cols []Column) error {
	bits := cur.ReadRest()
	inum := 0
	for i := range cols {
		if cols[i].Type.isNumeric() {
			cols[i].Unsigned = bitSet(bits, inum)
			inum++
		}
	}
	return nil
}

func decodeDefaultCharset(cur *codec.Cursor, cols []Column, match func(ColumnType) bool) error {
	def, _, err := cur.ReadLenEncInt("default charset")
	if err != nil {
		return err
	}
	for cur.Remaining() > 0 {
		ord, _, err := cur.ReadLenEncInt("column ordinal")
		if err != nil {
			return err
		}
		charset, _, err := cur.ReadLenEncInt("charset")
		if err != nil {
			return err
		}
		if int(ord) < len(cols) {
			cols[ord].Charset = charset
		}
	}
	for i := range cols {
		if match(cols[i].Type) && cols[i].Charset == 0 {
			cols[i].Charset = def
		}
	}
	return nil
}

func decodePerColumnCharset(cur *codec.Cursor, cols []Column, match func(ColumnType) bool) error {
	for i := range cols {
		if match(cols[i].Type) {
			charset, _, err := cur.ReadLenEncInt("charset")
			if err != nil {
				return err
			}
			cols[i].Charset = charset
		}
	}
	return nil
}

func decodeEnumSetValues(cur *codec.Cursor, cols []Column, typ ColumnType) error {
	icol := 0
	for cur.Remaining() > 0 {
		nVal, _, err := cur.ReadLenEncInt("value count")
		if err != nil {
			return err
		}
		vals := make([]string, nVal)
		for i := range vals {
			v, err := cur.ReadLenEncString("value")
			if err != nil {
				return err
			}
			vals[i] = v
		}
		for icol < len(cols) && cols[icol].Type != typ {
			icol++
		}
		if icol >= len(cols) {
			return &codec.Error{Kind: codec.InvalidData, Field: "enum/set values without matching column"}
		}
		cols[icol].Values = vals
		icol++
	}
	return nil
}

// bitSet reports whether bit i is set in a little-endian bitmap, per
// spec.md's open-question resolution of (cols+7)/8 for the mask length
// (§9, open question 1).
func bitSet(bitmap []byte, i int) bool {
	byteIdx := i / 8
	if byteIdx >= len(bitmap) {
		return false
	}
	return bitmap[byteIdx]>>uint(i%8)&1 == 1
}

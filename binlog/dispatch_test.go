package binlog

import (
	"testing"

	"github.com/shogo82148/binlogtail/codec"
)

// S1: AnonymousGtid event decodes last_committed/sequence_number and
// leaves no unread bytes.
func TestDecodeAnonymousGTID(t *testing.T) {
	ctx := NewDecoderContext()
	cur := codec.NewCursor(fixtureAnonymousGTID)
	ev, err := Decode(ctx, cur)
	if err != nil {
		t.Fatal(err)
	}
	body, ok := ev.Body.(*AnonymousGTIDEvent)
	if !ok {
		t.Fatalf("got %T", ev.Body)
	}
	if body.LastCommitted != 0 || body.SequenceNumber != 1 {
		t.Fatalf("got last_committed=%d sequence_number=%d", body.LastCommitted, body.SequenceNumber)
	}
	if body.RBROnly {
		t.Fatalf("expected rbr_only=false")
	}
	if cur.Remaining() != 0 {
		t.Fatalf("expected no remaining bytes, got %d", cur.Remaining())
	}
}

// S2: FormatDescription event decodes binlog_version/server_version/
// create_timestamp.
func TestDecodeFormatDescription(t *testing.T) {
	ctx := NewDecoderContext()
	cur := codec.NewCursor(fixtureFormatDescription)
	ev, err := Decode(ctx, cur)
	if err != nil {
		t.Fatal(err)
	}
	body, ok := ev.Body.(*FormatDescriptionEvent)
	if !ok {
		t.Fatalf("got %T", ev.Body)
	}
	if body.BinlogVersion != 4 {
		t.Fatalf("got binlog_version=%d", body.BinlogVersion)
	}
	if body.ServerVersion != "5.7.29-log" {
		t.Fatalf("got server_version=%q", body.ServerVersion)
	}
	if body.CreateTimestamp != 1593679068 {
		t.Fatalf("got create_timestamp=%d", body.CreateTimestamp)
	}
}

// S3: Xid event decodes xid and preserves the checksum opaquely.
func TestDecodeXID(t *testing.T) {
	ctx := NewDecoderContext()
	cur := codec.NewCursor(fixtureXID)
	ev, err := Decode(ctx, cur)
	if err != nil {
		t.Fatal(err)
	}
	body, ok := ev.Body.(*XIDEvent)
	if !ok {
		t.Fatalf("got %T", ev.Body)
	}
	if body.XID != 11 {
		t.Fatalf("got xid=%d", body.XID)
	}
	want := []byte{0xbc, 0x78, 0xeb, 0x86}
	if len(ev.Checksum) != 4 || ev.Checksum[0] != want[0] || ev.Checksum[1] != want[1] ||
		ev.Checksum[2] != want[2] || ev.Checksum[3] != want[3] {
		t.Fatalf("got checksum=%x", ev.Checksum)
	}
}

// S4: TableMap event decodes table_id/schema and installs a lookup-able
// column-type vector into the registry.
func TestDecodeTableMap(t *testing.T) {
	ctx := NewDecoderContext()
	cur := codec.NewCursor(fixtureTableMap)
	ev, err := Decode(ctx, cur)
	if err != nil {
		t.Fatal(err)
	}
	body, ok := ev.Body.(*TableMapEvent)
	if !ok {
		t.Fatalf("got %T", ev.Body)
	}
	if body.TableID != 109 {
		t.Fatalf("got table_id=%d", body.TableID)
	}
	if body.SchemaName != "test" {
		t.Fatalf("got schema=%q", body.SchemaName)
	}
	if len(body.Columns) != 2 || body.Columns[0].Type != TypeLong || body.Columns[1].Type != TypeVarchar || body.Columns[1].Meta != 160 {
		t.Fatalf("got columns=%+v", body.Columns)
	}

	installed, err := ctx.LookupTableMap(109)
	if err != nil {
		t.Fatal(err)
	}
	if installed.SchemaName != "test" {
		t.Fatalf("registry lookup mismatch: %+v", installed)
	}
}

// S5: Query event decodes schema, status variables (flags2, sql_mode,
// catalog_nz, charset, updated_db_names), and query text.
func TestDecodeQuery(t *testing.T) {
	ctx := NewDecoderContext()
	cur := codec.NewCursor(fixtureQuery)
	ev, err := Decode(ctx, cur)
	if err != nil {
		t.Fatal(err)
	}
	body, ok := ev.Body.(*QueryEvent)
	if !ok {
		t.Fatalf("got %T", ev.Body)
	}
	if body.Schema != "test" {
		t.Fatalf("got schema=%q", body.Schema)
	}
	if len(body.Query) < len("CREATE TABLE IF NOT EXISTS `runoob_tbl`") ||
		body.Query[:len("CREATE TABLE IF NOT EXISTS `runoob_tbl`")] != "CREATE TABLE IF NOT EXISTS `runoob_tbl`" {
		t.Fatalf("got query=%q", body.Query)
	}

	var sawFlags2, sawSQLMode, sawCatalogNZ, sawCharset, sawUpdatedDB bool
	for _, sv := range body.StatusVars {
		switch sv.Key {
		case svFlags2:
			sawFlags2 = true
			if sv.Flags2&(1<<19) == 0 {
				t.Fatalf("expected auto_commit bit set in flags2=%#x", sv.Flags2)
			}
		case svSQLMode:
			sawSQLMode = true
			if sv.SQLMode&(1<<2) == 0 {
				t.Fatalf("expected only_full_group_by bit set in sql_mode=%#x", sv.SQLMode)
			}
		case svCatalogNZ:
			sawCatalogNZ = true
			if sv.Catalog != "std" {
				t.Fatalf("got catalog_nz=%q", sv.Catalog)
			}
		case svCharset:
			sawCharset = true
			if sv.CharsetClient != 33 || sv.CharsetConn != 33 || sv.CharsetServer != 224 {
				t.Fatalf("got charset=(%d,%d,%d)", sv.CharsetClient, sv.CharsetConn, sv.CharsetServer)
			}
		case svUpdatedDBNames:
			sawUpdatedDB = true
			if len(sv.UpdatedDBNames) != 1 || sv.UpdatedDBNames[0] != "test" {
				t.Fatalf("got updated_db_names=%v", sv.UpdatedDBNames)
			}
		}
	}
	if !sawFlags2 || !sawSQLMode || !sawCatalogNZ || !sawCharset || !sawUpdatedDB {
		t.Fatalf("missing expected status var entries: %+v", body.StatusVars)
	}
}

// S6: Rotate event decodes next_binlog/position.
func TestDecodeRotate(t *testing.T) {
	ctx := NewDecoderContext()
	cur := codec.NewCursor(fixtureRotate)
	ev, err := Decode(ctx, cur)
	if err != nil {
		t.Fatal(err)
	}
	body, ok := ev.Body.(*RotateEvent)
	if !ok {
		t.Fatalf("got %T", ev.Body)
	}
	if body.NextBinlog != "mysql_bin.000002" || body.Position != 4 {
		t.Fatalf("got %+v", body)
	}
}

func TestDecodeUnknownEventTypeIsForwardCompatible(t *testing.T) {
	ctx := NewDecoderContext()
	body := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	eventSize := uint32(19 + len(body))
	hdr := make([]byte, 0, 19)
	hdr = codec.AppendU32(hdr, 1)
	hdr = codec.AppendU8(hdr, 0x7f) // not a recognized event type
	hdr = codec.AppendU32(hdr, 1)
	hdr = codec.AppendU32(hdr, eventSize)
	hdr = codec.AppendU32(hdr, eventSize)
	hdr = codec.AppendU16(hdr, 0)
	buf := append(hdr, body...)

	cur := codec.NewCursor(buf)
	ev, err := Decode(ctx, cur)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ev.Body.(*UnknownEvent); !ok {
		t.Fatalf("expected UnknownEvent, got %T", ev.Body)
	}
}

// Invariant 4 (spec.md §8): a WriteRowsV2 event decodes without error
// once its TableMap has been installed, and produces the expected column
// values.
func TestDecodeWriteRowsV2AfterTableMap(t *testing.T) {
	ctx := NewDecoderContext()
	if _, err := Decode(ctx, codec.NewCursor(fixtureRowsTableMap)); err != nil {
		t.Fatalf("table map decode: %v", err)
	}

	ev, err := Decode(ctx, codec.NewCursor(fixtureWriteRowsV2))
	if err != nil {
		t.Fatalf("rows decode: %v", err)
	}
	re, ok := ev.Body.(*RowsEvent)
	if !ok {
		t.Fatalf("got %T", ev.Body)
	}
	if len(re.Rows) != 1 || len(re.Rows[0].Values) != 2 {
		t.Fatalf("got rows=%+v", re.Rows)
	}
	longVal := re.Rows[0].Values[0]
	if longVal.Null || len(longVal.Bytes) != 4 {
		t.Fatalf("got long value=%+v", longVal)
	}
	gotLong := int32(longVal.Bytes[0]) | int32(longVal.Bytes[1])<<8 | int32(longVal.Bytes[2])<<16 | int32(longVal.Bytes[3])<<24
	if gotLong != 42 {
		t.Fatalf("got long=%d, want 42", gotLong)
	}
	strVal := re.Rows[0].Values[1]
	if strVal.Null || string(strVal.Bytes) != "hi" {
		t.Fatalf("got string value=%+v", strVal)
	}
}

func TestRowsEventRequiresPriorTableMap(t *testing.T) {
	ctx := NewDecoderContext()
	body := []byte{}
	body = codec.AppendU48(body, 999)
	body = codec.AppendU16(body, 0)
	body = codec.AppendU16(body, 2)       // extra_data_len = 2 (no extra data)
	body = codec.AppendLenEncInt(body, 0) // column_count = 0

	eventSize := uint32(19 + len(body) + 4)
	hdr := []byte{}
	hdr = codec.AppendU32(hdr, 1)
	hdr = codec.AppendU8(hdr, uint8(WriteRowsEventV2))
	hdr = codec.AppendU32(hdr, 1)
	hdr = codec.AppendU32(hdr, eventSize)
	hdr = codec.AppendU32(hdr, eventSize)
	hdr = codec.AppendU16(hdr, 0)

	buf := append(hdr, body...)
	buf = append(buf, 0, 0, 0, 0)

	cur := codec.NewCursor(buf)
	_, err := Decode(ctx, cur)
	if err == nil {
		t.Fatal("expected error for row event referencing unknown table id")
	}
}

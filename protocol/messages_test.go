package protocol

import (
	"bytes"
	"testing"
)

func TestHandshakeResponse41RoundTrip(t *testing.T) {
	resp := &HandshakeResponse41{
		ClientFlags:    ClientProtocol41 | ClientSecureConnection | ClientPluginAuth,
		MaxPacketSize:  MaxPacketSize,
		CharacterSet:   33,
		Username:       "repl",
		AuthResponse:   []byte{1, 2, 3, 4, 5},
		Database:       "test",
		AuthPluginName: MysqlNativePassword,
	}
	enc := resp.Encode()
	got, err := DecodeHandshakeResponse41(enc)
	if err != nil {
		t.Fatal(err)
	}
	if got.Username != resp.Username || got.Database != resp.Database {
		t.Fatalf("got %+v", got)
	}
	if !bytes.Equal(got.AuthResponse, resp.AuthResponse) {
		t.Fatalf("auth response mismatch: %x vs %x", got.AuthResponse, resp.AuthResponse)
	}
	if got.AuthPluginName != MysqlNativePassword {
		t.Fatalf("auth plugin name mismatch: %q", got.AuthPluginName)
	}
}

func TestHandshakeResponse41WithConnectAttrs(t *testing.T) {
	resp := &HandshakeResponse41{
		ClientFlags:   ClientProtocol41,
		MaxPacketSize: 1 << 20,
		CharacterSet:  33,
		Username:      "u",
		ConnectAttrs:  map[string]string{"_client_name": "binlogtail"},
	}
	enc := resp.Encode()
	got, err := DecodeHandshakeResponse41(enc)
	if err != nil {
		t.Fatal(err)
	}
	if got.ConnectAttrs["_client_name"] != "binlogtail" {
		t.Fatalf("got attrs %+v", got.ConnectAttrs)
	}
}

func TestDecodeOKPacket(t *testing.T) {
	payload := []byte{0x00, 0x05, 0x00, 0x02, 0x00, 0x00, 0x00}
	ok, err := DecodeOKPacket(payload)
	if err != nil {
		t.Fatal(err)
	}
	if ok.AffectedRows != 5 || ok.StatusFlags != 2 {
		t.Fatalf("got %+v", ok)
	}
}

func TestDecodeErrPacket(t *testing.T) {
	payload := append([]byte{0xff, 0x19, 0x04, '#'}, append([]byte("28000"), "Access denied"...)...)
	ep, err := DecodeErrPacket(payload)
	if err != nil {
		t.Fatal(err)
	}
	if ep.Code != 0x0419 || ep.SQLState != "28000" || ep.Message != "Access denied" {
		t.Fatalf("got %+v", ep)
	}
}

func TestDecodeTextRowWithNull(t *testing.T) {
	payload := []byte{0xfb, 0x01, 'x'}
	row, err := DecodeTextRow(payload, 2)
	if err != nil {
		t.Fatal(err)
	}
	if row[0] != nil {
		t.Fatalf("expected NULL, got %v", row[0])
	}
	if string(row[1]) != "x" {
		t.Fatalf("got %q", row[1])
	}
}

func TestIsEndOfResultPacket(t *testing.T) {
	if !IsEndOfResultPacket([]byte{0xfe, 0x00, 0x00, 0x02, 0x00}) {
		t.Fatal("expected EOF packet to be recognized")
	}
	long := append([]byte{0xfe}, make([]byte, 10)...)
	if IsEndOfResultPacket(long) {
		t.Fatal("long 0xfe-led packet must not be mistaken for EOF")
	}
}

func TestComBinlogDumpEncode(t *testing.T) {
	d := &ComBinlogDump{Position: 4, ServerID: 1, BinlogFilename: "bin.000001"}
	enc := d.Encode()
	if enc[0] != comBinlogDump {
		t.Fatalf("wrong command byte %x", enc[0])
	}
	if string(enc[11:]) != "bin.000001" {
		t.Fatalf("got filename %q", enc[11:])
	}
}

package protocol

import (
	"bytes"
	"testing"
)

func TestPacketRoundTrip(t *testing.T) {
	payload := []byte("select 1")
	enc := EncodePacket(7, payload)
	seq, got, consumed, err := DecodePacket(enc)
	if err != nil {
		t.Fatal(err)
	}
	if seq != 7 || !bytes.Equal(got, payload) || consumed != len(enc) {
		t.Fatalf("seq=%d payload=%q consumed=%d", seq, got, consumed)
	}
}

func TestFramerReadWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	f := NewFramer(&buf, &buf)
	if err := f.WritePacket(3, []byte("hello")); err != nil {
		t.Fatal(err)
	}
	seq, payload, err := f.ReadPacket()
	if err != nil {
		t.Fatal(err)
	}
	if seq != 3 || string(payload) != "hello" {
		t.Fatalf("seq=%d payload=%q", seq, payload)
	}
}

func TestFramerEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	f := NewFramer(&buf, &buf)
	if err := f.WritePacket(0, nil); err != nil {
		t.Fatal(err)
	}
	seq, payload, err := f.ReadPacket()
	if err != nil {
		t.Fatal(err)
	}
	if seq != 0 || len(payload) != 0 {
		t.Fatalf("seq=%d payload=%q", seq, payload)
	}
}

func TestFramerSplitsLargePayload(t *testing.T) {
	payload := make([]byte, MaxPacketSize+10)
	for i := range payload {
		payload[i] = byte(i)
	}
	var buf bytes.Buffer
	f := NewFramer(&buf, &buf)
	if err := f.WritePacket(0, payload); err != nil {
		t.Fatal(err)
	}
	seq, got, err := f.ReadPacket()
	if err != nil {
		t.Fatal(err)
	}
	if seq != 1 {
		t.Fatalf("expected final seq 1, got %d", seq)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: got %d bytes, want %d", len(got), len(payload))
	}
}

package protocol

import (
	"encoding/hex"
	"testing"
)

func TestScramblePasswordKnownVector(t *testing.T) {
	challenge := make([]byte, 20)
	for i := range challenge {
		challenge[i] = byte(i + 1)
	}
	got := ScramblePassword(challenge, "secret")
	want, _ := hex.DecodeString("b32bb3a583e1340c0a1108d58b1be49781ad8c2f")
	if hex.EncodeToString(got) != hex.EncodeToString(want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestScramblePasswordEmpty(t *testing.T) {
	if got := ScramblePassword([]byte("xxxx"), ""); got != nil {
		t.Fatalf("expected nil for empty password, got %x", got)
	}
}

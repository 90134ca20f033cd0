package protocol

import (
	"context"
	"net"
	"testing"
	"time"
)

// buildGreeting assembles a minimal HandshakeV10 payload with a 20-byte
// scramble split 8/12 across the two auth-plugin-data fields, matching
// what DecodeHandshakeV10 expects when the upper capability word is
// present (spec.md §4.3).
func buildGreeting(challenge []byte) []byte {
	if len(challenge) != 20 {
		panic("buildGreeting: challenge must be 20 bytes")
	}
	buf := []byte{minProtocolVer}
	buf = append(buf, "5.7.29-log"...)
	buf = append(buf, 0x00)
	buf = append(buf, 7, 0, 0, 0) // connection id
	buf = append(buf, challenge[:8]...)
	buf = append(buf, 0x00) // filler
	caps := uint32(defaultClientCapabilities)
	buf = append(buf, byte(caps), byte(caps>>8))
	buf = append(buf, 33)   // character set
	buf = append(buf, 2, 0) // status flags
	buf = append(buf, byte(caps>>16), byte(caps>>24))
	buf = append(buf, 21) // auth_plugin_data_len (8+13)
	buf = append(buf, make([]byte, 10)...)
	buf = append(buf, challenge[8:]...)
	buf = append(buf, 0x00) // NUL terminator of part 2
	buf = append(buf, MysqlNativePassword...)
	buf = append(buf, 0x00)
	return buf
}

// dialPipe hands back a *Conn wired to one end of a net.Pipe, having
// already run the handshake against a fake server goroutine driven by
// serve. serve is responsible for closing its end.
func dialPipe(t *testing.T, cfg *Config, serve func(*Framer)) *Conn {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close() })

	go func() {
		defer server.Close()
		serve(NewFramer(server, server))
	}()

	c := &Conn{
		netConn: client,
		framer:  NewFramer(client, client),
		cfg:     cfg,
		state:   stateAwaitGreeting,
	}
	done := make(chan error, 1)
	go func() { done <- c.handshake() }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("handshake: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handshake timed out")
	}
	return c
}

func TestConnHandshakeAuthenticates(t *testing.T) {
	challenge := make([]byte, 20)
	for i := range challenge {
		challenge[i] = byte(i + 1)
	}
	cfg := &Config{User: "repl", Password: "secret"}

	c := dialPipe(t, cfg, func(f *Framer) {
		if err := f.WritePacket(0, buildGreeting(challenge)); err != nil {
			return
		}
		if _, _, err := f.ReadPacket(); err != nil {
			return
		}
		f.WritePacket(2, []byte{0x00, 0x00, 0x02, 0x00, 0x00, 0x00})
	})

	if c.state != stateAuthenticated {
		t.Fatalf("expected Authenticated state, got %v", c.state)
	}
}

func TestConnHandshakeRejectsServerError(t *testing.T) {
	challenge := make([]byte, 20)
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close() })

	go func() {
		defer server.Close()
		f := NewFramer(server, server)
		f.WritePacket(0, buildGreeting(challenge))
		f.ReadPacket()
		errPacket := append([]byte{0xff, 0x15, 0x04, '#'}, append([]byte("28000"), "Access denied"...)...)
		f.WritePacket(2, errPacket)
	}()

	c := &Conn{
		netConn: client,
		framer:  NewFramer(client, client),
		cfg:     &Config{User: "repl", Password: "wrong"},
		state:   stateAwaitGreeting,
	}
	done := make(chan error, 1)
	go func() { done <- c.handshake() }()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected an error for a rejected handshake")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handshake timed out")
	}
}

func TestConnQueryReadsTextResultSet(t *testing.T) {
	challenge := make([]byte, 20)
	cfg := &Config{User: "repl", Password: ""}

	var c *Conn
	c = dialPipe(t, cfg, func(f *Framer) {
		f.WritePacket(0, buildGreeting(challenge))
		f.ReadPacket()
		f.WritePacket(2, []byte{0x00, 0x00, 0x02, 0x00, 0x00, 0x00})

		// Query request/response exchange happens after handshake
		// returns, on the same fake-server goroutine.
		if _, _, err := f.ReadPacket(); err != nil {
			return
		}
		f.WritePacket(1, []byte{0x01}) // one column
		col := encodeColumnDefinition41ForTest("id")
		f.WritePacket(2, col)
		f.WritePacket(3, []byte{0xfe, 0x00, 0x00, 0x02, 0x00}) // column EOF
		f.WritePacket(4, []byte{0x01, '1'})
		f.WritePacket(5, []byte{0xfe, 0x00, 0x00, 0x02, 0x00}) // row EOF
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	rs, err := c.Query(ctx, "SELECT id FROM t")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(rs.Columns) != 1 || rs.Columns[0].Name != "id" {
		t.Fatalf("got columns %+v", rs.Columns)
	}
	if len(rs.Rows) != 1 || string(rs.Rows[0][0]) != "1" {
		t.Fatalf("got rows %+v", rs.Rows)
	}
}

// encodeColumnDefinition41ForTest builds a minimal
// Protocol::ColumnDefinition41 payload naming a single column, enough for
// DecodeColumnDefinition41 to populate Name.
func encodeColumnDefinition41ForTest(name string) []byte {
	lenEncStr := func(s string) []byte {
		return append([]byte{byte(len(s))}, s...)
	}
	buf := lenEncStr("def")               // catalog
	buf = append(buf, lenEncStr("")...)   // schema
	buf = append(buf, lenEncStr("")...)   // table
	buf = append(buf, lenEncStr("")...)   // org_table
	buf = append(buf, lenEncStr(name)...) // name
	buf = append(buf, lenEncStr(name)...) // org_name
	buf = append(buf, 0x0c)               // length_of_fixed_fields
	buf = append(buf, 33, 0)              // character_set
	buf = append(buf, 11, 0, 0, 0)        // column_length
	buf = append(buf, 0x03)               // column_type (LONG)
	buf = append(buf, 0, 0)               // flags
	buf = append(buf, 0x00)               // decimals
	buf = append(buf, 0, 0)               // filler
	return buf
}

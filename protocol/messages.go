package protocol

import (
	"fmt"

	"github.com/shogo82148/binlogtail/codec"
)

// Packet indicator bytes that begin the payload of generic response
// packets (spec.md §3, §4.3).
const (
	iOK             = 0x00
	iAuthMoreData   = 0x01
	iLocalInFile    = 0xfb
	iEOF            = 0xfe
	iErr            = 0xff
	minProtocolVer  = 10
	maxNativeScrLen = 20
)

// HandshakeV10 is the server greeting that opens the connection phase.
type HandshakeV10 struct {
	ProtocolVersion uint8
	ServerVersion   string
	ConnectionID    uint32
	Challenge       []byte // concatenated auth-plugin-data, truncated to at most 20 bytes
	Capabilities    CapabilityFlag
	CharacterSet    uint8
	StatusFlags     uint16
	AuthPluginName  string
}

// DecodeHandshakeV10 decodes a server greeting payload (spec.md §4.3,
// "AwaitGreeting"). Adapted from the teacher's readHandshakePacket, which
// inlines the same layout walk directly over a byte slice; here it is
// expressed against the shared codec.Cursor so the field-by-field layout
// is explicit and bounds-checked uniformly with every other decoder.
func DecodeHandshakeV10(payload []byte) (*HandshakeV10, error) {
	c := codec.NewCursor(payload)
	h := &HandshakeV10{}

	pv, err := c.ReadU8("protocol_version")
	if err != nil {
		return nil, err
	}
	h.ProtocolVersion = pv
	if pv != minProtocolVer {
		return nil, &codec.Error{Kind: codec.InvalidData, Field: fmt.Sprintf("unsupported protocol version %d, want %d", pv, minProtocolVer)}
	}

	serverVersion, err := c.ReadNullTerminatedString("server_version")
	if err != nil {
		return nil, err
	}
	h.ServerVersion = serverVersion

	connID, err := c.ReadU32("connection_id")
	if err != nil {
		return nil, err
	}
	h.ConnectionID = connID

	challenge1, err := c.ReadN(8, "auth_plugin_data_part_1")
	if err != nil {
		return nil, err
	}
	if err := c.Advance(1, "filler"); err != nil {
		return nil, err
	}

	capLower, err := c.ReadU16("capability_flags_lower")
	if err != nil {
		return nil, err
	}
	caps := CapabilityFlag(capLower)

	challenge := challenge1
	if c.Remaining() > 0 {
		charset, err := c.ReadU8("character_set")
		if err != nil {
			return nil, err
		}
		h.CharacterSet = charset

		status, err := c.ReadU16("status_flags")
		if err != nil {
			return nil, err
		}
		h.StatusFlags = status

		capUpper, err := c.ReadU16("capability_flags_upper")
		if err != nil {
			return nil, err
		}
		caps |= CapabilityFlag(capUpper) << 16

		authDataLen, err := c.ReadU8("auth_plugin_data_len")
		if err != nil {
			return nil, err
		}
		if err := c.Advance(10, "reserved"); err != nil {
			return nil, err
		}

		// Second part of the scramble is at least 13 bytes (12 data bytes
		// plus a NUL terminator), per the teacher's comment on this exact
		// ambiguity in the official docs.
		n := int(authDataLen) - 8
		if n < 13 {
			n = 13
		}
		part2, err := c.ReadN(n, "auth_plugin_data_part_2")
		if err != nil {
			return nil, err
		}
		if len(part2) > 0 && part2[len(part2)-1] == 0x00 {
			part2 = part2[:len(part2)-1]
		}
		challenge = append(append([]byte{}, challenge1...), part2...)

		if c.Remaining() > 0 {
			name, err := c.ReadNullTerminatedString("auth_plugin_name")
			if err != nil {
				// Some server versions terminate with EOF instead of NUL.
				rest := c.ReadRest()
				name = string(rest)
				h.AuthPluginName = name
			} else {
				h.AuthPluginName = name
			}
		}
	}

	if len(challenge) > maxNativeScrLen {
		challenge = challenge[:maxNativeScrLen]
	}
	h.Challenge = challenge
	h.Capabilities = caps
	return h, nil
}

// HandshakeResponse41 is the client's reply to HandshakeV10.
type HandshakeResponse41 struct {
	ClientFlags    CapabilityFlag
	MaxPacketSize  uint32
	CharacterSet   uint8
	Username       string
	AuthResponse   []byte
	Database       string
	AuthPluginName string
	ConnectAttrs   map[string]string
}

// Encode serializes the response per spec.md §4.3: capability-gated
// presence of Database and ConnectAttrs, and length-encoding of
// AuthResponse selected by whether ClientPluginAuthLenEncClientData was
// negotiated.
func (r *HandshakeResponse41) Encode() []byte {
	flags := r.ClientFlags
	if r.Database != "" {
		flags |= ClientConnectWithDB
	}
	if len(r.ConnectAttrs) > 0 {
		flags |= ClientConnectAttrs
	}
	if codec.LenEncIntSize(uint64(len(r.AuthResponse))) > 1 {
		flags |= ClientPluginAuthLenEncClientData
	}

	buf := make([]byte, 0, 64+len(r.Username)+len(r.AuthResponse)+len(r.Database))
	buf = codec.AppendU32(buf, uint32(flags))
	buf = codec.AppendU32(buf, r.MaxPacketSize)
	buf = codec.AppendU8(buf, r.CharacterSet)
	buf = append(buf, make([]byte, 23)...) // filler

	buf = codec.AppendNullTerminatedString(buf, r.Username)

	if flags.Has(ClientPluginAuthLenEncClientData) {
		buf = codec.AppendLenEncBytes(buf, r.AuthResponse)
	} else {
		buf = codec.AppendU8(buf, uint8(len(r.AuthResponse)))
		buf = append(buf, r.AuthResponse...)
	}

	if flags.Has(ClientConnectWithDB) {
		buf = codec.AppendNullTerminatedString(buf, r.Database)
	}

	if flags.Has(ClientPluginAuth) {
		buf = codec.AppendNullTerminatedString(buf, r.AuthPluginName)
	}

	if flags.Has(ClientConnectAttrs) {
		var attrs []byte
		for k, v := range r.ConnectAttrs {
			attrs = codec.AppendLenEncString(attrs, k)
			attrs = codec.AppendLenEncString(attrs, v)
		}
		buf = codec.AppendLenEncBytes(buf, attrs)
	}

	return buf
}

// DecodeHandshakeResponse41 parses a client response, used by tests
// verifying the encode/decode round-trip (spec.md §8) for capability
// subsets covered by Encode.
func DecodeHandshakeResponse41(payload []byte) (*HandshakeResponse41, error) {
	c := codec.NewCursor(payload)
	r := &HandshakeResponse41{}

	flags, err := c.ReadU32("client_flags")
	if err != nil {
		return nil, err
	}
	r.ClientFlags = CapabilityFlag(flags)

	maxPacket, err := c.ReadU32("max_packet_size")
	if err != nil {
		return nil, err
	}
	r.MaxPacketSize = maxPacket

	charset, err := c.ReadU8("character_set")
	if err != nil {
		return nil, err
	}
	r.CharacterSet = charset

	if err := c.Advance(23, "filler"); err != nil {
		return nil, err
	}

	username, err := c.ReadNullTerminatedString("username")
	if err != nil {
		return nil, err
	}
	r.Username = username

	if r.ClientFlags.Has(ClientPluginAuthLenEncClientData) {
		authResp, err := c.ReadLenEncBytes("auth_response")
		if err != nil {
			return nil, err
		}
		r.AuthResponse = authResp
	} else {
		n, err := c.ReadU8("auth_response_len")
		if err != nil {
			return nil, err
		}
		authResp, err := c.ReadN(int(n), "auth_response")
		if err != nil {
			return nil, err
		}
		r.AuthResponse = authResp
	}

	if r.ClientFlags.Has(ClientConnectWithDB) {
		db, err := c.ReadNullTerminatedString("database")
		if err != nil {
			return nil, err
		}
		r.Database = db
	}

	if r.ClientFlags.Has(ClientPluginAuth) {
		name, err := c.ReadNullTerminatedString("auth_plugin_name")
		if err != nil {
			return nil, err
		}
		r.AuthPluginName = name
	}

	if r.ClientFlags.Has(ClientConnectAttrs) {
		attrsBytes, err := c.ReadLenEncBytes("connect_attrs")
		if err != nil {
			return nil, err
		}
		ac := codec.NewCursor(attrsBytes)
		r.ConnectAttrs = map[string]string{}
		for ac.Remaining() > 0 {
			k, err := ac.ReadLenEncString("connect_attr key")
			if err != nil {
				return nil, err
			}
			v, err := ac.ReadLenEncString("connect_attr value")
			if err != nil {
				return nil, err
			}
			r.ConnectAttrs[k] = v
		}
	}

	return r, nil
}

// AuthSwitchRequest asks the client to re-authenticate with a different
// plugin and challenge.
type AuthSwitchRequest struct {
	PluginName string
	PluginData []byte
}

// OKPacket is the generic success response (spec.md §4.3).
type OKPacket struct {
	AffectedRows uint64
	LastInsertID uint64
	StatusFlags  uint16
	Warnings     uint16
	Info         string
}

// DecodeOKPacket decodes an OK packet payload (leading 0x00 byte already
// identified by the caller).
func DecodeOKPacket(payload []byte) (*OKPacket, error) {
	c := codec.NewCursor(payload)
	if _, err := c.ReadU8("header"); err != nil {
		return nil, err
	}
	affected, _, err := c.ReadLenEncInt("affected_rows")
	if err != nil {
		return nil, err
	}
	lastID, _, err := c.ReadLenEncInt("last_insert_id")
	if err != nil {
		return nil, err
	}
	ok := &OKPacket{AffectedRows: affected, LastInsertID: lastID}
	if c.Remaining() >= 2 {
		status, _ := c.ReadU16("status_flags")
		ok.StatusFlags = status
	}
	if c.Remaining() >= 2 {
		warn, _ := c.ReadU16("warnings")
		ok.Warnings = warn
	}
	if c.Remaining() > 0 {
		ok.Info = string(c.ReadRest())
	}
	return ok, nil
}

// ErrPacket is the generic error response.
type ErrPacket struct {
	Code     uint16
	SQLState string
	Message  string
}

func (e *ErrPacket) Error() string {
	if e.SQLState != "" {
		return fmt.Sprintf("Error %d (%s): %s", e.Code, e.SQLState, e.Message)
	}
	return fmt.Sprintf("Error %d: %s", e.Code, e.Message)
}

// DecodeErrPacket decodes an error packet payload (leading 0xff byte
// already identified by the caller).
func DecodeErrPacket(payload []byte) (*ErrPacket, error) {
	c := codec.NewCursor(payload)
	if _, err := c.ReadU8("header"); err != nil {
		return nil, err
	}
	code, err := c.ReadU16("error_code")
	if err != nil {
		return nil, err
	}
	e := &ErrPacket{Code: code}
	if b, err := c.Peek(1, "sql_state_marker"); err == nil && b[0] == '#' {
		c.Advance(1, "sql_state_marker")
		state, err := c.ReadN(5, "sql_state")
		if err != nil {
			return nil, err
		}
		e.SQLState = string(state)
	}
	e.Message = string(c.ReadRest())
	return e, nil
}

// IsEndOfResultPacket recognizes the "small 0xfe packet" end-of-result
// marker shared by the OLD_EOF packet and the DEPRECATE_EOF OK packet
// (spec.md §4.3): a packet whose first byte is 0xfe and whose total
// length is under 9 bytes, distinguishing it from a length-encoded string
// that happens to begin with the same byte.
func IsEndOfResultPacket(payload []byte) bool {
	return len(payload) > 0 && payload[0] == iEOF && len(payload) < 9
}

// ColumnDefinition41 describes one column of a text result set.
type ColumnDefinition41 struct {
	Catalog      string
	Schema       string
	Table        string
	OrgTable     string
	Name         string
	OrgName      string
	CharacterSet uint16
	ColumnLength uint32
	ColumnType   uint8
	Flags        uint16
	Decimals     uint8
}

// DecodeColumnDefinition41 decodes one Protocol::ColumnDefinition41 packet.
func DecodeColumnDefinition41(payload []byte) (*ColumnDefinition41, error) {
	c := codec.NewCursor(payload)
	col := &ColumnDefinition41{}
	var err error
	if col.Catalog, err = c.ReadLenEncString("catalog"); err != nil {
		return nil, err
	}
	if col.Schema, err = c.ReadLenEncString("schema"); err != nil {
		return nil, err
	}
	if col.Table, err = c.ReadLenEncString("table"); err != nil {
		return nil, err
	}
	if col.OrgTable, err = c.ReadLenEncString("org_table"); err != nil {
		return nil, err
	}
	if col.Name, err = c.ReadLenEncString("name"); err != nil {
		return nil, err
	}
	if col.OrgName, err = c.ReadLenEncString("org_name"); err != nil {
		return nil, err
	}
	if _, _, err = c.ReadLenEncInt("length_of_fixed_fields"); err != nil {
		return nil, err
	}
	if col.CharacterSet, err = c.ReadU16("character_set"); err != nil {
		return nil, err
	}
	if col.ColumnLength, err = c.ReadU32("column_length"); err != nil {
		return nil, err
	}
	if col.ColumnType, err = c.ReadU8("column_type"); err != nil {
		return nil, err
	}
	if col.Flags, err = c.ReadU16("flags"); err != nil {
		return nil, err
	}
	if col.Decimals, err = c.ReadU8("decimals"); err != nil {
		return nil, err
	}
	return col, nil
}

// TextResultSet is a fully-buffered COM_QUERY text result set (spec.md
// §4.3). A nil entry in a Row marks SQL NULL.
type TextResultSet struct {
	Columns []*ColumnDefinition41
	Rows    [][][]byte
}

// DecodeTextRow decodes one Protocol::ResultsetRow payload into column
// values, nil meaning SQL NULL (encoded on the wire as the single byte
// 0xfb rather than a length-encoded string).
func DecodeTextRow(payload []byte, numCols int) ([][]byte, error) {
	c := codec.NewCursor(payload)
	row := make([][]byte, numCols)
	for i := 0; i < numCols; i++ {
		b, err := c.Peek(1, "row value marker")
		if err != nil {
			return nil, err
		}
		if b[0] == iLocalInFile { // 0xfb: NULL marker in a text row
			c.Advance(1, "null marker")
			row[i] = nil
			continue
		}
		val, err := c.ReadLenEncBytes("row value")
		if err != nil {
			return nil, err
		}
		row[i] = val
	}
	return row, nil
}

// ComBinlogDump builds the COM_BINLOG_DUMP command payload requesting a
// continuous event stream starting at (BinlogFilename, Position).
type ComBinlogDump struct {
	Position       uint32
	Flags          uint16
	ServerID       uint32
	BinlogFilename string
}

// Encode serializes the command, including the leading command byte.
func (d *ComBinlogDump) Encode() []byte {
	buf := make([]byte, 0, 11+len(d.BinlogFilename))
	buf = codec.AppendU8(buf, comBinlogDump)
	buf = codec.AppendU32(buf, d.Position)
	buf = codec.AppendU16(buf, d.Flags)
	buf = codec.AppendU32(buf, d.ServerID)
	buf = append(buf, d.BinlogFilename...)
	return buf
}

// Command bytes used by this client (spec.md §4.3).
const (
	comQuit       = 0x01
	comQuery      = 0x03
	comBinlogDump = 0x12
)

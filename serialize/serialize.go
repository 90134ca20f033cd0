// Package serialize renders decoded binlog events into the stable
// textual shape described by spec.md §4.6: byte-valued fields as arrays
// of unsigned bytes, string fields as their decoded UTF-8 form. It is the
// public boundary between the parser and any downstream JSON/YAML-based
// tooling (SPEC_FULL.md §4.6, wiring gopkg.in/yaml.v3 for the YAML path
// the way mickamy-sql-tap's proxy config loader does).
package serialize

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/shogo82148/binlogtail/binlog"
)

// Format names a supported output encoding for the CLI's transform
// subcommand.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Record is the stable, serializer-agnostic shape of one decoded event:
// the header fields spelled out by name, the event-kind tag, and the
// type-specific body rendered through toFields.
type Record struct {
	Timestamp uint32                 `json:"timestamp" yaml:"timestamp"`
	EventType string                 `json:"event_type" yaml:"event_type"`
	ServerID  uint32                 `json:"server_id" yaml:"server_id"`
	EventSize uint32                 `json:"event_size" yaml:"event_size"`
	LogPos    uint32                 `json:"log_pos" yaml:"log_pos"`
	Flags     uint16                 `json:"flags" yaml:"flags"`
	Checksum  Bytes                  `json:"checksum" yaml:"checksum"`
	Fields    map[string]interface{} `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// ToRecord converts a decoded binlog.Event into its serializable shape.
func ToRecord(ev *binlog.Event) *Record {
	return &Record{
		Timestamp: ev.Header.Timestamp,
		EventType: ev.Header.EventType.String(),
		ServerID:  ev.Header.ServerID,
		EventSize: ev.Header.EventSize,
		LogPos:    ev.Header.LogPos,
		Flags:     uint16(ev.Header.Flags),
		Checksum:  ev.Checksum,
		Fields:    toFields(ev.Body),
	}
}

// Marshal renders records in the given format.
func Marshal(format Format, records []*Record) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(records, "", "  ")
	case FormatYAML:
		return yaml.Marshal(records)
	default:
		return nil, fmt.Errorf("serialize: unsupported format %q", format)
	}
}

// Bytes is a byte slice that encoding/json renders as an array of numbers
// instead of its default base64 string; yaml.v3 already renders it as a
// sequence of numbers.
type Bytes []byte

func (b Bytes) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

// toFields reflects a decoded event body into a plain map so it survives
// both json and yaml encoders uniformly, matching field names to the
// vocabulary spec.md §4.4 uses for each event kind. Byte slices are
// wrapped in Bytes so that both encoders render them as arrays of numbers.
func toFields(body interface{}) map[string]interface{} {
	switch b := body.(type) {
	case *binlog.QueryEvent:
		return map[string]interface{}{
			"slave_proxy_id": b.SlaveProxyID,
			"execution_time": b.ExecutionTime,
			"error_code":     b.ErrorCode,
			"schema":         b.Schema,
			"query":          b.Query,
			"status_vars":    statusVarFields(b.StatusVars),
		}
	case *binlog.RotateEvent:
		return map[string]interface{}{
			"position":    b.Position,
			"next_binlog": b.NextBinlog,
		}
	case *binlog.FormatDescriptionEvent:
		return map[string]interface{}{
			"binlog_version":   b.BinlogVersion,
			"server_version":   b.ServerVersion,
			"create_timestamp": b.CreateTimestamp,
			"checksum_alg":     b.ChecksumAlg,
		}
	case *binlog.XIDEvent:
		return map[string]interface{}{"xid": b.XID}
	case *binlog.TableMapEvent:
		cols := make([]map[string]interface{}, len(b.Columns))
		for i, c := range b.Columns {
			cols[i] = map[string]interface{}{
				"type":     c.Type.String(),
				"nullable": c.Nullable,
				"unsigned": c.Unsigned,
				"meta":     c.Meta,
				"name":     c.Name,
			}
		}
		return map[string]interface{}{
			"table_id": b.TableID,
			"schema":   b.SchemaName,
			"table":    b.TableName,
			"columns":  cols,
		}
	case *binlog.RowsEvent:
		return map[string]interface{}{
			"table_id": b.TableID,
			"rows":     rowsFields(b.Rows),
			"before":   rowsFields(b.Before),
		}
	case *binlog.IntVarEvent:
		return map[string]interface{}{"sub_type": b.SubType, "value": b.Value}
	case *binlog.UserVarEvent:
		return map[string]interface{}{
			"name": b.Name, "null": b.Null, "type": b.Type,
			"charset": b.Charset, "value": Bytes(b.Value), "unsigned": b.Unsigned,
		}
	case *binlog.GTIDEvent:
		return map[string]interface{}{
			"last_committed":  b.LastCommitted,
			"sequence_number": b.SequenceNumber,
			"rbr_only":        b.RBROnly,
		}
	case *binlog.AnonymousGTIDEvent:
		return map[string]interface{}{
			"last_committed":  b.LastCommitted,
			"sequence_number": b.SequenceNumber,
			"rbr_only":        b.RBROnly,
		}
	case *binlog.UnknownEvent:
		return map[string]interface{}{"payload": Bytes(b.Payload)}
	default:
		return nil
	}
}

func statusVarFields(vars []binlog.StatusVar) []map[string]interface{} {
	out := make([]map[string]interface{}, len(vars))
	for i, sv := range vars {
		out[i] = map[string]interface{}{
			"flags2":           sv.Flags2,
			"sql_mode":         sv.SQLMode,
			"catalog":          sv.Catalog,
			"time_zone":        sv.TimeZone,
			"charset_client":   sv.CharsetClient,
			"charset_conn":     sv.CharsetConn,
			"charset_server":   sv.CharsetServer,
			"updated_db_names": sv.UpdatedDBNames,
		}
	}
	return out
}

func rowsFields(rows []binlog.Row) []map[string]interface{} {
	out := make([]map[string]interface{}, len(rows))
	for i, row := range rows {
		values := make([]map[string]interface{}, len(row.Values))
		for j, v := range row.Values {
			values[j] = valueFields(v)
		}
		out[i] = map[string]interface{}{"values": values}
	}
	return out
}

func valueFields(v *binlog.Value) map[string]interface{} {
	if v.Null {
		return map[string]interface{}{"type": v.Type.String(), "null": true}
	}
	return map[string]interface{}{"type": v.Type.String(), "bytes": Bytes(v.Bytes)}
}

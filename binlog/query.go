package binlog

import (
	"github.com/shogo82148/binlogtail/codec"
)

// StatusVarKey names a one-byte key in the query event's status-variable
// chain (spec.md §4.4 "Query status-variable chain").
type StatusVarKey uint8

const (
	svFlags2            StatusVarKey = 0x00
	svSQLMode           StatusVarKey = 0x01
	svCatalog           StatusVarKey = 0x02
	svAutoIncrement     StatusVarKey = 0x03
	svCharset           StatusVarKey = 0x04
	svTimeZone          StatusVarKey = 0x05
	svCatalogNZ         StatusVarKey = 0x06
	svLCTimeNames       StatusVarKey = 0x07
	svCharsetDatabase   StatusVarKey = 0x08
	svTableMapForUpdate StatusVarKey = 0x09
	svMasterDataWritten StatusVarKey = 0x0a
	svInvoker           StatusVarKey = 0x0b
	svUpdatedDBNames    StatusVarKey = 0x0c
	svMicroseconds      StatusVarKey = 0x0d
)

// StatusVar is one decoded entry of the chain. Exactly one of the typed
// fields is meaningful, selected by Key; unrecognized keys are kept whole
// in Other so the chain can still be consumed byte-for-byte (spec.md §9,
// "prefer an Other(u8) variant to stay forward-compatible").
type StatusVar struct {
	Key StatusVarKey

	Flags2            uint32
	SQLMode           uint64
	Catalog           string
	AutoIncrementIncr uint16
	AutoIncrementOff  uint16
	CharsetClient     uint16
	CharsetConn       uint16
	CharsetServer     uint16
	TimeZone          string
	LCTimeNames       uint16
	CharsetDatabase   uint16
	TableMapForUpdate uint64
	MasterDataWritten uint32
	InvokerUser       string
	InvokerHost       string
	UpdatedDBNames    []string
	Microseconds      uint32

	Other      byte
	OtherBytes []byte
}

// QueryEvent is written when an updating statement completes in
// statement-based (or mixed) replication.
type QueryEvent struct {
	SlaveProxyID  uint32
	ExecutionTime uint32
	ErrorCode     uint16
	StatusVars    []StatusVar
	Schema        string
	Query         string
}

// DecodeQueryEvent decodes a query event body.
func DecodeQueryEvent(cur *codec.Cursor) (*QueryEvent, error) {
	e := &QueryEvent{}

	slaveProxyID, err := cur.ReadU32("slave_proxy_id")
	if err != nil {
		return nil, err
	}
	e.SlaveProxyID = slaveProxyID

	execTime, err := cur.ReadU32("execution_time")
	if err != nil {
		return nil, err
	}
	e.ExecutionTime = execTime

	schemaLen, err := cur.ReadU8("schema_length")
	if err != nil {
		return nil, err
	}

	errCode, err := cur.ReadU16("error_code")
	if err != nil {
		return nil, err
	}
	e.ErrorCode = errCode

	statusVarsLen, err := cur.ReadU16("status_vars_length")
	if err != nil {
		return nil, err
	}

	statusVarsCur, err := cur.Sub(int(statusVarsLen), "status_vars")
	if err != nil {
		return nil, err
	}
	vars, err := decodeStatusVars(statusVarsCur)
	if err != nil {
		return nil, err
	}
	e.StatusVars = vars

	schema, err := cur.ReadN(int(schemaLen), "schema")
	if err != nil {
		return nil, err
	}
	e.Schema = string(schema)

	if err := cur.Advance(1, "schema terminator"); err != nil {
		return nil, err
	}

	q, err := cur.ReadN(cur.Remaining()-checksumSize, "query")
	if err != nil {
		return nil, err
	}
	e.Query = string(q)
	return e, nil
}

// decodeStatusVars consumes sub exactly, per spec.md's "the chain must
// consume its sub-region exactly" invariant.
func decodeStatusVars(sub *codec.Cursor) ([]StatusVar, error) {
	var out []StatusVar
	for sub.Remaining() > 0 {
		keyByte, err := sub.ReadU8("status var key")
		if err != nil {
			return nil, err
		}
		key := StatusVarKey(keyByte)
		sv := StatusVar{Key: key}

		switch key {
		case svFlags2:
			v, err := sub.ReadU32("flags2")
			if err != nil {
				return nil, err
			}
			sv.Flags2 = v
		case svSQLMode:
			v, err := sub.ReadU64("sql_mode")
			if err != nil {
				return nil, err
			}
			sv.SQLMode = v
		case svCatalog:
			n, err := sub.ReadU8("catalog length")
			if err != nil {
				return nil, err
			}
			b, err := sub.ReadN(int(n), "catalog")
			if err != nil {
				return nil, err
			}
			if err := sub.Advance(1, "catalog terminator"); err != nil {
				return nil, err
			}
			sv.Catalog = string(b)
		case svAutoIncrement:
			incr, err := sub.ReadU16("auto_increment_increment")
			if err != nil {
				return nil, err
			}
			off, err := sub.ReadU16("auto_increment_offset")
			if err != nil {
				return nil, err
			}
			sv.AutoIncrementIncr, sv.AutoIncrementOff = incr, off
		case svCharset:
			client, err := sub.ReadU16("character_set_client")
			if err != nil {
				return nil, err
			}
			conn, err := sub.ReadU16("collation_connection")
			if err != nil {
				return nil, err
			}
			server, err := sub.ReadU16("collation_server")
			if err != nil {
				return nil, err
			}
			sv.CharsetClient, sv.CharsetConn, sv.CharsetServer = client, conn, server
		case svTimeZone, svCatalogNZ:
			n, err := sub.ReadU8("length")
			if err != nil {
				return nil, err
			}
			b, err := sub.ReadN(int(n), "value")
			if err != nil {
				return nil, err
			}
			if key == svTimeZone {
				sv.TimeZone = string(b)
			} else {
				sv.Catalog = string(b)
			}
		case svLCTimeNames:
			v, err := sub.ReadU16("lc_time_names")
			if err != nil {
				return nil, err
			}
			sv.LCTimeNames = v
		case svCharsetDatabase:
			v, err := sub.ReadU16("charset_database")
			if err != nil {
				return nil, err
			}
			sv.CharsetDatabase = v
		case svTableMapForUpdate:
			v, err := sub.ReadU64("table_map_for_update")
			if err != nil {
				return nil, err
			}
			sv.TableMapForUpdate = v
		case svMasterDataWritten:
			v, err := sub.ReadU32("master_data_written")
			if err != nil {
				return nil, err
			}
			sv.MasterDataWritten = v
		case svInvoker:
			u, err := readLenPrefixedString(sub, "invoker user")
			if err != nil {
				return nil, err
			}
			h, err := readLenPrefixedString(sub, "invoker host")
			if err != nil {
				return nil, err
			}
			sv.InvokerUser, sv.InvokerHost = u, h
		case svUpdatedDBNames:
			count, err := sub.ReadU8("updated_db_names count")
			if err != nil {
				return nil, err
			}
			names := make([]string, count)
			for i := range names {
				name, err := sub.ReadNullTerminatedString("updated db name")
				if err != nil {
					return nil, err
				}
				names[i] = name
			}
			sv.UpdatedDBNames = names
		case svMicroseconds:
			v, err := sub.ReadU24("microseconds")
			if err != nil {
				return nil, err
			}
			sv.Microseconds = v
		default:
			sv.Other = keyByte
			sv.OtherBytes = sub.ReadRest()
		}

		out = append(out, sv)
	}
	return out, nil
}

func readLenPrefixedString(cur *codec.Cursor, field string) (string, error) {
	n, err := cur.ReadU8(field + " length")
	if err != nil {
		return "", err
	}
	b, err := cur.ReadN(int(n), field)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

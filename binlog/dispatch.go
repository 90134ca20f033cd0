package binlog

import (
	"github.com/shogo82148/binlogtail/codec"
)

// Event is the tagged envelope returned by Decode: a header common to
// every event kind, the type-specific decoded payload in Body, and the
// trailing checksum bytes carried opaquely (spec.md §6: "the parser
// treats the checksum as opaque").
type Event struct {
	Header   EventHeader
	Body     interface{}
	Checksum []byte
}

// Decode reads one complete event — header, type-specific body, and
// trailing checksum — from cur, installing table-map events into ctx as
// they are seen. It is the single entry point used by both the in-memory
// binlog-file reader and the streaming protocol.Conn.BinlogDump consumer
// (spec.md §4.4, "Event-type dispatcher").
func Decode(ctx *DecoderContext, cur *codec.Cursor) (*Event, error) {
	header, err := DecodeEventHeader(cur)
	if err != nil {
		return nil, err
	}

	bodyLen, err := bodyLength(header)
	if err != nil {
		return nil, err
	}
	if cur.Remaining() < bodyLen {
		return nil, &codec.Error{Kind: codec.NotEnoughData, Field: "event body"}
	}

	bodyCur, err := cur.Sub(bodyLen, "event body")
	if err != nil {
		return nil, err
	}

	body, err := decodeBody(ctx, header, bodyCur, bodyLen)
	if err != nil {
		return nil, err
	}

	checksum := bodyCur.ReadRest()
	if tm, ok := body.(*TableMapEvent); ok {
		ctx.InstallTableMap(tm.TableID, tm)
	}
	if fd, ok := body.(*FormatDescriptionEvent); ok {
		ctx.format = fd
	}

	return &Event{Header: *header, Body: body, Checksum: checksum}, nil
}

func decodeBody(ctx *DecoderContext, h *EventHeader, cur *codec.Cursor, bodyLen int) (interface{}, error) {
	switch h.EventType {
	case QueryEventType:
		return DecodeQueryEvent(cur)
	case StopEventType:
		return &StopEvent{}, nil
	case RotateEventType:
		return DecodeRotateEvent(cur, bodyLen)
	case IntVarEventType:
		return DecodeIntVarEvent(cur)
	case SlaveEventType:
		return &SlaveEvent{}, nil
	case CreateFileEventType, AppendBlockEventType, BeginLoadQueryEventType:
		return DecodeCreateOrAppendOrBeginLoadEvent(cur, bodyLen)
	case ExecLoadEventType, DeleteFileEventType:
		return DecodeShortFileIDEvent(cur)
	case NewLoadEventType, LoadEventType:
		return DecodeCreateOrAppendOrBeginLoadEvent(cur, bodyLen)
	case RandEventType:
		return DecodeRandEvent(cur)
	case UserVarEventType:
		return DecodeUserVarEvent(cur)
	case FormatDescriptionEventType:
		return DecodeFormatDescriptionEvent(cur, bodyLen)
	case XIDEventType:
		return DecodeXIDEvent(cur)
	case ExecuteLoadQueryEventType:
		return DecodeExecuteLoadQueryEvent(cur)
	case TableMapEventType:
		return DecodeTableMapEvent(cur)
	case WriteRowsEventV0, WriteRowsEventV1, WriteRowsEventV2,
		UpdateRowsEventV0, UpdateRowsEventV1, UpdateRowsEventV2,
		DeleteRowsEventV0, DeleteRowsEventV1, DeleteRowsEventV2:
		return DecodeRowsEvent(ctx, h, cur)
	case IncidentEventType:
		return DecodeIncidentEvent(cur)
	case HeartbeatEventType:
		return &HeartbeatEvent{}, nil
	case RowsQueryEventType:
		return DecodeRowsQueryEvent(cur)
	case GTIDEventType:
		return DecodeGTIDEvent(cur, bodyLen)
	case AnonymousGTIDEventType:
		return DecodeAnonymousGTIDEvent(cur, bodyLen)
	case PreviousGTIDsEventType:
		return DecodePreviousGTIDsEvent(cur, bodyLen)
	default:
		return DecodeUnknownEvent(cur, bodyLen)
	}
}

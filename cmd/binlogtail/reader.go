package main

import (
	"fmt"
	"os"

	"github.com/shogo82148/binlogtail/binlog"
	"github.com/shogo82148/binlogtail/codec"
	"github.com/shogo82148/binlogtail/protocol"
)

// decodeFile loads a complete binlog file from path and decodes every
// event in it, matching spec.md §6's transform/describe behavior.
func decodeFile(path string) ([]*binlog.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	ctx := binlog.NewDecoderContext()
	events, err := binlog.ReadFile(ctx, data)
	if err != nil {
		return events, fmt.Errorf("decode %s: %w", path, err)
	}
	return events, nil
}

// streamFramer decodes events one at a time off a live COM_BINLOG_DUMP
// stream, calling fn for each decoded event until the framer fails
// (connection closed), the server sends an error packet, or fn itself
// returns an error; a server EOF packet ends the stream with a nil error.
// The leading 0x00 marker byte documented on protocol.Conn.BinlogDump
// is stripped before handing the remainder to the dispatcher.
func streamFramer(ctx *binlog.DecoderContext, framer *protocol.Framer, fn func(*binlog.Event) error) error {
	for {
		_, payload, err := framer.ReadPacket()
		if err != nil {
			return err
		}
		if len(payload) == 0 {
			continue
		}
		switch payload[0] {
		case 0x00:
			ev, err := binlog.Decode(ctx, codec.NewCursor(payload[1:]))
			if err != nil {
				return fmt.Errorf("decode stream event: %w", err)
			}
			if err := fn(ev); err != nil {
				return err
			}
		case 0xfe:
			return nil // EOF packet: server caught up in non-blocking dump mode
		case 0xff:
			perr, err := protocol.DecodeErrPacket(payload)
			if err != nil {
				return fmt.Errorf("decode stream error packet: %w", err)
			}
			return perr
		default:
			return fmt.Errorf("unexpected binlog stream packet marker %#x", payload[0])
		}
	}
}

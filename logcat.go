package adb

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hollowtree/adbhost/wire"
)

// logHeaderMinSize is the v1 logger_entry prefix: payload_len, header_size,
// pid, tid, sec, nsec, each a 16- or 32-bit field as below.
const logHeaderMinSize = 20

// LogEntry is one decoded logger_entry record read from a `logcat -B`
// stream. Priority and the tag/message split only apply to the text log
// ids (main/system/radio/crash); Events carries the raw binary payload for
// the `events` log, which uses a separate binary-tagged encoding.
type LogEntry struct {
	LogID     uint32
	Pid       int32
	Tid       int32
	Timestamp time.Time
	Priority  byte
	Tag       string
	Message   string
	Events    []byte
}

// readLoggerEntry reads a single logger_entry record from r, per the
// `logger_entry`/`logger_entry_v2` layout used by `adb logcat -B`:
//
//	u16 payload_len; u16 header_size; i32 pid; i32 tid; u32 sec; u32 nsec;
//	[u32 lid; u32 uid;]  // only present when header_size >= 24
//
// followed by exactly payload_len bytes of payload.
func readLoggerEntry(r io.Reader) (*LogEntry, error) {
	head := make([]byte, logHeaderMinSize)
	if _, err := io.ReadFull(r, head); err != nil {
		return nil, err
	}

	payloadLen := binary.LittleEndian.Uint16(head[0:2])
	headerSize := binary.LittleEndian.Uint16(head[2:4])
	pid := int32(binary.LittleEndian.Uint32(head[4:8]))
	tid := int32(binary.LittleEndian.Uint32(head[8:12]))
	sec := binary.LittleEndian.Uint32(head[12:16])
	nsec := binary.LittleEndian.Uint32(head[16:20])

	entry := &LogEntry{
		Pid:       pid,
		Tid:       tid,
		Timestamp: time.Unix(int64(sec), int64(nsec)),
	}

	if headerSize > logHeaderMinSize {
		extra := make([]byte, headerSize-logHeaderMinSize)
		if _, err := io.ReadFull(r, extra); err != nil {
			return nil, err
		}
		if len(extra) >= 4 {
			entry.LogID = binary.LittleEndian.Uint32(extra[0:4])
		}
	}

	payload := make([]byte, payloadLen)
	if payloadLen > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}
	}

	parseLogPayload(entry, payload)
	return entry, nil
}

// parseLogPayload splits a text-log payload into priority/tag/message. The
// `events` log id uses a separate binary-tagged encoding that this library
// does not decode further; its raw payload is exposed via Events.
func parseLogPayload(entry *LogEntry, payload []byte) {
	if len(payload) == 0 {
		return
	}
	entry.Events = payload
	entry.Priority = payload[0]
	rest := payload[1:]

	nul := indexByte(rest, 0)
	if nul < 0 {
		entry.Tag = string(rest)
		return
	}
	entry.Tag = string(rest[:nul])

	msg := rest[nul+1:]
	if end := indexByte(msg, 0); end >= 0 {
		msg = msg[:end]
	}
	entry.Message = strings.TrimRight(string(msg), "\x00")
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// RunLogService opens `shell:logcat -B -b <id>` for each requested log id
// (main, radio, events, system, crash, kernel — lower-cased) and pumps
// decoded LogEntry records to onEntry until the stream ends or cancel is
// closed. Cancellation closes the socket; any read error observed after
// that is swallowed, mirroring ExecuteRemoteCommand's cancellation
// handling.
func (c *Device) RunLogService(ids []string, onEntry func(*LogEntry), cancel <-chan struct{}) error {
	conn, err := c.dialDevice()
	if err != nil {
		return wrapClientError(err, c, "RunLogService")
	}

	if cancel != nil {
		go func() {
			<-cancel
			conn.Close()
		}()
	}

	buckets := make([]string, len(ids))
	for i, id := range ids {
		buckets[i] = "-b " + strings.ToLower(id)
	}
	req := "shell:logcat -B " + strings.Join(buckets, " ")

	if err = conn.SendMessage([]byte(req)); err != nil {
		conn.Close()
		return wrapClientError(err, c, "RunLogService")
	}
	if _, err = conn.ReadStatus(req); err != nil {
		conn.Close()
		return wrapClientError(err, c, "RunLogService")
	}
	defer conn.Close()

	for {
		entry, err := readLoggerEntry(conn)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			select {
			case <-cancel:
				return nil
			default:
			}
			return fmt.Errorf("RunLogService: %w: %v", wire.ErrShellUnresponsive, err)
		}
		onEntry(entry)
	}
}

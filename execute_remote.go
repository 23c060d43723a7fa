package adb

import (
	"bufio"
	"io"

	"github.com/hollowtree/adbhost/wire"
)

// decodeLatin1 converts ISO-8859-1 bytes to a string. Every ISO-8859-1 byte
// maps 1:1 onto the Unicode code point of the same value, so this needs no
// external decoder.
func decodeLatin1(b []byte) string {
	r := make([]rune, len(b))
	for i, c := range b {
		r[i] = rune(c)
	}
	return string(r)
}

// ExecuteRemoteCommand opens a `shell:` service for cmd and pumps its
// output, line by line, to receiver until the stream ends. Lines are
// decoded as ISO-8859-1, matching the ADB protocol's default shell
// encoding; ExecuteRemoteCommandWithEncoding lets callers override that
// for devices known to use UTF-8.
//
// cancel, if non-nil, lets a caller abort an in-flight command: closing it
// closes the underlying socket. Any read error observed once cancel has
// fired is swallowed; any other read error becomes ErrShellUnresponsive.
// receiver.Flush is always called, even on error.
func (c *Device) ExecuteRemoteCommand(cmd string, receiver Receiver, cancel <-chan struct{}) error {
	return c.ExecuteRemoteCommandWithEncoding(cmd, receiver, cancel, decodeLatin1)
}

// ExecuteRemoteCommandWithEncoding is ExecuteRemoteCommand with a
// caller-supplied byte-to-string decoder for each line.
func (c *Device) ExecuteRemoteCommandWithEncoding(cmd string, receiver Receiver, cancel <-chan struct{}, decode func([]byte) string) error {
	conn, err := c.dialDevice()
	if err != nil {
		return wrapClientError(err, c, "ExecuteRemoteCommand")
	}

	if cancel != nil {
		go func() {
			<-cancel
			conn.Close()
		}()
	}

	req := "shell:" + cmd
	defer func() {
		conn.Close()
		receiver.Flush()
	}()

	if err = conn.SendMessage([]byte(req)); err != nil {
		return wrapClientError(err, c, "ExecuteRemoteCommand")
	}
	if _, err = conn.ReadStatus(req); err != nil {
		return wrapClientError(err, c, "ExecuteRemoteCommand")
	}

	scanner := bufio.NewReader(conn)
	for {
		raw, err := scanner.ReadBytes('\n')
		if len(raw) > 0 {
			line := raw
			if line[len(line)-1] == '\n' {
				line = line[:len(line)-1]
				if n := len(line); n > 0 && line[n-1] == '\r' {
					line = line[:n-1]
				}
			}
			receiver.AddOutput([]byte(decode(line)))
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			select {
			case <-cancel:
				return nil
			default:
			}
			return wrapClientError(wire.ErrShellUnresponsive, c, "ExecuteRemoteCommand")
		}
	}
}

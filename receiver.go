package adb

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hollowtree/adbhost/wire"
)

// Receiver is an output sink for a streamed shell command: complete lines
// are handed to AddOutput as they're recognized, and Flush is called once
// the stream ends (cleanly or not).
type Receiver interface {
	AddOutput(line []byte)
	Flush()
}

// MultiLineReceiver accumulates bytes from a shell stream, splits them into
// complete lines on demand, and hands batches of complete lines to Process.
// The tail after the last newline is kept buffered until more bytes arrive
// or Flush is called, at which point it's delivered as a final, unterminated
// line.
type MultiLineReceiver struct {
	buf     bytes.Buffer
	Process func(lines [][]byte)
}

// Write implements io.Writer so a MultiLineReceiver can sit directly behind
// an io.Copy from a shell socket.
func (r *MultiLineReceiver) Write(p []byte) (int, error) {
	r.buf.Write(p)
	r.drain()
	return len(p), nil
}

func (r *MultiLineReceiver) drain() {
	data := r.buf.Bytes()
	var lines [][]byte
	start := 0
	for i := 0; i < len(data); i++ {
		if data[i] != '\n' {
			continue
		}
		line := data[start:i]
		line = bytes.TrimSuffix(line, []byte("\r"))
		lines = append(lines, append([]byte(nil), line...))
		start = i + 1
	}
	if start > 0 {
		remaining := append([]byte(nil), data[start:]...)
		r.buf.Reset()
		r.buf.Write(remaining)
	}
	if len(lines) > 0 && r.Process != nil {
		r.Process(lines)
	}
}

// Flush delivers any unterminated trailing bytes as a final line, then
// clears the buffer.
func (r *MultiLineReceiver) Flush() {
	if r.buf.Len() == 0 {
		return
	}
	tail := append([]byte(nil), r.buf.Bytes()...)
	r.buf.Reset()
	if r.Process != nil {
		r.Process([][]byte{tail})
	}
}

// AddOutput satisfies Receiver by feeding raw bytes through Write.
func (r *MultiLineReceiver) AddOutput(line []byte) {
	r.Write(append(line, '\n'))
}

// errorPattern pairs a substring recognized in shell output with the
// sentinel error ThrowOnError should report for it.
type errorPattern struct {
	substr string
	err    error
}

var consoleErrorPatterns = []errorPattern{
	{"not found", wire.ErrFileNotFound},
	{"No such file or directory", wire.ErrFileNotFound},
	{"applet not found", wire.ErrFileNotFound},
	{"Unknown option", wire.ErrUnknownOption},
	{"Aborting.", wire.ErrCommandAborting},
	{"permission denied", wire.ErrPermissionDenied},
	{"access denied", wire.ErrPermissionDenied},
}

// ConsoleOutputReceiver is a MultiLineReceiver that additionally ignores
// shell-prompt echo lines (those beginning with "#" or "$") and can
// recognize common adb/toybox error text in a line via ThrowOnError.
type ConsoleOutputReceiver struct {
	MultiLineReceiver
	Lines []string
}

// NewConsoleOutputReceiver returns a ConsoleOutputReceiver that appends every
// non-prompt line it sees to Lines.
func NewConsoleOutputReceiver() *ConsoleOutputReceiver {
	c := &ConsoleOutputReceiver{}
	c.Process = func(lines [][]byte) {
		for _, line := range lines {
			s := string(line)
			if strings.HasPrefix(s, "#") || strings.HasPrefix(s, "$") {
				continue
			}
			c.Lines = append(c.Lines, s)
		}
	}
	return c
}

// ThrowOnError scans line for a recognized error pattern and returns the
// corresponding sentinel error wrapped with the offending line, or nil if
// none matched.
func ThrowOnError(line string) error {
	for _, p := range consoleErrorPatterns {
		if strings.Contains(line, p.substr) {
			return fmt.Errorf("%w: %s", p.err, line)
		}
	}
	return nil
}

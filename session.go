package adb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"strings"
	"time"
)

// epochTime is used as a read deadline in the past to force an immediate,
// non-blocking read attempt: any bytes already buffered on the socket are
// returned, otherwise the read times out right away.
var epochTime = time.Unix(0, 0)

// noDeadline clears a previously set deadline.
var noDeadline = time.Time{}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// promptPattern recognizes the trailing prompt a device shell emits when
// it's idle and waiting for input, e.g. "1|OP5929:/data $ " or
// "OP5929:/data/local/tmp # ".
var promptPattern = regexp.MustCompile(`(?P<num>[1-9]*)\W*\b(?P<host>\w+):(?P<directory>.*)\s(?P<user>\$|#) $`)

// ShellAccess distinguishes an unprivileged shell from a rooted one, as
// reported by the trailing '$'/'#' of the device's prompt.
type ShellAccess int

const (
	AccessUnknown ShellAccess = iota
	AccessAdb
	AccessRoot
)

func (a ShellAccess) String() string {
	switch a {
	case AccessAdb:
		return "$"
	case AccessRoot:
		return "#"
	default:
		return "?"
	}
}

type shellPrompt struct {
	host      string
	directory string
	user      string
	message   string
	valid     bool
}

// ShellSocket wraps a live `shell:` connection as a prompt-recognizing byte
// stream, mirroring how an interactive `adb shell` session works: output is
// read from the device as it arrives, and the session knows it's safe to
// send the next command once it has recognized the shell's idle prompt.
//
// Every read invalidates the cached prompt until a new one is matched, so
// GetPrompt/ReadToEnd never return stale state from a previous command.
type ShellSocket struct {
	conn   net.Conn
	prompt shellPrompt
	tail   []byte
}

// maxPromptTail bounds how much trailing output is kept around for prompt
// matching; the prompt regex only needs the last line or two.
const maxPromptTail = 4096

func newShellSocket(conn net.Conn) *ShellSocket {
	return &ShellSocket{conn: conn}
}

// Close closes the underlying connection, ending the shell session.
func (s *ShellSocket) Close() error {
	return s.conn.Close()
}

// CurrentDirectory returns the working directory captured from the last
// recognized prompt, or "" if no prompt has been seen yet.
func (s *ShellSocket) CurrentDirectory() string {
	return s.prompt.directory
}

// Access returns the privilege level ($ vs #) captured from the last
// recognized prompt.
func (s *ShellSocket) Access() ShellAccess {
	switch s.prompt.user {
	case "#":
		return AccessRoot
	case "$":
		return AccessAdb
	default:
		return AccessUnknown
	}
}

// SendCommand writes cmd, newline-terminated, to the shell's stdin.
func (s *ShellSocket) SendCommand(cmd string) error {
	_, err := s.conn.Write([]byte(cmd + "\n"))
	return err
}

// ReadAvailable reads whatever bytes are currently available on the socket.
// If wait is true and nothing is buffered yet, it blocks until some bytes
// arrive. The read is scanned for a trailing prompt; a successful match
// updates the cached prompt and marks it valid, while any read that doesn't
// end in a recognized prompt invalidates the cache.
func (s *ShellSocket) ReadAvailable(wait bool) ([]byte, error) {
	buf := make([]byte, 4096)

	if !wait {
		if err := s.conn.SetReadDeadline(epochTime); err != nil {
			return nil, err
		}
		n, err := s.conn.Read(buf)
		_ = s.conn.SetReadDeadline(noDeadline)
		if err != nil {
			if isTimeout(err) {
				return nil, nil
			}
			return nil, err
		}
		data := buf[:n]
		s.recognizePrompt(data)
		return data, nil
	}

	n, err := s.conn.Read(buf)
	if err != nil {
		return nil, err
	}
	data := buf[:n]
	s.recognizePrompt(data)
	return data, nil
}

// ReadToEnd reads until a prompt is recognized, concatenating everything
// read along the way. If noPrompt is set, the terminating prompt bytes are
// trimmed from the returned string (they are still consumed from the wire).
func (s *ShellSocket) ReadToEnd(noPrompt bool) (string, error) {
	var out bytes.Buffer
	for {
		chunk, err := s.ReadAvailable(true)
		if err != nil {
			return out.String(), err
		}
		out.Write(chunk)
		if s.prompt.valid {
			break
		}
	}

	result := out.String()
	if noPrompt && s.prompt.valid && strings.HasSuffix(result, s.prompt.message) {
		result = result[:len(result)-len(s.prompt.message)]
	}
	return result, nil
}

// GetPrompt returns the cached prompt if it's fresh and nothing is pending
// on the socket; otherwise it drains to the next prompt first.
func (s *ShellSocket) GetPrompt() (string, error) {
	if s.prompt.valid {
		pending, err := s.ReadAvailable(false)
		if err != nil {
			return "", err
		}
		if len(pending) == 0 {
			return s.prompt.message, nil
		}
		if s.prompt.valid {
			return s.prompt.message, nil
		}
	}
	if _, err := s.ReadToEnd(false); err != nil {
		return "", err
	}
	return s.prompt.message, nil
}

// Interact drains any pending output, sends cmd, and returns the output it
// produced (without the terminating prompt).
func (s *ShellSocket) Interact(cmd string) (string, error) {
	if _, err := s.GetPrompt(); err != nil {
		return "", err
	}
	if err := s.SendCommand(cmd); err != nil {
		return "", err
	}
	return s.ReadToEnd(true)
}

func (s *ShellSocket) recognizePrompt(chunk []byte) {
	s.tail = append(s.tail, chunk...)
	if len(s.tail) > maxPromptTail {
		s.tail = s.tail[len(s.tail)-maxPromptTail:]
	}

	text := string(s.tail)
	if !strings.HasSuffix(text, "$ ") && !strings.HasSuffix(text, "# ") {
		s.prompt.valid = false
		return
	}

	m := promptPattern.FindStringSubmatch(text)
	if m == nil {
		s.prompt.valid = false
		return
	}

	names := promptPattern.SubexpNames()
	groups := make(map[string]string, len(names))
	for i, name := range names {
		if name != "" && i < len(m) {
			groups[name] = m[i]
		}
	}

	// The leading \W* can reach back over the line break that ends the
	// command's output; the prompt message is only the last line.
	message := m[0]
	if i := strings.LastIndexByte(message, '\n'); i >= 0 {
		message = message[i+1:]
	}

	s.prompt = shellPrompt{
		host:      groups["host"],
		directory: groups["directory"],
		user:      groups["user"],
		message:   message,
		valid:     true,
	}

	// Once a prompt is recognized, clear the tail: keeping old output
	// around would let an already-matched prompt bleed into the next
	// command's directory/host capture, since the pattern's greedy .*
	// is happy to span right over it looking for the next "$ "/"# ".
	s.tail = nil
}

// StartShell opens an interactive `shell:` session on the device. The
// caller owns the returned ShellSocket and must Close it when done.
func (c *Device) StartShell() (*ShellSocket, error) {
	conn, err := c.dialDevice()
	if err != nil {
		return nil, wrapClientError(err, c, "StartShell")
	}

	if err = conn.SendMessage([]byte("shell:")); err != nil {
		conn.Close()
		return nil, wrapClientError(err, c, "StartShell")
	}
	if _, err = conn.ReadStatus("shell:"); err != nil {
		conn.Close()
		return nil, wrapClientError(err, c, "StartShell")
	}

	return newShellSocket(conn), nil
}

// Shell v2 packet ids, per the adbd "shell protocol" that demultiplexes
// stdin/stdout/stderr/exit-code over a single shell,v2: stream.
const (
	shellV2IDStdout = 1
	shellV2IDStderr = 2
	shellV2IDExit   = 3
)

// Session is a non-interactive convenience wrapper over the shell,v2:
// service, in the spirit of os/exec.Cmd: Run/CombinedOutput execute a
// command to completion and report failure via the device's exit code,
// optionally tee-ing stdout/stderr to the caller's writers as they stream.
type Session struct {
	device *Device
	conn   net.Conn

	Stdout io.Writer
	Stderr io.Writer
}

// NewSession creates a Session bound to this device. No connection is
// opened until Run or CombinedOutput is called.
func (c *Device) NewSession() (*Session, error) {
	return &Session{device: c}, nil
}

// Close closes the session's connection, if one is open, aborting any
// in-flight command.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Run executes cmd to completion, reporting a non-zero device exit code as
// an error of the form "unexpected error code <n>".
func (s *Session) Run(cmd string) error {
	_, err := s.exec(cmd)
	return err
}

// CombinedOutput executes cmd to completion and returns its interleaved
// stdout and stderr bytes, in the order the device produced them.
func (s *Session) CombinedOutput(cmd string) ([]byte, error) {
	return s.exec(cmd)
}

func (s *Session) exec(cmd string) ([]byte, error) {
	conn, err := s.device.dialDevice()
	if err != nil {
		return nil, wrapClientError(err, s.device, "Session.Run")
	}
	s.conn = conn
	defer conn.Close()

	req := "shell,v2:" + cmd
	if err = conn.SendMessage([]byte(req)); err != nil {
		return nil, wrapClientError(err, s.device, "Session.Run")
	}
	if _, err = conn.ReadStatus(req); err != nil {
		return nil, wrapClientError(err, s.device, "Session.Run")
	}

	var out bytes.Buffer
	header := make([]byte, 5)
	for {
		if _, err := io.ReadFull(conn, header); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return out.Bytes(), nil
			}
			return out.Bytes(), wrapClientError(err, s.device, "Session.Run")
		}

		id := header[0]
		length := binary.LittleEndian.Uint32(header[1:5])
		payload := make([]byte, length)
		if length > 0 {
			if _, err := io.ReadFull(conn, payload); err != nil {
				return out.Bytes(), wrapClientError(err, s.device, "Session.Run")
			}
		}

		switch id {
		case shellV2IDStdout:
			if s.Stdout != nil {
				s.Stdout.Write(payload)
			}
			out.Write(payload)
		case shellV2IDStderr:
			if s.Stderr != nil {
				s.Stderr.Write(payload)
			}
			out.Write(payload)
		case shellV2IDExit:
			var code int
			if len(payload) > 0 {
				code = int(payload[0])
			}
			if code != 0 {
				return out.Bytes(), fmt.Errorf("unexpected error code %d", code)
			}
			return out.Bytes(), nil
		}
	}
}

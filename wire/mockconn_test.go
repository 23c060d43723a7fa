package wire

import (
	"bytes"
	"io"
	"net"
	"strings"
	"time"
)

// fakeConn is a minimal net.Conn for sync protocol unit tests: reads come
// from an io.Reader fixture, writes go to an optional io.Writer sink.
type fakeConn struct {
	io.Reader
	io.Writer
}

func (fakeConn) Close() error                       { return nil }
func (fakeConn) LocalAddr() net.Addr                { return fakeAddr{} }
func (fakeConn) RemoteAddr() net.Addr                { return fakeAddr{} }
func (fakeConn) SetDeadline(t time.Time) error       { return nil }
func (fakeConn) SetReadDeadline(t time.Time) error   { return nil }
func (fakeConn) SetWriteDeadline(t time.Time) error  { return nil }

type fakeAddr struct{}

func (fakeAddr) Network() string { return "fake" }
func (fakeAddr) String() string  { return "fake" }

// makeMockConnBuf returns a net.Conn that reads and writes through buf, so a
// test can write fixture bytes into buf before the call under test, and
// inspect the bytes a SendRequest call appended afterward.
func makeMockConnBuf(buf *bytes.Buffer) net.Conn {
	return fakeConn{Reader: buf, Writer: buf}
}

// makeMockConnStr returns a net.Conn that reads s and discards writes.
func makeMockConnStr(s string) net.Conn {
	return fakeConn{Reader: strings.NewReader(s), Writer: io.Discard}
}

// makeMockConn2 returns a net.Conn that reads s for status/response bytes
// and records writes into buf.
func makeMockConn2(s string, buf *bytes.Buffer) net.Conn {
	return fakeConn{Reader: strings.NewReader(s), Writer: buf}
}

package adb

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/hollowtree/adbhost/wire"
)

// mockConn is the net.Conn a MockServer hands back from Dial. When Buffer is
// set, reads pull from it, simulating the bytes a shell/sync socket would
// stream back; otherwise reads return io.EOF, as from a connection already
// closed by the other side.
type mockConn struct {
	Buffer io.Reader
}

func (c mockConn) Read(p []byte) (int, error) {
	if c.Buffer == nil {
		return 0, io.EOF
	}
	return c.Buffer.Read(p)
}
func (mockConn) Write(p []byte) (int, error)          { return len(p), nil }
func (mockConn) Close() error                         { return nil }
func (mockConn) LocalAddr() net.Addr                  { return mockAddr{} }
func (mockConn) RemoteAddr() net.Addr                 { return mockAddr{} }
func (mockConn) SetDeadline(t time.Time) error        { return nil }
func (mockConn) SetReadDeadline(t time.Time) error    { return nil }
func (mockConn) SetWriteDeadline(t time.Time) error   { return nil }

type mockAddr struct{}

func (mockAddr) Network() string { return "mock" }
func (mockAddr) String() string  { return "mock" }

// MockServer is a test double for the server interface. Instead of dialing a
// real adb server, Dial hands back a connection that records every sent
// request, replies to ReadStatus with the fixed Status, and serves successive
// ReadMessage calls from Messages. If mockConn.Buffer is set, reads against
// the connection itself (used by shell-style "read until the stream closes"
// services) are served from it.
type MockServer struct {
	Status   string
	Messages []string
	Requests []string
	mockConn mockConn

	nextMessage int
}

func (s *MockServer) Start() error { return nil }

func (s *MockServer) Dial() (wire.IConn, error) {
	return &mockDeviceConn{mockConn: s.mockConn, server: s}, nil
}

type mockDeviceConn struct {
	mockConn
	server *MockServer
}

var _ wire.IConn = &mockDeviceConn{}

func (c *mockDeviceConn) SendMessage(msg []byte) error {
	c.server.Requests = append(c.server.Requests, string(msg))
	return nil
}

func (c *mockDeviceConn) ReadStatus(req string) (string, error) {
	if c.server.Status == wire.StatusFailure {
		msg, _ := c.ReadMessage()
		return "", fmt.Errorf("server error: %s", msg)
	}
	return c.server.Status, nil
}

func (c *mockDeviceConn) ReadMessage() ([]byte, error) {
	if c.server.nextMessage >= len(c.server.Messages) {
		return nil, io.EOF
	}
	msg := c.server.Messages[c.server.nextMessage]
	c.server.nextMessage++
	return []byte(msg), nil
}

func (c *mockDeviceConn) ReadUntilEof() ([]byte, error) {
	if c.server.mockConn.Buffer != nil {
		return io.ReadAll(c.server.mockConn.Buffer)
	}
	var all []byte
	for {
		msg, err := c.ReadMessage()
		if err == io.EOF {
			return all, nil
		}
		if err != nil {
			return all, err
		}
		all = append(all, msg...)
	}
}

func (c *mockDeviceConn) RoundTripSingleResponse(req []byte) ([]byte, error) {
	if err := c.SendMessage(req); err != nil {
		return nil, err
	}
	if _, err := c.ReadStatus(string(req)); err != nil {
		return nil, err
	}
	return c.ReadMessage()
}

// newMockServerBuffer is a convenience for tests that want a shell-style
// stream of raw bytes instead of length-framed Messages.
func newMockServerBuffer(status string, body string) *MockServer {
	return &MockServer{Status: status, mockConn: mockConn{Buffer: bytes.NewBufferString(body)}}
}

package wire

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"sync"
)

// ErrorResponseDetails is an error message returned by the server for a particular request.
type ErrorResponseDetails struct {
	Request   string
	ServerMsg string
}

// deviceNotFoundMessagePattern matches all possible error messages returned by adb servers to
// report that a matching device was not found. Used to set the DeviceNotFound error code on
// error values.
//
// Old servers send "device not found", and newer ones "device 'serial' not found".
var deviceNotFoundMessagePattern = regexp.MustCompile(`device( '.*')? not found`)

func adbServerError(request string, serverMsg string) error {
	sentinel := ErrAdb
	if deviceNotFoundMessagePattern.MatchString(serverMsg) {
		sentinel = ErrDeviceNotFound
	}
	return &AdbServerError{Request: request, ServerMsg: serverMsg, sentinel: sentinel}
}

// IsAdbServerErrorMatching returns true if err is an *AdbServerError for which
// predicate returns true when passed its ServerMsg.
func IsAdbServerErrorMatching(err error, predicate func(string) bool) bool {
	var serverErr *AdbServerError
	if errors.As(err, &serverErr) {
		return predicate(serverErr.ServerMsg)
	}
	return false
}

func errIncompleteMessage(description string, actual int, expected int) error {
	return fmt.Errorf("%w: incomplete %s: read %d bytes, expecting %d", ErrProtocolFault, description, actual, expected)
}

// MultiCloseable wraps c in a ReadWriteCloser that can be safely closed multiple times.
func MultiCloseable(c io.ReadWriteCloser) io.ReadWriteCloser {
	return &multiCloseable{ReadWriteCloser: c}
}

type multiCloseable struct {
	io.ReadWriteCloser
	closeOnce sync.Once
	err       error
}

func (c *multiCloseable) Close() error {
	c.closeOnce.Do(func() {
		c.err = c.ReadWriteCloser.Close()
	})
	return c.err
}

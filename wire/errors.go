package wire

import (
	"errors"
)

var (
	ErrAssertion = errors.New("AssertionError")
	ErrParse     = errors.New("ParseError")
	// ErrInvalidArgument a required field (device serial, endpoint, stream) was empty or nil.
	ErrInvalidArgument = errors.New("InvalidArgument")
	// ErrServerNotAvailable the server was not available on the requested port.
	ErrServerNotAvailable = errors.New("ServerNotAvailable")
	// ErrNetwork general network error communicating with the server.
	ErrNetwork = errors.New("Network")
	// ErrConnectionReset the connection to the server was reset in the middle of an operation. Server probably died.
	ErrConnectionReset = errors.New("ConnectionReset")
	// ErrProtocolFault the server sent something that doesn't match the wire protocol:
	// a short read, or four status bytes that are neither OKAY nor FAIL.
	ErrProtocolFault = errors.New("ProtocolFault")
	// ErrAdb the server returned a FAIL status with a diagnostic message.
	ErrAdb = errors.New("AdbError")
	// ErrDeviceNotFound the server returned a "device not found" error.
	ErrDeviceNotFound = errors.New("DeviceNotFound")
	// ErrMultipleDevices more than one attached device matched a selector that requires exactly one.
	ErrMultipleDevices = errors.New("MultipleDevicesMatch")
	// ErrFileNoExist tried to perform an operation on a path that doesn't exist on the device.
	ErrFileNoExist = errors.New("FileNoExist")
	// ErrShellUnresponsive a streaming shell read failed without EOF and wasn't caused by cancellation.
	ErrShellUnresponsive = errors.New("ShellCommandUnresponsive")
	// ErrPermissionDenied a console receiver recognized a "permission denied"/"access denied" line.
	ErrPermissionDenied = errors.New("PermissionDenied")
	// ErrFileNotFound a console receiver recognized a "not found"/"no such file or directory" line.
	ErrFileNotFound = errors.New("FileNotFound")
	// ErrUnknownOption a console receiver recognized an "Unknown option" line.
	ErrUnknownOption = errors.New("UnknownOption")
	// ErrCommandAborting a console receiver recognized an "Aborting." line.
	ErrCommandAborting = errors.New("CommandAborting")
)

// AdbServerError is returned when the server answers a request with a FAIL
// status and a diagnostic message. Use errors.Is against ErrAdb or
// ErrDeviceNotFound, or IsAdbServerErrorMatching to inspect ServerMsg.
type AdbServerError struct {
	Request   string
	ServerMsg string
	sentinel  error
}

func (e *AdbServerError) Error() string {
	return e.sentinel.Error() + ": request " + e.Request + ", server error: " + e.ServerMsg
}

func (e *AdbServerError) Unwrap() error {
	return e.sentinel
}

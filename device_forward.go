package adb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hollowtree/adbhost/wire"
)

// assertSerial is dialDevice's empty-serial guard, reused by the
// forward operations below so they refuse a blank serial before ever
// touching a socket, the same way dialDevice does for transport-switch
// requests.
func (c *Device) assertSerial() error {
	if c.descriptor.descriptorType == deviceSerial && c.descriptor.serial == "" {
		return fmt.Errorf("%w: device serial cannot be blank", wire.ErrInvalidArgument)
	}
	return nil
}

// canonicalForwardSpec parses spec against the forward spec grammar and
// re-renders it, rejecting malformed specs before they ever reach the wire.
func canonicalForwardSpec(spec string) (string, error) {
	parsed, err := ForwardSpecFromString(spec)
	if err != nil {
		return "", err
	}
	return parsed.ToString(), nil
}

// DoForward creates a host->device TCP forward, binding local on the host
// and routing it to remote on the device. Corresponds to the command:
//
//	adb forward [--no-rebind] <local> <remote>
//
// local and remote are parsed against the forward spec grammar (ForwardSpec)
// before being sent. The server replies with two sequential OKAY frames (one
// for the implicit transport switch embedded in the host-serial: prefix, one
// for the forward accept) followed by a length-prefixed string naming the
// allocated port, which is empty or unparsable for anything but "tcp:0".
func (c *Device) DoForward(local, remote string, norebind bool) error {
	if err := c.assertSerial(); err != nil {
		return wrapClientError(err, c, "DoForward")
	}
	local, err := canonicalForwardSpec(local)
	if err != nil {
		return wrapClientError(err, c, "DoForward")
	}
	remote, err = canonicalForwardSpec(remote)
	if err != nil {
		return wrapClientError(err, c, "DoForward")
	}

	conn, err := c.server.Dial()
	if err != nil {
		return wrapClientError(err, c, "DoForward")
	}
	defer conn.Close()

	rebind := ""
	if norebind {
		rebind = "norebind:"
	}
	req := fmt.Sprintf("%s:forward:%s%s;%s", c.descriptor.getHostPrefix(), rebind, local, remote)
	if err = conn.SendMessage([]byte(req)); err != nil {
		return wrapClientError(err, c, "DoForward")
	}

	if _, err = conn.ReadStatus(req); err != nil {
		return wrapClientError(err, c, "DoForward")
	}
	if _, err = conn.ReadStatus(req); err != nil {
		return wrapClientError(err, c, "DoForward")
	}

	// The allocated port string may be empty (fixed local spec) or
	// unparsable; callers that care about the ephemeral port use
	// DoForwardPort instead.
	_, _ = conn.ReadMessage()
	return nil
}

// DoForwardPort is DoForward for "tcp:0" (let the host pick a port),
// returning the port the server actually bound.
func (c *Device) DoForwardPort(remote string, norebind bool) (int, error) {
	if err := c.assertSerial(); err != nil {
		return 0, wrapClientError(err, c, "DoForwardPort")
	}
	remote, err := canonicalForwardSpec(remote)
	if err != nil {
		return 0, wrapClientError(err, c, "DoForwardPort")
	}

	conn, err := c.server.Dial()
	if err != nil {
		return 0, wrapClientError(err, c, "DoForwardPort")
	}
	defer conn.Close()

	rebind := ""
	if norebind {
		rebind = "norebind:"
	}
	req := fmt.Sprintf("%s:forward:%s%s;%s", c.descriptor.getHostPrefix(), rebind, NewTCPForwardSpec(0).ToString(), remote)
	if err = conn.SendMessage([]byte(req)); err != nil {
		return 0, wrapClientError(err, c, "DoForwardPort")
	}
	if _, err = conn.ReadStatus(req); err != nil {
		return 0, wrapClientError(err, c, "DoForwardPort")
	}
	if _, err = conn.ReadStatus(req); err != nil {
		return 0, wrapClientError(err, c, "DoForwardPort")
	}

	portMsg, err := conn.ReadMessage()
	if err != nil {
		return 0, wrapClientError(err, c, "DoForwardPort")
	}
	// The allocated port comes back as a 4-hex-digit string (e.g. "04D2"
	// for 1234), matching the length-prefix encoding the rest of the
	// wire protocol uses for numbers.
	port, err := strconv.ParseInt(strings.TrimSpace(string(portMsg)), 16, 32)
	if err != nil {
		return 0, nil
	}
	return int(port), nil
}

// DoRemoveForward removes a single forward entry previously created with
// DoForward, identified by its local spec. Corresponds to the command:
//
//	adb forward --remove <local>
func (c *Device) DoRemoveForward(local string) error {
	if err := c.assertSerial(); err != nil {
		return wrapClientError(err, c, "DoRemoveForward")
	}
	local, err := canonicalForwardSpec(local)
	if err != nil {
		return wrapClientError(err, c, "DoRemoveForward")
	}

	conn, err := c.server.Dial()
	if err != nil {
		return wrapClientError(err, c, "DoRemoveForward")
	}
	defer conn.Close()

	req := fmt.Sprintf("%s:killforward:%s", c.descriptor.getHostPrefix(), local)
	if err = conn.SendMessage([]byte(req)); err != nil {
		return wrapClientError(err, c, "DoRemoveForward")
	}
	if _, err = conn.ReadStatus(req); err != nil {
		return wrapClientError(err, c, "DoRemoveForward")
	}
	return nil
}

// DoListForward lists the forwards registered for this device. Corresponds
// to the command:
//
//	adb forward --list
func (c *Device) DoListForward() ([]ForwardEntry, error) {
	if err := c.assertSerial(); err != nil {
		return nil, wrapClientError(err, c, "DoListForward")
	}

	req := fmt.Sprintf("%s:list-forward", c.descriptor.getHostPrefix())
	resp, err := roundTripSingleResponse(c.server, req)
	if err != nil {
		return nil, wrapClientError(err, c, "DoListForward")
	}
	return parseForwardList(resp), nil
}

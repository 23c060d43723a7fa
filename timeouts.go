package adb

import (
	"time"

	"github.com/hollowtree/adbhost/wire"
)

// roundTripSingleResponseTimeout is roundTripSingleResponse but bounds the
// whole request/response exchange with a deadline, for host services (like
// host:connect) that may hang far longer than a local loopback round trip
// normally takes.
func roundTripSingleResponseTimeout(s server, req string, timeout time.Duration) ([]byte, error) {
	conn, err := s.Dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(timeout))
	}
	return conn.RoundTripSingleResponse([]byte(req))
}

// readStatusWithTimeout reads a status from conn, failing the read if it
// doesn't complete within timeout.
func readStatusWithTimeout(conn wire.IConn, req string, timeout time.Duration) (string, error) {
	if timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(timeout))
	}
	return conn.ReadStatus(req)
}

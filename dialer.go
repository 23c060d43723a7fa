package adb

import (
	"fmt"
	"net"

	"github.com/hollowtree/adbhost/wire"
)

// Dialer knows how to create connections to an adb server.
type Dialer interface {
	Dial(address string) (*wire.Conn, error)
}

type tcpDialer struct{}

// Dial connects over TCP to the adb server at address (host:port).
func (tcpDialer) Dial(address string) (*wire.Conn, error) {
	netConn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: error dialing %s", wire.ErrServerNotAvailable, address)
	}

	return wire.NewConn(netConn), nil
}

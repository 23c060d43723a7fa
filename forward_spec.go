package adb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hollowtree/adbhost/wire"
)

// ForwardProtocol is the transport half of a ForwardSpec, naming which
// socket family and addressing scheme a forward endpoint uses.
type ForwardProtocol string

const (
	ForwardTCP             ForwardProtocol = "tcp"
	ForwardLocalAbstract   ForwardProtocol = "localabstract"
	ForwardLocalReserved   ForwardProtocol = "localreserved"
	ForwardLocalFilesystem ForwardProtocol = "localfilesystem"
	ForwardDev             ForwardProtocol = "dev"
	ForwardJdwp            ForwardProtocol = "jdwp"
)

// ForwardSpec is one endpoint of a port forward, e.g. "tcp:1234" or
// "localabstract:my-socket". It's the typed counterpart of the raw strings
// DoForward/DoForwardPort accept on the wire; ToString/FromString round-trip
// exactly, per the forward spec grammar:
//
//	tcp:<port>
//	localabstract:<name>
//	localreserved:<name>
//	localfilesystem:<name>
//	dev:<path>
//	jdwp:<pid>
type ForwardSpec struct {
	Protocol ForwardProtocol
	// PortOrPid holds the numeric argument for tcp/jdwp specs.
	PortOrPid int
	// Name holds the string argument for localabstract/localreserved/
	// localfilesystem/dev specs.
	Name string
}

// NewTCPForwardSpec is a ForwardSpec for "tcp:<port>".
func NewTCPForwardSpec(port int) ForwardSpec {
	return ForwardSpec{Protocol: ForwardTCP, PortOrPid: port}
}

// NewJdwpForwardSpec is a ForwardSpec for "jdwp:<pid>".
func NewJdwpForwardSpec(pid int) ForwardSpec {
	return ForwardSpec{Protocol: ForwardJdwp, PortOrPid: pid}
}

// NewNamedForwardSpec is a ForwardSpec for a protocol that takes a name or
// path argument (localabstract, localreserved, localfilesystem, dev).
func NewNamedForwardSpec(protocol ForwardProtocol, name string) ForwardSpec {
	return ForwardSpec{Protocol: protocol, Name: name}
}

// ToString renders the canonical wire form of the spec, e.g. "tcp:5037".
func (s ForwardSpec) ToString() string {
	switch s.Protocol {
	case ForwardTCP, ForwardJdwp:
		return fmt.Sprintf("%s:%d", s.Protocol, s.PortOrPid)
	default:
		return fmt.Sprintf("%s:%s", s.Protocol, s.Name)
	}
}

// String satisfies fmt.Stringer with the same canonical form as ToString.
func (s ForwardSpec) String() string {
	return s.ToString()
}

// ForwardSpecFromString parses the canonical wire form of a forward spec,
// e.g. "tcp:5037" or "localabstract:my-socket". It's the inverse of
// ToString: for every valid ForwardSpec s, ForwardSpecFromString(s.ToString())
// == s.
func ForwardSpecFromString(spec string) (ForwardSpec, error) {
	protocol, arg, ok := strings.Cut(spec, ":")
	if !ok {
		return ForwardSpec{}, fmt.Errorf("%w: malformed forward spec %q", wire.ErrParse, spec)
	}

	switch ForwardProtocol(protocol) {
	case ForwardTCP:
		port, err := strconv.Atoi(arg)
		if err != nil {
			return ForwardSpec{}, fmt.Errorf("%w: invalid tcp port in forward spec %q", wire.ErrParse, spec)
		}
		return NewTCPForwardSpec(port), nil
	case ForwardJdwp:
		pid, err := strconv.Atoi(arg)
		if err != nil {
			return ForwardSpec{}, fmt.Errorf("%w: invalid jdwp pid in forward spec %q", wire.ErrParse, spec)
		}
		return NewJdwpForwardSpec(pid), nil
	case ForwardLocalAbstract, ForwardLocalReserved, ForwardLocalFilesystem, ForwardDev:
		return NewNamedForwardSpec(ForwardProtocol(protocol), arg), nil
	default:
		return ForwardSpec{}, fmt.Errorf("%w: unrecognized forward protocol %q in spec %q", wire.ErrParse, protocol, spec)
	}
}

package adb

import (
	"testing"

	"github.com/hollowtree/adbhost/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardSpec_RoundTrip(t *testing.T) {
	specs := []ForwardSpec{
		NewTCPForwardSpec(5037),
		NewTCPForwardSpec(0),
		NewJdwpForwardSpec(1234),
		NewNamedForwardSpec(ForwardLocalAbstract, "my-socket"),
		NewNamedForwardSpec(ForwardLocalReserved, "my-socket"),
		NewNamedForwardSpec(ForwardLocalFilesystem, "/tmp/my-socket"),
		NewNamedForwardSpec(ForwardDev, "/dev/ttyUSB0"),
	}

	for _, spec := range specs {
		parsed, err := ForwardSpecFromString(spec.ToString())
		require.NoError(t, err)
		assert.Equal(t, spec, parsed)
	}
}

func TestForwardSpecFromString_Malformed(t *testing.T) {
	_, err := ForwardSpecFromString("tcp-no-colon")
	assert.ErrorIs(t, err, wire.ErrParse)

	_, err = ForwardSpecFromString("tcp:notaport")
	assert.ErrorIs(t, err, wire.ErrParse)

	_, err = ForwardSpecFromString("jdwp:notapid")
	assert.ErrorIs(t, err, wire.ErrParse)

	_, err = ForwardSpecFromString("vsock:1234")
	assert.ErrorIs(t, err, wire.ErrParse)
}

package adb

// DeviceState represents the states adb reports for a device in `adb devices -l`
// or `host:track-devices`.
// A device can be communicated with only when it's in StateOnline.
// A USB device will make the following state transitions:
//
//	Plugged in: StateDisconnected->StateOffline->StateOnline
//	Unplugged:  StateOnline->StateDisconnected
type DeviceState int8

const (
	StateUnknown DeviceState = iota
	// StateInvalid is returned by operations that failed to determine a
	// device's state at all, as opposed to StateUnknown which means "the
	// server reported a state token we don't recognize".
	StateInvalid
	StateUnauthorized
	StateAuthorizing
	StateDisconnected
	StateOffline
	StateOnline
	StateHost
	StateBootloader
	StateRecovery
	StateSideload
	StateNoPermissions
)

func (s DeviceState) String() string {
	switch s {
	case StateInvalid:
		return "invalid"
	case StateUnauthorized:
		return "unauthorized"
	case StateAuthorizing:
		return "authorizing"
	case StateDisconnected:
		return "disconnected"
	case StateOffline:
		return "offline"
	case StateOnline:
		return "device"
	case StateHost:
		return "host"
	case StateBootloader:
		return "bootloader"
	case StateRecovery:
		return "recovery"
	case StateSideload:
		return "sideload"
	case StateNoPermissions:
		return "no permissions"
	default:
		return "unknown"
	}
}

var deviceStateStrings = map[string]DeviceState{
	"":             StateDisconnected,
	"offline":      StateOffline,
	"device":       StateOnline,
	"unauthorized": StateUnauthorized,
	"authorizing":  StateAuthorizing,
	"host":         StateHost,
	"bootloader":   StateBootloader,
	"recovery":     StateRecovery,
	"sideload":     StateSideload,
	"no permissions": StateNoPermissions,
}

// parseDeviceState maps a raw state token to a DeviceState. Unknown tokens
// map to StateUnknown rather than erroring, since adb has grown new device
// states over the years and callers shouldn't need a library update to
// tolerate one appearing in a device listing.
func parseDeviceState(str string) DeviceState {
	state, ok := deviceStateStrings[str]
	if !ok {
		return StateUnknown
	}
	return state
}

package adb

import "fmt"

type deviceDescriptorType int

const (
	deviceAny deviceDescriptorType = iota
	deviceUsb
	deviceLocal
	deviceSerial
)

// DeviceDescriptor selects a device to communicate with. Create one with
// AnyDevice, AnyUsbDevice, AnyLocalDevice, or DeviceWithSerial.
type DeviceDescriptor struct {
	descriptorType deviceDescriptorType
	serial         string
}

// AnyDevice matches any attached device, USB or local, erroring if more than
// one is attached. Corresponds to not passing -s/-d/-e to the adb command.
func AnyDevice() DeviceDescriptor {
	return DeviceDescriptor{descriptorType: deviceAny}
}

// AnyUsbDevice matches any attached USB device, erroring if more than one is
// attached. Corresponds to adb -d.
func AnyUsbDevice() DeviceDescriptor {
	return DeviceDescriptor{descriptorType: deviceUsb}
}

// AnyLocalDevice matches any local (TCP/emulator) device, erroring if more
// than one is attached. Corresponds to adb -e.
func AnyLocalDevice() DeviceDescriptor {
	return DeviceDescriptor{descriptorType: deviceLocal}
}

// DeviceWithSerial matches the device with the given serial number.
// Corresponds to adb -s <serial>.
func DeviceWithSerial(serial string) DeviceDescriptor {
	return DeviceDescriptor{descriptorType: deviceSerial, serial: serial}
}

func (d DeviceDescriptor) String() string {
	switch d.descriptorType {
	case deviceUsb:
		return "USB device"
	case deviceLocal:
		return "local device"
	case deviceSerial:
		return fmt.Sprintf("device serial %s", d.serial)
	default:
		return "any device"
	}
}

// getHostPrefix returns the host-service prefix used to target this
// descriptor's device, e.g. "host-serial:xyz" or "host-usb".
// See https://android.googlesource.com/platform/system/core/+/master/adb/SERVICES.TXT.
func (d DeviceDescriptor) getHostPrefix() string {
	switch d.descriptorType {
	case deviceUsb:
		return "host-usb"
	case deviceLocal:
		return "host-local"
	case deviceSerial:
		return fmt.Sprintf("host-serial:%s", d.serial)
	default:
		return "host"
	}
}

// getTransportDescriptor returns the transport-switch request suffix used
// with a "host:" prefix, e.g. "transport-usb" or "transport:serial".
func (d DeviceDescriptor) getTransportDescriptor() string {
	switch d.descriptorType {
	case deviceUsb:
		return "transport-usb"
	case deviceLocal:
		return "transport-local"
	case deviceSerial:
		return fmt.Sprintf("transport:%s", d.serial)
	default:
		return "transport-any"
	}
}

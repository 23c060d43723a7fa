package adb

// NewFileService dials serial and switches the connection into sync mode,
// returning a FileService ready for Stat/List/Recv/Send.
func NewFileService(client *Adb, serial string) (*FileService, error) {
	return client.Device(DeviceWithSerial(serial)).NewFileService()
}

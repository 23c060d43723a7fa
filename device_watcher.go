package adb

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

// DeviceStateChangedEvent describes a transition a device made, as reported
// by a single block of `host:track-devices` output.
type DeviceStateChangedEvent struct {
	Serial   string
	OldState DeviceState
	NewState DeviceState
}

func (e DeviceStateChangedEvent) CameOnline() bool {
	return e.OldState != StateOnline && e.NewState == StateOnline
}

func (e DeviceStateChangedEvent) WentOffline() bool {
	return e.OldState == StateOnline && e.NewState != StateOnline
}

// DeviceWatcher publishes device connection/disconnection events received
// from the adb server's `host:track-devices` service. Call NewDeviceWatcher
// on an Adb to create one; read events from C until it closes, then check
// Err for the reason the watcher stopped.
type DeviceWatcher struct {
	server server

	eventChan chan DeviceStateChangedEvent

	mu       sync.Mutex
	lastKnownStates map[string]DeviceState
	err             error
}

func newDeviceWatcher(server server) *DeviceWatcher {
	watcher := &DeviceWatcher{
		server:          server,
		eventChan:       make(chan DeviceStateChangedEvent),
		lastKnownStates: make(map[string]DeviceState),
	}
	go watcher.run()
	return watcher
}

// C returns the channel on which device state change events are delivered.
// The channel is closed when the watcher stops, at which point Err reports why.
func (w *DeviceWatcher) C() <-chan DeviceStateChangedEvent {
	return w.eventChan
}

// Err returns the error that caused the watcher to stop, if any. Should only
// be called after C has closed.
func (w *DeviceWatcher) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *DeviceWatcher) setErr(err error) {
	w.mu.Lock()
	w.err = err
	w.mu.Unlock()
}

func (w *DeviceWatcher) run() {
	defer close(w.eventChan)

	conn, err := w.server.Dial()
	if err != nil {
		w.setErr(fmt.Errorf("error dialing server to track devices: %w", err))
		return
	}
	defer conn.Close()

	req := "host:track-devices"
	if err := conn.SendMessage([]byte(req)); err != nil {
		w.setErr(fmt.Errorf("error requesting device tracking: %w", err))
		return
	}
	if _, err := conn.ReadStatus(req); err != nil {
		w.setErr(fmt.Errorf("error requesting device tracking: %w", err))
		return
	}

	for {
		msg, err := conn.ReadMessage()
		if err != nil {
			w.setErr(fmt.Errorf("error reading device list: %w", err))
			return
		}

		devices, err := parseDeviceList(string(msg), parseDeviceShort)
		if err != nil {
			log.Warnf("device watcher: ignoring malformed device list: %v", err)
			continue
		}
		w.publishDevices(devices)
	}
}

func (w *DeviceWatcher) publishDevices(devices []*DeviceInfo) {
	w.mu.Lock()
	oldStates := w.lastKnownStates
	newStates := make(map[string]DeviceState, len(devices))
	for _, d := range devices {
		newStates[d.Serial] = parseDeviceState(d.State)
	}
	w.lastKnownStates = newStates
	w.mu.Unlock()

	for serial, newState := range newStates {
		oldState, ok := oldStates[serial]
		if !ok {
			oldState = StateDisconnected
		}
		if oldState != newState {
			w.eventChan <- DeviceStateChangedEvent{Serial: serial, OldState: oldState, NewState: newState}
		}
	}
	for serial, oldState := range oldStates {
		if _, stillPresent := newStates[serial]; !stillPresent {
			w.eventChan <- DeviceStateChangedEvent{Serial: serial, OldState: oldState, NewState: StateDisconnected}
		}
	}
}

package services

import (
	"context"

	adb "github.com/hollowtree/adbhost"
	log "github.com/sirupsen/logrus"
)

// InitAdb builds an Adb client pointed at the default loopback server and
// makes sure the server is running.
func InitAdb() (cli *adb.Adb, err error) {
	serverConfig := adb.ServerConfig{
		AutoStart: true,
		Host:      "127.0.0.1",
		Port:      5037,
	}

	cli, err = adb.NewWithConfig(serverConfig)
	if err != nil {
		log.Errorln(err)
		return
	}

	err = cli.StartServer()
	if err != nil {
		log.Errorln(err)
		return
	}
	return
}

// Monitor watches `host:track-devices` and invokes onAdded/onRemoved as
// devices come online and go offline. It blocks until the watcher stops
// (server restart, connection loss) or ctx is done.
func Monitor(ctx context.Context, onAdded, onRemoved func(ctx context.Context, serial string)) (err error) {
	client, err := InitAdb()
	if err != nil {
		return
	}

	watcher := client.NewDeviceWatcher()
	done := ctx.Done()
	for {
		select {
		case <-done:
			return ctx.Err()
		case event, ok := <-watcher.C():
			if !ok {
				return watcher.Err()
			}
			log.Infof("adb-monitor: %+v", event)
			switch {
			case event.CameOnline():
				onAdded(ctx, event.Serial)
			case event.WentOffline():
				onRemoved(ctx, event.Serial)
			}
		}
	}
}

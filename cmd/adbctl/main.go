// adbctl is a small command-line front end over the streaming services
// this library adds on top of goadb: shell execution, logcat, framebuffer
// capture and APK install.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/alecthomas/kingpin/v2"

	adb "github.com/hollowtree/adbhost"
)

var (
	app    = kingpin.New("adbctl", "ADB host-protocol client CLI")
	port   = app.Flag("port", "adb server port").Short('p').Default(fmt.Sprint(adb.AdbPort)).Int()
	serial = app.Flag("serial", "device serial").Short('s').String()

	shellCmd  = app.Command("shell", "run a shell command and stream its output")
	shellArgs = shellCmd.Arg("command", "command line to run").Required().String()

	logcatCmd = app.Command("logcat", "stream the device log")
	logcatIDs = logcatCmd.Arg("buffer", "log buffers to stream (main, system, ...)").Strings()

	screencapCmd = app.Command("screencap", "capture the framebuffer to a raw file")
	screencapOut = screencapCmd.Arg("out", "output file path").Required().String()

	installCmd  = app.Command("install", "install an APK")
	installPath = installCmd.Arg("apk", "path to the APK file").Required().String()
	installArgs = installCmd.Flag("args", "extra pm install arguments").Default("").String()
)

func main() {
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	client, err := adb.NewWithConfig(adb.ServerConfig{Port: *port})
	if err != nil {
		log.Fatal(err)
	}
	if err := client.StartServer(); err != nil {
		log.Fatal(err)
	}

	var descriptor adb.DeviceDescriptor
	if *serial != "" {
		descriptor = adb.DeviceWithSerial(*serial)
	} else {
		descriptor = adb.AnyDevice()
	}
	device := client.Device(descriptor)

	switch cmd {
	case shellCmd.FullCommand():
		runShell(device, *shellArgs)
	case logcatCmd.FullCommand():
		runLogcat(device, *logcatIDs)
	case screencapCmd.FullCommand():
		runScreencap(device, *screencapOut)
	case installCmd.FullCommand():
		runInstall(device, *installPath, *installArgs)
	}
}

func runShell(device *adb.Device, cmd string) {
	receiver := adb.NewConsoleOutputReceiver()
	err := device.ExecuteRemoteCommand(cmd, receiver, nil)
	for _, line := range receiver.Lines {
		fmt.Println(line)
		if err := adb.ThrowOnError(line); err != nil {
			fmt.Fprintln(os.Stderr, "adbctl:", err)
		}
	}
	if err != nil {
		log.Fatal(err)
	}
}

func runLogcat(device *adb.Device, ids []string) {
	if len(ids) == 0 {
		ids = []string{"main"}
	}
	err := device.RunLogService(ids, func(entry *adb.LogEntry) {
		fmt.Printf("%s %5d %5d %s: %s\n", entry.Timestamp.Format("01-02 15:04:05.000"), entry.Pid, entry.Tid, entry.Tag, entry.Message)
	}, nil)
	if err != nil {
		log.Fatal(err)
	}
}

func runScreencap(device *adb.Device, outPath string) {
	fb := device.CreateRefreshableFramebuffer()
	if err := fb.Refresh(device); err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(outPath, fb.Pixels, 0644); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %dx%d frame (%d bytes) to %s\n", fb.Width, fb.Height, len(fb.Pixels), outPath)
}

func runInstall(device *adb.Device, apkPath, args string) {
	if err := device.InstallFileWithBar(apkPath, args); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Success")
}

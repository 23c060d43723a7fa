package adb

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cheggaaa/pb"

	"github.com/hollowtree/adbhost/wire"
)

// installChunkSize is the streaming write size used while uploading an APK
// body to `exec:cmd package 'install'`; it is half the 64 KiB sync-protocol
// chunk size (wire.SyncMaxChunkSize).
const installChunkSize = 32 * 1024

// Install streams an APK from the given reader to the device's package
// manager. size must be the exact byte length of stream, used to build
// the `-S <len>` argument the server requires to know when the body ends.
// Extra pm install flags (e.g. "-r -d") can be passed via args.
//
// Corresponds to the command:
//
//	adb install [args] <path>
func (c *Device) Install(stream io.Reader, size int64, args string) error {
	conn, err := c.dialDevice()
	if err != nil {
		return wrapClientError(err, c, "Install")
	}
	defer conn.Close()

	req := fmt.Sprintf("exec:cmd package 'install' %s -S %d", args, size)
	if err = conn.SendMessage([]byte(req)); err != nil {
		return wrapClientError(err, c, "Install")
	}
	if _, err = conn.ReadStatus(req); err != nil {
		return wrapClientError(err, c, "Install")
	}

	buf := make([]byte, installChunkSize)
	if _, err = io.CopyBuffer(conn, io.LimitReader(stream, size), buf); err != nil {
		return wrapClientError(err, c, "Install")
	}

	// Unlike most responses, which are ISO-8859-1, the terminal status
	// line from `pm install` is UTF-8 text.
	result, err := io.ReadAll(conn)
	if err != nil {
		return wrapClientError(err, c, "Install")
	}

	if string(result) == "Success\n" {
		return nil
	}
	return fmt.Errorf("Install: %w: %s", wire.ErrAdb, strings.TrimRight(string(result), "\n"))
}

// InstallFileWithBar is Install reading from a local APK path, driving a
// terminal progress bar as the body streams.
func (c *Device) InstallFileWithBar(localPath, args string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	bar := pb.New64(info.Size()).SetUnits(pb.U_BYTES)
	bar.Start()
	defer bar.Finish()

	return c.Install(&barReader{r: f, bar: bar}, info.Size(), args)
}

// barReader advances bar by every byte read through it, letting Install's
// plain io.Reader contract drive a progress bar without Install itself
// knowing about one.
type barReader struct {
	r    io.Reader
	bar  *pb.ProgressBar
	read int64
}

func (b *barReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	b.read += int64(n)
	b.bar.Set64(b.read)
	return n, err
}

package adb

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cheggaaa/pb"
	"github.com/hollowtree/adbhost/wire"
)

// DirEntry is a directory entry on a device, as returned by Stat/ListDirEntries.
type DirEntry = wire.DirEntry

// DirEntries iterates over the entries streamed back by a `sync:` LIST
// request, one at a time, matching the os.ReadDir-adjacent iterator shape
// the rest of this package uses for streaming results (compare Receiver).
type DirEntries struct {
	reader *wire.SyncDirReader
	cur    *DirEntry
	err    error
}

// Next advances to the next entry, returning false at the end of the
// directory or on error; check Err afterward to distinguish the two.
func (e *DirEntries) Next() bool {
	if e.err != nil {
		return false
	}
	entries, err := e.reader.ReadDir(1)
	if err == io.EOF {
		return false
	}
	if err != nil {
		e.err = err
		return false
	}
	if len(entries) == 0 {
		return false
	}
	e.cur = entries[0]
	return true
}

// Entry returns the entry most recently advanced to by Next.
func (e *DirEntries) Entry() *DirEntry {
	return e.cur
}

// Err returns the error, if any, that stopped iteration.
func (e *DirEntries) Err() error {
	return e.err
}

// Close closes the underlying sync connection.
func (e *DirEntries) Close() error {
	return e.reader.Close()
}

// FileService is a connection to a device's `sync:` service. It is noted
// here as the minimal set of operations the protocol needs (stat, list, and
// single-file streaming read/write) rather than a full recursive
// push/pull/mkdir client; a fuller implementation is out of scope.
type FileService struct {
	*wire.SyncConn
}

func (s *FileService) Stat(path string) (*DirEntry, error) {
	return s.SyncConn.Stat(path)
}

func (s *FileService) List(path string) (*DirEntries, error) {
	reader, err := s.SyncConn.SendList(path)
	if err != nil {
		return nil, err
	}
	return &DirEntries{reader: reader}, nil
}

// Recv opens a reader streaming the contents of the file at path on device.
func (s *FileService) Recv(path string) (io.ReadCloser, error) {
	return s.SyncConn.Recv(path)
}

// Send opens a writer that creates/overwrites the file at path on device
// with the given permissions, setting its mtime when the writer is closed
// (or the close time, if mtime is zero).
func (s *FileService) Send(path string, mode os.FileMode, mtime time.Time) (io.WriteCloser, error) {
	w, err := s.SyncConn.Send(path, mode, mtime)
	if err != nil {
		return nil, err
	}
	return &syncWriteCloser{w}, nil
}

type syncWriteCloser struct {
	*wire.SyncFileWriter
}

func (w *syncWriteCloser) Close() error {
	return w.CopyDone()
}

// PushFile copies localPath to remotePath on the device, optionally
// reporting progress via a terminal progress bar (github.com/cheggaaa/pb).
func (s *FileService) PushFile(localPath, remotePath string, withBar bool) error {
	info, err := os.Lstat(localPath)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("not regular file: %s", localPath)
	}

	local, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer local.Close()

	writer, err := s.Send(remotePath, info.Mode().Perm(), info.ModTime())
	if err != nil {
		return err
	}
	defer writer.Close()

	if !withBar {
		_, err = io.Copy(writer, local)
		return err
	}

	bar := pb.New64(info.Size()).SetUnits(pb.U_BYTES)
	bar.Start()
	defer bar.Finish()
	_, err = io.Copy(writer, &barReader{r: local, bar: bar})
	return err
}

// PullFile copies remotePath on the device to localPath, optionally
// reporting progress via a terminal progress bar.
func (s *FileService) PullFile(remotePath, localPath string, withBar bool) error {
	info, err := s.Stat(remotePath)
	if err != nil {
		return err
	}

	reader, err := s.Recv(remotePath)
	if err != nil {
		return err
	}
	defer reader.Close()

	local, err := os.Create(localPath)
	if err != nil {
		return err
	}
	defer local.Close()

	if !withBar {
		_, err = io.Copy(local, reader)
		return err
	}

	bar := pb.New(int(info.Size)).SetUnits(pb.U_BYTES)
	bar.Start()
	defer bar.Finish()
	_, err = io.Copy(local, &barReader{r: reader, bar: bar})
	return err
}

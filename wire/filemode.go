package wire

import (
	"os"

	"golang.org/x/sys/unix"
)

// ADB file modes seem to only be 16 bits. Values taken from the Linux
// stat(2) S_IF* constants, which is what the sync protocol puts on the wire.
// golang.org/x/sys/unix carries these as untyped constants rather than
// hand-copied octal literals, since the device side of this protocol is
// always a Linux (or Linux-derived) stat(2).
const (
	ModeDir        uint32 = unix.S_IFDIR
	ModeSymlink    uint32 = unix.S_IFLNK
	ModeSocket     uint32 = unix.S_IFSOCK
	ModeFifo       uint32 = unix.S_IFIFO
	ModeCharDevice uint32 = unix.S_IFCHR
)

// ParseFileModeFromAdb translates a raw sync-protocol mode field into a Go
// os.FileMode. The low permission bits line up directly with Go's; the type
// bits (directory, symlink, ...) don't, so those are translated by hand.
func ParseFileModeFromAdb(modeFromSync uint32) (filemode os.FileMode) {
	switch {
	case modeFromSync&ModeSymlink == ModeSymlink:
		filemode = os.ModeSymlink
	case modeFromSync&ModeDir == ModeDir:
		filemode = os.ModeDir
	case modeFromSync&ModeSocket == ModeSocket:
		filemode = os.ModeSocket
	case modeFromSync&ModeFifo == ModeFifo:
		filemode = os.ModeNamedPipe
	case modeFromSync&ModeCharDevice == ModeCharDevice:
		filemode = os.ModeCharDevice
	}

	filemode |= os.FileMode(modeFromSync).Perm()
	return
}

// IsExecutableOnDevice reports whether any of the owner/group/other execute
// bits are set in a raw sync-protocol mode field, e.g. to decide whether a
// pushed file needs `chmod +x` after Send.
func IsExecutableOnDevice(modeFromSync uint32) bool {
	const executeBits = unix.S_IXUSR | unix.S_IXGRP | unix.S_IXOTH
	return modeFromSync&executeBits != 0
}

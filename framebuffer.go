package adb

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hollowtree/adbhost/wire"
)

// Framebuffer holds the device's current screen contents, captured via the
// `framebuffer:` service. The header layout changed between protocol
// versions: version 1 has no colorSpace field, version >= 2 inserts one
// right after bpp; Refresh detects which is in play by reading the
// leading version word first.
type Framebuffer struct {
	Version     uint32
	Bpp         uint32
	ColorSpace  uint32
	Size        uint32
	Width       uint32
	Height      uint32
	RedOffset   uint32
	RedLength   uint32
	BlueOffset  uint32
	BlueLength  uint32
	GreenOffset uint32
	GreenLength uint32
	AlphaOffset uint32
	AlphaLength uint32

	Pixels []byte
}

// CreateRefreshableFramebuffer returns a Framebuffer whose Refresh method
// re-reads the screen over a fresh `framebuffer:` connection each time.
func (c *Device) CreateRefreshableFramebuffer() *Framebuffer {
	return &Framebuffer{}
}

// Refresh captures a new screen image, replacing the previous contents.
// The pixel buffer is reused (not reallocated) when its size is unchanged
// from the prior capture.
func (fb *Framebuffer) Refresh(c *Device) error {
	conn, err := c.dialDevice()
	if err != nil {
		return wrapClientError(err, c, "Framebuffer.Refresh")
	}
	defer conn.Close()

	req := "framebuffer:"
	if err = conn.SendMessage([]byte(req)); err != nil {
		return wrapClientError(err, c, "Framebuffer.Refresh")
	}
	if _, err = conn.ReadStatus(req); err != nil {
		return wrapClientError(err, c, "Framebuffer.Refresh")
	}

	// Peek the version word; it alone determines whether the remaining
	// header carries a colorSpace field (v2+) or not (v1).
	var versionBuf [4]byte
	if _, err = io.ReadFull(conn, versionBuf[:]); err != nil {
		return fmt.Errorf("Framebuffer.Refresh: %w", err)
	}
	version := binary.LittleEndian.Uint32(versionBuf[:])

	var rest []byte
	switch version {
	case 1:
		// v1: 12 more words after version (no colorSpace).
		rest = make([]byte, 12*4)
	default:
		// v2+: 13 more words after version (colorSpace inserted after
		// bpp). adbd has not shipped a version beyond 2 at the time of
		// writing; treat anything unrecognized as the current layout.
		rest = make([]byte, 13*4)
	}
	if _, err = io.ReadFull(conn, rest); err != nil {
		return fmt.Errorf("Framebuffer.Refresh: %w", err)
	}

	words := make([]uint32, 0, 16)
	words = append(words, version)
	for i := 0; i+4 <= len(rest); i += 4 {
		words = append(words, binary.LittleEndian.Uint32(rest[i:i+4]))
	}

	if version == 1 {
		// v1: version, bpp, size, width, height, red_offset, red_length,
		// blue_offset, blue_length, green_offset, green_length,
		// alpha_offset, alpha_length (no colorSpace).
		fb.Version = words[0]
		fb.Bpp = words[1]
		fb.Size = words[2]
		fb.Width = words[3]
		fb.Height = words[4]
		fb.RedOffset, fb.RedLength = words[5], words[6]
		fb.BlueOffset, fb.BlueLength = words[7], words[8]
		fb.GreenOffset, fb.GreenLength = words[9], words[10]
		fb.AlphaOffset, fb.AlphaLength = words[11], words[12]
	} else {
		fb.Version = words[0]
		fb.Bpp = words[1]
		fb.ColorSpace = words[2]
		fb.Size = words[3]
		fb.Width = words[4]
		fb.Height = words[5]
		fb.RedOffset, fb.RedLength = words[6], words[7]
		fb.BlueOffset, fb.BlueLength = words[8], words[9]
		fb.GreenOffset, fb.GreenLength = words[10], words[11]
		fb.AlphaOffset, fb.AlphaLength = words[12], words[13]
	}

	if cap(fb.Pixels) < int(fb.Size) || uint32(len(fb.Pixels)) != fb.Size {
		fb.Pixels = make([]byte, fb.Size)
	}
	if _, err = io.ReadFull(conn, fb.Pixels); err != nil {
		return fmt.Errorf("Framebuffer.Refresh: %w: %v", wire.ErrProtocolFault, err)
	}
	return nil
}

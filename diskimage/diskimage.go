// Package diskimage provides the floppy disk images that can be inserted
// into a drive. The drive sees every image as a sequence of MFM encoded
// tracks, regardless of how the image stores them.
package diskimage

import (
	"errors"
)

const (
	Heads = 2

	// standard double density disks have 80 cylinders. some disks use a
	// few more
	Cylinders    = 80
	MaxCylinders = 84
)

// Sentinel errors. Detail is added by wrapping.
var (
	ErrFormat         = errors.New("diskimage: unrecognised format")
	ErrNoTrack        = errors.New("diskimage: no such track")
	ErrWriteProtected = errors.New("diskimage: disk is write protected")
	ErrTrackFormat    = errors.New("diskimage: track cannot be stored")
)

// DiskFile is implemented by all disk image types.
type DiskFile interface {
	Label() string

	// the number of cylinders on the disk
	Cylinders() int

	// ReadMFMTrack returns the MFM encoded track. the returned slice can be
	// modified by the caller
	ReadMFMTrack(cyl int, head int) ([]byte, error)

	// WriteMFMTrack replaces the track with MFM data that has been written
	// by the drive
	WriteMFMTrack(cyl int, head int, mfm []byte) error

	WriteProtected() bool

	// Modified is true if a track has been written since the image was
	// loaded or last saved
	Modified() bool

	// Bytes returns the image in its file format. Modified is reset
	Bytes() []byte
}

func trackIndex(cyl int, head int) int {
	return cyl*Heads + head
}

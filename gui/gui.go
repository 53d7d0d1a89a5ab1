// Package gui is the meeting point of the emulation and the front end. The
// emulation and the front end run in different goroutines and only
// communicate through the channels of the GUI type.
package gui

import (
	"image"

	"github.com/jetsetilly/amichip/hardware/spec"
)

type State int

const (
	StateRunning State = iota
	StatePaused
)

func (s State) String() string {
	if s == StatePaused {
		return "paused"
	}
	return "running"
}

// Image is a completed frame
type Image struct {
	Main *image.RGBA

	// the frame number the image was taken from
	ID int

	// the position of the beam in the image. only drawn when the emulation is
	// paused
	Cursor [2]int

	// the power LED and the activity LED of each drive
	LED      bool
	DriveLED [4]bool
}

type GUI struct {
	SetImage   chan Image
	State      chan State
	AudioSetup chan AudioSetup
	UserInput  chan Input

	// commands for the debugger. the first entry is the command name
	Commands chan []string

	// called by the front end on every update if it is not nil
	UpdateGUI func() error
}

func NewGUI() *GUI {
	return &GUI{
		SetImage:   make(chan Image, 1),
		State:      make(chan State, 1),
		AudioSetup: make(chan AudioSetup, 1),
		UserInput:  make(chan Input, 10),
		Commands:   make(chan []string, 1),
	}
}

// FrameImage copies an ARGB frame buffer into an image. The image is created
// if img is nil
func FrameImage(frame []uint32, img *image.RGBA) *image.RGBA {
	if img == nil {
		img = image.NewRGBA(image.Rect(0, 0, spec.FrameWidth, spec.FrameHeight))
	}
	n := min(len(frame), len(img.Pix)/4)
	for i := range n {
		r, g, b, a := spec.RGBA(frame[i])
		p := img.Pix[i*4 : i*4+4 : i*4+4]
		p[0] = r
		p[1] = g
		p[2] = b
		p[3] = a
	}
	return img
}

// CursorPosition converts a beam position to a position in a frame image
func CursorPosition(hpos int32, vpos int32) [2]int {
	x := int(hpos-spec.FrameLeft) * 2
	y := int(vpos-spec.FrameTop) * 2
	return [2]int{max(x, 0), max(y, 0)}
}

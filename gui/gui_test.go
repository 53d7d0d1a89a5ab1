package gui_test

import (
	"testing"

	"github.com/jetsetilly/amichip/gui"
	"github.com/jetsetilly/amichip/hardware/spec"
	"github.com/jetsetilly/amichip/test"
)

func TestFrameImage(t *testing.T) {
	frame := make([]uint32, spec.FrameWidth*spec.FrameHeight)
	frame[0] = spec.RGB(0xf00)
	frame[len(frame)-1] = spec.RGB(0x08f)

	img := gui.FrameImage(frame, nil)
	test.ExpectEquality(t, img.Bounds().Dx(), spec.FrameWidth)
	test.ExpectEquality(t, img.Bounds().Dy(), spec.FrameHeight)
	test.ExpectEquality(t, [4]uint8(img.Pix[0:4]), [4]uint8{0xff, 0x00, 0x00, 0xff})

	n := len(img.Pix)
	test.ExpectEquality(t, [4]uint8(img.Pix[n-4:n]), [4]uint8{0x00, 0x88, 0xff, 0xff})

	// the image is reused
	frame[0] = spec.RGB(0x000)
	again := gui.FrameImage(frame, img)
	test.ExpectEquality(t, again == img, true)
	test.ExpectEquality(t, [4]uint8(img.Pix[0:4]), [4]uint8{0x00, 0x00, 0x00, 0xff})
}

func TestCursorPosition(t *testing.T) {
	test.ExpectEquality(t, gui.CursorPosition(spec.FrameLeft, spec.FrameTop), [2]int{0, 0})
	test.ExpectEquality(t, gui.CursorPosition(spec.FrameLeft+10, spec.FrameTop+1), [2]int{20, 2})
	test.ExpectEquality(t, gui.CursorPosition(0, 0), [2]int{0, 0})
}

package disk_test

import (
	"testing"

	"github.com/jetsetilly/amichip/diskimage"
	"github.com/jetsetilly/amichip/diskimage/adf"
	"github.com/jetsetilly/amichip/diskimage/mfm"
	"github.com/jetsetilly/amichip/hardware/disk"
	"github.com/jetsetilly/amichip/test"
)

type context struct{}

func (context) AllowLogging() bool { return false }

// control line values for drive 0. all lines are active low
const (
	idle     = 0xff
	selected = idle &^ disk.CtrlSel0
	motorOn  = selected &^ disk.CtrlMotor
)

func insert(t *testing.T, drv *disk.Drive, protected bool) {
	t.Helper()
	d, err := diskimage.NewADF("test", make([]byte, adf.ImageSize), protected)
	test.DemandSuccess(t, err)
	drv.Insert(d)
}

func TestMotor(t *testing.T) {
	drv := disk.Create(context{}, 0)
	insert(t, drv, false)

	// the motor line is latched on selection
	drv.Control(idle &^ disk.CtrlMotor)
	test.ExpectEquality(t, drv.State.Motor, false)
	drv.Control(motorOn)
	test.ExpectEquality(t, drv.State.Motor, true)
	test.ExpectEquality(t, drv.Ready(), false)
	test.ExpectEquality(t, drv.Status()&disk.StatusReady, disk.StatusReady)

	for range disk.MotorSpinUpTicks {
		drv.Step()
	}
	test.ExpectEquality(t, drv.Ready(), true)
	test.ExpectEquality(t, drv.Status()&disk.StatusReady, 0)

	// deselecting does not change the motor
	drv.Control(idle)
	test.ExpectEquality(t, drv.State.Motor, true)
	test.ExpectEquality(t, drv.Status(), 0xff)

	// but reselecting with the motor line high stops it
	drv.Control(selected)
	test.ExpectEquality(t, drv.State.Motor, false)
}

func TestSeek(t *testing.T) {
	drv := disk.Create(context{}, 0)
	insert(t, drv, true)

	drv.Control(selected)
	test.ExpectEquality(t, drv.Status()&disk.StatusTrack0, 0)
	test.ExpectEquality(t, drv.Status()&disk.StatusProtect, 0)

	// the change latch is set until the first step pulse
	test.ExpectEquality(t, drv.Status()&disk.StatusChange, 0)

	pulse := func(ctrl uint8) {
		drv.Control(ctrl &^ disk.CtrlStep)
		drv.Control(ctrl)
	}

	// stepping outwards from track zero stays on track zero
	pulse(selected)
	test.ExpectEquality(t, drv.State.Cylinder, 0)
	test.ExpectEquality(t, drv.Status()&disk.StatusChange, disk.StatusChange)

	inward := uint8(selected &^ disk.CtrlDir)
	for range 100 {
		pulse(inward)
	}
	test.ExpectEquality(t, drv.State.Cylinder, disk.MaxCylinder)
	test.ExpectEquality(t, drv.Status()&disk.StatusTrack0, disk.StatusTrack0)

	pulse(selected)
	test.ExpectEquality(t, drv.State.Cylinder, disk.MaxCylinder-1)

	// steps are ignored when the drive is not selected
	pulse(idle)
	test.ExpectEquality(t, drv.State.Cylinder, disk.MaxCylinder-1)

	// the side line selects the upper head when low
	drv.Control(selected &^ disk.CtrlSide)
	test.ExpectEquality(t, drv.State.Head, 1)

	drv.Eject()
	test.ExpectEquality(t, drv.Status()&disk.StatusChange, 0)
}

func TestRotation(t *testing.T) {
	drv := disk.Create(context{}, 0)

	img := make([]byte, adf.ImageSize)
	for i := range img {
		img[i] = byte(i)
	}
	d, err := diskimage.NewADF("test", img, false)
	test.DemandSuccess(t, err)
	drv.Insert(d)
	drv.Control(motorOn)

	var words []byte
	var index int
	for range disk.TicksPerRevolution {
		idx, w, ok := drv.Step()
		if idx {
			index++
		}
		if ok && len(words) < mfm.TrackMFMSize {
			words = append(words, byte(w>>8), byte(w))
		}
	}

	// one revolution delivers the whole track and one index pulse
	test.ExpectEquality(t, index, 1)
	test.DemandEquality(t, len(words), mfm.TrackMFMSize)

	data, err := mfm.DecodeTrack(0, words)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, data[100], img[100])
}

func TestWriteTrack(t *testing.T) {
	drv := disk.Create(context{}, 0)
	test.ExpectEquality(t, drv.WriteTrack(nil), disk.ErrNoDisk)

	insert(t, drv, true)
	test.ExpectEquality(t, drv.WriteTrack(nil), disk.ErrProtected)

	insert(t, drv, false)
	data := make([]byte, mfm.TrackDataSize)
	data[0] = 0x42
	test.DemandSuccess(t, drv.WriteTrack(mfm.EncodeTrack(0, data)))
	test.ExpectEquality(t, drv.Disk().Modified(), true)
	test.ExpectEquality(t, drv.Disk().Bytes()[0], 0x42)
}

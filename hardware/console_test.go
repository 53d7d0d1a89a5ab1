package hardware_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jetsetilly/amichip/diskimage"
	"github.com/jetsetilly/amichip/diskimage/adf"
	"github.com/jetsetilly/amichip/hardware"
	"github.com/jetsetilly/amichip/hardware/disk"
	"github.com/jetsetilly/amichip/hardware/savestate"
	"github.com/jetsetilly/amichip/logger"
	"github.com/jetsetilly/amichip/test"
)

type context struct {
	breaks  []error
	logging bool
}

func (ctx *context) Rand8Bit() uint8 {
	return 0
}

func (ctx *context) AllowLogging() bool {
	return ctx.logging
}

func (ctx *context) Break(err error) {
	ctx.breaks = append(ctx.breaks, err)
}

func create(t *testing.T) *hardware.Console {
	t.Helper()
	con, err := hardware.Create(&context{}, nil, hardware.Options{})
	test.DemandSuccess(t, err)
	return con
}

func steps(con *hardware.Console, n int) {
	for range n {
		con.Step(false, 0)
	}
}

func TestOverlay(t *testing.T) {
	con := create(t)
	test.ExpectSuccess(t, con.Mem.Write16(0x000000, 0x1234))

	// the empty ROM is visible while the overlay is set
	v, err := con.Mem.Read16(0x000000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint16(0xffff))
	test.ExpectEquality(t, con.State.Overlay, true)

	// OVL and LED as outputs. both low
	test.ExpectSuccess(t, con.Mem.Write8(0xbfe201, 0x03))
	test.ExpectSuccess(t, con.Mem.Write8(0xbfe001, 0x00))
	test.ExpectEquality(t, con.State.Overlay, false)
	test.ExpectEquality(t, con.State.LED, true)

	v, err = con.Mem.Read16(0x000000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint16(0x1234))

	con.Reset(false)
	test.ExpectEquality(t, con.State.Overlay, true)
}

func TestCIAInterrupt(t *testing.T) {
	con := create(t)
	test.ExpectEquality(t, con.IPL(), uint8(0))

	// master enable and PORTS
	test.ExpectSuccess(t, con.Mem.Write16(0xdff09a, 0xc008))

	// CIA-A timer A interrupt after 10 E clocks
	test.ExpectSuccess(t, con.Mem.Write8(0xbfed01, 0x81))
	test.ExpectSuccess(t, con.Mem.Write8(0xbfe401, 10))
	test.ExpectSuccess(t, con.Mem.Write8(0xbfe501, 0))
	test.ExpectSuccess(t, con.Mem.Write8(0xbfee01, 0x01))

	steps(con, 50)
	test.ExpectEquality(t, con.IPL(), uint8(0))

	steps(con, 200)
	test.ExpectEquality(t, con.IPL(), uint8(2))

	// reading the ICR acknowledges the CIA but INTREQ stays set until
	// cleared
	icr, err := con.Mem.Read8(0xbfed01)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, icr&0x81, uint8(0x81))
	test.ExpectEquality(t, con.CIAA.IRQ(), false)

	test.ExpectSuccess(t, con.Mem.Write16(0xdff09c, 0x0008))
	steps(con, 10)
	test.ExpectEquality(t, con.IPL(), uint8(0))
}

func TestCIABInterrupt(t *testing.T) {
	con := create(t)
	test.ExpectSuccess(t, con.Mem.Write16(0xdff09a, 0xe000))

	// CIA-B is on the even bytes
	test.ExpectSuccess(t, con.Mem.Write8(0xbfdd00, 0x81))
	test.ExpectSuccess(t, con.Mem.Write8(0xbfd400, 2))
	test.ExpectSuccess(t, con.Mem.Write8(0xbfd500, 0))
	test.ExpectSuccess(t, con.Mem.Write8(0xbfde00, 0x01))

	steps(con, 100)
	test.ExpectEquality(t, con.IPL(), uint8(6))
}

func TestDriveSelect(t *testing.T) {
	con := create(t)

	// all CIA-B port B lines are outputs. select DF0 with the motor on
	test.ExpectSuccess(t, con.Mem.Write8(0xbfd300, 0xff))
	test.ExpectSuccess(t, con.Mem.Write8(0xbfd100, 0xff&^(disk.CtrlSel0|disk.CtrlMotor)))
	test.ExpectEquality(t, con.Drives[0].State.Selected, true)
	test.ExpectEquality(t, con.Drives[0].State.Motor, true)
	test.ExpectEquality(t, con.Drives[1].State.Selected, false)

	// no disk so the change line is low. the drive is on cylinder zero
	pra, err := con.Mem.Read8(0xbfe001)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, pra&disk.StatusChange, uint8(0))
	test.ExpectEquality(t, pra&disk.StatusTrack0, uint8(0))

	// fire buttons are on the same port
	test.ExpectEquality(t, pra&0xc0, uint8(0xc0))
}

func TestInsert(t *testing.T) {
	con := create(t)

	img := make([]byte, adf.ImageSize)
	_, err := adf.Format(img, "empty", false)
	test.DemandSuccess(t, err)
	d, err := diskimage.NewADF("empty", img, false)
	test.DemandSuccess(t, err)

	err = con.Insert(4, d)
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, errors.Is(err, hardware.ErrDriveNumber), true)

	test.ExpectSuccess(t, con.Insert(1, d))
	test.ExpectEquality(t, con.Drives[1].Disk() != nil, true)

	e, err := con.Eject(1)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, e.Label(), "empty")
	test.ExpectEquality(t, con.Drives[1].Disk() == nil, true)
}

func TestInsertLog(t *testing.T) {
	con, err := hardware.Create(&context{logging: true}, nil, hardware.Options{})
	test.DemandSuccess(t, err)

	img := make([]byte, adf.ImageSize)
	_, err = adf.Format(img, "logged", false)
	test.DemandSuccess(t, err)
	d, err := diskimage.NewADF("logged", img, false)
	test.DemandSuccess(t, err)

	logger.Clear()
	defer logger.Clear()

	test.ExpectSuccess(t, con.Insert(0, d))

	var b strings.Builder
	logger.Write(&b)
	test.ExpectEquality(t, strings.Count(b.String(), "inserted logged"), 1)
	test.ExpectEquality(t, strings.Contains(b.String(), "repeat"), false)
}

func TestSaveState(t *testing.T) {
	con := create(t)
	test.ExpectSuccess(t, con.Mem.Write16(0x001000, 0xbeef))
	test.ExpectSuccess(t, con.Mem.Write8(0xbfe201, 0x03))
	test.ExpectSuccess(t, con.Mem.Write8(0xbfe001, 0x00))
	steps(con, 1000)

	var buf bytes.Buffer
	test.DemandSuccess(t, con.SaveState(&buf))
	beam := con.Custom.Beam()

	steps(con, 5000)
	test.ExpectSuccess(t, con.Mem.Write16(0x001000, 0x0000))
	con.Reset(false)

	test.DemandSuccess(t, con.LoadState(bytes.NewReader(buf.Bytes())))
	test.ExpectEquality(t, con.Custom.Beam(), beam)
	test.ExpectEquality(t, con.State.Overlay, false)
	test.ExpectEquality(t, con.Mem.Overlay, false)

	v, err := con.Mem.Read16(0x001000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, uint16(0xbeef))

	// a state from a console with slow RAM can't be loaded
	slow, err := hardware.Create(&context{}, nil, hardware.Options{SlowSize: 512 * 1024})
	test.DemandSuccess(t, err)
	err = slow.LoadState(bytes.NewReader(buf.Bytes()))
	test.ExpectEquality(t, errors.Is(err, savestate.ErrMissing), true)
}

func TestFrameCount(t *testing.T) {
	con := create(t)
	var frames int
	for range 454 * 313 * 2 {
		if con.Step(false, 0).FrameDone {
			frames++
		}
	}
	test.ExpectEquality(t, frames, 2)
	test.ExpectEquality(t, con.State.Frame, int32(2))
}

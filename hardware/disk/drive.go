// Package disk emulates the mechanics of a 3.5" double density floppy drive.
// The drive is controlled by the CIA-B port B lines and reports its status on
// CIA-A port A. The rotating track is delivered one MFM word at a time.
package disk

import (
	"errors"
	"fmt"

	"github.com/jetsetilly/amichip/diskimage"
	"github.com/jetsetilly/amichip/diskimage/mfm"
	"github.com/jetsetilly/amichip/hardware/clocks"
	"github.com/jetsetilly/amichip/logger"
)

const (
	MaxCylinder = diskimage.Cylinders - 1

	// 300 RPM
	TicksPerRevolution = int32(clocks.PAL_CPU / 5)

	// /RDY is asserted this many ticks after the motor is switched on
	MotorSpinUpTicks = TicksPerRevolution / 2

	// a standard track occupies one revolution
	TicksPerWord = TicksPerRevolution / (mfm.TrackMFMSize / 2)
)

// CIA-B port B control lines. All are active low.
const (
	CtrlStep  = 0x01
	CtrlDir   = 0x02
	CtrlSide  = 0x04
	CtrlSel0  = 0x08
	CtrlMotor = 0x80
)

// CIA-A port A status lines. All are active low.
const (
	StatusChange  = 0x04
	StatusProtect = 0x08
	StatusTrack0  = 0x10
	StatusReady   = 0x20

	StatusMask = StatusChange | StatusProtect | StatusTrack0 | StatusReady
)

var (
	ErrNoDisk    = errors.New("disk: no disk in drive")
	ErrProtected = errors.New("disk: disk is write protected")
)

type Context interface {
	logger.Permission
}

// State is everything needed to continue emulation of the drive.
type State struct {
	Motor  bool
	SpinUp int32

	// 0 is the lower head
	Head     int32
	Inward   bool
	Cylinder int32

	Index int32

	// the previous levels of the /STEP and /SEL lines
	StepLine bool
	Selected bool

	// the disk change latch is set when a disk is removed and cleared by a
	// step pulse with a disk present
	Changed bool

	// the word under the head and the ticks until the next one
	TrackPos  int32
	WordTicks int32
}

type Drive struct {
	ctx    Context
	number int

	State State

	disk  diskimage.DiskFile
	track []byte

	// the track must be read from the disk before the next word is delivered
	reload bool
}

// Create drive number n (0 to 3)
func Create(ctx Context, n int) *Drive {
	drv := &Drive{
		ctx:    ctx,
		number: n,
	}
	drv.Reset()
	return drv
}

func (drv *Drive) Label() string {
	return fmt.Sprintf("DF%d", drv.number)
}

func (drv *Drive) Reset() {
	drv.State = State{
		Index:     TicksPerRevolution,
		WordTicks: TicksPerWord,
		StepLine:  true,
		Changed:   drv.disk == nil,
	}
	drv.reload = true
}

// Restored must be called after State has been replaced
func (drv *Drive) Restored() {
	drv.reload = true
}

func (drv *Drive) Insert(d diskimage.DiskFile) {
	drv.disk = d
	drv.reload = true
	logger.Logf(drv.ctx, drv.Label(), "inserted %s", d.Label())
}

// Eject returns the disk that was in the drive, if any
func (drv *Drive) Eject() diskimage.DiskFile {
	d := drv.disk
	if d != nil {
		logger.Logf(drv.ctx, drv.Label(), "ejected %s", d.Label())
	}
	drv.disk = nil
	drv.track = nil
	drv.State.Changed = true
	return d
}

func (drv *Drive) Disk() diskimage.DiskFile {
	return drv.disk
}

// Control is called with the CIA-B port B output whenever it changes.
func (drv *Drive) Control(prb uint8) {
	st := &drv.State
	sel := prb&(CtrlSel0<<drv.number) == 0

	// the motor line is latched when the drive is selected
	if sel && !st.Selected {
		motor := prb&CtrlMotor == 0
		if motor && !st.Motor {
			st.SpinUp = MotorSpinUpTicks
		}
		st.Motor = motor
	}
	st.Selected = sel

	if !sel {
		st.StepLine = prb&CtrlStep != 0
		return
	}

	head := int32(1)
	if prb&CtrlSide != 0 {
		head = 0
	}
	if head != st.Head {
		st.Head = head
		drv.reload = true
	}

	st.Inward = prb&CtrlDir == 0

	step := prb&CtrlStep != 0
	if step && !st.StepLine {
		drv.step()
	}
	st.StepLine = step
}

func (drv *Drive) step() {
	st := &drv.State
	if st.Inward {
		st.Cylinder = min(st.Cylinder+1, MaxCylinder)
	} else {
		st.Cylinder = max(st.Cylinder-1, 0)
	}
	if drv.disk != nil {
		st.Changed = false
	}
	drv.reload = true
}

// Status returns the active low status lines for CIA-A port A. Bits outside
// StatusMask are set.
func (drv *Drive) Status() uint8 {
	st := &drv.State
	v := uint8(0xff)
	if !st.Selected {
		return v
	}
	if st.Changed {
		v &^= StatusChange
	}
	if drv.disk != nil && drv.disk.WriteProtected() {
		v &^= StatusProtect
	}
	if st.Cylinder == 0 {
		v &^= StatusTrack0
	}
	if drv.Ready() {
		v &^= StatusReady
	}
	return v
}

// Ready is true when the motor is on and at speed
func (drv *Drive) Ready() bool {
	return drv.State.Motor && drv.State.SpinUp == 0
}

func (drv *Drive) loadTrack() {
	drv.reload = false
	if drv.disk == nil {
		drv.track = nil
		return
	}

	var err error
	drv.track, err = drv.disk.ReadMFMTrack(int(drv.State.Cylinder), int(drv.State.Head))
	if err != nil || len(drv.track) < 2 {
		// unformatted track
		if err != nil {
			logger.Log(drv.ctx, drv.Label(), err)
		}
		drv.track = make([]byte, mfm.TrackMFMSize)
	}
	if int(drv.State.TrackPos)*2 >= len(drv.track) {
		drv.State.TrackPos = 0
	}
}

// Step advances the drive by one tick. The index result is true when the
// index hole passes the sensor. The ready result is true when a new MFM word
// has passed under the head.
func (drv *Drive) Step() (index bool, word uint16, ready bool) {
	st := &drv.State

	if !st.Motor || drv.disk == nil {
		return false, 0, false
	}

	if st.SpinUp > 0 {
		st.SpinUp--
	}

	st.Index--
	if st.Index <= 0 {
		st.Index = TicksPerRevolution
		index = true
	}

	st.WordTicks--
	if st.WordTicks > 0 {
		return index, 0, false
	}
	st.WordTicks = TicksPerWord

	if drv.reload {
		drv.loadTrack()
	}

	i := int(st.TrackPos) * 2
	word = uint16(drv.track[i])<<8 | uint16(drv.track[i+1])
	st.TrackPos++
	if int(st.TrackPos)*2+1 >= len(drv.track) {
		st.TrackPos = 0
	}

	return index, word, true
}

// WriteTrack replaces the track under the head
func (drv *Drive) WriteTrack(data []byte) error {
	if drv.disk == nil {
		return ErrNoDisk
	}
	if drv.disk.WriteProtected() {
		return ErrProtected
	}
	err := drv.disk.WriteMFMTrack(int(drv.State.Cylinder), int(drv.State.Head), data)
	drv.reload = true
	if err != nil {
		return fmt.Errorf("%s: %w", drv.Label(), err)
	}
	return nil
}

func (drv *Drive) String() string {
	st := &drv.State
	label := "empty"
	if drv.disk != nil {
		label = drv.disk.Label()
	}
	return fmt.Sprintf("%s: %s, motor %v ready %v, cyl %d head %d, pos %d, changed %v",
		drv.Label(), label, st.Motor, drv.Ready(), st.Cylinder, st.Head, st.TrackPos, st.Changed)
}

package custom

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jetsetilly/amichip/hardware/spec"
	"github.com/jetsetilly/amichip/logger"
)

// Context allows the custom chips to log and to signal a break
type Context interface {
	logger.Permission
	Break(error)
}

// the wrapping error for any errors passed to Context.Break()
var ContextError = errors.New("custom")

// ChipRAM is the memory the DMA channels can see.
type ChipRAM interface {
	Peek16(idx uint32) uint16
	Poke16(idx uint32, data uint16)
}

// DiskWriter receives the raw MFM data collected by a disk write DMA
type DiskWriter interface {
	WriteTrack(data []byte) error
}

// Bus identifies the user of a DMA slot.
type Bus int

// List of valid Bus values.
const (
	BusNone Bus = iota
	BusRefresh
	BusDisk
	BusAudio
	BusBitplane
	BusSprite
	BusCopper
	BusBlitter
)

func (b Bus) String() string {
	switch b {
	case BusRefresh:
		return "refresh"
	case BusDisk:
		return "disk"
	case BusAudio:
		return "audio"
	case BusBitplane:
		return "bitplane"
	case BusSprite:
		return "sprite"
	case BusCopper:
		return "copper"
	case BusBlitter:
		return "blitter"
	}
	return "-"
}

// StepResult is returned by every call to Step().
type StepResult struct {
	// the persistent frame buffer. the slice is the same on every call
	Frame []uint32
	Audio *AudioBuffer

	// beam position before the tick was processed
	HPos int32
	VPos int32

	// the user of the bus on this tick. the address and the value transferred
	// are valid for DMA users (not refresh)
	Bus     Bus
	DMAAddr uint32
	DMAVal  uint16

	// the bus was available to the CPU on this tick
	FreeCycle bool

	// start of a new line and start of a new field
	Hsync     bool
	Vsync     bool
	FrameDone bool
}

// Custom is the combination of Agnus, Denise and Paula.
type Custom struct {
	ctx  Context
	chip ChipRAM
	disk DiskWriter

	State State

	// register table. see buildRegisters()
	regs [256]register

	// render helpers derived from the state. see derive()
	ddfStart   int32
	ddfEnd     int32
	diwHStart  int32
	diwHStop   int32
	diwVStart  int32
	diwVStop   int32
	bpu        int32
	hires      bool
	pixel      func(pf uint8) (uint16, int)
	spriteH    [8]int32
	spriteVS   [8]int32
	spriteVE   [8]int32
	spritePix  [8]uint8
	planePix   [2]uint8

	// the value most recently read or written for each register
	last [256]uint16

	// output
	frame []uint32
	audio *AudioBuffer

	// serial output is collected and logged one line at a time
	serialLine strings.Builder

	result StepResult

	// program counter of the CPU as given to the most recent call to Step()
	pc uint32
}

// Create a new instance of the custom chips
func Create(ctx Context, chip ChipRAM, disk DiskWriter) *Custom {
	cst := &Custom{
		ctx:   ctx,
		chip:  chip,
		disk:  disk,
		frame: make([]uint32, spec.FrameWidth*spec.FrameHeight),
		audio: NewAudioBuffer(),
	}
	cst.buildRegisters()
	cst.Reset()
	return cst
}

func (cst *Custom) Label() string {
	return "Custom"
}

// Reset the custom chips to the power on state
func (cst *Custom) Reset() {
	cst.State = State{}
	cst.State.Beam.LOF = true
	cst.State.Copper.State = copperHalted
	cst.State.Blitter.Zero = true
	cst.last = [256]uint16{}
	cst.serialLine.Reset()
	clear(cst.frame)
	cst.audio.Reset()
	cst.derive()
}

// Frame returns the frame buffer
func (cst *Custom) Frame() []uint32 {
	return cst.frame
}

// Audio returns the audio ring buffer
func (cst *Custom) Audio() *AudioBuffer {
	return cst.audio
}

// Beam returns the current beam position
func (cst *Custom) Beam() Beam {
	return cst.State.Beam
}

func (cst *Custom) String() string {
	b := &cst.State.Beam
	return fmt.Sprintf("%s: v=%03d h=%03d (cc=%#02x) lof=%v dmacon=%#04x intena=%#04x intreq=%#04x ipl=%d",
		cst.Label(), b.VPos, b.HPos, b.HPos>>1, b.LOF,
		cst.State.DMACON, cst.State.Interrupts.INTENA, cst.State.Interrupts.INTREQ,
		cst.State.Interrupts.IPL)
}

// Step advances the custom chips by one tick. cpuWantsBus should be true if
// the CPU is waiting to access chip memory or a custom register on this
// tick. the pc value is used for diagnostics only
func (cst *Custom) Step(cpuWantsBus bool, pc uint32) StepResult {
	b := &cst.State.Beam
	cst.pc = pc

	cst.result = StepResult{
		Frame: cst.frame,
		Audio: cst.audio,
		HPos:  b.HPos,
		VPos:  b.VPos,
	}

	// sprite and bitplane serialisers
	cst.stepSprites()
	cst.stepPlanes()

	// memory bus arbitration happens on every colour clock
	if b.HPos&1 == 0 {
		cst.arbitrate(cpuWantsBus)
		cst.stepAudio()
	} else {
		cst.result.FreeCycle = true
	}

	cst.stepPixel()

	// two audio samples per line
	if b.HPos == 0 || b.HPos == spec.ClksScanline/2 {
		cst.mixAudio()
	}

	cst.State.Interrupts.step()
	if cst.State.Blitter.State == blitterFinal {
		cst.stepBlitterFinal()
	}
	if cst.State.Disk.WordEqual > 0 {
		cst.State.Disk.WordEqual--
	}
	cst.stepSerial()

	cst.advanceBeam()

	return cst.result
}

// arbitrate gives the current colour clock to the highest priority DMA
// channel that wants it
func (cst *Custom) arbitrate(cpuWantsBus bool) {
	cc := cst.State.Beam.HPos >> 1

	claimed := true
	switch {
	case cst.refreshSlot(cc):
		cst.result.Bus = BusRefresh
	case cst.diskSlot(cc):
	case cst.audioSlot(cc):
	case cst.bitplaneSlot(cc):
	case cst.spriteSlot(cc):
	case cst.copperSlot(cc):
	default:
		claimed = false
	}

	// the blitter is stepped on every colour clock. it counts down its start
	// delay and advances through idle cycles even when the bus is not free
	if cst.stepBlitter(!claimed, cpuWantsBus) {
		claimed = true
	}

	if !claimed {
		cst.result.FreeCycle = true
		cst.State.CPUBlock = 0
	}
}

// claim records the use of the bus by a DMA channel
func (cst *Custom) claim(bus Bus, addr uint32, val uint16) {
	cst.result.Bus = bus
	cst.result.DMAAddr = addr
	cst.result.DMAVal = val
}

func (cst *Custom) refreshSlot(cc int32) bool {
	switch cc {
	case spec.LastColourClock, 1, 3, 5:
		return true
	}
	return false
}

func (cst *Custom) dmaRead(bus Bus, addr uint32) uint16 {
	addr &= 0x1ffffe
	v := cst.chip.Peek16(addr)
	cst.claim(bus, addr, v)
	return v
}

func (cst *Custom) dmaWrite(bus Bus, addr uint32, v uint16) {
	addr &= 0x1ffffe
	cst.chip.Poke16(addr, v)
	cst.claim(bus, addr, v)
}

func (cst *Custom) advanceBeam() {
	b := &cst.State.Beam

	b.HPos++
	if b.HPos < spec.ClksScanline {
		return
	}
	b.HPos = 0
	b.VPos++
	cst.result.Hsync = true

	lines := int32(spec.LinesShortFrame)
	if b.LOF {
		lines = spec.LinesLongFrame
	}
	if b.VPos >= lines {
		b.VPos = 0
		b.Field++
		cst.result.Vsync = true
		cst.result.FrameDone = true

		cst.endField()

		if cst.State.Bitplane.BPLCON0&bplconLACE != 0 {
			b.LOF = !b.LOF
		} else {
			b.LOF = true
		}

		cst.Interrupt(IntVERTB)
		cst.State.Copper.State = copperVBlank
	}

	cst.startLine()
}

// positionString is used in log entries
func (cst *Custom) positionString() string {
	return fmt.Sprintf("v=%d h=%d pc=%#06x", cst.State.Beam.VPos, cst.State.Beam.HPos, cst.pc)
}

// breakf signals an emulation error to the context
func (cst *Custom) breakf(format string, args ...any) {
	cst.ctx.Break(fmt.Errorf("%w: %s", ContextError, fmt.Sprintf(format, args...)))
}

package custom

import (
	"fmt"

	"github.com/jetsetilly/amichip/hardware/spec"
)

// copper states
const (
	copperHalted int32 = iota
	copperVBlank
	copperReadInst
	copperNeedFreeCycle
	copperWait
	copperSkip
	copperJmpDelay1
	copperJmpDelay2
)

var copperStateNames = []string{
	"halted", "vblank", "read_inst", "need_free_cycle", "wait", "skip", "jmp_delay1", "jmp_delay2",
}

// COPCON bits
const copconCDANG = 0x0002

// Copper is the state of the copper coprocessor.
type Copper struct {
	State int32
	PC    uint32
	LC    [2]uint32

	COPCON uint16

	// the two words of the current instruction. Word is the number of words
	// of the instruction read so far
	IR1  uint16
	IR2  uint16
	Word int32

	// the next instruction is skipped
	Skip bool

	// the location register used by a pending jump
	Jump int32
}

// CopperState returns the name of the copper state
func (cst *Custom) CopperState() string {
	return copperStateNames[cst.State.Copper.State]
}

// CopperString returns a summary of the copper for debugging
func (cst *Custom) CopperString() string {
	cop := &cst.State.Copper
	return fmt.Sprintf("Copper: %s pc=%#06x lc1=%#06x lc2=%#06x ir1=%#04x ir2=%#04x skip=%v cdang=%v",
		cst.CopperState(), cop.PC, cop.LC[0], cop.LC[1], cop.IR1, cop.IR2, cop.Skip,
		cop.COPCON&copconCDANG != 0)
}

func (cst *Custom) copperJump(lc int32) {
	cst.State.Copper.State = copperJmpDelay1
	cst.State.Copper.Jump = lc
}

// copperPosition returns true if the beam position two ticks ahead has
// reached the position in the current WAIT or SKIP instruction
func (cst *Custom) copperPosition() bool {
	cop := &cst.State.Copper

	// the blitter finished disable bit
	if cop.IR2&0x8000 == 0 && cst.State.Blitter.Busy {
		return false
	}

	h := cst.State.Beam.HPos + 2
	v := cst.State.Beam.VPos
	if h >= spec.ClksScanline {
		h -= spec.ClksScanline
		v++
	}
	cc := uint16(h >> 1)

	ve := (cop.IR2>>8)&0x7f | 0x80
	he := cop.IR2 & 0xfe
	vp := cop.IR1 >> 8
	hp := cop.IR1 & 0xfe

	return (uint16(v)&0xff&ve)<<8|cc&he >= (vp&ve)<<8|hp&he
}

// copperSlot is called for every colour clock not used by a higher priority
// DMA channel. the copper can only use even colour clocks
func (cst *Custom) copperSlot(cc int32) bool {
	if cc&1 == 1 || !cst.dmaEnabled(DMACopper) {
		return false
	}

	cop := &cst.State.Copper

	switch cop.State {
	case copperHalted:
		return false

	case copperVBlank:
		cop.PC = cop.LC[0]
		cop.Word = 0
		cop.Skip = false
		cop.State = copperReadInst
		cst.claim(BusCopper, cop.PC, 0)

	case copperReadInst:
		w := cst.dmaRead(BusCopper, cop.PC)
		cop.PC += 2
		if cop.Word == 0 {
			cop.IR1 = w
			cop.Word = 1
			return true
		}
		cop.IR2 = w
		cop.Word = 0
		cst.copperExecute()

	case copperWait:
		if !cst.copperPosition() {
			return false
		}
		cop.State = copperReadInst
		return false

	case copperNeedFreeCycle:
		cop.State = copperSkip
		cst.claim(BusCopper, cop.PC, 0)

	case copperSkip:
		cop.Skip = cst.copperPosition()
		cop.State = copperReadInst
		return false

	case copperJmpDelay1:
		cop.State = copperJmpDelay2
		cst.claim(BusCopper, cop.PC, 0)

	case copperJmpDelay2:
		cop.PC = cop.LC[cop.Jump]
		cop.Word = 0
		cop.Skip = false
		cop.State = copperReadInst
		cst.claim(BusCopper, cop.PC, 0)

	default:
		cst.breakf("copper in unknown state (%d)", cop.State)
		cop.State = copperHalted
		return false
	}

	return true
}

// copperExecute is called once both words of an instruction have been read
func (cst *Custom) copperExecute() {
	cop := &cst.State.Copper

	skip := cop.Skip
	cop.Skip = false

	// MOVE
	if cop.IR1&1 == 0 {
		addr := cop.IR1 & 0x1fe

		// protected registers halt the copper even if the instruction is
		// being skipped
		if addr < 0x40 || (addr < 0x80 && cop.COPCON&copconCDANG == 0) {
			cop.State = copperHalted
			return
		}
		if !skip {
			cst.writeRegister(addr, cop.IR2)
		}
		return
	}

	if skip {
		return
	}

	// WAIT. the end of a copper list is a wait for a position that is
	// never reached
	if cop.IR2&1 == 0 {
		cop.State = copperWait
		return
	}

	// SKIP
	cop.State = copperNeedFreeCycle
}

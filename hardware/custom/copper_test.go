package custom

import (
	"testing"

	"github.com/jetsetilly/amichip/hardware/spec"
	"github.com/jetsetilly/amichip/test"
)

// startCopper points COP1LC at the list and enables copper DMA. the list is
// started at the beginning of the next field
func startCopper(t *testing.T, cst *Custom, ram *testRAM, list ...uint16) {
	t.Helper()
	ram.put(0x1000, list...)
	cst.Poke(0x080, 0)
	cst.Poke(0x082, 0x1000)
	cst.Poke(0x096, SetClr|DMAEnable|DMACopper)
	runFor(cst, 1, false)
	runTo(t, cst, 0, 0)
	test.DemandEquality(t, cst.CopperState(), "vblank")
}

// runUntilColour steps until COLOR00 changes and returns the beam position
// at which it changed
func runUntilColour(t *testing.T, cst *Custom) (int32, int32) {
	t.Helper()
	c := cst.State.Colour[0]
	for range spec.ClksScanline * spec.LinesLongFrame {
		b := cst.State.Beam
		cst.Step(false, 0)
		if cst.State.Colour[0] != c {
			return b.VPos, b.HPos
		}
	}
	t.Fatalf("colour did not change")
	return 0, 0
}

func TestCopperWait(t *testing.T) {
	cst, ram, _ := newTestCustom()
	startCopper(t, cst, ram,
		0x5021, 0xfffe,
		0x0180, 0x0f00,
		0xffff, 0xfffe,
	)

	v, h := runUntilColour(t, cst)
	test.ExpectEquality(t, v, int32(0x50))

	// the wait resolves on the first copper slot at or after the position.
	// the MOVE takes two more slots
	test.ExpectEquality(t, h>>1, int32(0x24))
	test.ExpectEquality(t, cst.State.Colour[0], uint16(0x0f00))
	test.ExpectEquality(t, cst.CopperState(), "read_inst")

	runFor(cst, 20, false)
	test.ExpectEquality(t, cst.CopperState(), "wait")
}

func TestCopperWaitIgnoresHorizontal(t *testing.T) {
	cst, ram, _ := newTestCustom()

	// horizontal position is masked out. the wait is for the start of line 0x60
	startCopper(t, cst, ram,
		0x60a1, 0xff00,
		0x0180, 0x0123,
		0xffff, 0xfffe,
	)

	v, h := runUntilColour(t, cst)
	test.ExpectEquality(t, v, int32(0x60))
	test.ExpectSuccess(t, h < 0x20, h)
}

func TestCopperDanger(t *testing.T) {
	cst, ram, _ := newTestCustom()

	// a write to BLTCON0 is not allowed without the danger bit
	startCopper(t, cst, ram,
		0x0040, 0x09f0,
		0x0180, 0x0f00,
		0xffff, 0xfffe,
	)
	runFor(cst, spec.ClksScanline, false)
	test.ExpectEquality(t, cst.CopperState(), "halted")
	test.ExpectEquality(t, cst.State.Blitter.CON0, uint16(0))
	test.ExpectEquality(t, cst.State.Colour[0], uint16(0))

	cst, ram, _ = newTestCustom()
	cst.Poke(0x02e, copconCDANG)
	startCopper(t, cst, ram,
		0x0040, 0x09f0,
		0x0180, 0x0f00,
		0xffff, 0xfffe,
	)
	runFor(cst, spec.ClksScanline, false)
	test.ExpectEquality(t, cst.State.Blitter.CON0, uint16(0x09f0))
	test.ExpectEquality(t, cst.State.Colour[0], uint16(0x0f00))

	// registers below 0x40 are never allowed
	cst, ram, _ = newTestCustom()
	cst.Poke(0x02e, copconCDANG)
	startCopper(t, cst, ram,
		0x0020, 0x0000,
		0xffff, 0xfffe,
	)
	runFor(cst, spec.ClksScanline, false)
	test.ExpectEquality(t, cst.CopperState(), "halted")
}

func TestCopperSkip(t *testing.T) {
	cst, ram, _ := newTestCustom()

	// the first skip is for a position already passed so the first MOVE is
	// skipped. the second skip is for a position that hasn't been reached
	startCopper(t, cst, ram,
		0x0001, 0xff01,
		0x0180, 0x0f00,
		0x8001, 0xff01,
		0x0182, 0x00f0,
		0xffff, 0xfffe,
	)
	runFor(cst, spec.ClksScanline, false)
	test.ExpectEquality(t, cst.State.Colour[0], uint16(0))
	test.ExpectEquality(t, cst.State.Colour[1], uint16(0x00f0))
}

func TestCopperSkipProtected(t *testing.T) {
	cst, ram, _ := newTestCustom()

	// a skipped MOVE to a protected register still halts the copper
	startCopper(t, cst, ram,
		0x0001, 0xff01,
		0x0030, 0x0000,
		0x0180, 0x0f00,
		0xffff, 0xfffe,
	)
	runFor(cst, spec.ClksScanline, false)
	test.ExpectEquality(t, cst.CopperState(), "halted")
	test.ExpectEquality(t, cst.State.Colour[0], uint16(0))
}

func TestCopperJump(t *testing.T) {
	cst, ram, _ := newTestCustom()

	ram.put(0x2000,
		0x0180, 0x0abc,
		0xffff, 0xfffe,
	)
	cst.Poke(0x084, 0)
	cst.Poke(0x086, 0x2000)

	startCopper(t, cst, ram,
		0x008a, 0x0000,
		0x0180, 0x0f00,
		0xffff, 0xfffe,
	)
	runFor(cst, spec.ClksScanline, false)
	test.ExpectEquality(t, cst.State.Colour[0], uint16(0x0abc))
}

func TestCopperBlitterWait(t *testing.T) {
	cst, ram, _ := newTestCustom()

	// wait for the blitter with BFD clear. the position is always reached
	startCopper(t, cst, ram,
		0x0001, 0x7ffe,
		0x0180, 0x0f00,
		0xffff, 0xfffe,
	)
	cst.State.Blitter.Busy = true
	runFor(cst, spec.ClksScanline, false)
	test.ExpectEquality(t, cst.State.Colour[0], uint16(0))
	test.ExpectEquality(t, cst.CopperState(), "wait")

	cst.State.Blitter.Busy = false
	runFor(cst, spec.ClksScanline, false)
	test.ExpectEquality(t, cst.State.Colour[0], uint16(0x0f00))
}

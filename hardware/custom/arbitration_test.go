package custom

import (
	"testing"

	"github.com/jetsetilly/amichip/hardware/spec"
	"github.com/jetsetilly/amichip/test"
)

func TestRefreshSlots(t *testing.T) {
	cst, _, _ := newTestCustom()
	runTo(t, cst, 0x30, 0)

	for _, r := range runFor(cst, spec.ClksScanline, false) {
		if r.HPos&1 == 1 {
			test.ExpectSuccess(t, r.FreeCycle)
			continue
		}
		switch r.HPos >> 1 {
		case spec.LastColourClock, 1, 3, 5:
			test.ExpectEquality(t, r.Bus, BusRefresh, r.HPos>>1)
			test.ExpectFailure(t, r.FreeCycle, r.HPos>>1)
		default:
			test.ExpectEquality(t, r.Bus, BusNone, r.HPos>>1)
			test.ExpectSuccess(t, r.FreeCycle, r.HPos>>1)
		}
	}
}

func TestBitplaneBeforeSprite(t *testing.T) {
	cst, _, _ := newTestCustom()

	// six low resolution planes with the earliest possible fetch start
	cst.Poke(0x08e, 0x2c81)
	cst.Poke(0x090, 0x2cc1)
	cst.Poke(0x092, 0x0018)
	cst.Poke(0x094, 0x00d0)
	cst.Poke(0x100, 0x6200)

	cst.Poke(0x096, SetClr|DMAEnable|DMABitpl|DMASprite)

	// sprite control words are reloaded from memory on the reload line so
	// the positions are set after it
	runTo(t, cst, 0x30, 0)

	// sprites 0 and 1 both cover line 0x40
	for n := range 2 {
		cst.Poke(uint16(0x140+n*8), 0x4050)
		cst.Poke(uint16(0x142+n*8), 0x5000)
		cst.Poke(uint16(0x120+n*4), 0x0000)
		cst.Poke(uint16(0x122+n*4), uint16(0x1000+n*0x100))
	}
	runTo(t, cst, 0x40, 0)

	bus := make(map[int32]Bus)
	for _, r := range runFor(cst, spec.ClksScanline, false) {
		if r.HPos&1 == 0 {
			bus[r.HPos>>1] = r.Bus
		}
	}

	// sprite 0 slots are before the fetch window
	test.ExpectEquality(t, bus[0x15], BusSprite)
	test.ExpectEquality(t, bus[0x17], BusSprite)

	// sprite 1 slots are taken by planes 4 and 2
	test.ExpectEquality(t, bus[0x19], BusBitplane)
	test.ExpectEquality(t, bus[0x1b], BusBitplane)

	// the first slot of every fetch unit is not used in six plane mode
	test.ExpectEquality(t, bus[0x18], BusNone)
	test.ExpectEquality(t, bus[0x1c], BusNone)

	// the first sprite's data has been fetched but the second sprite's has not
	test.ExpectSuccess(t, cst.State.Sprites[0].Armed)
	test.ExpectFailure(t, cst.State.Sprites[1].Armed)
}

func TestAudioSlot(t *testing.T) {
	cst, ram, _ := newTestCustom()

	ram.put(0x2000, 0x1234, 0x5678)
	cst.Poke(0x0a0, 0x0000)
	cst.Poke(0x0a2, 0x2000)
	cst.Poke(0x0a4, 2)
	cst.Poke(0x0a6, 200)
	cst.Poke(0x096, SetClr|DMAEnable|DMAAud0)

	runTo(t, cst, 0x30, 0)
	found := false
	for _, r := range runFor(cst, spec.ClksScanline*2, false) {
		if r.Bus == BusAudio {
			test.ExpectEquality(t, r.HPos>>1, int32(13))
			found = true
		}
	}
	test.ExpectSuccess(t, found)
}

// a blit that uses the bus on every cycle
func startLongBlit(cst *Custom) {
	cst.Poke(0x040, bltcon0USEA|bltcon0USED|0xf0)
	cst.Poke(0x042, 0)
	cst.Poke(0x044, 0xffff)
	cst.Poke(0x046, 0xffff)
	cst.Poke(0x050, 0x0001)
	cst.Poke(0x052, 0x0000)
	cst.Poke(0x054, 0x0002)
	cst.Poke(0x056, 0x0000)
	cst.Poke(0x058, 64<<6|32)
}

func longestBlitterRun(res []StepResult) int {
	var run, longest int
	for _, r := range res {
		if r.HPos&1 == 1 {
			continue
		}
		if r.Bus == BusBlitter {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return longest
}

func TestBlitterYieldsToCPU(t *testing.T) {
	cst, _, _ := newTestCustom()
	runTo(t, cst, 0x30, 0x20)

	cst.Poke(0x096, SetClr|DMAEnable|DMABlit)
	startLongBlit(cst)

	res := runFor(cst, 2000, true)
	test.ExpectEquality(t, longestBlitterRun(res), 3)

	// the CPU gets every fourth slot
	var free int
	for _, r := range res {
		if r.HPos&1 == 0 && r.FreeCycle {
			free++
		}
	}
	test.ExpectSuccess(t, free > 200)
}

func TestBlitterPriority(t *testing.T) {
	cst, _, _ := newTestCustom()
	runTo(t, cst, 0x30, 0x20)

	cst.Poke(0x096, SetClr|DMAEnable|DMABlit|DMABltPri)
	startLongBlit(cst)

	res := runFor(cst, 2000, true)
	test.ExpectSuccess(t, longestBlitterRun(res) > 3)
}

// a copper list that waits for line 0x40 and then keeps the copper busy for
// the whole of that line
func busyCopper(t *testing.T, cst *Custom, ram *testRAM) {
	t.Helper()
	list := []uint16{0x4001, 0xfffe}
	for i := range 300 {
		list = append(list, 0x0180, uint16(i))
	}
	list = append(list, 0xffff, 0xfffe)
	startCopper(t, cst, ram, list...)
}

func TestArbitrationPriority(t *testing.T) {
	type tc struct {
		name string

		// setup leaves the beam at the start of the line to be checked
		setup func(t *testing.T, cst *Custom, ram *testRAM)

		// expected bus use for colour clocks of the line
		expect map[int32]Bus

		// bus use that must be seen somewhere on the line
		present []Bus
	}

	tcs := []tc{
		{
			name: "lores bitplanes over copper",
			setup: func(t *testing.T, cst *Custom, ram *testRAM) {
				busyCopper(t, cst, ram)
				cst.Poke(0x08e, 0x2c81)
				cst.Poke(0x090, 0x2cc1)
				cst.Poke(0x092, 0x0018)
				cst.Poke(0x094, 0x00d0)
				cst.Poke(0x100, 0x6200)
				cst.Poke(0x096, SetClr|DMAEnable|DMABitpl)
				runTo(t, cst, 0x40, 0)
			},
			expect: map[int32]Bus{
				0x10: BusCopper,
				0x16: BusCopper,

				// first fetch unit. slots 0 and 4 are free in six plane mode
				0x18: BusCopper,
				0x19: BusBitplane,
				0x1a: BusBitplane,
				0x1b: BusBitplane,
				0x1c: BusCopper,
				0x1d: BusBitplane,
				0x1e: BusBitplane,
				0x1f: BusBitplane,

				// a fetch unit in the middle of the line
				0x80: BusCopper,
				0x82: BusBitplane,
				0x84: BusCopper,
				0x86: BusBitplane,

				// after the last fetch unit
				0xd8: BusCopper,
			},
		},
		{
			name: "hires bitplanes starve copper",
			setup: func(t *testing.T, cst *Custom, ram *testRAM) {
				busyCopper(t, cst, ram)
				cst.Poke(0x08e, 0x2c81)
				cst.Poke(0x090, 0x2cc1)
				cst.Poke(0x092, 0x003c)
				cst.Poke(0x094, 0x00d0)
				cst.Poke(0x100, 0xc200)
				cst.Poke(0x096, SetClr|DMAEnable|DMABitpl)
				runTo(t, cst, 0x40, 0)
			},
			expect: map[int32]Bus{
				0x38: BusCopper,
				0x3a: BusCopper,
				0x3c: BusBitplane,
				0x3d: BusBitplane,
				0x3e: BusBitplane,
				0x3f: BusBitplane,
				0x60: BusBitplane,
				0x62: BusBitplane,
				0x80: BusBitplane,
				0xc0: BusBitplane,
			},
		},
		{
			name: "copper over blitter",
			setup: func(t *testing.T, cst *Custom, ram *testRAM) {
				busyCopper(t, cst, ram)
				cst.Poke(0x096, SetClr|DMAEnable|DMABlit)
				runTo(t, cst, 0x3f, 0)
				startLongBlit(cst)
				runTo(t, cst, 0x40, 0)
			},
			expect: map[int32]Bus{
				0x20: BusCopper,
				0x22: BusCopper,
				0x40: BusCopper,
				0x42: BusCopper,
				0x80: BusCopper,
				0xc0: BusCopper,
			},
			present: []Bus{BusBlitter},
		},
		{
			name: "disk and audio over blitter",
			setup: func(t *testing.T, cst *Custom, ram *testRAM) {
				ram.put(0x2000, 0x1234, 0x5678)
				cst.Poke(0x0a0, 0x0000)
				cst.Poke(0x0a2, 0x2000)
				cst.Poke(0x0a4, 2)
				cst.Poke(0x0a6, 200)

				cst.Poke(0x096, SetClr|DMAEnable|DMABlit)
				runTo(t, cst, 0x3f, 0)
				startLongBlit(cst)
				runTo(t, cst, 0x40, 0)

				// write DMA reads a word from memory in every disk slot
				cst.Poke(0x020, 0x0003)
				cst.Poke(0x022, 0x0000)
				cst.Poke(0x024, dsklenDMAEN|dsklenWRITE|1000)
				cst.Poke(0x024, dsklenDMAEN|dsklenWRITE|1000)
				cst.Poke(0x096, SetClr|DMAEnable|DMADisk|DMAAud0)
			},
			expect: map[int32]Bus{
				1:  BusRefresh,
				3:  BusRefresh,
				5:  BusRefresh,
				7:  BusDisk,
				9:  BusDisk,
				11: BusDisk,
				13: BusAudio,
			},
			present: []Bus{BusBlitter},
		},
	}

	for _, c := range tcs {
		t.Run(c.name, func(t *testing.T) {
			cst, ram, _ := newTestCustom()
			c.setup(t, cst, ram)

			bus := make(map[int32]Bus)
			seen := make(map[Bus]bool)
			for _, r := range runFor(cst, spec.ClksScanline, false) {
				if r.HPos&1 == 0 {
					bus[r.HPos>>1] = r.Bus
					seen[r.Bus] = true
				}
			}

			for cc, b := range c.expect {
				test.ExpectEquality(t, bus[cc], b, cc)
			}
			for _, b := range c.present {
				test.ExpectSuccess(t, seen[b], b)
			}
		})
	}
}

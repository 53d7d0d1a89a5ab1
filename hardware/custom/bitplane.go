package custom

import "github.com/jetsetilly/amichip/hardware/spec"

// BPLCON0 bits
const (
	bplconHIRES = 0x8000
	bplconHAM   = 0x0800
	bplconDBLPF = 0x0400
	bplconLACE  = 0x0004
)

// BPLCON2 bits
const bplcon2PF2PRI = 0x0040

// the limits of the data fetch window in colour clocks
const (
	ddfMin = 0x18
	ddfMax = 0xd8
)

// the plane fetched in each colour clock of a fetch unit. zero means no fetch
var (
	loresOrder = [8]int32{0, 4, 6, 2, 0, 3, 5, 1}
	hiresOrder = [4]int32{4, 2, 3, 1}
)

// Latch is bitplane data waiting to be copied to the shift registers. The
// delay depends on the scroll value in BPLCON1.
type Latch struct {
	Delay int32
	Data  [3]uint16
}

// the minimum number of ticks between the write to BPL1DAT and the data
// appearing in the shift registers
const latchDelay = 3

// Bitplane is the state of bitplane DMA and the playfield serialisers.
type Bitplane struct {
	BPLCON0 uint16
	BPLCON1 uint16
	BPLCON2 uint16
	DDFSTRT uint16
	DDFSTOP uint16
	DIWSTRT uint16
	DIWSTOP uint16
	BPL1MOD uint16
	BPL2MOD uint16

	PT    [6]uint32
	DAT   [6]uint16
	Shift [6]uint16

	// pending latches for the odd and even planes. the two groups of planes
	// are latched independently
	Latch [2][3]Latch

	// the current line is inside the vertical display window
	VActive bool

	// the colour held from the previous pixel in HAM mode
	Hold uint16
}

func (cst *Custom) deriveMode() {
	bp := &cst.State.Bitplane

	cst.hires = bp.BPLCON0&bplconHIRES != 0
	cst.bpu = int32(bp.BPLCON0>>12) & 0x07
	if cst.bpu == 7 || (cst.hires && cst.bpu > 4) {
		cst.bpu = 4
	}

	switch {
	case bp.BPLCON0&bplconDBLPF != 0:
		cst.pixel = cst.pixelDual
	case bp.BPLCON0&bplconHAM != 0 && !cst.hires && cst.bpu >= 5:
		cst.pixel = cst.pixelHAM
	case cst.bpu == 6:
		cst.pixel = cst.pixelEHB
	default:
		cst.pixel = cst.pixelSingle
	}
}

func (cst *Custom) deriveFetch() {
	bp := &cst.State.Bitplane

	start := max(int32(bp.DDFSTRT&0xfc), ddfMin)
	stop := min(int32(bp.DDFSTOP&0xfc), ddfMax)
	cst.ddfStart = start
	if stop < start {
		cst.ddfEnd = start
		return
	}

	// the fetch unit that starts at or after DDFSTOP is the last one
	cst.ddfEnd = start + ((stop-start)/8+1)*8
}

func (cst *Custom) deriveWindow() {
	bp := &cst.State.Bitplane

	cst.diwVStart = int32(bp.DIWSTRT >> 8)
	cst.diwVStop = int32(bp.DIWSTOP >> 8)
	if bp.DIWSTOP&0x8000 == 0 {
		cst.diwVStop |= 0x100
	}
	cst.diwHStart = int32(bp.DIWSTRT & 0xff)
	cst.diwHStop = int32(bp.DIWSTOP&0xff) | 0x100
}

func addModulo(ptr *uint32, mod uint16) {
	*ptr = uint32(int32(*ptr) + int32(int16(mod)))
}

func (cst *Custom) bitplaneSlot(cc int32) bool {
	bp := &cst.State.Bitplane
	if !bp.VActive || cst.bpu == 0 || !cst.dmaEnabled(DMABitpl) {
		return false
	}
	if cc < cst.ddfStart || cc >= cst.ddfEnd {
		return false
	}

	var plane int32
	var last bool
	if cst.hires {
		plane = hiresOrder[(cc-cst.ddfStart)&3]
		last = cc >= cst.ddfEnd-4
	} else {
		plane = loresOrder[(cc-cst.ddfStart)&7]
		last = cc >= cst.ddfEnd-8
	}
	if plane == 0 || plane > cst.bpu {
		return false
	}

	pl := int(plane - 1)
	v := cst.dmaRead(BusBitplane, bp.PT[pl])
	bp.PT[pl] += 2
	if last {
		if pl&1 == 0 {
			addModulo(&bp.PT[pl], bp.BPL1MOD)
		} else {
			addModulo(&bp.PT[pl], bp.BPL2MOD)
		}
	}

	cst.writeBPLDAT(pl, v)
	return true
}

// writeBPLDAT is used by both DMA and the CPU. a write to BPL1DAT causes all
// planes to be latched into the shift registers
func (cst *Custom) writeBPLDAT(pl int, v uint16) {
	bp := &cst.State.Bitplane
	bp.DAT[pl] = v
	if pl != 0 {
		return
	}

	for parity := range 2 {
		scroll := int32(bp.BPLCON1>>(parity*4)) & 0x0f
		q := &bp.Latch[parity]

		// use the free entry or the entry closest to completion
		e := 0
		for i := range q {
			if q[i].Delay == 0 {
				e = i
				break
			}
			if q[i].Delay < q[e].Delay {
				e = i
			}
		}

		q[e].Delay = latchDelay + scroll
		for k := range 3 {
			q[e].Data[k] = bp.DAT[parity+k*2]
		}
	}
}

// stepPlanes latches pending data and shifts out the pixels for this tick
func (cst *Custom) stepPlanes() {
	bp := &cst.State.Bitplane

	for parity := range 2 {
		for i := range bp.Latch[parity] {
			l := &bp.Latch[parity][i]
			if l.Delay == 0 {
				continue
			}
			l.Delay--
			if l.Delay == 0 {
				for k := range 3 {
					bp.Shift[parity+k*2] = l.Data[k]
				}
			}
		}
	}

	mask := uint8(1<<cst.bpu) - 1
	shift := func() uint8 {
		var p uint8
		for pl := range 6 {
			p |= uint8(bp.Shift[pl]>>15) << pl
			bp.Shift[pl] <<= 1
		}
		return p & mask
	}

	if cst.hires {
		cst.planePix[0] = shift()
		cst.planePix[1] = shift()
	} else {
		cst.planePix[0] = shift()
		cst.planePix[1] = cst.planePix[0]
	}
}

// startLine is called at the beginning of every line
func (cst *Custom) startLine() {
	bp := &cst.State.Bitplane
	v := cst.State.Beam.VPos
	bp.VActive = v >= max(cst.diwVStart, spec.VBlankEnd) && v < cst.diwVStop
	bp.Hold = cst.State.Colour[0]
}

package custom

import (
	"fmt"

	"github.com/jetsetilly/amichip/logger"
)

// blitter states
const (
	blitterStopped int32 = iota
	blitterStarting
	blitterRunning
	blitterFinal
)

var blitterStateNames = []string{"stopped", "starting", "running", "final"}

// BlitterStartDelay is the number of colour clocks between a write to BLTSIZE
// and the first blitter cycle. BlitterIRQDelay is the number of ticks between
// the last cycle and the BLIT interrupt. Both values are empirical.
const (
	BlitterStartDelay = 2
	BlitterIRQDelay   = 10
)

// channel indexes for the pointer, modulo and data arrays
const (
	chanA = iota
	chanB
	chanC
	chanD
)

// BLTCON0 bits
const (
	bltcon0USEA = 0x0800
	bltcon0USEB = 0x0400
	bltcon0USEC = 0x0200
	bltcon0USED = 0x0100
)

// BLTCON1 bits. some bits have a different meaning in line mode
const (
	bltcon1LINE = 0x0001
	bltcon1DESC = 0x0002
	bltcon1FCI  = 0x0004
	bltcon1IFE  = 0x0008
	bltcon1EFE  = 0x0010
	bltcon1SING = 0x0002
	bltcon1AUL  = 0x0004
	bltcon1SUL  = 0x0008
	bltcon1SUD  = 0x0010
	bltcon1SIGN = 0x0040
)

// the kinds of blitter cycle
const (
	cycIdle = iota
	cycA
	cycB
	cycC
	cycD
)

// the sequence of cycles for one word, indexed by the channel enable bits
// (A=8, B=4, C=2, D=1)
var blitterCycles = [16][]int{
	{cycIdle, cycIdle},
	{cycIdle, cycD},
	{cycIdle, cycC},
	{cycIdle, cycC, cycD},
	{cycIdle, cycB, cycIdle},
	{cycIdle, cycB, cycD},
	{cycIdle, cycB, cycC},
	{cycIdle, cycB, cycC, cycD},
	{cycA, cycIdle},
	{cycA, cycD},
	{cycA, cycC},
	{cycA, cycC, cycD},
	{cycA, cycB, cycIdle},
	{cycA, cycB, cycD},
	{cycA, cycB, cycC},
	{cycA, cycB, cycC, cycD},
}

// fill mode adds an idle cycle when C is not used
var blitterFillCycles = map[int][]int{
	0x1: {cycIdle, cycIdle, cycD},
	0x5: {cycIdle, cycB, cycIdle, cycD},
	0x9: {cycA, cycIdle, cycD},
	0xd: {cycA, cycB, cycIdle, cycD},
}

var blitterLineCycles = []int{cycIdle, cycC, cycIdle, cycD}

// Blitter is the state of the blitter.
type Blitter struct {
	State int32

	CON0 uint16
	CON1 uint16
	AFWM uint16
	ALWM uint16

	PT  [4]uint32
	MOD [4]uint16
	DAT [4]uint16

	Width  int32
	Height int32
	X      int32
	Y      int32
	Cycle  int32

	Busy bool
	Zero bool

	// countdown for the starting and final states
	Delay int32

	// the previous A and B words are shifted into the current words
	PrevA uint16
	PrevB uint16

	// fill carry
	Carry bool

	// the D write is pipelined. the result of a word is written during the
	// cycles of the following word
	DPending bool
	DAddr    uint32

	// all words have been processed and only the pending D write remains
	Flush bool

	// line mode
	Sign   bool
	OneDot bool
	ASH    int32
	BSH    int32
}

// BlitterString returns a summary of the blitter for debugging
func (cst *Custom) BlitterString() string {
	bl := &cst.State.Blitter
	return fmt.Sprintf("Blitter: %s con0=%#04x con1=%#04x size=%dx%d pos=%d,%d busy=%v zero=%v\n  a=%#06x b=%#06x c=%#06x d=%#06x",
		blitterStateNames[bl.State], bl.CON0, bl.CON1, bl.Width, bl.Height, bl.X, bl.Y, bl.Busy, bl.Zero,
		bl.PT[chanA], bl.PT[chanB], bl.PT[chanC], bl.PT[chanD])
}

func (cst *Custom) writeBLTSIZE(v uint16) {
	bl := &cst.State.Blitter
	if bl.Busy {
		logger.Logf(cst.ctx, "blitter", "BLTSIZE written while busy (%s)", cst.positionString())
	}

	bl.Height = int32(v >> 6)
	if bl.Height == 0 {
		bl.Height = 1024
	}
	bl.Width = int32(v & 0x3f)
	if bl.Width == 0 {
		bl.Width = 64
	}

	bl.Busy = true
	bl.Zero = true
	bl.State = blitterStarting
	bl.Delay = BlitterStartDelay
}

func (cst *Custom) writeBLTBDAT(v uint16) {
	cst.State.Blitter.DAT[chanB] = v
}

// Minterm computes the logic function of the blitter for three source words.
// Each bit of lf selects one of the eight combinations of a, b and c.
func Minterm(lf uint8, a, b, c uint16) uint16 {
	var d uint16
	if lf&0x01 != 0 {
		d |= ^a & ^b & ^c
	}
	if lf&0x02 != 0 {
		d |= ^a & ^b & c
	}
	if lf&0x04 != 0 {
		d |= ^a & b & ^c
	}
	if lf&0x08 != 0 {
		d |= ^a & b & c
	}
	if lf&0x10 != 0 {
		d |= a & ^b & ^c
	}
	if lf&0x20 != 0 {
		d |= a & ^b & c
	}
	if lf&0x40 != 0 {
		d |= a & b & ^c
	}
	if lf&0x80 != 0 {
		d |= a & b & c
	}
	return d
}

func (bl *Blitter) line() bool {
	return bl.CON1&bltcon1LINE != 0
}

func (bl *Blitter) sequence() []int {
	if bl.line() {
		return blitterLineCycles
	}
	mask := int(bl.CON0>>8) & 0x0f
	if bl.CON1&(bltcon1IFE|bltcon1EFE) != 0 {
		if seq, ok := blitterFillCycles[mask]; ok {
			return seq
		}
	}
	return blitterCycles[mask]
}

// the kind of the next cycle, taking into account cycles that will not use
// the bus
func (bl *Blitter) nextCycle() int {
	if bl.Flush {
		return cycD
	}

	kind := bl.sequence()[bl.Cycle]
	switch kind {
	case cycC:
		if bl.line() && bl.CON0&bltcon0USEC == 0 {
			return cycIdle
		}
	case cycD:
		if bl.line() {
			if bl.CON1&bltcon1SING != 0 && bl.OneDot {
				return cycIdle
			}
		} else if !bl.DPending {
			return cycIdle
		}
	}
	return kind
}

func (bl *Blitter) increment() uint32 {
	if !bl.line() && bl.CON1&bltcon1DESC != 0 {
		return ^uint32(1)
	}
	return 2
}

func (bl *Blitter) start() {
	bl.State = blitterRunning
	bl.X = 0
	bl.Y = 0
	bl.Cycle = 0
	bl.PrevA = 0
	bl.PrevB = 0
	bl.DPending = false
	bl.Flush = false
	bl.Carry = bl.CON1&bltcon1FCI != 0
	bl.Sign = bl.CON1&bltcon1SIGN != 0
	bl.OneDot = false
	bl.ASH = int32(bl.CON0 >> 12)
	bl.BSH = int32(bl.CON1 >> 12)
}

func (cst *Custom) blitterFinish() {
	bl := &cst.State.Blitter
	if bl.line() {
		bl.CON0 = bl.CON0&0x0fff | uint16(bl.ASH)<<12
		bl.CON1 = bl.CON1&0x0fff | uint16(bl.BSH)<<12
	}
	bl.State = blitterFinal
	bl.Delay = BlitterIRQDelay
}

// stepBlitterFinal is called every tick while the blitter is in the final
// state
func (cst *Custom) stepBlitterFinal() {
	bl := &cst.State.Blitter
	bl.Delay--
	if bl.Delay <= 0 {
		bl.Busy = false
		bl.State = blitterStopped
		cst.Interrupt(IntBLIT)
	}
}

// stepBlitter is called on every colour clock. available is true if no
// other DMA channel has claimed the bus. returns true if the blitter used the
// bus
func (cst *Custom) stepBlitter(available bool, cpuWantsBus bool) bool {
	st := &cst.State
	bl := &st.Blitter

	switch bl.State {
	case blitterStopped, blitterFinal:
		return false
	case blitterStarting:
		bl.Delay--
		if bl.Delay <= 0 {
			bl.start()
		}
		return false
	}

	if !cst.dmaEnabled(DMABlit) {
		return false
	}

	kind := bl.nextCycle()
	if kind == cycIdle {
		cst.blitterCycle(kind)
		return false
	}

	if !available {
		return false
	}

	// the CPU gets the bus after the blitter has held it for three cycles
	// unless blitter priority is set
	if cpuWantsBus && st.DMACON&DMABltPri == 0 && st.CPUBlock >= 3 {
		return false
	}

	cst.blitterCycle(kind)
	if cpuWantsBus {
		st.CPUBlock = min(st.CPUBlock+1, 3)
	}
	return true
}

// blitterCycle performs one cycle of the current blit
func (cst *Custom) blitterCycle(kind int) {
	bl := &cst.State.Blitter

	if bl.line() {
		cst.blitterLineCycle(kind)
		return
	}

	inc := bl.increment()
	switch kind {
	case cycA:
		bl.DAT[chanA] = cst.dmaRead(BusBlitter, bl.PT[chanA])
		bl.PT[chanA] += inc
	case cycB:
		bl.DAT[chanB] = cst.dmaRead(BusBlitter, bl.PT[chanB])
		bl.PT[chanB] += inc
	case cycC:
		bl.DAT[chanC] = cst.dmaRead(BusBlitter, bl.PT[chanC])
		bl.PT[chanC] += inc
	case cycD:
		cst.dmaWrite(BusBlitter, bl.DAddr, bl.DAT[chanD])
		bl.DPending = false
	}

	if bl.Flush {
		bl.Flush = false
		cst.blitterFinish()
		return
	}

	bl.Cycle++
	if int(bl.Cycle) < len(bl.sequence()) {
		return
	}
	bl.Cycle = 0
	cst.blitterWord()
}

// blitterWord processes the data read for the current word
func (cst *Custom) blitterWord() {
	bl := &cst.State.Blitter

	a := bl.DAT[chanA]
	if bl.X == 0 {
		a &= bl.AFWM
	}
	if bl.X == bl.Width-1 {
		a &= bl.ALWM
	}
	b := bl.DAT[chanB]

	ash := uint(bl.CON0 >> 12)
	bsh := uint(bl.CON1 >> 12)

	var as, bs uint16
	if bl.CON1&bltcon1DESC != 0 {
		as = uint16((uint32(a)<<16 | uint32(bl.PrevA)) >> (16 - ash))
		bs = uint16((uint32(b)<<16 | uint32(bl.PrevB)) >> (16 - bsh))
	} else {
		as = uint16((uint32(bl.PrevA)<<16 | uint32(a)) >> ash)
		bs = uint16((uint32(bl.PrevB)<<16 | uint32(b)) >> bsh)
	}
	bl.PrevA = a
	bl.PrevB = b

	d := Minterm(uint8(bl.CON0), as, bs, bl.DAT[chanC])
	if bl.CON1&(bltcon1IFE|bltcon1EFE) != 0 {
		d = bl.fill(d)
	}
	bl.DAT[chanD] = d
	if d != 0 {
		bl.Zero = false
	}

	inc := bl.increment()
	if bl.CON0&bltcon0USED != 0 {
		bl.DPending = true
		bl.DAddr = bl.PT[chanD]
		bl.PT[chanD] += inc
	}

	bl.X++
	if bl.X >= bl.Width {
		bl.X = 0
		bl.Y++
		bl.Carry = bl.CON1&bltcon1FCI != 0

		use := [4]uint16{bltcon0USEA, bltcon0USEB, bltcon0USEC, bltcon0USED}
		for ch := range 4 {
			if bl.CON0&use[ch] == 0 {
				continue
			}
			if bl.CON1&bltcon1DESC != 0 {
				addModulo(&bl.PT[ch], -bl.MOD[ch])
			} else {
				addModulo(&bl.PT[ch], bl.MOD[ch])
			}
		}
	}

	if bl.Y >= bl.Height {
		if bl.DPending {
			bl.Flush = true
		} else {
			cst.blitterFinish()
		}
	}
}

// fill processes the word from the least significant bit to the most
// significant bit. the carry is preserved between words of the same row
func (bl *Blitter) fill(d uint16) uint16 {
	exclusive := bl.CON1&bltcon1EFE != 0
	var out uint16
	for i := range 16 {
		bit := d&(1<<i) != 0
		if exclusive {
			if bit {
				bl.Carry = !bl.Carry
			}
			if bl.Carry {
				out |= 1 << i
			}
		} else {
			if bit || bl.Carry {
				out |= 1 << i
			}
			if bit {
				bl.Carry = !bl.Carry
			}
		}
	}
	return out
}

// blitterLineCycle performs one of the four cycles of a line mode pixel
func (cst *Custom) blitterLineCycle(kind int) {
	bl := &cst.State.Blitter

	switch kind {
	case cycC:
		bl.DAT[chanC] = cst.dmaRead(BusBlitter, bl.PT[chanC])
	}

	bl.Cycle++
	if int(bl.Cycle) < len(blitterLineCycles) {
		return
	}
	bl.Cycle = 0

	// the D cycle is idle if the pixel is not to be drawn
	cst.blitterLinePixel(kind == cycD)
}

func (cst *Custom) blitterLinePixel(draw bool) {
	bl := &cst.State.Blitter

	a := bl.DAT[chanA] >> uint(bl.ASH)
	var b uint16
	if (bl.DAT[chanB]>>uint(bl.BSH))&1 != 0 {
		b = 0xffff
	}
	bl.BSH = (bl.BSH - 1) & 0x0f

	d := Minterm(uint8(bl.CON0), a, b, bl.DAT[chanC])
	bl.DAT[chanD] = d
	if draw {
		cst.dmaWrite(BusBlitter, bl.PT[chanC], d)
		if d != 0 {
			bl.Zero = false
		}
		if bl.CON1&bltcon1SING != 0 {
			bl.OneDot = true
		}
	}

	incx := func() {
		bl.ASH++
		if bl.ASH > 15 {
			bl.ASH = 0
			bl.PT[chanC] += 2
		}
	}
	decx := func() {
		bl.ASH--
		if bl.ASH < 0 {
			bl.ASH = 15
			bl.PT[chanC] -= 2
		}
	}
	incy := func() {
		addModulo(&bl.PT[chanC], bl.MOD[chanC])
		bl.OneDot = false
	}
	decy := func() {
		addModulo(&bl.PT[chanC], -bl.MOD[chanC])
		bl.OneDot = false
	}

	// the A pointer is the error accumulator
	apt := int16(bl.PT[chanA])
	if bl.Sign {
		apt += int16(bl.MOD[chanB])
	} else {
		apt += int16(bl.MOD[chanA])
	}

	sud := bl.CON1&bltcon1SUD != 0
	sul := bl.CON1&bltcon1SUL != 0
	aul := bl.CON1&bltcon1AUL != 0

	if !bl.Sign {
		switch {
		case sud && sul:
			decy()
		case sud:
			incy()
		case sul:
			decx()
		default:
			incx()
		}
	}

	switch {
	case sud && aul:
		decx()
	case sud:
		incx()
	case aul:
		decy()
	default:
		incy()
	}

	bl.Sign = apt < 0
	bl.PT[chanA] = bl.PT[chanA]&0xffff0000 | uint32(uint16(apt))
	bl.PT[chanD] = bl.PT[chanC]

	bl.Y++
	if bl.Y >= bl.Height {
		cst.blitterFinish()
	}
}

package custom

// Interrupt bits in INTENA and INTREQ.
const (
	IntTBE    = 0
	IntDSKBLK = 1
	IntSOFT   = 2
	IntPORTS  = 3
	IntCOPER  = 4
	IntVERTB  = 5
	IntBLIT   = 6
	IntAUD0   = 7
	IntAUD1   = 8
	IntAUD2   = 9
	IntAUD3   = 10
	IntRBF    = 11
	IntDSKSYN = 12
	IntEXTER  = 13

	// master enable bit in INTENA
	IntINTEN = 14

	numInterrupts = 14
)

// the CPU interrupt level for each interrupt bit
var interruptLevel = [numInterrupts]uint8{1, 1, 1, 2, 3, 3, 3, 4, 4, 4, 4, 5, 5, 6}

// IRQDelay is the number of ticks between an internal interrupt condition and
// the bit appearing in INTREQ. The value is tuned to match existing test
// programs rather than derived from the hardware.
const IRQDelay = 2

// IPLChangeDelay is the number of ticks before a change in the interrupt
// level is seen by the CPU. Like IRQDelay the value is empirical.
const IPLChangeDelay = 2

// Interrupts is the state of the interrupt controller in Paula.
type Interrupts struct {
	INTENA uint16
	INTREQ uint16

	// ticks remaining until the interrupt bit is set in INTREQ. zero means no
	// pending interrupt
	Delay [numInterrupts]int32

	// the level seen by the CPU and the level it will change to
	IPL        uint8
	PendingIPL uint8
	IPLDelay   int32
}

// Interrupt raises an interrupt after IRQDelay ticks. Chips outside of the
// custom chips (the CIAs) call this function.
func (cst *Custom) Interrupt(bit int) {
	in := &cst.State.Interrupts
	if in.Delay[bit] == 0 && in.INTREQ&(1<<bit) == 0 {
		in.Delay[bit] = IRQDelay
	}
}

// IPL returns the interrupt priority level (0 to 6) seen by the CPU
func (cst *Custom) IPL() uint8 {
	return cst.State.Interrupts.IPL
}

func (in *Interrupts) level() uint8 {
	if in.INTENA&(1<<IntINTEN) == 0 {
		return 0
	}
	active := in.INTENA & in.INTREQ
	for bit := numInterrupts - 1; bit >= 0; bit-- {
		if active&(1<<bit) != 0 {
			return interruptLevel[bit]
		}
	}
	return 0
}

// step advances the delayed interrupts and the IPL latency by one tick
func (in *Interrupts) step() {
	for bit := range in.Delay {
		if in.Delay[bit] > 0 {
			in.Delay[bit]--
			if in.Delay[bit] == 0 {
				in.INTREQ |= 1 << bit
			}
		}
	}

	l := in.level()
	if l != in.PendingIPL {
		in.PendingIPL = l
		in.IPLDelay = IPLChangeDelay
	}
	if in.IPLDelay > 0 {
		in.IPLDelay--
		if in.IPLDelay == 0 {
			in.IPL = in.PendingIPL
		}
	}
}

func setClr(reg *uint16, v uint16) {
	if v&SetClr != 0 {
		*reg |= v &^ SetClr
	} else {
		*reg &^= v
	}
}

func (cst *Custom) writeINTENA(v uint16) {
	setClr(&cst.State.Interrupts.INTENA, v&0x7fff|v&SetClr)
}

// writes to INTREQ take effect immediately. clearing a bit also cancels any
// pending delayed assertion of that bit
func (cst *Custom) writeINTREQ(v uint16) {
	in := &cst.State.Interrupts
	setClr(&in.INTREQ, v&0x3fff|v&SetClr)
	if v&SetClr == 0 {
		for bit := range in.Delay {
			if v&(1<<bit) != 0 {
				in.Delay[bit] = 0
			}
		}
	}
}

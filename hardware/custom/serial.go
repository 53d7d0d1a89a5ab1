package custom

import (
	"math/bits"

	"github.com/jetsetilly/amichip/logger"
)

// Serial is the state of the UART transmitter.
type Serial struct {
	PER uint16

	// the transmit buffer
	DAT  uint16
	Full bool

	// ticks remaining for the word in the shift register
	Busy int32
}

// the maximum length of a line of serial output before it is logged
const serialLineLen = 120

func (cst *Custom) readSERDATR() uint16 {
	ser := &cst.State.Serial
	v := uint16(0x0800) // RXD idles high
	if !ser.Full {
		v |= 0x2000
	}
	if ser.Busy == 0 {
		v |= 0x1000
	}
	return v
}

func (cst *Custom) writeSERDAT(v uint16) {
	ser := &cst.State.Serial
	ser.DAT = v
	ser.Full = true
	if ser.Busy == 0 {
		cst.serialLoad()
	}
}

// serialLoad moves the buffer to the shift register
func (cst *Custom) serialLoad() {
	ser := &cst.State.Serial

	// one start bit and the data bits including the stop bits. the stop bits
	// are the highest set bits of the word
	n := int32(bits.Len16(ser.DAT)) + 1
	ser.Busy = (int32(ser.PER&0x7fff) + 1) * n * 2
	ser.Full = false
	cst.Interrupt(IntTBE)

	cst.serialOutput(uint8(ser.DAT))
}

func (cst *Custom) stepSerial() {
	ser := &cst.State.Serial
	if ser.Busy == 0 {
		return
	}
	ser.Busy--
	if ser.Busy == 0 && ser.Full {
		cst.serialLoad()
	}
}

// serial output is logged one line at a time
func (cst *Custom) serialOutput(b uint8) {
	switch b {
	case '\r':
		return
	case '\n':
		logger.Log(cst.ctx, "serial", cst.serialLine.String())
		cst.serialLine.Reset()
		return
	}
	cst.serialLine.WriteByte(b)
	if cst.serialLine.Len() >= serialLineLen {
		logger.Log(cst.ctx, "serial", cst.serialLine.String())
		cst.serialLine.Reset()
	}
}

// SerialOutput returns the serial output that has not yet been logged
func (cst *Custom) SerialOutput() string {
	return cst.serialLine.String()
}

// Package cia emulates the 8520 Complex Interface Adapter. There are two in
// the machine: CIA-A handles the overlay, the power LED and the drive status
// lines. CIA-B drives the floppy control lines. Both CIAs are clocked by the
// E clock, one tick every ten CPU cycles.
package cia

import (
	"fmt"
	"strings"

	"github.com/jetsetilly/amichip/logger"
)

// Register numbers.
const (
	PRA = iota
	PRB
	DDRA
	DDRB
	TALO
	TAHI
	TBLO
	TBHI
	TODLO
	TODMID
	TODHI
	unused
	SDR
	ICR
	CRA
	CRB
)

var RegisterNames = [16]string{
	"PRA", "PRB", "DDRA", "DDRB", "TALO", "TAHI", "TBLO", "TBHI",
	"TODLO", "TODMID", "TODHI", "-", "SDR", "ICR", "CRA", "CRB",
}

// Interrupt control register bits.
const (
	ICRTimerA = 0x01
	ICRTimerB = 0x02
	ICRAlarm  = 0x04
	ICRSerial = 0x08
	ICRFlag   = 0x10
	ICRIR     = 0x80

	// when writing to the mask register bit 7 selects between setting and
	// clearing the other bits
	ICRSetClear = 0x80
)

// Control register bits.
const (
	CRStart   = 0x01
	CROutMode = 0x04
	CRRunMode = 0x08
	CRLoad    = 0x10
	CRInMode  = 0x20
	CRSPMode  = 0x40

	// timer B has a two bit input mode
	CRBInMode = 0x60
	CRBAlarm  = 0x80
)

// the number of timer A underflows needed to shift out one byte. the serial
// clock toggles on every underflow
const serialShiftUnderflows = 16

type Context interface {
	logger.Permission
}

// Ports connects the CIA to the rest of the machine. Input functions supply
// the level of the pins that are configured as inputs. Output functions are
// called whenever the level of the output pins might have changed, the value
// has input pins pulled high.
type Ports struct {
	InputA  func() uint8
	InputB  func() uint8
	OutputA func(uint8)
	OutputB func(uint8)
}

// State is everything needed to continue emulation of a CIA.
type State struct {
	PRA  uint8
	PRB  uint8
	DDRA uint8
	DDRB uint8

	TimerA Timer
	TimerB Timer

	CRA uint8
	CRB uint8

	ICR uint8
	IMR uint8

	TOD TOD

	SDR         uint8
	SerialCount int32
}

type CIA struct {
	ctx   Context
	label string
	ports Ports

	State State
}

func Create(ctx Context, label string, ports Ports) *CIA {
	cia := &CIA{
		ctx:   ctx,
		label: label,
		ports: ports,
	}
	cia.Reset()
	return cia
}

func (cia *CIA) Label() string {
	return cia.label
}

func (cia *CIA) Reset() {
	cia.State = State{}
	cia.State.TimerA.Latch = 0xffff
	cia.State.TimerB.Latch = 0xffff
	cia.output()
}

func (cia *CIA) output() {
	if cia.ports.OutputA != nil {
		cia.ports.OutputA(cia.OutputA())
	}
	if cia.ports.OutputB != nil {
		cia.ports.OutputB(cia.OutputB())
	}
}

// OutputA returns the level of the port A pins as driven by the CIA. Pins
// configured as inputs read high.
func (cia *CIA) OutputA() uint8 {
	return cia.State.PRA&cia.State.DDRA | ^cia.State.DDRA
}

// OutputB returns the level of the port B pins as driven by the CIA. Pins
// configured as inputs read high.
func (cia *CIA) OutputB() uint8 {
	return cia.State.PRB&cia.State.DDRB | ^cia.State.DDRB
}

func (cia *CIA) inputA() uint8 {
	if cia.ports.InputA == nil {
		return 0xff
	}
	return cia.ports.InputA()
}

func (cia *CIA) inputB() uint8 {
	if cia.ports.InputB == nil {
		return 0xff
	}
	return cia.ports.InputB()
}

// IRQ is the level of the interrupt line
func (cia *CIA) IRQ() bool {
	return cia.State.ICR&cia.State.IMR != 0
}

// Flag pulses the /FLAG input
func (cia *CIA) Flag() {
	cia.interrupt(ICRFlag)
}

func (cia *CIA) interrupt(bit uint8) {
	cia.State.ICR |= bit
}

// Peek returns a register value without the side effects of a read
func (cia *CIA) Peek(reg uint8) uint8 {
	st := &cia.State
	switch reg & 0x0f {
	case PRA:
		return st.PRA&st.DDRA | cia.inputA()&^st.DDRA
	case PRB:
		return st.PRB&st.DDRB | cia.inputB()&^st.DDRB
	case DDRA:
		return st.DDRA
	case DDRB:
		return st.DDRB
	case TALO:
		return uint8(st.TimerA.Counter)
	case TAHI:
		return uint8(st.TimerA.Counter >> 8)
	case TBLO:
		return uint8(st.TimerB.Counter)
	case TBHI:
		return uint8(st.TimerB.Counter >> 8)
	case TODLO:
		return uint8(st.TOD.read())
	case TODMID:
		return uint8(st.TOD.read() >> 8)
	case TODHI:
		return uint8(st.TOD.read() >> 16)
	case SDR:
		return st.SDR
	case ICR:
		v := st.ICR
		if cia.IRQ() {
			v |= ICRIR
		}
		return v
	case CRA:
		return st.CRA &^ CRLoad
	case CRB:
		return st.CRB &^ CRLoad
	}
	return 0xff
}

// Read a register. Reading ICR acknowledges all interrupts and reading the
// TOD registers latches and unlatches the counter
func (cia *CIA) Read(reg uint8) uint8 {
	reg &= 0x0f
	v := cia.Peek(reg)

	switch reg {
	case TODHI:
		cia.State.TOD.latch()
	case TODLO:
		cia.State.TOD.unlatch()
	case ICR:
		cia.State.ICR = 0
	}

	return v
}

func (cia *CIA) Write(reg uint8, data uint8) {
	st := &cia.State

	switch reg & 0x0f {
	case PRA:
		st.PRA = data
		cia.output()
	case PRB:
		st.PRB = data
		cia.output()
	case DDRA:
		st.DDRA = data
		cia.output()
	case DDRB:
		st.DDRB = data
		cia.output()
	case TALO:
		st.TimerA.writeLo(data)
	case TAHI:
		st.TimerA.writeHi(data, st.CRA)
		if st.CRA&CRRunMode != 0 {
			st.CRA |= CRStart
		}
	case TBLO:
		st.TimerB.writeLo(data)
	case TBHI:
		st.TimerB.writeHi(data, st.CRB)
		if st.CRB&CRRunMode != 0 {
			st.CRB |= CRStart
		}
	case TODLO:
		cia.writeTOD(0, data)
	case TODMID:
		cia.writeTOD(8, data)
	case TODHI:
		cia.writeTOD(16, data)
	case unused:
		logger.Logf(cia.ctx, cia.label, "write to unused register")
	case SDR:
		st.SDR = data
		if st.CRA&CRSPMode != 0 {
			st.SerialCount = serialShiftUnderflows
		}
	case ICR:
		if data&ICRSetClear != 0 {
			st.IMR |= data & 0x1f
		} else {
			st.IMR &^= data & 0x1f
		}
	case CRA:
		if data&CRLoad != 0 {
			st.TimerA.Counter = st.TimerA.Latch
		}
		if data&CRInMode != 0 {
			logger.Logf(cia.ctx, cia.label, "timer A counting CNT is not supported")
		}
		st.CRA = data &^ CRLoad
	case CRB:
		if data&CRLoad != 0 {
			st.TimerB.Counter = st.TimerB.Latch
		}
		if data&CRBInMode == CRInMode {
			logger.Logf(cia.ctx, cia.label, "timer B counting CNT is not supported")
		}
		st.CRB = data &^ CRLoad
	}
}

func (cia *CIA) writeTOD(shift uint, data uint8) {
	st := &cia.State
	if st.CRB&CRBAlarm != 0 {
		st.TOD.Alarm = st.TOD.Alarm&^(0xff<<shift) | uint32(data)<<shift
		return
	}
	st.TOD.Counter = st.TOD.Counter&^(0xff<<shift) | uint32(data)<<shift

	// writing the high byte stops the clock until the low byte is written
	switch shift {
	case 16:
		st.TOD.Stopped = true
	case 0:
		st.TOD.Stopped = false
	}

	if st.TOD.alarm() {
		cia.interrupt(ICRAlarm)
	}
}

// Step advances the CIA by one E clock tick
func (cia *CIA) Step() {
	st := &cia.State

	underflowA := false
	if st.CRA&CRStart != 0 && st.CRA&CRInMode == 0 {
		underflowA = st.TimerA.count()
		if underflowA {
			cia.interrupt(ICRTimerA)
			if st.CRA&CRRunMode != 0 {
				st.CRA &^= CRStart
			}
			if st.SerialCount > 0 {
				st.SerialCount--
				if st.SerialCount == 0 {
					cia.interrupt(ICRSerial)
				}
			}
		}
	}

	if st.CRB&CRStart != 0 {
		var tick bool
		switch st.CRB & CRBInMode {
		case 0:
			tick = true
		case 0x40, 0x60:
			tick = underflowA
		}
		if tick && st.TimerB.count() {
			cia.interrupt(ICRTimerB)
			if st.CRB&CRRunMode != 0 {
				st.CRB &^= CRStart
			}
		}
	}
}

// TODPulse increments the time of day counter. CIA-A counts vertical syncs
// and CIA-B counts horizontal syncs
func (cia *CIA) TODPulse() {
	if cia.State.TOD.tick() {
		cia.interrupt(ICRAlarm)
	}
}

func (cia *CIA) String() string {
	var s strings.Builder
	for i := range 16 {
		if i == unused {
			continue
		}
		fmt.Fprintf(&s, "%-6s %02x", RegisterNames[i], cia.Peek(uint8(i)))
		if i%4 == 3 {
			s.WriteString("\n")
		} else {
			s.WriteString("  ")
		}
	}
	fmt.Fprintf(&s, "latch A %04x  latch B %04x  IMR %02x  alarm %06x",
		cia.State.TimerA.Latch, cia.State.TimerB.Latch, cia.State.IMR, cia.State.TOD.Alarm)
	return s.String()
}

package cia_test

import (
	"testing"

	"github.com/jetsetilly/amichip/hardware/cia"
	"github.com/jetsetilly/amichip/test"
)

type context struct{}

func (context) AllowLogging() bool { return false }

func TestPorts(t *testing.T) {
	var outA uint8
	c := cia.Create(context{}, "CIA-A", cia.Ports{
		InputA:  func() uint8 { return 0x3c },
		OutputA: func(v uint8) { outA = v },
	})
	test.ExpectEquality(t, outA, 0xff)

	// bits 0 and 1 are outputs
	c.Write(cia.DDRA, 0x03)
	c.Write(cia.PRA, 0xfe)
	test.ExpectEquality(t, outA, 0xfe)
	test.ExpectEquality(t, c.Read(cia.PRA), 0x3e)

	c.Write(cia.DDRA, 0x00)
	test.ExpectEquality(t, outA, 0xff)
	test.ExpectEquality(t, c.Read(cia.PRA), 0x3c)
}

func TestTimerContinuous(t *testing.T) {
	c := cia.Create(context{}, "CIA-A", cia.Ports{})
	c.Write(cia.ICR, cia.ICRSetClear|cia.ICRTimerA)
	c.Write(cia.TALO, 4)
	c.Write(cia.TAHI, 0)
	test.ExpectEquality(t, c.Peek(cia.TALO), 4)

	c.Write(cia.CRA, cia.CRStart)

	// the timer counts down to zero and underflows on the following tick
	for range 4 {
		c.Step()
		test.ExpectEquality(t, c.IRQ(), false)
	}
	test.ExpectEquality(t, c.Peek(cia.TALO), 0)
	c.Step()
	test.ExpectEquality(t, c.IRQ(), true)
	test.ExpectEquality(t, c.Peek(cia.TALO), 4)

	// reading ICR acknowledges the interrupt
	test.ExpectEquality(t, c.Read(cia.ICR), cia.ICRIR|cia.ICRTimerA)
	test.ExpectEquality(t, c.IRQ(), false)
	test.ExpectEquality(t, c.Read(cia.ICR), 0)

	// and the timer keeps running
	for range 5 {
		c.Step()
	}
	test.ExpectEquality(t, c.IRQ(), true)
	test.ExpectEquality(t, c.Peek(cia.CRA)&cia.CRStart, cia.CRStart)
}

func TestTimerOneShot(t *testing.T) {
	c := cia.Create(context{}, "CIA-B", cia.Ports{})
	c.Write(cia.ICR, cia.ICRSetClear|cia.ICRTimerB)
	c.Write(cia.CRB, cia.CRRunMode)
	c.Write(cia.TBLO, 2)

	// writing the high byte in one-shot mode starts the timer
	c.Write(cia.TBHI, 0)
	test.ExpectEquality(t, c.Peek(cia.CRB)&cia.CRStart, cia.CRStart)

	for range 3 {
		c.Step()
	}
	test.ExpectEquality(t, c.IRQ(), true)
	test.ExpectEquality(t, c.Peek(cia.CRB)&cia.CRStart, 0)

	// interrupts that are masked do not raise the IRQ line
	c.Write(cia.ICR, cia.ICRTimerB)
	test.ExpectEquality(t, c.IRQ(), false)
	test.ExpectEquality(t, c.Read(cia.ICR), cia.ICRTimerB)
}

func TestTimerBCountsUnderflows(t *testing.T) {
	c := cia.Create(context{}, "CIA-A", cia.Ports{})
	c.Write(cia.TALO, 1)
	c.Write(cia.TAHI, 0)
	c.Write(cia.TBLO, 3)
	c.Write(cia.TBHI, 0)
	c.Write(cia.CRA, cia.CRStart)
	c.Write(cia.CRB, cia.CRStart|0x40)

	// timer A underflows every two ticks
	for range 6 {
		c.Step()
	}
	test.ExpectEquality(t, c.Peek(cia.TBLO), 0)
	test.ExpectEquality(t, c.Peek(cia.ICR)&cia.ICRTimerB, 0)
	c.Step()
	c.Step()
	test.ExpectEquality(t, c.Peek(cia.ICR)&cia.ICRTimerB, cia.ICRTimerB)
}

func TestTOD(t *testing.T) {
	c := cia.Create(context{}, "CIA-A", cia.Ports{})
	c.Write(cia.ICR, cia.ICRSetClear|cia.ICRAlarm)

	c.Write(cia.CRB, cia.CRBAlarm)
	c.Write(cia.TODHI, 0)
	c.Write(cia.TODMID, 1)
	c.Write(cia.TODLO, 2)
	c.Write(cia.CRB, 0)

	// writing the high byte stops the clock until the low byte is written
	c.Write(cia.TODHI, 0)
	c.TODPulse()
	test.ExpectEquality(t, c.Peek(cia.TODLO), 0)
	c.Write(cia.TODMID, 1)
	c.Write(cia.TODLO, 0)

	c.TODPulse()
	test.ExpectEquality(t, c.IRQ(), false)

	// reading the high byte latches the counter
	test.ExpectEquality(t, c.Read(cia.TODHI), 0)
	c.TODPulse()
	test.ExpectEquality(t, c.IRQ(), true)
	test.ExpectEquality(t, c.Read(cia.TODMID), 1)
	test.ExpectEquality(t, c.Read(cia.TODLO), 1)
	test.ExpectEquality(t, c.Read(cia.TODLO), 2)
}

func TestSerialOutput(t *testing.T) {
	c := cia.Create(context{}, "CIA-A", cia.Ports{})
	c.Write(cia.ICR, cia.ICRSetClear|cia.ICRSerial)
	c.Write(cia.TALO, 0)
	c.Write(cia.TAHI, 0)
	c.Write(cia.CRA, cia.CRStart|cia.CRSPMode)
	c.Write(cia.SDR, 0xaa)

	for range 15 {
		c.Step()
	}
	test.ExpectEquality(t, c.IRQ(), false)
	c.Step()
	test.ExpectEquality(t, c.IRQ(), true)
	test.ExpectEquality(t, c.Read(cia.SDR), 0xaa)
}

func TestFlag(t *testing.T) {
	c := cia.Create(context{}, "CIA-B", cia.Ports{})
	c.Flag()
	test.ExpectEquality(t, c.IRQ(), false)
	c.Write(cia.ICR, cia.ICRSetClear|cia.ICRFlag)
	test.ExpectEquality(t, c.IRQ(), true)
}

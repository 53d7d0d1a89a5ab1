package custom

import (
	"bytes"
	"testing"

	"github.com/jetsetilly/amichip/hardware/spec"
	"github.com/jetsetilly/amichip/test"
)

func TestAudioLoop(t *testing.T) {
	cst, ram, _ := newTestCustom()
	ram.put(0x4000, 0x7f7f, 0x8080, 0x4040, 0xc0c0)

	cst.Poke(0x0a0, 0)
	cst.Poke(0x0a2, 0x4000)
	cst.Poke(0x0a4, 4)
	cst.Poke(0x0a6, 124)
	cst.Poke(0x0a8, 64)
	cst.Poke(0x096, SetClr|DMAEnable|DMAAud0)

	var fetches, irqs int
	for range spec.ClksScanline * 40 {
		r := cst.Step(false, 0)
		if r.Bus == BusAudio {
			// the pointer is reloaded after every fourth word
			test.ExpectEquality(t, r.DMAAddr, uint32(0x4000+(fetches%4)*2), fetches)
			fetches++
		}
		if cst.State.Interrupts.INTREQ&(1<<IntAUD0) != 0 {
			irqs++
			cst.Poke(0x09c, 1<<IntAUD0)
		}
	}
	runFor(cst, IRQDelay, false)
	if cst.State.Interrupts.INTREQ&(1<<IntAUD0) != 0 {
		irqs++
	}

	test.ExpectSuccess(t, fetches > 8, fetches)
	test.ExpectEquality(t, irqs, (fetches+3)/4)
	test.ExpectInequality(t, cst.State.Audio[0].Output, int32(0))

	// disabling DMA stops the channel immediately
	cst.Poke(0x096, DMAAud0)
	test.ExpectEquality(t, cst.State.Audio[0].State, audioInactive)
	test.ExpectEquality(t, cst.State.Audio[0].Output, int32(0))
	for _, r := range runFor(cst, spec.ClksScanline*4, false) {
		test.ExpectInequality(t, r.Bus, BusAudio)
	}
}

func TestAudioRestart(t *testing.T) {
	cst, ram, _ := newTestCustom()
	ram.put(0x4000, 0x1010, 0x2020)
	ram.put(0x5000, 0x3030)

	cst.Poke(0x0a2, 0x4000)
	cst.Poke(0x0a4, 2)
	cst.Poke(0x0a6, 200)
	cst.Poke(0x0a8, 64)
	cst.Poke(0x096, SetClr|DMAEnable|DMAAud0)
	runFor(cst, spec.ClksScanline*4, false)

	// a new location is only used when the channel is restarted
	cst.Poke(0x0a2, 0x5000)
	cst.Poke(0x096, DMAAud0)
	cst.Poke(0x096, SetClr|DMAAud0)
	for _, r := range runFor(cst, spec.ClksScanline, false) {
		if r.Bus == BusAudio {
			test.ExpectEquality(t, r.DMAAddr, uint32(0x5000))
			return
		}
	}
	t.Errorf("no audio fetch after restart")
}

func TestAudioCPU(t *testing.T) {
	cst, _, _ := newTestCustom()
	cst.Poke(0x0a6, 150)
	cst.Poke(0x0a8, 64)
	cst.Poke(0x0aa, 0x4000)
	test.ExpectEquality(t, cst.State.Audio[0].State, audioSamp1)
	test.ExpectEquality(t, cst.State.Audio[0].Output, int32(0x40*64))

	// two samples at 150 colour clocks each
	runFor(cst, 150*2*2+IRQDelay+4, false)
	test.ExpectEquality(t, cst.State.Audio[0].State, audioInactive)
	test.ExpectEquality(t, cst.State.Interrupts.INTREQ&(1<<IntAUD0), uint16(1<<IntAUD0))
}

func TestAudioBuffer(t *testing.T) {
	buf := NewAudioBuffer()
	var tapped int
	buf.SetTap(func(l, r int16) { tapped++ })

	buf.Push(1, -1)
	buf.Push(0x1234, 0x5678)
	test.ExpectEquality(t, buf.Len(), 2)
	test.ExpectEquality(t, tapped, 2)

	p := make([]byte, 12)
	n, err := buf.Read(p)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, n, 12)
	test.ExpectSuccess(t, bytes.Equal(p, []byte{
		0x01, 0x00, 0xff, 0xff,
		0x34, 0x12, 0x78, 0x56,
		0x00, 0x00, 0x00, 0x00,
	}))
	test.ExpectEquality(t, buf.Len(), 0)
}

func TestAudioMix(t *testing.T) {
	cst, _, _ := newTestCustom()

	// a full line produces two samples
	runTo(t, cst, 0x10, 1)
	cst.audio.Reset()
	runFor(cst, spec.ClksScanline, false)
	test.ExpectEquality(t, cst.audio.Len(), 2)
}

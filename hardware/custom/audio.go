package custom

import (
	"fmt"
	"math"
	"strings"

	"github.com/jetsetilly/amichip/hardware/clocks"
	"github.com/jetsetilly/amichip/hardware/custom/mix"
)

// audio channel states
const (
	audioInactive int32 = iota
	audioDMAStarting
	audioSamp1
	audioSamp2
)

var audioStateNames = []string{"inactive", "dma_starting", "samp1", "samp2"}

// the minimum period the hardware can fetch data for
const audioMinPeriod = 113

// the cutoff frequency of the output filter
const audioFilterCutoff = 4900

var audioFilterAlpha = float32(1 - math.Exp(-2*math.Pi*audioFilterCutoff/clocks.AudioSampleRate))

// Audio is the state of one audio channel.
type Audio struct {
	State int32

	LC  uint32
	PT  uint32
	LEN uint16
	PER uint16
	VOL uint16
	DAT uint16

	// words remaining before the pointer is reloaded from LC
	LenCounter int32

	// colour clocks remaining for the current sample
	PerCounter int32

	// the word being played
	Hold uint16

	// the channel wants a DMA slot
	Request bool

	// DAT contains a word that has not been moved to Hold
	DATFull bool

	// the next fetch is the first word of the sample
	FirstFetch bool

	// the word was written by the CPU rather than by DMA
	CPU bool

	Output int32
	Filter float32
}

// AudioString returns a summary of the audio channels for debugging
func (cst *Custom) AudioString() string {
	var s strings.Builder
	for ch := range cst.State.Audio {
		aud := &cst.State.Audio[ch]
		if ch > 0 {
			s.WriteString("\n")
		}
		s.WriteString(fmt.Sprintf("AUD%d: %-12s dma=%v lc=%#06x pt=%#06x len=%d (%d) per=%d vol=%d out=%d",
			ch, audioStateNames[aud.State], cst.dmaEnabled(DMAAud0<<ch),
			aud.LC, aud.PT, aud.LEN, aud.LenCounter, aud.PER, aud.VOL, aud.Output))
	}
	return s.String()
}

func (aud *Audio) period() int32 {
	return max(int32(aud.PER), audioMinPeriod)
}

func (aud *Audio) length() int32 {
	if aud.LEN == 0 {
		return 0x10000
	}
	return int32(aud.LEN)
}

func (aud *Audio) play(sample uint8) {
	vol := min(int32(aud.VOL), 64)
	aud.Output = int32(int8(sample)) * vol
	aud.PerCounter = aud.period()
}

// dmaChanged is called after every write to DMACON
func (cst *Custom) dmaChanged(before uint16) {
	on := func(dmacon uint16, bit uint16) bool {
		return dmacon&DMAEnable != 0 && dmacon&bit != 0
	}

	for ch := range cst.State.Audio {
		bit := uint16(DMAAud0 << ch)
		was := on(before, bit)
		is := on(cst.State.DMACON, bit)
		aud := &cst.State.Audio[ch]

		switch {
		case is && !was:
			aud.State = audioDMAStarting
			aud.PT = aud.LC
			aud.LenCounter = aud.length()
			aud.Request = true
			aud.FirstFetch = true
			aud.DATFull = false
			aud.CPU = false
		case was && !is:
			aud.State = audioInactive
			aud.Request = false
			aud.DATFull = false
			aud.Output = 0
		}
	}
}

// writeAUDDAT is used by the CPU only. DMA writes to the data register
// directly
func (cst *Custom) writeAUDDAT(ch int, v uint16) {
	aud := &cst.State.Audio[ch]
	aud.DAT = v
	aud.DATFull = true
	if aud.State == audioInactive && !cst.dmaEnabled(uint16(DMAAud0<<ch)) {
		aud.CPU = true
		aud.Hold = aud.DAT
		aud.DATFull = false
		aud.State = audioSamp1
		aud.play(uint8(aud.Hold >> 8))
	}
}

func (cst *Custom) audioSlot(cc int32) bool {
	if cc < 13 || cc > 19 || cc&1 == 0 {
		return false
	}
	ch := int(cc-13) / 2
	aud := &cst.State.Audio[ch]
	if !aud.Request || !cst.dmaEnabled(uint16(DMAAud0<<ch)) {
		return false
	}

	aud.DAT = cst.dmaRead(BusAudio, aud.PT)
	aud.PT += 2
	aud.DATFull = true
	aud.Request = false

	if aud.FirstFetch {
		aud.FirstFetch = false
		cst.Interrupt(IntAUD0 + ch)
	}

	aud.LenCounter--
	if aud.LenCounter <= 0 {
		aud.PT = aud.LC
		aud.LenCounter = aud.length()
		aud.FirstFetch = true
	}

	return true
}

// stepAudio is called once per colour clock
func (cst *Custom) stepAudio() {
	for ch := range cst.State.Audio {
		aud := &cst.State.Audio[ch]

		switch aud.State {
		case audioDMAStarting:
			if aud.DATFull {
				aud.Hold = aud.DAT
				aud.DATFull = false
				aud.Request = true
				aud.State = audioSamp1
				aud.play(uint8(aud.Hold >> 8))
			}

		case audioSamp1:
			aud.PerCounter--
			if aud.PerCounter <= 0 {
				aud.State = audioSamp2
				aud.play(uint8(aud.Hold))
			}

		case audioSamp2:
			aud.PerCounter--
			if aud.PerCounter > 0 {
				break
			}

			if aud.CPU {
				cst.Interrupt(IntAUD0 + ch)
				if !aud.DATFull {
					aud.State = audioInactive
					aud.CPU = false
					break
				}
			}

			// with no new data the current word is repeated
			if aud.DATFull {
				aud.Hold = aud.DAT
				aud.DATFull = false
				aud.Request = !aud.CPU
			}
			aud.State = audioSamp1
			aud.play(uint8(aud.Hold >> 8))
		}
	}
}

// mixAudio filters each channel and pushes one stereo sample to the buffer
func (cst *Custom) mixAudio() {
	var out [4]float32
	for ch := range cst.State.Audio {
		aud := &cst.State.Audio[ch]
		aud.Filter += audioFilterAlpha * (float32(aud.Output) - aud.Filter)
		out[ch] = aud.Filter
	}
	cst.audio.Push(mix.Clip(int32((out[0]+out[3])*2)), mix.Clip(int32((out[1]+out[2])*2)))
}

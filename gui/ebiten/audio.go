package ebiten

import (
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/jetsetilly/amichip/gui"
)

type audioPlayer struct {
	p *oto.Player
	r gui.AudioReader

	// the state field is accessed by the Read() function via the audio
	// engine, and by the GUI which is in another goroutine. access to the state
	// field therefore, is proctected by a mutex
	crit  sync.Mutex
	state gui.State
}

func (a *audioPlayer) setState(state gui.State) {
	a.crit.Lock()
	defer a.crit.Unlock()
	a.state = state
	if a.p != nil {
		if state == gui.StatePaused {
			a.p.Pause()
		} else {
			a.p.Play()
		}
	}
}

// the number of buffered bytes below which the emulation is asked to hurry
// up. a quarter of a second of stereo 16 bit samples at the chipset rate
const prefetch = 31250

func (a *audioPlayer) Read(buf []uint8) (int, error) {
	a.crit.Lock()
	defer a.crit.Unlock()
	if a.state != gui.StateRunning || a.r == nil {
		return 0, nil
	}

	if a.p != nil && a.p.BufferedSize() < prefetch {
		a.r.Nudge()
	}

	n, err := a.r.Read(buf)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (eg *guiEbiten) setupAudio(s gui.AudioSetup) error {
	if s.Read == nil {
		return nil
	}

	eg.audio.crit.Lock()
	p := eg.audio.p
	eg.audio.p = nil
	eg.audio.crit.Unlock()
	if p != nil {
		if err := p.Close(); err != nil {
			return err
		}
	}

	// oto allows only one context for the lifetime of the program
	if eg.otoCtx == nil {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   s.Freq,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			return err
		}
		select {
		case <-ready:
		case <-eg.endGui:
			return nil
		}
		eg.otoCtx = ctx
	}

	p = eg.otoCtx.NewPlayer(&eg.audio)

	eg.audio.crit.Lock()
	eg.audio.r = s.Read
	eg.audio.p = p
	eg.audio.crit.Unlock()

	p.Play()
	return nil
}

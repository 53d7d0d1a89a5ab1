package hardware

import (
	"time"

	"github.com/jetsetilly/amichip/gui"
	"github.com/jetsetilly/amichip/hardware/custom"
	"github.com/jetsetilly/amichip/hardware/spec"
)

type limiter struct {
	tick  *time.Ticker
	nudge chan bool

	// the payload function for the Wait() method
	wait func()
}

func newLimiter(spec spec.Spec) *limiter {
	l := &limiter{
		nudge: make(chan bool, 1),
	}

	// the ideal speed of the console. one wait per frame
	hz := spec.HorizScan / float64(spec.AbsoluteBottom)
	d := time.Duration(float64(time.Second) / hz)

	// the wait() function deliberatey starts slow and then changes state after a few nudges to
	// normal operation
	//
	// this helps ensure that the audio and video synchronise after startup
	var ct int
	l.wait = func() {
		select {
		case <-time.After(time.Duration(float64(d) * 1.025)):
		case <-l.nudge:
			ct++
			if ct > 2 {
				l.tick = time.NewTicker(d)
				l.wait = func() {
					select {
					case <-l.tick.C:
					case <-l.nudge:
					}
				}
			}
		}
	}

	return l
}

func (l *limiter) Wait() {
	l.wait()
}

func (l *limiter) Nudge() {
	select {
	case l.nudge <- true:
	default:
	}
}

// audioReader connects the audio buffer of the custom chips to the audio
// player of the gui. a hungry audio player nudges the limiter so that the
// emulation catches up
type audioReader struct {
	buf   *custom.AudioBuffer
	limit *limiter
}

func (r audioReader) Read(p []uint8) (int, error) {
	return r.buf.Read(p)
}

func (r audioReader) Nudge() {
	if r.limit != nil {
		r.limit.Nudge()
	}
}

// AudioReader returns the reader for the audio produced by the console. The
// samples are signed 16 bit little endian stereo pairs
func (con *Console) AudioReader() gui.AudioReader {
	return audioReader{
		buf:   con.Custom.Audio(),
		limit: con.limit,
	}
}

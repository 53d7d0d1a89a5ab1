package wavwriter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/jetsetilly/amichip/hardware/clocks"
	"github.com/jetsetilly/amichip/hardware/custom"
	"github.com/jetsetilly/amichip/test"
	"github.com/jetsetilly/amichip/wavwriter"
)

func TestWrite(t *testing.T) {
	pth := filepath.Join(t.TempDir(), "out.wav")

	aw, err := wavwriter.New(pth)
	test.DemandSuccess(t, err)

	buf := custom.NewAudioBuffer()
	aw.Attach(buf)
	for i := range 100 {
		buf.Push(int16(i*100), int16(-i*100))
	}
	buf.SetTap(nil)
	buf.Push(1, 1)
	test.ExpectEquality(t, aw.Len(), 100)

	test.DemandSuccess(t, aw.Close())

	f, err := os.Open(pth)
	test.DemandSuccess(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	test.ExpectEquality(t, dec.IsValidFile(), true)
	test.ExpectEquality(t, dec.SampleRate, uint32(clocks.AudioSampleRate))
	test.ExpectEquality(t, dec.NumChans, uint16(2))
	test.ExpectEquality(t, dec.BitDepth, uint16(16))

	pcm, err := dec.FullPCMBuffer()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(pcm.Data), 200)
	test.ExpectEquality(t, pcm.Data[2], 100)
	test.ExpectEquality(t, pcm.Data[3], -100)
}

func TestNoFilename(t *testing.T) {
	_, err := wavwriter.New("")
	test.ExpectFailure(t, err)
}

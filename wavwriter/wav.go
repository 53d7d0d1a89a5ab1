// Package wavwriter allows writing of audio data to disk as a WAV file. Note
// that audio data is buffered in memory in its entirity, and written to disk
// when the writer is closed. It is therefore probably only suitable for
// testing purposes.
package wavwriter

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/jetsetilly/amichip/hardware/clocks"
	"github.com/jetsetilly/amichip/logger"
)

// Tapper is implemented by the audio buffer of the custom chips
type Tapper interface {
	SetTap(tap func(l, r int16))
}

// WavWriter collects stereo samples
type WavWriter struct {
	filename string

	crit   sync.Mutex
	buffer []int
}

// New is the preferred method of initialisation for the WavWriter type.
func New(filename string) (*WavWriter, error) {
	if filename == "" {
		return nil, fmt.Errorf("wavwriter: no filename")
	}
	return &WavWriter{
		filename: filename,
	}, nil
}

// Attach the writer to a source of samples
func (aw *WavWriter) Attach(src Tapper) {
	src.SetTap(aw.Sample)
}

// Sample adds a stereo sample to the buffer
func (aw *WavWriter) Sample(l, r int16) {
	aw.crit.Lock()
	defer aw.crit.Unlock()
	aw.buffer = append(aw.buffer, int(l), int(r))
}

// Len returns the number of stereo samples in the buffer
func (aw *WavWriter) Len() int {
	aw.crit.Lock()
	defer aw.crit.Unlock()
	return len(aw.buffer) / 2
}

// Close writes the buffered samples to the file. The source should be
// detached with SetTap(nil) first
func (aw *WavWriter) Close() (rerr error) {
	aw.crit.Lock()
	defer aw.crit.Unlock()

	f, err := os.Create(aw.filename)
	if err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	defer func() {
		err := f.Close()
		if err != nil && rerr == nil {
			rerr = fmt.Errorf("wavwriter: %w", err)
		}
	}()

	const (
		bitDepth    = 16
		numChannels = 2
		pcmFormat   = 1
	)

	enc := wav.NewEncoder(f, clocks.AudioSampleRate, bitDepth, numChannels, pcmFormat)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: numChannels,
			SampleRate:  clocks.AudioSampleRate,
		},
		Data:           aw.buffer,
		SourceBitDepth: bitDepth,
	}

	logger.Logf(logger.Allow, "wavwriter", "writing %d samples to %s", len(aw.buffer)/numChannels, aw.filename)

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wavwriter: %w", err)
	}

	return nil
}

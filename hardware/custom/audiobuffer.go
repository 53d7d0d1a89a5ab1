package custom

import (
	"encoding/binary"
	"sync"
)

// the number of stereo samples the buffer can hold. a little over half a
// second
const audioBufferLen = 16384

// AudioBuffer is a ring of stereo samples. The emulation pushes samples and
// the audio player reads them from another goroutine.
type AudioBuffer struct {
	crit sync.Mutex

	left  [audioBufferLen]int16
	right [audioBufferLen]int16
	head  int
	count int

	tap func(l, r int16)
}

func NewAudioBuffer() *AudioBuffer {
	return &AudioBuffer{}
}

// SetTap sets a function that is called with every sample pushed to the
// buffer. the function is called from the emulation goroutine
func (buf *AudioBuffer) SetTap(tap func(l, r int16)) {
	buf.crit.Lock()
	defer buf.crit.Unlock()
	buf.tap = tap
}

// Push a stereo sample. if the buffer is full the oldest sample is lost
func (buf *AudioBuffer) Push(l, r int16) {
	buf.crit.Lock()
	tap := buf.tap

	i := (buf.head + buf.count) % audioBufferLen
	buf.left[i] = l
	buf.right[i] = r
	if buf.count < audioBufferLen {
		buf.count++
	} else {
		buf.head = (buf.head + 1) % audioBufferLen
	}
	buf.crit.Unlock()

	if tap != nil {
		tap(l, r)
	}
}

// Len returns the number of samples waiting in the buffer
func (buf *AudioBuffer) Len() int {
	buf.crit.Lock()
	defer buf.crit.Unlock()
	return buf.count
}

// Pop removes the oldest sample. returns false if the buffer is empty
func (buf *AudioBuffer) Pop() (int16, int16, bool) {
	buf.crit.Lock()
	defer buf.crit.Unlock()
	if buf.count == 0 {
		return 0, 0, false
	}
	l, r := buf.left[buf.head], buf.right[buf.head]
	buf.head = (buf.head + 1) % audioBufferLen
	buf.count--
	return l, r, true
}

// Read implements the io.Reader interface. samples are written as signed
// 16-bit little endian stereo pairs. the read never blocks, silence is
// written when there are no samples
func (buf *AudioBuffer) Read(p []byte) (int, error) {
	buf.crit.Lock()
	defer buf.crit.Unlock()

	n := len(p) &^ 3
	for i := 0; i < n; i += 4 {
		var l, r int16
		if buf.count > 0 {
			l, r = buf.left[buf.head], buf.right[buf.head]
			buf.head = (buf.head + 1) % audioBufferLen
			buf.count--
		}
		binary.LittleEndian.PutUint16(p[i:], uint16(l))
		binary.LittleEndian.PutUint16(p[i+2:], uint16(r))
	}
	return n, nil
}

// Reset discards all samples
func (buf *AudioBuffer) Reset() {
	buf.crit.Lock()
	defer buf.crit.Unlock()
	buf.head = 0
	buf.count = 0
}

package gui

import "io"

// AudioReader supplies signed 16 bit little endian stereo samples. Nudge()
// is called by the audio player when it is running short of data
type AudioReader interface {
	io.Reader
	Nudge()
}

// AudioSetup asks the front end to create an audio player
type AudioSetup struct {
	Freq int
	Read AudioReader
}

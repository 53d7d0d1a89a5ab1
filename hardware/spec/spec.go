package spec

// beam timing for a PAL OCS machine. a tick is one CPU clock, which is half
// a colour clock and the width of one low resolution pixel
const (
	ClksScanline = 454
	ColourClocks = ClksScanline / 2

	LinesLongFrame  = 313
	LinesShortFrame = 312

	// the first line after vertical blank. bitplane DMA cannot happen before
	// this line and the copper is restarted on line zero
	VBlankEnd = 0x1a

	// the line on which sprite DMA reloads the control words of each sprite
	SpriteReloadLine = 0x19

	// the last colour clock on a line. refresh DMA uses this slot
	LastColourClock = 0xe2
)

// the area of the beam that is stored in the frame buffer. the frame buffer is
// in high resolution pixels so each tick produces two pixels. each line is
// stored twice so that interlaced fields can be woven together
const (
	FrameLeft   = 0x5c
	FrameTop    = VBlankEnd
	FrameWidth  = (ClksScanline - FrameLeft) * 2
	FrameHeight = (LinesLongFrame - FrameTop) * 2
)

type Spec struct {
	ID             string
	AbsoluteBottom int
	HorizScan      float64
}

// PAL is the only specification the chipset is modelled for
var PAL = Spec{
	ID:             "PAL",
	AbsoluteBottom: LinesLongFrame,
	HorizScan:      15625.09,
}

// RGB converts a 12-bit colour register value to 32-bit ARGB
func RGB(c uint16) uint32 {
	r := uint32(c>>8) & 0x0f
	g := uint32(c>>4) & 0x0f
	b := uint32(c) & 0x0f
	return 0xff000000 | (r*0x11)<<16 | (g*0x11)<<8 | b*0x11
}

// RGBA splits a 32-bit ARGB value into its components
func RGBA(c uint32) (uint8, uint8, uint8, uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c), uint8(c >> 24)
}

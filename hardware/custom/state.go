package custom

// State is the complete architectural and internal state of the custom chips.
// Everything that affects the future output of Step() is stored here so that
// the state can be saved and restored. All fields have a fixed size so that
// the structure can be encoded with encoding/binary.
type State struct {
	Beam       Beam
	Interrupts Interrupts

	DMACON uint16
	ADKCON uint16

	Bitplane Bitplane
	Sprites  [8]Sprite
	Copper   Copper
	Blitter  Blitter
	Audio    [4]Audio
	Disk     Disk
	Serial   Serial

	Colour [32]uint16

	CLXCON uint16
	CLXDAT uint16

	POTGO uint16

	// the number of consecutive bus cycles the blitter has taken while the CPU
	// was waiting for the bus
	CPUBlock int32
}

// Beam is the position of the video beam.
type Beam struct {
	// HPos is counted in ticks (low resolution pixels). the colour clock is
	// HPos/2
	HPos int32
	VPos int32

	// long frame. toggled at the end of every field in interlace mode
	LOF bool

	Field int32
}

// DMACON bits.
const (
	DMAAud0   = 0x0001
	DMAAud1   = 0x0002
	DMAAud2   = 0x0004
	DMAAud3   = 0x0008
	DMADisk   = 0x0010
	DMASprite = 0x0020
	DMABlit   = 0x0040
	DMACopper = 0x0080
	DMABitpl  = 0x0100
	DMAEnable = 0x0200
	DMABltPri = 0x0400
	DMABZero  = 0x2000
	DMABBusy  = 0x4000

	// writes to DMACON, INTENA, INTREQ and ADKCON set bits when this bit is
	// set and clear bits otherwise
	SetClr = 0x8000
)

// ADKCON bits.
const (
	ADKUseMask = 0x00ff
	ADKFast    = 0x0100
	ADKMSBSync = 0x0200
	ADKWordSyn = 0x0400
	ADKUartBrk = 0x0800
)

func (cst *Custom) dmaEnabled(bit uint16) bool {
	return cst.State.DMACON&DMAEnable != 0 && cst.State.DMACON&bit != 0
}

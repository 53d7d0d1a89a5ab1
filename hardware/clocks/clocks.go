package clocks

const Mhz = 1000000

// the main clock of a PAL machine. one call to Step() of the custom chips is
// one tick of this clock
const PAL_CPU = 7.09379 * Mhz

// colour clock is half the CPU clock. the memory bus is arbitrated once per
// colour clock
const PAL_CCK = PAL_CPU / 2

// the CIAs are clocked by the E clock, which is a tenth of the CPU clock
const (
	CIADivider = 10
	PAL_E      = PAL_CPU / CIADivider
)

// the audio mixer produces two samples per scanline
const (
	SamplesPerScanline = 2
	AudioSampleRate    = 31250
)

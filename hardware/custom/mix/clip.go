// Package mix limits the sum of the audio channels to the range of a 16 bit
// sample.
package mix

const (
	// samples below the knee pass through unchanged
	knee = 24576

	// largest magnitude accepted by Clip. anything bigger is treated as this
	ceiling = 65535
)

// Clip a 32 bit sum of channels so that it doesn't exceed the 16 bit range.
// The range between the knee and the ceiling is compressed linearly into the
// headroom above the knee
func Clip(x int32) int16 {
	neg := x < 0
	if neg {
		x = -x
	}
	x = min(x, ceiling)

	if x > knee {
		x = knee + (x-knee)*(32767-knee)/(ceiling-knee)
	}

	if neg {
		return int16(-x)
	}
	return int16(x)
}

package debugger

import (
	"math/rand/v2"
)

// context satisfies the hardware's context interface for the debugger
type context struct {
	rand   *rand.Rand
	breaks []error

	// seed for the contents of uninitialised memory. zero means a different
	// seed on every reset
	seed uint64

	logging bool
}

func (ctx *context) Reset() {
	ctx.breaks = ctx.breaks[:0]
	seed := ctx.seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	ctx.rand = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func (ctx *context) Rand8Bit() uint8 {
	return uint8(ctx.rand.IntN(256))
}

// Break is called by the hardware when it meets something that should stop
// the emulation. the break is reported by the run loop
func (ctx *context) Break(e error) {
	ctx.breaks = append(ctx.breaks, e)
}

func (ctx *context) AllowLogging() bool {
	return ctx.logging
}

package dbg_test

import (
	"testing"

	"github.com/jetsetilly/amichip/debugger/dbg"
	"github.com/jetsetilly/amichip/hardware/custom"
	"github.com/jetsetilly/amichip/test"
)

func TestRecent(t *testing.T) {
	var ctx dbg.Context

	ctx.Add(custom.StepResult{Bus: custom.BusNone})
	ctx.Add(custom.StepResult{Bus: custom.BusRefresh})
	test.ExpectEquality(t, len(ctx.Recent), 0)

	for i := range 150 {
		ctx.Add(custom.StepResult{Bus: custom.BusCopper, HPos: int32(i)})
	}
	test.ExpectEquality(t, len(ctx.Recent), 100)
	test.ExpectEquality(t, ctx.Recent[0].HPos, int32(50))
	test.ExpectEquality(t, ctx.Recent[99].HPos, int32(149))
}

func TestTrace(t *testing.T) {
	var ctx dbg.Context

	ctx.StartTrace(3)
	test.ExpectEquality(t, ctx.Tracing(), true)
	for range 5 {
		ctx.Add(custom.StepResult{Bus: custom.BusBitplane, DMAAddr: 0x1000, DMAVal: 0xaaaa})
	}
	test.ExpectEquality(t, len(ctx.Trace), 3)
	test.ExpectEquality(t, ctx.Tracing(), false)
	test.ExpectEquality(t, ctx.Trace[0].String(), "v=000 h=000  bitplane 001000 aaaa")

	ctx.StartTrace(-1)
	ctx.Add(custom.StepResult{Bus: custom.BusBlitter})
	ctx.EndTrace()
	ctx.Add(custom.StepResult{Bus: custom.BusBlitter})
	test.ExpectEquality(t, len(ctx.Trace), 1)
}

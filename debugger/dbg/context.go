// Package dbg records the recent activity on the chip bus.
package dbg

import (
	"fmt"

	"github.com/jetsetilly/amichip/hardware/custom"
)

const (
	maxTraceLen  = 1000
	maxRecentLen = 100
)

// Access is one use of the bus by a DMA channel
type Access struct {
	HPos  int32
	VPos  int32
	Bus   custom.Bus
	Addr  uint32
	Value uint16
}

func (a Access) String() string {
	return fmt.Sprintf("v=%03x h=%03x  %-8s %06x %04x", a.VPos, a.HPos, a.Bus, a.Addr, a.Value)
}

type Context struct {
	trace int

	Trace  []Access
	Recent []Access
}

// start trace specifying desired length. a length of -1 means trace until
// EndTrace() is called or the trace reaches the maximum length
func (ctx *Context) StartTrace(length int) {
	if length < 0 || length > maxTraceLen {
		length = maxTraceLen
	}
	ctx.Trace = ctx.Trace[:0]
	ctx.trace = length
}

func (ctx *Context) EndTrace() {
	ctx.trace = 0
}

func (ctx *Context) Tracing() bool {
	return ctx.trace > 0
}

// Add the result of a tick. Ticks where no DMA channel used the bus are
// ignored
func (ctx *Context) Add(res custom.StepResult) {
	if res.Bus == custom.BusNone || res.Bus == custom.BusRefresh {
		return
	}

	a := Access{
		HPos:  res.HPos,
		VPos:  res.VPos,
		Bus:   res.Bus,
		Addr:  res.DMAAddr,
		Value: res.DMAVal,
	}

	if ctx.trace > 0 {
		ctx.Trace = append(ctx.Trace, a)
		ctx.trace--
	}

	ctx.Recent = append(ctx.Recent, a)
	if len(ctx.Recent) > maxRecentLen {
		ctx.Recent = ctx.Recent[1:]
	}
}

func (ctx *Context) Clear() {
	ctx.trace = 0
	ctx.Trace = ctx.Trace[:0]
	ctx.Recent = ctx.Recent[:0]
}

package custom

import (
	"testing"

	"github.com/jetsetilly/amichip/hardware/spec"
)

type testContext struct {
	err error
}

func (ctx *testContext) AllowLogging() bool {
	return false
}

func (ctx *testContext) Break(err error) {
	ctx.err = err
}

type testRAM struct {
	data [0x40000]uint16
}

func (r *testRAM) Peek16(idx uint32) uint16 {
	return r.data[(idx&0x7fffe)>>1]
}

func (r *testRAM) Poke16(idx uint32, data uint16) {
	r.data[(idx&0x7fffe)>>1] = data
}

func (r *testRAM) put(addr uint32, words ...uint16) {
	for i, w := range words {
		r.Poke16(addr+uint32(i*2), w)
	}
}

type testDisk struct {
	tracks [][]byte
}

func (d *testDisk) WriteTrack(data []byte) error {
	d.tracks = append(d.tracks, data)
	return nil
}

func newTestCustom() (*Custom, *testRAM, *testDisk) {
	ram := &testRAM{}
	dsk := &testDisk{}
	return Create(&testContext{}, ram, dsk), ram, dsk
}

// runTo steps the custom chips until the beam reaches the position. the
// position must be reached within two fields
func runTo(t *testing.T, cst *Custom, v int32, h int32) {
	t.Helper()
	for range spec.ClksScanline * spec.LinesLongFrame * 2 {
		if cst.State.Beam.VPos == v && cst.State.Beam.HPos == h {
			return
		}
		cst.Step(false, 0)
	}
	t.Fatalf("beam position %d,%d not reached", v, h)
}

// runFor steps the custom chips for n ticks
func runFor(cst *Custom, n int, cpuWantsBus bool) []StepResult {
	res := make([]StepResult, n)
	for i := range res {
		res[i] = cst.Step(cpuWantsBus, 0)
	}
	return res
}

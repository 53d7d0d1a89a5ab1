package rom_test

import (
	"errors"
	"testing"

	"github.com/jetsetilly/amichip/hardware/memory/rom"
	"github.com/jetsetilly/amichip/test"
)

func TestROM(t *testing.T) {
	_, err := rom.Create("short", make([]byte, 1000))
	test.ExpectSuccess(t, errors.Is(err, rom.ErrSize))

	d := make([]byte, rom.Size256K)
	d[0], d[1] = 0x11, 0x11
	d[0x0d], d[0x0f] = 34, 5
	r, err := rom.Create("kick13", d)
	test.DemandSuccess(t, err)

	v, rev := r.Version()
	test.ExpectEquality(t, v, 34)
	test.ExpectEquality(t, rev, 5)

	// mirrored at the top of the 512K area
	w, _ := r.Read16(0x40000)
	test.ExpectEquality(t, w, 0x1111)
	test.ExpectFailure(t, r.Write16(0, 0))

	r, err = rom.Create("", nil)
	test.DemandSuccess(t, err)
	b, _ := r.Read8(0x1234)
	test.ExpectEquality(t, b, 0xff)
}

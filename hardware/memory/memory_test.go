package memory_test

import (
	"testing"

	"github.com/jetsetilly/amichip/hardware/memory"
	"github.com/jetsetilly/amichip/hardware/memory/rom"
	"github.com/jetsetilly/amichip/test"
)

type context struct{}

func (context) Rand8Bit() uint8     { return 0x55 }
func (context) AllowLogging() bool { return false }

type registers struct {
	label string
	regs  [16]uint8
	last  uint8
}

func (r *registers) Read(reg uint8) uint8 {
	r.last = reg
	return r.regs[reg]
}

func (r *registers) Peek(reg uint8) uint8 {
	return r.regs[reg]
}

func (r *registers) Write(reg uint8, data uint8) {
	r.last = reg
	r.regs[reg] = data
}

type custom struct {
	last uint32
	data uint16
}

func (c *custom) Label() string                    { return "custom" }
func (c *custom) Read8(idx uint32) (uint8, error)  { c.last = idx; return 0, nil }
func (c *custom) Write8(idx uint32, _ uint8) error { c.last = idx; return nil }
func (c *custom) Read16(idx uint32) (uint16, error) {
	c.last = idx
	return c.data, nil
}
func (c *custom) Write16(idx uint32, data uint16) error {
	c.last = idx
	c.data = data
	return nil
}

func create(t *testing.T, slow int) (*memory.Memory, *custom, *registers, *registers) {
	t.Helper()

	d := make([]byte, rom.Size256K)
	d[0], d[1] = 0x11, 0x14
	kick, err := rom.Create("kick", d)
	test.DemandSuccess(t, err)

	mem, addChips := memory.Create(context{}, 512*1024, slow, kick)
	cust := &custom{}
	a := &registers{label: "A"}
	b := &registers{label: "B"}
	addChips(cust, &memory.CIABus{A: a, B: b})
	return mem, cust, a, b
}

func TestOverlay(t *testing.T) {
	mem, _, _, _ := create(t, 0)

	v, err := mem.Read16(0)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0x1114)

	v, _ = mem.Read16(0xfc0000)
	test.ExpectEquality(t, v, 0x1114)

	// writes reach chip RAM through the overlay
	test.ExpectSuccess(t, mem.Write16(0x10, 0xcafe))
	v, _ = mem.Read16(0x10)
	test.ExpectEquality(t, v, 0)
	test.ExpectEquality(t, mem.Chip.Peek16(0x10), 0xcafe)

	mem.Overlay = false
	test.ExpectSuccess(t, mem.Write32(0x100, 0xdeadbeef))
	l, _ := mem.Read32(0x100)
	test.ExpectEquality(t, l, 0xdeadbeef)

	// chip RAM is mirrored up to 0x1fffff
	l, _ = mem.Read32(0x080100)
	test.ExpectEquality(t, l, 0xdeadbeef)
	b, _ := mem.Read8(0x180101)
	test.ExpectEquality(t, b, 0xad)
}

func TestCustomMapping(t *testing.T) {
	mem, cust, _, _ := create(t, 0)

	test.ExpectSuccess(t, mem.Write16(0xdff096, 0x8200))
	test.ExpectEquality(t, cust.last, 0x096)
	test.ExpectEquality(t, cust.data, 0x8200)

	// without slow RAM the custom registers are mirrored from c00000
	_, _ = mem.Read16(0xc0001e)
	test.ExpectEquality(t, cust.last, 0x01e)

	mem, cust, _, _ = create(t, 512*1024)
	test.ExpectSuccess(t, mem.Write16(0xc00000, 0x1234))
	test.ExpectEquality(t, cust.data, 0)
	v, _ := mem.Read16(0xc00000)
	test.ExpectEquality(t, v, 0x1234)
}

func TestCIAMapping(t *testing.T) {
	mem, _, a, b := create(t, 0)

	test.ExpectSuccess(t, mem.Write8(0xbfe201, 0x03))
	test.ExpectEquality(t, a.last, 2)
	test.ExpectEquality(t, a.regs[2], 0x03)

	test.ExpectSuccess(t, mem.Write8(0xbfd100, 0xff))
	test.ExpectEquality(t, b.last, 1)
	test.ExpectEquality(t, b.regs[1], 0xff)

	// CIA-B is not selected at bfe000 and CIA-A is not selected at bfd001
	v, _ := mem.Read8(0xbfe000)
	test.ExpectEquality(t, v, memory.Filler)
	v, _ = mem.Read8(0xbfd001)
	test.ExpectEquality(t, v, memory.Filler)

	// with both A12 and A13 low a word access reaches both chips
	a.regs[0xd] = 0x12
	b.regs[0xd] = 0x34
	w, _ := mem.Read16(0xbfcd00)
	test.ExpectEquality(t, w, 0x3412)
}

func TestUnmapped(t *testing.T) {
	mem, _, _, _ := create(t, 0)
	v, err := mem.Read16(0xe80000)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, v, 0xffff)
	test.ExpectSuccess(t, mem.Write8(0x400000, 1))
}

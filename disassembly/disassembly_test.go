package disassembly_test

import (
	"errors"
	"testing"

	"github.com/jetsetilly/amichip/disassembly"
	"github.com/jetsetilly/amichip/test"
)

type memory []uint16

func (m memory) Read16(address uint32) (uint16, error) {
	idx := int(address >> 1)
	if idx >= len(m) {
		return 0, errors.New("out of range")
	}
	return m[idx], nil
}

func names(offset uint16) string {
	if offset == 0x180 {
		return "COLOR00"
	}
	return ""
}

func TestFormat(t *testing.T) {
	e := disassembly.Format(0x1000, 0x0180, 0x0f00, names)
	test.ExpectEquality(t, e.Operator, disassembly.Move)
	test.ExpectEquality(t, e.Operand, "COLOR00 = $0f00")

	e = disassembly.Format(0x1000, 0x0182, 0x00f0, names)
	test.ExpectEquality(t, e.Operand, "$182 = $00f0")

	e = disassembly.Format(0x1000, 0x2c07, 0xfffe, names)
	test.ExpectEquality(t, e.Operator, disassembly.Wait)
	test.ExpectEquality(t, e.Operand, "v=$2c h=$06")

	e = disassembly.Format(0x1000, 0x2c07, 0x7f01, names)
	test.ExpectEquality(t, e.Operator, disassembly.Skip)
	test.ExpectEquality(t, e.Operand, "v=$2c h=$06 mask v=$7f h=$00 blit")

	e = disassembly.Format(0x1000, 0xffff, 0xfffe, names)
	test.ExpectEquality(t, e.Operator, disassembly.End)
	test.ExpectEquality(t, e.String(), "$001000  ffff fffe  END  ")
}

func TestDisassemble(t *testing.T) {
	mem := memory{0x0180, 0x0fff, 0x4007, 0xfffe, 0x0180, 0x0000, 0xffff, 0xfffe, 0x0180, 0x0123}

	entries, err := disassembly.Disassemble(mem, 0, 10, names)
	test.ExpectSuccess(t, err)
	test.DemandEquality(t, len(entries), 4)
	test.ExpectEquality(t, entries[3].Operator, disassembly.End)
	test.ExpectEquality(t, entries[2].Address, uint32(8))

	entries, err = disassembly.Disassemble(mem, 0, 2, names)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(entries), 2)

	// reading past the end of memory
	entries, err = disassembly.Disassemble(mem, 16, 3, names)
	test.ExpectFailure(t, err)
	test.ExpectEquality(t, len(entries), 1)
}

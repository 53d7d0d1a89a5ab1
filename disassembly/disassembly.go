// Package disassembly formats copper lists for the debugger.
package disassembly

import (
	"fmt"
)

// copper list end. a WAIT for a position that the beam can never reach
const (
	endIR1 = 0xffff
	endIR2 = 0xfffe
)

// the kind of copper instruction
const (
	Move = "MOVE"
	Wait = "WAIT"
	Skip = "SKIP"
	End  = "END"
)

// Memory is the memory the copper list is read from
type Memory interface {
	Read16(address uint32) (uint16, error)
}

// Names returns the name of a custom register from its offset. An empty
// string means the register has no name
type Names func(offset uint16) string

type Entry struct {
	Address uint32
	IR1     uint16
	IR2     uint16

	// string representations of the instruction
	Bytecode string
	Operator string
	Operand  string
}

func (e Entry) String() string {
	return fmt.Sprintf("$%06x  %9s  %-4s %s", e.Address, e.Bytecode, e.Operator, e.Operand)
}

// Format creates an Entry for a single copper instruction
func Format(address uint32, ir1 uint16, ir2 uint16, names Names) Entry {
	e := Entry{
		Address:  address,
		IR1:      ir1,
		IR2:      ir2,
		Bytecode: fmt.Sprintf("%04x %04x", ir1, ir2),
	}

	if ir1&0x0001 == 0 {
		e.Operator = Move
		reg := ir1 & 0x01fe
		var name string
		if names != nil {
			name = names(reg)
		}
		if name == "" {
			name = fmt.Sprintf("$%03x", reg)
		}
		e.Operand = fmt.Sprintf("%s = $%04x", name, ir2)
		return e
	}

	if ir1 == endIR1 && ir2 == endIR2 {
		e.Operator = End
		return e
	}

	if ir2&0x0001 == 0 {
		e.Operator = Wait
	} else {
		e.Operator = Skip
	}

	vp := ir1 >> 8
	hp := ir1 & 0x00fe
	ve := (ir2 >> 8) & 0x7f
	he := ir2 & 0x00fe

	e.Operand = fmt.Sprintf("v=$%02x h=$%02x", vp, hp)

	// the masks are only shown when they aren't the default
	if ve != 0x7f || he != 0xfe {
		e.Operand = fmt.Sprintf("%s mask v=$%02x h=$%02x", e.Operand, ve, he)
	}

	// the blitter finished disable bit
	if ir2&0x8000 == 0 {
		e.Operand = fmt.Sprintf("%s blit", e.Operand)
	}

	return e
}

// Disassemble reads up to n instructions from memory. Disassembly stops
// early at the end of the copper list
func Disassemble(mem Memory, address uint32, n int, names Names) ([]Entry, error) {
	var entries []Entry

	for range n {
		ir1, err := mem.Read16(address)
		if err != nil {
			return entries, err
		}
		ir2, err := mem.Read16(address + 2)
		if err != nil {
			return entries, err
		}

		e := Format(address, ir1, ir2, names)
		entries = append(entries, e)
		if e.Operator == End {
			break // for loop
		}

		address += 4
	}

	return entries, nil
}

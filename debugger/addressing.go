package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jetsetilly/amichip/hardware/custom"
	"github.com/jetsetilly/amichip/hardware/memory"
)

type mappedAddress struct {
	address uint32
	area    memory.Area
	idx     uint32
}

// parseAddress accepts a number or the name of a custom chip register
func (m *debugger) parseAddress(address string) (mappedAddress, error) {
	var ma mappedAddress

	if off, ok := m.console.Custom.RegisterOffset(strings.ToUpper(address)); ok {
		address = fmt.Sprintf("%#x", memory.OriginCustom+uint32(off))
	}

	if strings.HasPrefix(address, "$") {
		address = fmt.Sprintf("0x%s", address[1:])
	}

	addr, err := strconv.ParseUint(address, 0, 24)
	if err != nil {
		return ma, fmt.Errorf("address is not valid: %s", address)
	}
	ma.address = uint32(addr)

	ma.idx, ma.area = m.console.Mem.MapAddress(ma.address, true)
	if ma.area == nil {
		return ma, fmt.Errorf("address is not mapped: %s", address)
	}

	return ma, nil
}

// forWrite maps the address as the CPU sees it for writes. the ROM overlay
// only affects reads
func (m *debugger) forWrite(ma mappedAddress) mappedAddress {
	ma.idx, ma.area = m.console.Mem.MapAddress(ma.address, false)
	return ma
}

// peek reads a byte without side effects. custom chip registers and CIA
// registers change state when they are read
func peek(ma mappedAddress, idx uint32) (uint8, error) {
	switch a := ma.area.(type) {
	case *custom.Custom:
		v := a.Peek(uint16(idx &^ 1))
		if idx&1 == 0 {
			return uint8(v >> 8), nil
		}
		return uint8(v), nil
	case *memory.CIABus:
		return a.Peek8(idx), nil
	}
	return ma.area.Read8(idx)
}

// peek16 is the word sized version of peek
func peek16(ma mappedAddress, idx uint32) (uint16, error) {
	hi, err := peek(ma, idx&^1)
	if err != nil {
		return 0, err
	}
	lo, err := peek(ma, idx|1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

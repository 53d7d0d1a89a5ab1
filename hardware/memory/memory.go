package memory

import (
	"fmt"

	"github.com/jetsetilly/amichip/hardware/memory/ram"
	"github.com/jetsetilly/amichip/hardware/memory/rom"
	"github.com/jetsetilly/amichip/logger"
)

// Area is a region of the address space.
type Area interface {
	// read and write both take an index value. this is an address in the area
	// but with the area origin removed. in other words, the area doesn't need
	// to know about it's location in memory, only the relative placement of
	// addresses within the area
	Read8(idx uint32) (uint8, error)
	Write8(idx uint32, data uint8) error
	Read16(idx uint32) (uint16, error)
	Write16(idx uint32, data uint16) error
	Label() string
}

// the address map. the CPU has a 24 bit address bus
const (
	addressMask = 0xffffff

	OriginChip   = 0x000000
	chipMirror   = 0x200000
	OriginCIA    = 0xa00000
	endCIA       = 0xc00000
	OriginSlow   = 0xc00000
	endSlow      = 0xd80000
	OriginCustom = 0xdff000
	endCustom    = 0xe00000
)

// the value returned by reads of unmapped addresses
const Filler = 0xff

type Context interface {
	ram.Context
	logger.Permission
}

type Memory struct {
	ctx Context

	Chip *ram.RAM
	Slow *ram.RAM
	ROM  *rom.ROM

	Custom Area
	CIA    Area

	// the ROM is visible at the bottom of the address space while the overlay
	// is set. the CIA-A OVL line controls this
	Overlay bool

	Last Area
}

// AddChips is returned by the Create() function and should be called to
// finalise the memory creation process
type AddChips func(custom Area, cia Area)

// Create the memory map. A slowSize of zero means there is no slow RAM.
func Create(ctx Context, chipSize int, slowSize int, kickstart *rom.ROM) (*Memory, AddChips) {
	mem := &Memory{
		ctx:     ctx,
		Chip:    ram.Create(ctx, "chip", chipSize),
		ROM:     kickstart,
		Overlay: true,
	}
	if slowSize > 0 {
		mem.Slow = ram.Create(ctx, "slow", slowSize)
	}
	return mem, func(custom Area, cia Area) {
		mem.Custom = custom
		mem.CIA = cia
	}
}

func (mem *Memory) Reset(random bool) {
	mem.Chip.Reset(random)
	if mem.Slow != nil {
		mem.Slow.Reset(random)
	}
	mem.Overlay = true
}

// MapAddress returns the memory "area" and index into the area corresponding
// to the address.
//
// It is possible for a nil Area to be returned. In which case, the index value
// will be zero.
//
// The ROM overlay only affects reads. Writes always reach chip RAM.
func (mem *Memory) MapAddress(address uint32, read bool) (uint32, Area) {
	address &= addressMask

	// 000000 to 1FFFFF	chip RAM (mirrored) or ROM overlay
	// A00000 to BFFFFF	CIA
	// C00000 to D7FFFF	slow RAM (mirrored). custom registers without slow RAM
	// DFF000 to DFFFFF	custom registers
	// F80000 to FFFFFF	ROM
	switch {
	case address < chipMirror:
		if mem.Overlay && read {
			return address, mem.ROM
		}
		return address - OriginChip, mem.Chip

	case address >= OriginCIA && address < endCIA:
		return address, mem.CIA

	case address >= OriginSlow && address < endSlow:
		if mem.Slow != nil {
			return address - OriginSlow, mem.Slow
		}
		return address & 0x1ff, mem.Custom

	case address >= OriginCustom && address < endCustom:
		return address & 0x1ff, mem.Custom

	case address >= rom.Origin:
		return address - rom.Origin, mem.ROM
	}

	return 0, nil
}

func (mem *Memory) unmapped(write bool, address uint32) {
	if write {
		logger.Logf(mem.ctx, "memory", "write to unmapped address %06x", address&addressMask)
	} else {
		logger.Logf(mem.ctx, "memory", "read from unmapped address %06x", address&addressMask)
	}
}

func (mem *Memory) Read8(address uint32) (uint8, error) {
	idx, area := mem.MapAddress(address, true)
	if area == nil {
		mem.unmapped(false, address)
		return Filler, nil
	}
	v, err := area.Read8(idx)
	if err != nil {
		return 0, fmt.Errorf("read %06x: %w", address, err)
	}
	return v, nil
}

func (mem *Memory) Write8(address uint32, data uint8) error {
	idx, area := mem.MapAddress(address, false)
	if area == nil {
		mem.unmapped(true, address)
		return nil
	}
	mem.Last = area
	if err := area.Write8(idx, data); err != nil {
		return fmt.Errorf("write %06x: %w", address, err)
	}
	return nil
}

func (mem *Memory) Read16(address uint32) (uint16, error) {
	idx, area := mem.MapAddress(address, true)
	if area == nil {
		mem.unmapped(false, address)
		return Filler<<8 | Filler, nil
	}
	v, err := area.Read16(idx)
	if err != nil {
		return 0, fmt.Errorf("read %06x: %w", address, err)
	}
	return v, nil
}

func (mem *Memory) Write16(address uint32, data uint16) error {
	idx, area := mem.MapAddress(address, false)
	if area == nil {
		mem.unmapped(true, address)
		return nil
	}
	mem.Last = area
	if err := area.Write16(idx, data); err != nil {
		return fmt.Errorf("write %06x: %w", address, err)
	}
	return nil
}

func (mem *Memory) Read32(address uint32) (uint32, error) {
	hi, err := mem.Read16(address)
	if err != nil {
		return 0, err
	}
	lo, err := mem.Read16(address + 2)
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}

func (mem *Memory) Write32(address uint32, data uint32) error {
	if err := mem.Write16(address, uint16(data>>16)); err != nil {
		return err
	}
	return mem.Write16(address+2, uint16(data))
}

package adf

import (
	"encoding/binary"
	"fmt"
)

// the standard boot block program. it finds the dos.library resident module
// and returns its initialisation routine to the boot code in ROM
var bootCode = []byte{
	0x43, 0xfa, 0x00, 0x18, // lea     dosname(pc),a1
	0x4e, 0xae, 0xff, 0xa0, // jsr     FindResident(a6)
	0x4a, 0x80, // tst.l   d0
	0x67, 0x0a, // beq.s   fail
	0x20, 0x40, // move.l  d0,a0
	0x20, 0x68, 0x00, 0x16, // move.l  RT_INIT(a0),a0
	0x70, 0x00, // moveq   #0,d0
	0x4e, 0x75, // rts
	0x70, 0xff, // fail: moveq #-1,d0
	0x4e, 0x75, // rts
	'd', 'o', 's', '.', 'l', 'i', 'b', 'r', 'a', 'r', 'y', 0x00,
}

const bootCodeOffset = 12

// SetBootable installs the standard boot program in the boot block
func (v *Volume) SetBootable() {
	b := v.img[:BootBlockSize]
	clear(b[4:])
	binary.BigEndian.PutUint32(b[8:], RootBlock)
	copy(b[bootCodeOffset:], bootCode)
	v.commitBoot()
}

// Bootable returns true if the boot block has a valid checksum and contains a
// boot program
func (v *Volume) Bootable() bool {
	b := v.img[:BootBlockSize]
	if BootChecksum(b) != binary.BigEndian.Uint32(b[4:]) {
		return false
	}
	for _, c := range b[bootCodeOffset:] {
		if c != 0 {
			return true
		}
	}
	return false
}

// MakeExeDisk creates a bootable disk image that runs a single executable.
// The executable is placed in the root directory and named in the
// startup-sequence
func MakeExeDisk(name string, exe []byte) ([]byte, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	v, err := Format(nil, "Empty", false)
	if err != nil {
		return nil, err
	}
	v.SetBootable()

	err = v.MkDir("S")
	if err != nil {
		return nil, fmt.Errorf("make exe disk: %w", err)
	}
	err = v.WriteFile("S/startup-sequence", []byte(name+"\n"))
	if err != nil {
		return nil, fmt.Errorf("make exe disk: %w", err)
	}
	err = v.WriteFile(name, exe)
	if err != nil {
		return nil, fmt.Errorf("make exe disk: %w", err)
	}

	return v.Image(), nil
}

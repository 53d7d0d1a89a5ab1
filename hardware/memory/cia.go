package memory

// CIARegisters is implemented by the 8520 chips.
type CIARegisters interface {
	Read(reg uint8) uint8
	Write(reg uint8, data uint8)
	Peek(reg uint8) uint8
}

// CIABus decodes the CIA address space. CIA-A is selected by A12 low and is
// connected to the odd bytes of the data bus. CIA-B is selected by A13 low and
// is connected to the even bytes. The register number is in address lines 8 to
// 11.
//
// The canonical addresses are BFE001 for CIA-A and BFD000 for CIA-B.
type CIABus struct {
	A CIARegisters
	B CIARegisters
}

func ciaReg(idx uint32) uint8 {
	return uint8(idx>>8) & 0x0f
}

func (bus *CIABus) Label() string {
	return "CIA"
}

func (bus *CIABus) selectA(idx uint32) bool {
	return idx&0x1000 == 0
}

func (bus *CIABus) selectB(idx uint32) bool {
	return idx&0x2000 == 0
}

func (bus *CIABus) Read8(idx uint32) (uint8, error) {
	if idx&1 == 1 {
		if bus.selectA(idx) {
			return bus.A.Read(ciaReg(idx)), nil
		}
	} else if bus.selectB(idx) {
		return bus.B.Read(ciaReg(idx)), nil
	}
	return Filler, nil
}

func (bus *CIABus) Write8(idx uint32, data uint8) error {
	if idx&1 == 1 {
		if bus.selectA(idx) {
			bus.A.Write(ciaReg(idx), data)
		}
	} else if bus.selectB(idx) {
		bus.B.Write(ciaReg(idx), data)
	}
	return nil
}

// a word access reaches both chips if both are selected
func (bus *CIABus) Read16(idx uint32) (uint16, error) {
	idx &^= 1
	hi, _ := bus.Read8(idx)
	lo, _ := bus.Read8(idx | 1)
	return uint16(hi)<<8 | uint16(lo), nil
}

func (bus *CIABus) Write16(idx uint32, data uint16) error {
	idx &^= 1
	bus.Write8(idx, uint8(data>>8))
	bus.Write8(idx|1, uint8(data))
	return nil
}

// Peek8 is like Read8 but without the side effects of reading a register
func (bus *CIABus) Peek8(idx uint32) uint8 {
	if idx&1 == 1 {
		if bus.selectA(idx) {
			return bus.A.Peek(ciaReg(idx))
		}
	} else if bus.selectB(idx) {
		return bus.B.Peek(ciaReg(idx))
	}
	return Filler
}

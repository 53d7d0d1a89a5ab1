package custom

import (
	"fmt"

	"github.com/jetsetilly/amichip/logger"
)

// register offsets referred to by the emulation
const (
	regDMACONR = 0x002
	regCLXDAT  = 0x00e
	regDSKBYTR = 0x01a
	regCOPJMP1 = 0x088
	regCOPJMP2 = 0x08a
	regBPL1DAT = 0x110
	regCOLOR00 = 0x180
)

// register is one entry in the register table. a nil read function means the
// register is write-only. a nil write function means it is read-only. read
// functions must not have side effects
type register struct {
	name  string
	read  func() uint16
	write func(uint16)
}

// RegisterValue is a snapshot of one register.
type RegisterValue struct {
	Offset uint16
	Name   string
	Value  uint16

	// the value is the last value written to a write-only register
	WriteOnly bool
}

func (r RegisterValue) String() string {
	return fmt.Sprintf("%03x %-8s %04x", r.Offset, r.Name, r.Value)
}

// the high and low words of a pointer register
func setHi(ptr *uint32, v uint16) {
	*ptr = (*ptr & 0x0000ffff) | uint32(v&0x001f)<<16
}

func setLo(ptr *uint32, v uint16) {
	*ptr = (*ptr & 0xffff0000) | uint32(v&0xfffe)
}

func (cst *Custom) pointer(name string, offset uint16, ptr *uint32) {
	cst.regs[offset>>1] = register{name: name + "H", write: func(v uint16) { setHi(ptr, v) }}
	cst.regs[(offset+2)>>1] = register{name: name + "L", write: func(v uint16) { setLo(ptr, v) }}
}

func (cst *Custom) writeOnly(name string, offset uint16, write func(uint16)) {
	cst.regs[offset>>1] = register{name: name, write: write}
}

func (cst *Custom) readOnly(name string, offset uint16, read func() uint16) {
	cst.regs[offset>>1] = register{name: name, read: read}
}

// strobe registers do nothing
func strobe(_ uint16) {}

// buildRegisters creates the register table. the closures refer to fields in
// the State so the table does not need rebuilding after a restore
func (cst *Custom) buildRegisters() {
	st := &cst.State

	cst.readOnly("BLTDDAT", 0x000, func() uint16 { return st.Blitter.DAT[chanD] })
	cst.readOnly("DMACONR", 0x002, cst.readDMACONR)
	cst.readOnly("VPOSR", 0x004, cst.readVPOSR)
	cst.readOnly("VHPOSR", 0x006, cst.readVHPOSR)
	cst.readOnly("DSKDATR", 0x008, func() uint16 { return st.Disk.DATR })
	cst.readOnly("JOY0DAT", 0x00a, func() uint16 { return 0 })
	cst.readOnly("JOY1DAT", 0x00c, func() uint16 { return 0 })
	cst.readOnly("CLXDAT", 0x00e, func() uint16 { return st.CLXDAT | 0x8000 })
	cst.readOnly("ADKCONR", 0x010, func() uint16 { return st.ADKCON })
	cst.readOnly("POT0DAT", 0x012, func() uint16 { return 0 })
	cst.readOnly("POT1DAT", 0x014, func() uint16 { return 0 })
	cst.readOnly("POTGOR", 0x016, cst.readPOTGOR)
	cst.readOnly("SERDATR", 0x018, cst.readSERDATR)
	cst.readOnly("DSKBYTR", 0x01a, cst.readDSKBYTR)
	cst.readOnly("INTENAR", 0x01c, func() uint16 { return st.Interrupts.INTENA })
	cst.readOnly("INTREQR", 0x01e, func() uint16 { return st.Interrupts.INTREQ })

	cst.pointer("DSKPT", 0x020, &st.Disk.PT)
	cst.writeOnly("DSKLEN", 0x024, cst.writeDSKLEN)
	cst.writeOnly("DSKDAT", 0x026, func(v uint16) {
		logger.Logf(cst.ctx, "custom", "DSKDAT write not supported (%s)", cst.positionString())
	})
	cst.writeOnly("REFPTR", 0x028, strobe)
	cst.writeOnly("VPOSW", 0x02a, func(v uint16) {
		st.Beam.LOF = v&0x8000 != 0
	})
	cst.writeOnly("VHPOSW", 0x02c, func(v uint16) {
		logger.Logf(cst.ctx, "custom", "VHPOSW write ignored (%s)", cst.positionString())
	})
	cst.writeOnly("COPCON", 0x02e, func(v uint16) { st.Copper.COPCON = v })
	cst.writeOnly("SERDAT", 0x030, cst.writeSERDAT)
	cst.writeOnly("SERPER", 0x032, func(v uint16) { st.Serial.PER = v })
	cst.writeOnly("POTGO", 0x034, func(v uint16) { st.POTGO = v })
	cst.writeOnly("JOYTEST", 0x036, strobe)
	cst.writeOnly("STREQU", 0x038, strobe)
	cst.writeOnly("STRVBL", 0x03a, strobe)
	cst.writeOnly("STRHOR", 0x03c, strobe)
	cst.writeOnly("STRLONG", 0x03e, strobe)

	cst.writeOnly("BLTCON0", 0x040, func(v uint16) { st.Blitter.CON0 = v })
	cst.writeOnly("BLTCON1", 0x042, func(v uint16) { st.Blitter.CON1 = v })
	cst.writeOnly("BLTAFWM", 0x044, func(v uint16) { st.Blitter.AFWM = v })
	cst.writeOnly("BLTALWM", 0x046, func(v uint16) { st.Blitter.ALWM = v })
	cst.pointer("BLTCPT", 0x048, &st.Blitter.PT[chanC])
	cst.pointer("BLTBPT", 0x04c, &st.Blitter.PT[chanB])
	cst.pointer("BLTAPT", 0x050, &st.Blitter.PT[chanA])
	cst.pointer("BLTDPT", 0x054, &st.Blitter.PT[chanD])
	cst.writeOnly("BLTSIZE", 0x058, cst.writeBLTSIZE)
	cst.writeOnly("BLTCMOD", 0x060, func(v uint16) { st.Blitter.MOD[chanC] = v &^ 1 })
	cst.writeOnly("BLTBMOD", 0x062, func(v uint16) { st.Blitter.MOD[chanB] = v &^ 1 })
	cst.writeOnly("BLTAMOD", 0x064, func(v uint16) { st.Blitter.MOD[chanA] = v &^ 1 })
	cst.writeOnly("BLTDMOD", 0x066, func(v uint16) { st.Blitter.MOD[chanD] = v &^ 1 })
	cst.writeOnly("BLTCDAT", 0x070, func(v uint16) { st.Blitter.DAT[chanC] = v })
	cst.writeOnly("BLTBDAT", 0x072, cst.writeBLTBDAT)
	cst.writeOnly("BLTADAT", 0x074, func(v uint16) { st.Blitter.DAT[chanA] = v })
	cst.writeOnly("DSKSYNC", 0x07e, func(v uint16) { st.Disk.SYNC = v })

	cst.pointer("COP1LC", 0x080, &st.Copper.LC[0])
	cst.pointer("COP2LC", 0x084, &st.Copper.LC[1])
	cst.writeOnly("COPJMP1", regCOPJMP1, func(_ uint16) { cst.copperJump(0) })
	cst.writeOnly("COPJMP2", regCOPJMP2, func(_ uint16) { cst.copperJump(1) })
	cst.writeOnly("COPINS", 0x08c, strobe)
	cst.writeOnly("DIWSTRT", 0x08e, func(v uint16) { st.Bitplane.DIWSTRT = v; cst.deriveWindow() })
	cst.writeOnly("DIWSTOP", 0x090, func(v uint16) { st.Bitplane.DIWSTOP = v; cst.deriveWindow() })
	cst.writeOnly("DDFSTRT", 0x092, func(v uint16) { st.Bitplane.DDFSTRT = v; cst.deriveFetch() })
	cst.writeOnly("DDFSTOP", 0x094, func(v uint16) { st.Bitplane.DDFSTOP = v; cst.deriveFetch() })
	cst.writeOnly("DMACON", 0x096, cst.writeDMACON)
	cst.writeOnly("CLXCON", 0x098, func(v uint16) { st.CLXCON = v })
	cst.writeOnly("INTENA", 0x09a, cst.writeINTENA)
	cst.writeOnly("INTREQ", 0x09c, cst.writeINTREQ)
	cst.writeOnly("ADKCON", 0x09e, cst.writeADKCON)

	for ch := range 4 {
		base := uint16(0x0a0 + ch*0x10)
		aud := &st.Audio[ch]
		prefix := fmt.Sprintf("AUD%d", ch)
		cst.pointer(prefix+"LC", base, &aud.LC)
		cst.writeOnly(prefix+"LEN", base+0x04, func(v uint16) { aud.LEN = v })
		cst.writeOnly(prefix+"PER", base+0x06, func(v uint16) { aud.PER = v })
		cst.writeOnly(prefix+"VOL", base+0x08, func(v uint16) { aud.VOL = v & 0x7f })
		cst.writeOnly(prefix+"DAT", base+0x0a, func(v uint16) { cst.writeAUDDAT(ch, v) })
	}

	for pl := range 6 {
		cst.pointer(fmt.Sprintf("BPL%dPT", pl+1), uint16(0x0e0+pl*4), &st.Bitplane.PT[pl])
	}
	cst.writeOnly("BPLCON0", 0x100, func(v uint16) { st.Bitplane.BPLCON0 = v; cst.deriveMode() })
	cst.writeOnly("BPLCON1", 0x102, func(v uint16) { st.Bitplane.BPLCON1 = v })
	cst.writeOnly("BPLCON2", 0x104, func(v uint16) { st.Bitplane.BPLCON2 = v })
	cst.writeOnly("BPL1MOD", 0x108, func(v uint16) { st.Bitplane.BPL1MOD = v &^ 1 })
	cst.writeOnly("BPL2MOD", 0x10a, func(v uint16) { st.Bitplane.BPL2MOD = v &^ 1 })
	for pl := range 6 {
		cst.writeOnly(fmt.Sprintf("BPL%dDAT", pl+1), uint16(regBPL1DAT+pl*2), func(v uint16) {
			cst.writeBPLDAT(pl, v)
		})
	}

	for n := range 8 {
		cst.pointer(fmt.Sprintf("SPR%dPT", n), uint16(0x120+n*4), &st.Sprites[n].PT)
		base := uint16(0x140 + n*8)
		prefix := fmt.Sprintf("SPR%d", n)
		cst.writeOnly(prefix+"POS", base, func(v uint16) { cst.writeSPRPOS(n, v) })
		cst.writeOnly(prefix+"CTL", base+2, func(v uint16) { cst.writeSPRCTL(n, v) })
		cst.writeOnly(prefix+"DATA", base+4, func(v uint16) { cst.writeSPRDATA(n, v) })
		cst.writeOnly(prefix+"DATB", base+6, func(v uint16) { st.Sprites[n].DATB = v })
	}

	for c := range 32 {
		cst.writeOnly(fmt.Sprintf("COLOR%02d", c), uint16(regCOLOR00+c*2), func(v uint16) {
			st.Colour[c] = v & 0x0fff
		})
	}
}

// readRegister is the single decode point for register reads. the value is
// returned without side effects
func (cst *Custom) readRegister(addr uint16) uint16 {
	addr &= 0x1fe
	r := &cst.regs[addr>>1]
	if r.read == nil {
		if r.name == "" {
			logger.Logf(cst.ctx, "custom", "read of unknown register %#03x (%s)", addr, cst.positionString())
		} else {
			logger.Logf(cst.ctx, "custom", "read of write-only register %s (%s)", r.name, cst.positionString())
		}
		return 0xffff
	}
	return r.read()
}

// writeRegister is the single decode point for register writes. it is used by
// the CPU and by the copper
func (cst *Custom) writeRegister(addr uint16, v uint16) {
	addr &= 0x1fe
	r := &cst.regs[addr>>1]
	if r.write == nil {
		if r.name == "" {
			logger.Logf(cst.ctx, "custom", "write to unknown register %#03x (%s)", addr, cst.positionString())
		} else {
			logger.Logf(cst.ctx, "custom", "write to read-only register %s (%s)", r.name, cst.positionString())
		}
		return
	}
	cst.last[addr>>1] = v
	r.write(v)
}

// Read16 implements the memory.Area interface
func (cst *Custom) Read16(idx uint32) (uint16, error) {
	addr := uint16(idx & 0x1fe)
	v := cst.readRegister(addr)

	// read side effects
	switch addr {
	case regCLXDAT:
		cst.State.CLXDAT = 0
	case regDSKBYTR:
		cst.State.Disk.ByteReady = false
	}

	return v, nil
}

// Write16 implements the memory.Area interface
func (cst *Custom) Write16(idx uint32, data uint16) error {
	cst.writeRegister(uint16(idx&0x1fe), data)
	return nil
}

// Read8 implements the memory.Area interface
func (cst *Custom) Read8(idx uint32) (uint8, error) {
	v, err := cst.Read16(idx)
	if idx&1 == 0 {
		return uint8(v >> 8), err
	}
	return uint8(v), err
}

// Write8 implements the memory.Area interface. the byte is written to both
// halves of the register
func (cst *Custom) Write8(idx uint32, data uint8) error {
	return cst.Write16(idx, uint16(data)<<8|uint16(data))
}

// Peek returns the value of a register without side effects. write-only
// registers return the last value written
func (cst *Custom) Peek(addr uint16) uint16 {
	addr &= 0x1fe
	r := &cst.regs[addr>>1]
	if r.read != nil {
		return r.read()
	}
	return cst.last[addr>>1]
}

// Poke writes to a register as if written by the CPU
func (cst *Custom) Poke(addr uint16, v uint16) {
	cst.writeRegister(addr, v)
}

// Registers returns a snapshot of every named register
func (cst *Custom) Registers() []RegisterValue {
	var regs []RegisterValue
	for i, r := range cst.regs {
		if r.name == "" {
			continue
		}
		addr := uint16(i << 1)
		regs = append(regs, RegisterValue{
			Offset:    addr,
			Name:      r.name,
			Value:     cst.Peek(addr),
			WriteOnly: r.read == nil,
		})
	}
	return regs
}

// RegisterName returns the name of the register at the offset. the empty
// string is returned for unused offsets
func (cst *Custom) RegisterName(addr uint16) string {
	return cst.regs[(addr&0x1fe)>>1].name
}

// RegisterOffset is the reverse of RegisterName
func (cst *Custom) RegisterOffset(name string) (uint16, bool) {
	for i, r := range cst.regs {
		if r.name != "" && r.name == name {
			return uint16(i << 1), true
		}
	}
	return 0, false
}

func (cst *Custom) readDMACONR() uint16 {
	v := cst.State.DMACON & 0x07ff
	if cst.State.Blitter.Busy {
		v |= DMABBusy
	}
	if cst.State.Blitter.Zero {
		v |= DMABZero
	}
	return v
}

func (cst *Custom) readVPOSR() uint16 {
	b := &cst.State.Beam
	v := uint16(b.VPos>>8) & 1
	if b.LOF {
		v |= 0x8000
	}
	return v
}

func (cst *Custom) readVHPOSR() uint16 {
	b := &cst.State.Beam
	return uint16(b.VPos&0xff)<<8 | uint16(b.HPos>>1)&0xff
}

// the pot pins are pulled up unless driven as outputs by POTGO
func (cst *Custom) readPOTGOR() uint16 {
	v := uint16(0x5500)
	for _, pin := range []uint{9, 11, 13, 15} {
		if cst.State.POTGO&(1<<pin) != 0 {
			// output enabled. data bit is one below the enable bit
			v &^= 1 << (pin - 1)
			v |= cst.State.POTGO & (1 << (pin - 1))
		}
	}
	return v
}

func (cst *Custom) writeDMACON(v uint16) {
	before := cst.State.DMACON
	setClr(&cst.State.DMACON, v&0x07ff|v&SetClr)
	cst.dmaChanged(before)
}

func (cst *Custom) writeADKCON(v uint16) {
	setClr(&cst.State.ADKCON, v&0x7fff|v&SetClr)
	if v&SetClr != 0 && v&ADKUseMask != 0 {
		logger.Logf(cst.ctx, "audio", "ADKCON modulation not supported (%#04x)", v&ADKUseMask)
	}
}

package custom

import "github.com/jetsetilly/amichip/hardware/spec"

// the first and last colour clocks used by sprite DMA
const (
	spriteFirstSlot = 0x15
	spriteLastSlot  = 0x33
)

// Sprite is the state of one hardware sprite.
type Sprite struct {
	POS  uint16
	CTL  uint16
	DATA uint16
	DATB uint16
	PT   uint32

	// a write to DATA arms the sprite. a write to CTL disarms it
	Armed bool

	ShiftA uint16
	ShiftB uint16

	// number of pixels remaining in the shift registers
	Count int32
}

// sprite position fields are spread over the POS and CTL registers
func (cst *Custom) deriveSprite(n int) {
	sp := &cst.State.Sprites[n]
	cst.spriteH[n] = int32(sp.POS&0xff)<<1 | int32(sp.CTL&0x01)
	cst.spriteVS[n] = int32(sp.POS>>8) | int32(sp.CTL>>2&1)<<8
	cst.spriteVE[n] = int32(sp.CTL>>8) | int32(sp.CTL>>1&1)<<8
}

func (cst *Custom) writeSPRPOS(n int, v uint16) {
	cst.State.Sprites[n].POS = v
	cst.deriveSprite(n)
}

func (cst *Custom) writeSPRCTL(n int, v uint16) {
	cst.State.Sprites[n].CTL = v
	cst.State.Sprites[n].Armed = false
	cst.deriveSprite(n)
}

func (cst *Custom) writeSPRDATA(n int, v uint16) {
	cst.State.Sprites[n].DATA = v
	cst.State.Sprites[n].Armed = true
}

// attached reports whether odd sprite n is attached to its even partner
func (cst *Custom) attached(n int) bool {
	return cst.State.Sprites[n|1].CTL&0x80 != 0
}

// each sprite has two slots on odd colour clocks. the first slot fetches POS
// or DATA and the second slot fetches CTL or DATB
func (cst *Custom) spriteSlot(cc int32) bool {
	if cc < spriteFirstSlot || cc > spriteLastSlot || cc&1 == 0 {
		return false
	}
	if !cst.dmaEnabled(DMASprite) {
		return false
	}

	v := cst.State.Beam.VPos
	if v < spec.SpriteReloadLine {
		return false
	}

	n := int(cc-spriteFirstSlot) / 4
	second := (cc-spriteFirstSlot)%4 == 2
	sp := &cst.State.Sprites[n]

	switch {
	case v == spec.SpriteReloadLine || v == cst.spriteVE[n]:
		w := cst.dmaRead(BusSprite, sp.PT)
		sp.PT += 2
		if second {
			cst.writeSPRCTL(n, w)
		} else {
			cst.writeSPRPOS(n, w)
		}
	case v >= cst.spriteVS[n] && v < cst.spriteVE[n]:
		w := cst.dmaRead(BusSprite, sp.PT)
		sp.PT += 2
		if second {
			sp.DATB = w
		} else {
			cst.writeSPRDATA(n, w)
		}
	default:
		return false
	}

	return true
}

// stepSprites loads and shifts the sprite serialisers for this tick
func (cst *Custom) stepSprites() {
	h := cst.State.Beam.HPos
	for n := range cst.State.Sprites {
		sp := &cst.State.Sprites[n]
		if sp.Armed && h == cst.spriteH[n] {
			sp.ShiftA = sp.DATA
			sp.ShiftB = sp.DATB
			sp.Count = 16
		}
		if sp.Count == 0 {
			cst.spritePix[n] = 0
			continue
		}
		cst.spritePix[n] = uint8(sp.ShiftA>>15) | uint8(sp.ShiftB>>15)<<1
		sp.ShiftA <<= 1
		sp.ShiftB <<= 1
		sp.Count--
	}
}

// spritePixel returns the sprite pair and the colour register of the front
// most sprite pixel. the pair is -1 if no sprite is visible
func (cst *Custom) spritePixel() (int, int) {
	for pair := range 4 {
		e := cst.spritePix[pair*2]
		o := cst.spritePix[pair*2+1]
		if cst.attached(pair * 2) {
			if c := e | o<<2; c != 0 {
				return pair, 16 + int(c)
			}
			continue
		}
		if e != 0 {
			return pair, 16 + pair*4 + int(e)
		}
		if o != 0 {
			return pair, 16 + pair*4 + int(o)
		}
	}
	return -1, 0
}

package custom

import "github.com/jetsetilly/amichip/hardware/spec"

// the playfield functions return the colour of the playfield pixel and the
// priority of the playfield against sprites. a sprite pair is in front of the
// playfield if the pair number is less than the priority. a priority of -1
// means the playfield pixel is transparent

func (cst *Custom) pf2Priority() int {
	return int(cst.State.Bitplane.BPLCON2>>3) & 0x07
}

func (cst *Custom) pixelSingle(pf uint8) (uint16, int) {
	if pf == 0 {
		return cst.State.Colour[0], -1
	}
	return cst.State.Colour[pf&0x1f], cst.pf2Priority()
}

// extra half-brite. the sixth plane selects a half brightness version of the
// colour selected by the other five
func (cst *Custom) pixelEHB(pf uint8) (uint16, int) {
	if pf == 0 {
		return cst.State.Colour[0], -1
	}
	if pf&0x20 != 0 {
		return (cst.State.Colour[pf&0x1f] >> 1) & 0x777, cst.pf2Priority()
	}
	return cst.State.Colour[pf], cst.pf2Priority()
}

// hold and modify. planes five and six select whether the low four bits are a
// colour register or a replacement for one component of the previous colour
func (cst *Custom) pixelHAM(pf uint8) (uint16, int) {
	bp := &cst.State.Bitplane
	v := uint16(pf & 0x0f)
	switch pf >> 4 & 0x03 {
	case 0:
		bp.Hold = cst.State.Colour[v]
	case 1:
		bp.Hold = bp.Hold&0xff0 | v
	case 2:
		bp.Hold = bp.Hold&0x0ff | v<<8
	case 3:
		bp.Hold = bp.Hold&0xf0f | v<<4
	}
	if pf == 0 {
		return bp.Hold, -1
	}
	return bp.Hold, cst.pf2Priority()
}

// dual playfield. the odd planes form playfield one and use colours 0 to 7.
// the even planes form playfield two and use colours 8 to 15
func (cst *Custom) pixelDual(pf uint8) (uint16, int) {
	bp := &cst.State.Bitplane
	p1 := pf&0x01 | pf>>1&0x02 | pf>>2&0x04
	p2 := pf>>1&0x01 | pf>>2&0x02 | pf>>3&0x04
	pf2pri := bp.BPLCON2&bplcon2PF2PRI != 0

	if p1 != 0 && (p2 == 0 || !pf2pri) {
		return cst.State.Colour[p1], int(bp.BPLCON2) & 0x07
	}
	if p2 != 0 {
		return cst.State.Colour[p2+8], cst.pf2Priority()
	}
	return cst.State.Colour[0], -1
}

// compose the playfield and sprites into the final colour
func (cst *Custom) compose(pf uint8) uint16 {
	col, pri := cst.pixel(pf)
	pair, spr := cst.spritePixel()
	if pair >= 0 && (pri < 0 || pair < pri) {
		return cst.State.Colour[spr]
	}
	return col
}

// collide updates CLXDAT for the current pixel
func (cst *Custom) collide(pf uint8) {
	st := &cst.State
	con := st.CLXCON

	// planes that are not enabled always match
	en := uint8(con>>6) & 0x3f
	mv := uint8(con) & 0x3f
	match := ^(pf ^ mv)&en | ^en
	odd := match&0x15 == 0x15
	even := match&0x2a == 0x2a

	var spr [4]bool
	for g := range 4 {
		spr[g] = cst.spritePix[g*2] != 0 || (con&(0x1000<<g) != 0 && cst.spritePix[g*2+1] != 0)
	}

	var v uint16
	if odd && even {
		v |= 0x0001
	}
	for g := range 4 {
		if !spr[g] {
			continue
		}
		if odd {
			v |= 0x0002 << g
		}
		if even {
			v |= 0x0020 << g
		}
	}

	// sprite against sprite
	bit := 9
	for a := 0; a < 3; a++ {
		for b := a + 1; b < 4; b++ {
			if spr[a] && spr[b] {
				v |= 1 << bit
			}
			bit++
		}
	}

	st.CLXDAT |= v
}

// stepPixel writes the two high resolution pixels for the current tick to the
// frame buffer
func (cst *Custom) stepPixel() {
	b := &cst.State.Beam
	bp := &cst.State.Bitplane

	inWindow := bp.VActive && b.HPos >= cst.diwHStart && b.HPos < cst.diwHStop
	if inWindow {
		cst.collide(cst.planePix[0])
	}

	if b.VPos < spec.FrameTop || b.HPos < spec.FrameLeft {
		return
	}

	row := (b.VPos - spec.FrameTop) * 2
	if bp.BPLCON0&bplconLACE != 0 && !b.LOF {
		row++
	}
	idx := int(row)*spec.FrameWidth + int(b.HPos-spec.FrameLeft)*2

	for i := range 2 {
		col := cst.State.Colour[0]
		if inWindow {
			col = cst.compose(cst.planePix[i])
		}
		cst.frame[idx+i] = spec.RGB(col)
	}
}

// endField line doubles the frame when the display is not interlaced
func (cst *Custom) endField() {
	if cst.State.Bitplane.BPLCON0&bplconLACE != 0 {
		return
	}
	for row := 0; row < spec.FrameHeight; row += 2 {
		src := cst.frame[row*spec.FrameWidth : (row+1)*spec.FrameWidth]
		copy(cst.frame[(row+1)*spec.FrameWidth:], src)
	}
}

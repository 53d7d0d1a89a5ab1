package dms

import "fmt"

const (
	// number of literal/length symbols
	nc = 510

	// maximum number of position symbols
	npt = 20

	// length symbols start at 256 and encode a copy of (symbol - offset)
	// bytes
	lengthOffset = 253

	cTableBits = 12
	pTableBits = 8
)

// bitReader supplies bits most significant bit first. reading past the end
// of the input supplies zeros
type bitReader struct {
	in    []byte
	pos   int
	buf   uint32
	count uint
}

func (r *bitReader) init(in []byte) {
	r.in = in
	r.pos = 0
	r.buf = 0
	r.count = 0
	r.drop(0)
}

func (r *bitReader) peek(n uint) uint16 {
	return uint16(r.buf >> (r.count - n))
}

func (r *bitReader) drop(n uint) {
	r.count -= n
	r.buf &= (1 << r.count) - 1
	for r.count < 16 {
		var b byte
		if r.pos < len(r.in) {
			b = r.in[r.pos]
		}
		r.pos++
		r.buf = r.buf<<8 | uint32(b)
		r.count += 8
	}
}

func (r *bitReader) get(n uint) uint16 {
	v := r.peek(n)
	r.drop(n)
	return v
}

// heavy decodes the LZ77 and static Huffman compression used by the Heavy1
// and Heavy2 modes. the dictionary and the most recent tables survive between
// tracks unless the decoder is reset
type heavy struct {
	bits bitReader

	text    [1 << 13]byte
	textLoc uint16
	lastLen uint16

	// number of position symbols. 14 for Heavy1 and 15 for Heavy2
	np int

	cLen   [nc]uint8
	cTable [1 << cTableBits]uint16
	cLeft  [2*nc - 1]uint16
	cRight [2*nc - 1]uint16

	pLen   [npt]uint8
	pTable [1 << pTableBits]uint16
	pLeft  [2*npt - 1]uint16
	pRight [2*npt - 1]uint16
}

func (h *heavy) reset() {
	clear(h.text[:])
	h.textLoc = 0
	h.lastLen = 0
}

// makeTable builds a canonical Huffman decoding table from code lengths.
// codes no longer than tableBits are resolved by the table directly. longer
// codes continue into a binary tree whose nodes are numbered from nchar
func makeTable(nchar int, bitlen []uint8, tableBits uint, table []uint16, left []uint16, right []uint16) error {
	var count [17]uint32
	var weight [17]uint32
	var start [18]uint32

	for i := range nchar {
		if bitlen[i] > 16 {
			return fmt.Errorf("%w: code length %d", ErrTable, bitlen[i])
		}
		count[bitlen[i]]++
	}

	for i := uint(1); i <= 16; i++ {
		start[i+1] = start[i] + count[i]<<(16-i)
	}
	if start[17] != 1<<16 {
		return fmt.Errorf("%w: incomplete code", ErrTable)
	}

	jutbits := 16 - tableBits
	for i := uint(1); i <= tableBits; i++ {
		start[i] >>= jutbits
		weight[i] = 1 << (tableBits - i)
	}
	for i := tableBits + 1; i <= 16; i++ {
		weight[i] = 1 << (16 - i)
	}

	for i := start[tableBits+1] >> jutbits; i < 1<<tableBits; i++ {
		table[i] = 0
	}

	avail := uint16(nchar)
	mask := uint32(1) << (15 - tableBits)

	for ch := range nchar {
		l := uint(bitlen[ch])
		if l == 0 {
			continue
		}
		nextcode := start[l] + weight[l]

		if l <= tableBits {
			for i := start[l]; i < nextcode; i++ {
				table[i] = uint16(ch)
			}
		} else {
			k := start[l]
			p := &table[k>>jutbits]
			for i := l - tableBits; i != 0; i-- {
				if *p == 0 {
					if int(avail) >= len(left) {
						return fmt.Errorf("%w: tree overflow", ErrTable)
					}
					left[avail] = 0
					right[avail] = 0
					*p = avail
					avail++
				}
				if k&mask != 0 {
					p = &right[*p]
				} else {
					p = &left[*p]
				}
				k <<= 1
			}
			*p = uint16(ch)
		}

		start[l] = nextcode
	}

	return nil
}

func (h *heavy) readTreeC() error {
	n := int(h.bits.get(9))
	if n > 0 {
		if n > nc {
			return fmt.Errorf("%w: %d literal codes", ErrTable, n)
		}
		for i := range n {
			h.cLen[i] = uint8(h.bits.get(5))
		}
		clear(h.cLen[n:])
		return makeTable(nc, h.cLen[:], cTableBits, h.cTable[:], h.cLeft[:], h.cRight[:])
	}

	// a single symbol with a zero length code
	n = int(h.bits.get(9))
	if n >= nc {
		return fmt.Errorf("%w: literal symbol %d", ErrTable, n)
	}
	clear(h.cLen[:])
	for i := range h.cTable {
		h.cTable[i] = uint16(n)
	}
	return nil
}

func (h *heavy) readTreeP() error {
	n := int(h.bits.get(5))
	if n > 0 {
		if n > h.np {
			return fmt.Errorf("%w: %d position codes", ErrTable, n)
		}
		for i := range n {
			h.pLen[i] = uint8(h.bits.get(4))
		}
		clear(h.pLen[n:h.np])
		return makeTable(h.np, h.pLen[:], pTableBits, h.pTable[:], h.pLeft[:], h.pRight[:])
	}

	n = int(h.bits.get(5))
	if n >= h.np {
		return fmt.Errorf("%w: position symbol %d", ErrTable, n)
	}
	clear(h.pLen[:h.np])
	for i := range h.pTable {
		h.pTable[i] = uint16(n)
	}
	return nil
}

func (h *heavy) decodeC() uint16 {
	j := h.cTable[h.bits.peek(cTableBits)]
	if j < nc {
		h.bits.drop(uint(h.cLen[j]))
		return j
	}

	h.bits.drop(cTableBits)
	i := h.bits.peek(16)
	m := uint16(0x8000)
	for j >= nc {
		if i&m != 0 {
			j = h.cRight[j]
		} else {
			j = h.cLeft[j]
		}
		m >>= 1
	}
	h.bits.drop(uint(h.cLen[j]) - cTableBits)
	return j
}

func (h *heavy) decodeP() uint16 {
	np := uint16(h.np)

	j := h.pTable[h.bits.peek(pTableBits)]
	if j < np {
		h.bits.drop(uint(h.pLen[j]))
	} else {
		h.bits.drop(pTableBits)
		i := h.bits.peek(16)
		m := uint16(0x8000)
		for j >= np {
			if i&m != 0 {
				j = h.pRight[j]
			} else {
				j = h.pLeft[j]
			}
			m >>= 1
		}
		h.bits.drop(uint(h.pLen[j]) - pTableBits)
	}

	// the last position symbol repeats the previous position
	if j != np-1 {
		if j > 0 {
			n := uint(j - 1)
			j = h.bits.get(n) | 1<<n
		}
		h.lastLen = j
	}

	return h.lastLen
}

// unpack decodes size bytes. the heavy2 flag selects the larger dictionary
// and the tables are read from the stream if newTables is true
func (h *heavy) unpack(in []byte, size int, heavy2 bool, newTables bool) ([]byte, error) {
	mask := uint16(0x0fff)
	h.np = 14
	if heavy2 {
		mask = 0x1fff
		h.np = 15
	}

	h.bits.init(in)

	if newTables {
		if err := h.readTreeC(); err != nil {
			return nil, err
		}
		if err := h.readTreeP(); err != nil {
			return nil, err
		}
	}

	out := make([]byte, 0, size)
	for len(out) < size {
		c := h.decodeC()
		if c < 256 {
			h.text[h.textLoc&mask] = byte(c)
			h.textLoc++
			out = append(out, byte(c))
			continue
		}

		n := c - lengthOffset
		i := h.textLoc - h.decodeP() - 1
		for ; n > 0; n-- {
			b := h.text[i&mask]
			h.text[h.textLoc&mask] = b
			h.textLoc++
			i++
			if len(out) < size {
				out = append(out, b)
			}
		}
	}

	return out, nil
}

package dms

import "fmt"

// the escape byte of the run length encoding
const rleMarker = 0x90

// unrle expands run length encoded data to exactly size bytes.
//
//	0x90 0x00          literal 0x90
//	0x90 n b           n copies of b
//	0x90 0xff b hi lo  (hi<<8|lo) copies of b
func unrle(in []byte, size int) ([]byte, error) {
	out := make([]byte, 0, size)

	var pos int
	next := func() (byte, error) {
		if pos >= len(in) {
			return 0, fmt.Errorf("%w: run length data exhausted", ErrDecrunch)
		}
		b := in[pos]
		pos++
		return b, nil
	}

	for len(out) < size {
		a, err := next()
		if err != nil {
			return nil, err
		}
		if a != rleMarker {
			out = append(out, a)
			continue
		}

		n, err := next()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			out = append(out, a)
			continue
		}

		b, err := next()
		if err != nil {
			return nil, err
		}
		ct := int(n)
		if n == 0xff {
			hi, err := next()
			if err != nil {
				return nil, err
			}
			lo, err := next()
			if err != nil {
				return nil, err
			}
			ct = int(hi)<<8 | int(lo)
		}

		if len(out)+ct > size {
			return nil, fmt.Errorf("%w: run overflows track", ErrDecrunch)
		}
		for range ct {
			out = append(out, b)
		}
	}

	return out, nil
}

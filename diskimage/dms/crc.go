package dms

// crc16 is the CRC-16/ARC checksum (reflected polynomial 0xa001) used for
// archive headers, track headers and packed track data
var crcTable [256]uint16

func init() {
	for i := range crcTable {
		c := uint16(i)
		for range 8 {
			if c&1 == 1 {
				c = c>>1 ^ 0xa001
			} else {
				c >>= 1
			}
		}
		crcTable[i] = c
	}
}

// CRC16 returns the checksum of data
func CRC16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc = crcTable[(crc^uint16(b))&0xff] ^ (crc >> 8)
	}
	return crc
}

// Sum is the simple additive checksum of unpacked track data
func Sum(data []byte) uint16 {
	var s uint16
	for _, b := range data {
		s += uint16(b)
	}
	return s
}

package adf

import (
	"encoding/binary"
	"strings"
	"time"
)

// a block is a 512 byte view into the volume image
type block []byte

// longword indices into header blocks. root, user directory, file header and
// file extension blocks share the layout where the fields overlap
const (
	lType      = 0
	lHeaderKey = 1
	lHighSeq   = 2
	lHTSize    = 3
	lFirstData = 4
	lChecksum  = 5
	lHashTable = 6
	lBMFlag    = 78
	lBMPages   = 79
	lProtect   = 80
	lByteSize  = 81
	lBMExt     = 104
	lDays      = 105
	lMins      = 106
	lTicks     = 107
	lVDays     = 118
	lCDays     = 121
	lHashChain = 124
	lParent    = 125
	lExtension = 126
	lSecType   = 127
)

// longword indices into OFS data blocks
const (
	lDataSeqNum   = 2
	lDataSize     = 3
	lDataNextData = 4
	ofsDataOffset = 24
)

// byte offsets of BCPL strings
const (
	offComment = 0x148
	offName    = 0x1b0
	maxComment = 79
	maxName    = 30
)

// block types
const (
	tHeader = 2
	tData   = 8
	tList   = 16
)

// secondary block types
const (
	stRoot    = 1
	stUserDir = 2
	stFile    = 0xfffffffd // -3
)

func (b block) long(i int) uint32 {
	return binary.BigEndian.Uint32(b[i*4:])
}

func (b block) setLong(i int, v uint32) {
	binary.BigEndian.PutUint32(b[i*4:], v)
}

func (b block) bcpl(off int, max int) string {
	n := min(int(b[off]), max)
	return string(b[off+1 : off+1+n])
}

func (b block) setBCPL(off int, max int, s string) {
	if len(s) > max {
		s = s[:max]
	}
	clear(b[off : off+1+max])
	b[off] = byte(len(s))
	copy(b[off+1:], s)
}

func (b block) name() string {
	return b.bcpl(offName, maxName)
}

func (b block) setName(s string) {
	b.setBCPL(offName, maxName, s)
}

func (b block) setDate(l int, t time.Time) {
	d, m, tk := amigaDate(t)
	b.setLong(l, d)
	b.setLong(l+1, m)
	b.setLong(l+2, tk)
}

func (b block) date(l int) time.Time {
	return fromAmigaDate(b.long(l), b.long(l+1), b.long(l+2))
}

// Checksum is the checksum used by all filesystem blocks except the boot
// block. the checksum is the value that makes the sum of all longwords in
// the block zero. the longword at skip, a byte offset, is not included in the
// summation
func Checksum(b []byte, skip int) uint32 {
	var sum uint32
	for i := 0; i+4 <= len(b); i += 4 {
		if i == skip {
			continue
		}
		sum += binary.BigEndian.Uint32(b[i:])
	}
	return -sum
}

// BootChecksum is the checksum of the two boot blocks. The addition wraps
// carries around to the least significant bit
func BootChecksum(b []byte) uint32 {
	var sum uint32
	for i := 0; i+4 <= BootBlockSize; i += 4 {
		if i == 4 {
			continue
		}
		d := binary.BigEndian.Uint32(b[i:])
		n := sum + d
		if n < sum {
			n++
		}
		sum = n
	}
	return ^sum
}

// Hash returns the hash table index for a name. Names are compared case
// insensitively so the hash is also case insensitive
func Hash(name string) int {
	h := uint32(len(name))
	for _, c := range []byte(name) {
		h = (h*13 + uint32(toUpper(c))) & 0x7ff
	}
	return int(h % HashSize)
}

func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}

func sameName(a, b string) bool {
	return strings.EqualFold(a, b)
}

var amigaEpoch = time.Date(1978, 1, 1, 0, 0, 0, 0, time.UTC)

// amigaDate converts time to days since 1978, minutes since midnight and
// ticks (1/50th second) since the start of the minute
func amigaDate(t time.Time) (uint32, uint32, uint32) {
	t = t.UTC()
	if t.Before(amigaEpoch) {
		return 0, 0, 0
	}
	d := t.Sub(amigaEpoch)
	days := uint32(d / (24 * time.Hour))
	mins := uint32(t.Hour()*60 + t.Minute())
	ticks := uint32(t.Second()*50 + t.Nanosecond()/20000000)
	return days, mins, ticks
}

func fromAmigaDate(days, mins, ticks uint32) time.Time {
	return amigaEpoch.Add(time.Duration(days)*24*time.Hour +
		time.Duration(mins)*time.Minute +
		time.Duration(ticks)*(time.Second/50))
}

// Package mfm encodes and decodes AmigaDOS formatted tracks. A track is eleven
// sectors of 512 bytes, each sector framed by a preamble, two sync words and a
// header. All data is stored as odd bits followed by even bits so that the
// clock bits can be inserted independently of the data.
package mfm

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	SectorsPerTrack = 11
	SectorSize      = 512
	TrackDataSize   = SectorsPerTrack * SectorSize

	// the size of one encoded sector in bytes
	SectorMFMSize = 1088

	// the size of an encoded track in bytes. this is the size of the track
	// buffer that rotates under the drive head
	TrackMFMSize = 12668

	// the sync word. this bit pattern can not be produced by MFM encoded data
	Sync = 0x4489
)

// offsets into an encoded sector
const (
	offSync     = 4
	offInfo     = 8
	offLabel    = 16
	offHeadSum  = 48
	offDataSum  = 56
	offData     = 64
	headerBytes = offHeadSum - offInfo
	dataBytes   = SectorMFMSize - offData
)

// sentinel errors for the decoding process
var (
	ErrNoSync        = errors.New("mfm: no sync word")
	ErrFormat        = errors.New("mfm: bad format byte")
	ErrTrack         = errors.New("mfm: sector for wrong track")
	ErrSector        = errors.New("mfm: sector number out of range")
	ErrHeaderSum     = errors.New("mfm: header checksum")
	ErrDataSum       = errors.New("mfm: data checksum")
	ErrDuplicate     = errors.New("mfm: duplicate sector")
	ErrMissingSector = errors.New("mfm: missing sector")
	ErrTruncated     = errors.New("mfm: truncated sector")
)

// split places the odd bits of data in the first half of dst and the even
// bits in the second half. clock bits are not added
func split(dst []byte, data []byte) {
	n := len(data)
	for i, d := range data {
		dst[i] = (d >> 1) & 0x55
		dst[n+i] = d & 0x55
	}
}

// join is the inverse of split
func join(dst []byte, src []byte) {
	n := len(dst)
	for i := range dst {
		dst[i] = (src[i]&0x55)<<1 | src[n+i]&0x55
	}
}

// AddClocks inserts clock bits into a buffer of data bits. A clock bit is set
// when the data bits either side of it are both zero. The prev argument is the
// last data bit before the buffer and the last data bit of the buffer is
// returned
func AddClocks(b []byte, prev byte) byte {
	for i := range b {
		d := b[i] & 0x55
		c := ^(d<<1 | d>>1 | prev<<7) & 0xaa
		b[i] = d | c
		prev = d & 0x01
	}
	return prev
}

// Checksum is the AmigaDOS checksum of MFM encoded data. the longwords are
// exclusive-or'd with the clock bits masked out
func Checksum(b []byte) uint32 {
	var sum uint32
	for i := 0; i+4 <= len(b); i += 4 {
		sum ^= binary.BigEndian.Uint32(b[i:])
	}
	return sum & 0x55555555
}

func splitLong(dst []byte, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	split(dst, b[:])
}

func joinLong(src []byte) uint32 {
	var b [4]byte
	join(b[:], src)
	return binary.BigEndian.Uint32(b[:])
}

// EncodeSector writes one sector to dst, which must be at least SectorMFMSize
// bytes long. The prev argument is the last data bit written before dst. The
// last data bit of the encoded sector is returned
func EncodeSector(dst []byte, track int, sector int, data []byte, prev byte) byte {
	dst = dst[:SectorMFMSize]
	clear(dst)

	info := uint32(0xff)<<24 | uint32(track&0xff)<<16 | uint32(sector&0xff)<<8 | uint32(SectorsPerTrack-sector)
	splitLong(dst[offInfo:], info)
	splitLong(dst[offHeadSum:], Checksum(dst[offInfo:offHeadSum]))
	split(dst[offData:], data[:SectorSize])
	splitLong(dst[offDataSum:], Checksum(dst[offData:]))

	// preamble is clocked zeros
	AddClocks(dst[:offSync], prev)
	binary.BigEndian.PutUint16(dst[offSync:], Sync)
	binary.BigEndian.PutUint16(dst[offSync+2:], Sync)

	// the sync word ends with a one bit
	return AddClocks(dst[offInfo:], 1)
}

// EncodeTrack encodes a full track of sector data. The length of data must be
// TrackDataSize
func EncodeTrack(track int, data []byte) []byte {
	mfm := make([]byte, TrackMFMSize)
	var prev byte
	for s := range SectorsPerTrack {
		prev = EncodeSector(mfm[s*SectorMFMSize:], track, s, data[s*SectorSize:], prev)
	}
	AddClocks(mfm[SectorsPerTrack*SectorMFMSize:], prev)
	return mfm
}

// DecodeSector decodes a sector. The src slice should begin immediately after
// the sync words
func DecodeSector(src []byte) (track int, sector int, data []byte, err error) {
	if len(src) < SectorMFMSize-offInfo {
		return 0, 0, nil, ErrTruncated
	}

	// offsets are relative to the end of the sync words
	const base = offInfo

	info := joinLong(src[offInfo-base:])
	if info>>24 != 0xff {
		return 0, 0, nil, fmt.Errorf("%w: %02x", ErrFormat, info>>24)
	}
	track = int(info>>16) & 0xff
	sector = int(info>>8) & 0xff
	if sector >= SectorsPerTrack {
		return track, sector, nil, fmt.Errorf("%w: %d", ErrSector, sector)
	}

	if Checksum(src[offInfo-base:offHeadSum-base]) != joinLong(src[offHeadSum-base:]) {
		return track, sector, nil, fmt.Errorf("%w: track %d sector %d", ErrHeaderSum, track, sector)
	}
	if Checksum(src[offData-base:SectorMFMSize-base]) != joinLong(src[offDataSum-base:]) {
		return track, sector, nil, fmt.Errorf("%w: track %d sector %d", ErrDataSum, track, sector)
	}

	data = make([]byte, SectorSize)
	join(data, src[offData-base:SectorMFMSize-base])
	return track, sector, data, nil
}

// DecodeTrack searches an encoded track for all eleven sectors of the
// specified track. The track is treated as circular so a sector may wrap
// around the end of the buffer
func DecodeTrack(track int, mfm []byte) ([]byte, error) {
	if len(mfm) == 0 {
		return nil, ErrNoSync
	}

	// doubling the buffer handles the wraparound case
	circ := make([]byte, 0, len(mfm)+SectorMFMSize)
	circ = append(circ, mfm...)
	circ = append(circ, mfm[:min(len(mfm), SectorMFMSize)]...)

	data := make([]byte, TrackDataSize)
	var seen [SectorsPerTrack]bool
	var count int

	for i := 0; i+1 < len(mfm); {
		if binary.BigEndian.Uint16(circ[i:]) != Sync {
			i++
			continue
		}

		// skip all sync words
		for i+1 < len(circ) && binary.BigEndian.Uint16(circ[i:]) == Sync {
			i += 2
		}

		trk, sec, d, err := DecodeSector(circ[i:])
		if err != nil {
			return nil, err
		}
		if trk != track {
			return nil, fmt.Errorf("%w: found %d expecting %d", ErrTrack, trk, track)
		}
		if seen[sec] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicate, sec)
		}
		seen[sec] = true
		count++
		copy(data[sec*SectorSize:], d)

		i += SectorMFMSize - offInfo
		if count == SectorsPerTrack {
			break
		}
	}

	for s, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrMissingSector, s)
		}
	}

	return data, nil
}

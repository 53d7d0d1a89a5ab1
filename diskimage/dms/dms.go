// Package dms unpacks Disk Masher archives into flat ADF images.
//
// Only the store, RLE, Heavy1 and Heavy2 compression modes are supported.
// Encrypted archives are refused.
package dms

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors. Detail is added by wrapping.
var (
	ErrMagic       = errors.New("dms: not a DMS archive")
	ErrCRC         = errors.New("dms: crc mismatch")
	ErrChecksum    = errors.New("dms: track checksum mismatch")
	ErrDecrunch    = errors.New("dms: decrunch error")
	ErrTable       = errors.New("dms: bad huffman table")
	ErrEncrypted   = errors.New("dms: encrypted archives are not supported")
	ErrUnsupported = errors.New("dms: unsupported compression mode")
	ErrTruncated   = errors.New("dms: truncated archive")
	ErrNoTracks    = errors.New("dms: archive contains no disk tracks")
)

const (
	headerSize      = 56
	trackHeaderSize = 20

	// geninfo flag for encrypted archives
	infoEncrypted = 0x02

	// tracks with this number carry a banner or FILEID.DIZ text
	bannerTrack = 0xffff

	// smaller tracks are fake boot blocks or text
	minTrackSize = 2048

	// a disk track in an archive holds both heads of one cylinder. no drive
	// steps beyond cylinder 83
	maxTracks = 84
)

// Compression modes.
const (
	ModeNone   = 0
	ModeSimple = 1
	ModeQuick  = 2
	ModeMedium = 3
	ModeDeep   = 4
	ModeHeavy1 = 5
	ModeHeavy2 = 6
)

// Track flags.
const (
	flagKeepState = 0x01
	flagNewTables = 0x02
	flagRLE       = 0x04
)

var modeNames = []string{"none", "simple", "quick", "medium", "deep", "heavy1", "heavy2"}

// ModeName returns the conventional name of a compression mode.
func ModeName(mode int) string {
	if mode >= 0 && mode < len(modeNames) {
		return modeNames[mode]
	}
	return fmt.Sprintf("unknown (%d)", mode)
}

// Info summarises the archive header.
type Info struct {
	Created   time.Time
	From      int
	To        int
	Packed    int
	Unpacked  int
	DiskType  int
	Mode      int
	Encrypted bool
}

func (inf Info) String() string {
	return fmt.Sprintf("tracks %d-%d, %s, %d bytes packed, %d unpacked, created %s",
		inf.From, inf.To, ModeName(inf.Mode), inf.Packed, inf.Unpacked,
		inf.Created.UTC().Format(time.DateTime))
}

// Is returns true if data begins with the DMS signature.
func Is(data []byte) bool {
	return len(data) >= 4 && string(data[:4]) == "DMS!"
}

// ReadInfo parses and verifies the archive header.
func ReadInfo(data []byte) (Info, error) {
	if !Is(data) {
		return Info{}, ErrMagic
	}
	if len(data) < headerSize {
		return Info{}, fmt.Errorf("%w: header", ErrTruncated)
	}
	if crc := CRC16(data[4:54]); crc != be16(data[54:]) {
		return Info{}, fmt.Errorf("%w: archive header", ErrCRC)
	}

	return Info{
		Created:   time.Unix(int64(binary.BigEndian.Uint32(data[12:])), 0),
		From:      int(be16(data[16:])),
		To:        int(be16(data[18:])),
		Packed:    int(binary.BigEndian.Uint32(data[20:]) & 0xffffff),
		Unpacked:  int(binary.BigEndian.Uint32(data[24:]) & 0xffffff),
		DiskType:  int(be16(data[50:])),
		Mode:      int(be16(data[52:])),
		Encrypted: be16(data[10:])&infoEncrypted != 0,
	}, nil
}

type track struct {
	number  uint16
	pklen1  int
	pklen2  int
	unpklen int
	flags   uint8
	cmode   uint8
	usum    uint16
	dcrc    uint16
	data    []byte
}

func readTrack(data []byte) (track, error) {
	if len(data) < trackHeaderSize {
		return track{}, fmt.Errorf("%w: track header", ErrTruncated)
	}
	if crc := CRC16(data[:18]); crc != be16(data[18:]) {
		return track{}, fmt.Errorf("%w: track header", ErrCRC)
	}

	t := track{
		number:  be16(data[2:]),
		pklen1:  int(be16(data[6:])),
		pklen2:  int(be16(data[8:])),
		unpklen: int(be16(data[10:])),
		flags:   data[12],
		cmode:   data[13],
		usum:    be16(data[14:]),
		dcrc:    be16(data[16:]),
	}

	end := trackHeaderSize + t.pklen1
	if len(data) < end {
		return track{}, fmt.Errorf("%w: track %d data", ErrTruncated, t.number)
	}
	t.data = data[trackHeaderSize:end]

	if crc := CRC16(t.data); crc != t.dcrc {
		return track{}, fmt.Errorf("%w: track %d data", ErrCRC, t.number)
	}

	return t, nil
}

// decoder holds the state that carries from one track to the next
type decoder struct {
	heavy heavy
}

func (d *decoder) unpack(t track) ([]byte, error) {
	var out []byte
	var err error

	switch t.cmode {
	case ModeNone:
		if len(t.data) < t.unpklen {
			return nil, fmt.Errorf("%w: stored track %d is short", ErrDecrunch, t.number)
		}
		out = append([]byte(nil), t.data[:t.unpklen]...)

	case ModeSimple:
		out, err = unrle(t.data, t.unpklen)

	case ModeHeavy1, ModeHeavy2:
		heavy2 := t.cmode == ModeHeavy2
		newTables := t.flags&flagNewTables != 0
		if t.flags&flagRLE != 0 {
			out, err = d.heavy.unpack(t.data, t.pklen2, heavy2, newTables)
			if err == nil {
				out, err = unrle(out, t.unpklen)
			}
		} else {
			out, err = d.heavy.unpack(t.data, t.unpklen, heavy2, newTables)
		}

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, ModeName(int(t.cmode)))
	}

	if t.flags&flagKeepState == 0 {
		d.heavy.reset()
	}

	if err != nil {
		return nil, fmt.Errorf("track %d: %w", t.number, err)
	}

	if s := Sum(out); s != t.usum {
		return nil, fmt.Errorf("%w: track %d", ErrChecksum, t.number)
	}

	return out, nil
}

// Unpack decompresses every disk track in the archive and returns the disk
// image. Tracks are placed by their track number so an archive of a partial
// disk produces an image that is only as large as its highest track.
func Unpack(data []byte) ([]byte, error) {
	info, err := ReadInfo(data)
	if err != nil {
		return nil, err
	}
	if info.Encrypted {
		return nil, ErrEncrypted
	}

	var dec decoder
	dec.heavy.reset()

	var img []byte
	var trackLen int

	pos := headerSize
	for pos+trackHeaderSize <= len(data) && string(data[pos:pos+2]) == "TR" {
		t, err := readTrack(data[pos:])
		if err != nil {
			return nil, err
		}
		pos += trackHeaderSize + t.pklen1

		out, err := dec.unpack(t)
		if err != nil {
			return nil, err
		}

		if t.number == bannerTrack || t.unpklen <= minTrackSize {
			continue
		}

		if int(t.number) >= maxTracks || int(t.number) < info.From || int(t.number) > info.To {
			return nil, fmt.Errorf("%w: track %d is outside the range %d to %d",
				ErrDecrunch, t.number, info.From, min(info.To, maxTracks-1))
		}

		if trackLen == 0 {
			trackLen = t.unpklen
		} else if t.unpklen != trackLen {
			return nil, fmt.Errorf("%w: track %d is %d bytes, expected %d",
				ErrDecrunch, t.number, t.unpklen, trackLen)
		}

		end := (int(t.number) + 1) * trackLen
		if end > len(img) {
			img = append(img, make([]byte, end-len(img))...)
		}
		copy(img[int(t.number)*trackLen:], out)
	}

	if img == nil {
		return nil, ErrNoTracks
	}

	return img, nil
}

func be16(b []byte) uint16 {
	return binary.BigEndian.Uint16(b)
}

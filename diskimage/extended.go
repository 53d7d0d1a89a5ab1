package diskimage

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/jetsetilly/amichip/diskimage/mfm"
)

const extendedMagic = "UAE-1ADF"

// the size of the file header and of each entry in the track table
const (
	extendedHeaderSize = 12
	extendedEntrySize  = 12
)

// Track types in an extended image.
const (
	TrackStandard = 0
	TrackRaw      = 1
)

type extendedTrack struct {
	typ  uint16
	data []byte

	// the number of valid bits in a raw track
	bits uint32
}

// ExtendedADF stores every track separately, either as standard AmigaDOS
// sectors or as a raw MFM bitstream. Custom formatted tracks written by the
// drive are kept as raw MFM.
type ExtendedADF struct {
	label     string
	tracks    []extendedTrack
	protected bool
	modified  bool
}

// IsExtended returns true if data begins with the extended ADF signature.
func IsExtended(data []byte) bool {
	return bytes.HasPrefix(data, []byte(extendedMagic))
}

// NewExtendedADF parses an extended ADF image.
//
//	0  "UAE-1ADF"
//	8  reserved (2 bytes)
//	10 number of tracks (2 bytes)
//	12 track table. per track: reserved (2), type (2), byte length (4), bit length (4)
//	   track data follows the table in track order
func NewExtendedADF(label string, data []byte, protected bool) (*ExtendedADF, error) {
	if !IsExtended(data) {
		return nil, fmt.Errorf("%w: missing %s signature", ErrFormat, extendedMagic)
	}
	if len(data) < extendedHeaderSize {
		return nil, fmt.Errorf("%w: truncated header", ErrFormat)
	}

	n := int(binary.BigEndian.Uint16(data[10:]))
	if n > MaxCylinders*Heads {
		return nil, fmt.Errorf("%w: %d tracks", ErrFormat, n)
	}

	pos := extendedHeaderSize + n*extendedEntrySize
	if len(data) < pos {
		return nil, fmt.Errorf("%w: truncated track table", ErrFormat)
	}

	d := &ExtendedADF{
		label:     label,
		tracks:    make([]extendedTrack, n),
		protected: protected,
	}

	for i := range d.tracks {
		e := data[extendedHeaderSize+i*extendedEntrySize:]
		t := extendedTrack{
			typ:  binary.BigEndian.Uint16(e[2:]),
			bits: binary.BigEndian.Uint32(e[8:]),
		}
		l := int(binary.BigEndian.Uint32(e[4:]))

		if len(data) < pos+l {
			return nil, fmt.Errorf("%w: track %d data is truncated", ErrFormat, i)
		}
		t.data = bytes.Clone(data[pos : pos+l])
		pos += l

		switch t.typ {
		case TrackStandard:
			if l != mfm.TrackDataSize && l != 0 {
				return nil, fmt.Errorf("%w: standard track %d is %d bytes", ErrFormat, i, l)
			}
		case TrackRaw:
			if t.bits > uint32(l)*8 {
				return nil, fmt.Errorf("%w: track %d has %d bits in %d bytes", ErrFormat, i, t.bits, l)
			}
		default:
			return nil, fmt.Errorf("%w: track %d has unknown type %d", ErrFormat, i, t.typ)
		}

		d.tracks[i] = t
	}

	return d, nil
}

// ExtendedFromADF converts a flat image to the extended format.
func ExtendedFromADF(a *ADF) *ExtendedADF {
	d := &ExtendedADF{
		label:     a.label,
		protected: a.protected,
		tracks:    make([]extendedTrack, a.Cylinders()*Heads),
	}
	for i := range d.tracks {
		d.tracks[i] = extendedTrack{
			typ:  TrackStandard,
			data: bytes.Clone(a.data[i*mfm.TrackDataSize : (i+1)*mfm.TrackDataSize]),
		}
	}
	return d
}

func (d *ExtendedADF) Label() string {
	return d.label
}

func (d *ExtendedADF) Cylinders() int {
	return (len(d.tracks) + Heads - 1) / Heads
}

func (d *ExtendedADF) index(cyl int, head int) (int, error) {
	i := trackIndex(cyl, head)
	if cyl < 0 || head < 0 || head >= Heads || i >= len(d.tracks) {
		return 0, fmt.Errorf("%w: cylinder %d head %d", ErrNoTrack, cyl, head)
	}
	return i, nil
}

// TrackType returns TrackStandard or TrackRaw for the track.
func (d *ExtendedADF) TrackType(cyl int, head int) (int, error) {
	i, err := d.index(cyl, head)
	if err != nil {
		return 0, err
	}
	return int(d.tracks[i].typ), nil
}

func (d *ExtendedADF) ReadMFMTrack(cyl int, head int) ([]byte, error) {
	i, err := d.index(cyl, head)
	if err != nil {
		return nil, err
	}

	t := d.tracks[i]
	switch t.typ {
	case TrackStandard:
		// an empty standard track reads as unformatted
		if len(t.data) == 0 {
			return make([]byte, mfm.TrackMFMSize), nil
		}
		return mfm.EncodeTrack(i, t.data), nil
	default:
		return bytes.Clone(t.data[:(t.bits+7)/8]), nil
	}
}

// WriteMFMTrack stores the track as standard sectors if it decodes as an
// AmigaDOS track. otherwise the raw MFM is kept.
func (d *ExtendedADF) WriteMFMTrack(cyl int, head int, m []byte) error {
	if d.protected {
		return ErrWriteProtected
	}
	i, err := d.index(cyl, head)
	if err != nil {
		return err
	}

	if data, err := mfm.DecodeTrack(i, m); err == nil {
		d.tracks[i] = extendedTrack{typ: TrackStandard, data: data}
	} else {
		d.tracks[i] = extendedTrack{typ: TrackRaw, data: bytes.Clone(m), bits: uint32(len(m)) * 8}
	}
	d.modified = true

	return nil
}

func (d *ExtendedADF) WriteProtected() bool {
	return d.protected
}

func (d *ExtendedADF) Modified() bool {
	return d.modified
}

func (d *ExtendedADF) Bytes() []byte {
	d.modified = false

	var b bytes.Buffer
	b.WriteString(extendedMagic)
	binary.Write(&b, binary.BigEndian, uint16(0))
	binary.Write(&b, binary.BigEndian, uint16(len(d.tracks)))

	for _, t := range d.tracks {
		binary.Write(&b, binary.BigEndian, uint16(0))
		binary.Write(&b, binary.BigEndian, t.typ)
		binary.Write(&b, binary.BigEndian, uint32(len(t.data)))
		binary.Write(&b, binary.BigEndian, t.bits)
	}
	for _, t := range d.tracks {
		b.Write(t.data)
	}

	return b.Bytes()
}

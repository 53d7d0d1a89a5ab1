// Package rom holds the Kickstart ROM image.
package rom

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// the ROM is mapped from this address. a 256K ROM is mirrored to fill the
	// 512K area
	Origin = 0xf80000

	Size256K = 256 * 1024
	Size512K = 512 * 1024
)

var ErrSize = errors.New("rom: image must be 256K or 512K")

type ROM struct {
	label string
	data  []uint8
	mask  uint32
}

// Create returns a ROM from a Kickstart image. A nil image creates a ROM
// that reads as all ones
func Create(label string, data []uint8) (*ROM, error) {
	if data == nil {
		data = make([]uint8, Size256K)
		for i := range data {
			data[i] = 0xff
		}
		label = "none"
	}
	if len(data) != Size256K && len(data) != Size512K {
		return nil, fmt.Errorf("%w: %d bytes", ErrSize, len(data))
	}
	return &ROM{
		label: label,
		data:  data,
		mask:  uint32(len(data) - 1),
	}, nil
}

func (r *ROM) Label() string {
	return r.label
}

// Version returns the version and revision of a Kickstart ROM
func (r *ROM) Version() (int, int) {
	return int(binary.BigEndian.Uint16(r.data[0x0c:])), int(binary.BigEndian.Uint16(r.data[0x0e:]))
}

func (r *ROM) String() string {
	v, rev := r.Version()
	return fmt.Sprintf("%s: %dK, version %d.%d", r.label, len(r.data)/1024, v, rev)
}

func (r *ROM) Read8(idx uint32) (uint8, error) {
	return r.data[idx&r.mask], nil
}

func (r *ROM) Read16(idx uint32) (uint16, error) {
	idx &= r.mask &^ 1
	return binary.BigEndian.Uint16(r.data[idx:]), nil
}

func (r *ROM) Write8(idx uint32, _ uint8) error {
	return fmt.Errorf("rom: write to %06x", idx)
}

func (r *ROM) Write16(idx uint32, _ uint16) error {
	return fmt.Errorf("rom: write to %06x", idx)
}

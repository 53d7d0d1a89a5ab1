package ram

import (
	"fmt"
	"strings"
)

// RAM is a block of memory. The size must be a power of two and addresses
// outside the block are mirrored.
type RAM struct {
	ctx   Context
	label string
	data  []uint8
	mask  uint32
}

type Context interface {
	Rand8Bit() uint8
}

func Create(ctx Context, label string, size int) *RAM {
	if size&(size-1) != 0 {
		panic(fmt.Sprintf("ram: %s size %#x is not a power of two", label, size))
	}
	return &RAM{
		ctx:   ctx,
		label: label,
		data:  make([]uint8, size),
		mask:  uint32(size - 1),
	}
}

func (r *RAM) Reset(random bool) {
	if random {
		for i := range len(r.data) {
			r.data[i] = r.ctx.Rand8Bit()
		}
	} else {
		clear(r.data)
	}
}

// Dump returns a hex dump of n bytes starting at idx
func (r *RAM) Dump(idx uint32, n int) string {
	var s strings.Builder
	for i := 0; i < n; i += 16 {
		j := idx + uint32(i)
		fmt.Fprintf(&s, "%06x :", j)
		for k := range min(16, n-i) {
			fmt.Fprintf(&s, " %02x", r.data[(j+uint32(k))&r.mask])
		}
		s.WriteString("\n")
	}
	return strings.TrimSuffix(s.String(), "\n")
}

func (r *RAM) Label() string {
	return r.label
}

func (r *RAM) Size() int {
	return len(r.data)
}

// Data returns the underlying memory. Used by the save state
func (r *RAM) Data() []uint8 {
	return r.data
}

func (r *RAM) Read8(idx uint32) (uint8, error) {
	return r.data[idx&r.mask], nil
}

func (r *RAM) Write8(idx uint32, data uint8) error {
	r.data[idx&r.mask] = data
	return nil
}

func (r *RAM) Read16(idx uint32) (uint16, error) {
	return r.Peek16(idx), nil
}

func (r *RAM) Write16(idx uint32, data uint16) error {
	r.Poke16(idx, data)
	return nil
}

// Peek16 and Poke16 are the DMA access functions. the low bit of the index
// is ignored
func (r *RAM) Peek16(idx uint32) uint16 {
	idx &= r.mask &^ 1
	return uint16(r.data[idx])<<8 | uint16(r.data[idx+1])
}

func (r *RAM) Poke16(idx uint32, data uint16) {
	idx &= r.mask &^ 1
	r.data[idx] = uint8(data >> 8)
	r.data[idx+1] = uint8(data)
}

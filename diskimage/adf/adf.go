// Package adf reads and writes the AmigaDOS filesystem of a double density
// disk image. Both the original (OFS) and fast (FFS) filesystems are
// supported. International mode and directory caches are not.
package adf

import (
	"errors"
	"fmt"
	"time"
)

const (
	BlockSize     = 512
	Blocks        = 1760
	ImageSize     = Blocks * BlockSize
	BootBlockSize = 2 * BlockSize
	RootBlock     = Blocks / 2
	HashSize      = 72

	ofsPayload = BlockSize - ofsDataOffset
	ffsPayload = BlockSize

	// number of bitmap longwords in a bitmap block
	bitmapLongs = BlockSize/4 - 1
)

// sentinel errors
var (
	ErrImageSize  = errors.New("adf: image is not 901120 bytes")
	ErrNotDOS     = errors.New("adf: not a DOS disk")
	ErrChecksum   = errors.New("adf: block checksum")
	ErrBlockType  = errors.New("adf: unexpected block type")
	ErrBlockRange = errors.New("adf: block out of range")
	ErrNotFound   = errors.New("adf: not found")
	ErrExists     = errors.New("adf: already exists")
	ErrNotDir     = errors.New("adf: not a directory")
	ErrIsDir      = errors.New("adf: is a directory")
	ErrDiskFull   = errors.New("adf: disk full")
	ErrName       = errors.New("adf: invalid name")
	ErrCorrupt    = errors.New("adf: corrupt file")
)

// Volume is a filesystem over a disk image. The image is modified in place
type Volume struct {
	img []byte

	// fast filesystem data blocks have no header
	ffs bool

	// the source of timestamps for new and modified blocks
	Clock func() time.Time
}

// Open a volume in an existing image. The root block is validated
func Open(img []byte) (*Volume, error) {
	if len(img) != ImageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageSize, len(img))
	}
	if string(img[:3]) != "DOS" {
		return nil, ErrNotDOS
	}

	v := &Volume{
		img:   img,
		ffs:   img[3]&0x01 == 0x01,
		Clock: time.Now,
	}

	_, err := v.header(RootBlock, stRoot)
	if err != nil {
		return nil, fmt.Errorf("root: %w", err)
	}

	return v, nil
}

// Format creates a new empty volume with the specified name. The image is
// allocated if img is nil
func Format(img []byte, name string, ffs bool) (*Volume, error) {
	if img == nil {
		img = make([]byte, ImageSize)
	}
	if len(img) != ImageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrImageSize, len(img))
	}
	if err := validName(name); err != nil {
		return nil, err
	}
	clear(img)

	v := &Volume{
		img:   img,
		ffs:   ffs,
		Clock: time.Now,
	}

	copy(img, "DOS")
	if ffs {
		img[3] = 0x01
	}

	now := v.Clock()

	root := v.block(RootBlock)
	root.setLong(lType, tHeader)
	root.setLong(lHTSize, HashSize)
	root.setLong(lBMFlag, 0xffffffff)
	root.setLong(lBMPages, RootBlock+1)
	root.setDate(lDays, now)
	root.setDate(lVDays, now)
	root.setDate(lCDays, now)
	root.setName(name)
	root.setLong(lSecType, stRoot)
	v.commit(RootBlock)

	// every block starts free
	bm := v.block(RootBlock + 1)
	for i := 1; i <= bitmapLongs; i++ {
		bm.setLong(i, 0)
	}
	for n := 2; n < Blocks; n++ {
		v.setFree(n, true)
	}
	v.setFree(RootBlock, false)
	v.setFree(RootBlock+1, false)

	v.commitBoot()

	return v, nil
}

// Image returns the underlying disk image
func (v *Volume) Image() []byte {
	return v.img
}

// FFS returns true if the volume uses the fast filesystem
func (v *Volume) FFS() bool {
	return v.ffs
}

// Name of the volume
func (v *Volume) Name() string {
	return v.block(RootBlock).name()
}

func (v *Volume) block(n int) block {
	return block(v.img[n*BlockSize : (n+1)*BlockSize])
}

// header returns the header block after checking the checksum, the primary
// and secondary block types
func (v *Volume) header(n int, secType ...uint32) (block, error) {
	if n < 2 || n >= Blocks {
		return nil, fmt.Errorf("%w: %d", ErrBlockRange, n)
	}
	b := v.block(n)
	if Checksum(b, lChecksum*4) != b.long(lChecksum) {
		return nil, fmt.Errorf("%w: block %d", ErrChecksum, n)
	}
	if b.long(lType) != tHeader && b.long(lType) != tList {
		return nil, fmt.Errorf("%w: block %d is type %d", ErrBlockType, n, b.long(lType))
	}
	if len(secType) == 0 {
		return b, nil
	}
	for _, s := range secType {
		if b.long(lSecType) == s {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: block %d has secondary type %d", ErrBlockType, n, int32(b.long(lSecType)))
}

// commit recalculates the checksum of a block. all block changes other than
// bitmap and FFS data blocks pass through here
func (v *Volume) commit(n int) {
	b := v.block(n)
	b.setLong(lChecksum, Checksum(b, lChecksum*4))
}

func (v *Volume) commitBitmap() {
	bm := v.block(RootBlock + 1)
	bm.setLong(0, Checksum(bm, 0))
}

func (v *Volume) commitBoot() {
	b := v.img[:BootBlockSize]
	block(b).setLong(1, BootChecksum(b))
}

// the bitmap covers every block except the two boot blocks
func bitmapPos(n int) (int, uint32) {
	n -= 2
	return 1 + n/32, 1 << (n % 32)
}

func (v *Volume) isFree(n int) bool {
	i, m := bitmapPos(n)
	return v.block(RootBlock+1).long(i)&m == m
}

func (v *Volume) setFree(n int, free bool) {
	bm := v.block(RootBlock + 1)
	i, m := bitmapPos(n)
	if free {
		bm.setLong(i, bm.long(i)|m)
	} else {
		bm.setLong(i, bm.long(i)&^m)
	}
	v.commitBitmap()
}

// allocate finds a free block. the search starts after the root block and
// wraps around to the start of the disk
func (v *Volume) allocate() (int, error) {
	for n := RootBlock + 2; n < Blocks; n++ {
		if v.isFree(n) {
			v.setFree(n, false)
			clear(v.block(n))
			return n, nil
		}
	}
	for n := 2; n < RootBlock; n++ {
		if v.isFree(n) {
			v.setFree(n, false)
			clear(v.block(n))
			return n, nil
		}
	}
	return 0, ErrDiskFull
}

// FreeBlocks returns the number of unallocated blocks
func (v *Volume) FreeBlocks() int {
	var ct int
	for n := 2; n < Blocks; n++ {
		if v.isFree(n) {
			ct++
		}
	}
	return ct
}

func validName(name string) error {
	if len(name) == 0 || len(name) > maxName {
		return fmt.Errorf("%w: %q", ErrName, name)
	}
	for _, c := range []byte(name) {
		if c == ':' || c == '/' || c < 0x20 {
			return fmt.Errorf("%w: %q", ErrName, name)
		}
	}
	return nil
}

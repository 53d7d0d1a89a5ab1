package adf

import (
	"fmt"
)

// dataBlocks returns the data block pointers of a file in order. the header
// block and each extension block hold up to HashSize pointers, stored in
// reverse order
func (v *Volume) dataBlocks(hdr block) ([]int, error) {
	var blocks []int

	b := hdr
	for ct := 0; ; ct++ {
		if ct > Blocks {
			return nil, fmt.Errorf("%w: extension chain", ErrCorrupt)
		}
		high := int(b.long(lHighSeq))
		if high > HashSize {
			return nil, fmt.Errorf("%w: block count %d", ErrCorrupt, high)
		}
		for i := range high {
			blocks = append(blocks, int(b.long(lHashTable+HashSize-1-i)))
		}

		ext := int(b.long(lExtension))
		if ext == 0 {
			break
		}

		var err error
		b, err = v.header(ext, stFile)
		if err != nil {
			return nil, err
		}
		if b.long(lType) != tList {
			return nil, fmt.Errorf("%w: block %d is not an extension block", ErrBlockType, ext)
		}
	}

	return blocks, nil
}

// ReadFile returns the contents of a file
func (v *Volume) ReadFile(path string) ([]byte, error) {
	n, err := v.Lookup(path)
	if err != nil {
		return nil, err
	}
	hdr, err := v.header(n, stUserDir, stFile)
	if err != nil {
		return nil, err
	}
	if hdr.long(lSecType) == stUserDir {
		return nil, fmt.Errorf("%w: %s", ErrIsDir, path)
	}

	size := int(hdr.long(lByteSize))
	blocks, err := v.dataBlocks(hdr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	data := make([]byte, 0, size)
	for seq, d := range blocks {
		if d < 2 || d >= Blocks {
			return nil, fmt.Errorf("%s: %w: %d", path, ErrBlockRange, d)
		}
		if len(data) >= size {
			break
		}

		b := v.block(d)
		if v.ffs {
			data = append(data, b[:min(ffsPayload, size-len(data))]...)
			continue
		}

		if Checksum(b, lChecksum*4) != b.long(lChecksum) {
			return nil, fmt.Errorf("%s: %w: data block %d", path, ErrChecksum, d)
		}
		if b.long(lType) != tData || int(b.long(lHeaderKey)) != n || int(b.long(lDataSeqNum)) != seq+1 {
			return nil, fmt.Errorf("%s: %w: data block %d", path, ErrCorrupt, d)
		}
		sz := int(b.long(lDataSize))
		if sz > ofsPayload {
			return nil, fmt.Errorf("%s: %w: data size %d", path, ErrCorrupt, sz)
		}
		data = append(data, b[ofsDataOffset:ofsDataOffset+min(sz, size-len(data))]...)
	}

	if len(data) != size {
		return nil, fmt.Errorf("%s: %w: read %d of %d bytes", path, ErrCorrupt, len(data), size)
	}

	return data, nil
}

// WriteFile creates a new file. It is an error for the file to already exist
func (v *Volume) WriteFile(path string, data []byte) error {
	dir, name, err := v.parent(path)
	if err != nil {
		return err
	}

	payload := ofsPayload
	if v.ffs {
		payload = ffsPayload
	}
	count := (len(data) + payload - 1) / payload

	// check for space before changing anything
	need := 1 + count
	if count > HashSize {
		need += (count - 1) / HashSize
	}
	if need > v.FreeBlocks() {
		return fmt.Errorf("%w: %s needs %d blocks", ErrDiskFull, path, need)
	}

	hdrNum, err := v.allocate()
	if err != nil {
		return err
	}

	// allocate data blocks
	blocks := make([]int, count)
	for i := range blocks {
		blocks[i], err = v.allocate()
		if err != nil {
			return err
		}
	}

	// write data blocks
	for i, d := range blocks {
		chunk := data[i*payload : min(len(data), (i+1)*payload)]
		b := v.block(d)
		if v.ffs {
			copy(b, chunk)
			continue
		}
		b.setLong(lType, tData)
		b.setLong(lHeaderKey, uint32(hdrNum))
		b.setLong(lDataSeqNum, uint32(i+1))
		b.setLong(lDataSize, uint32(len(chunk)))
		if i+1 < len(blocks) {
			b.setLong(lDataNextData, uint32(blocks[i+1]))
		}
		copy(b[ofsDataOffset:], chunk)
		v.commit(d)
	}

	// header and extension blocks each take HashSize pointers
	hdr := v.block(hdrNum)
	hdr.setLong(lType, tHeader)
	hdr.setLong(lHeaderKey, uint32(hdrNum))
	if len(blocks) > 0 {
		hdr.setLong(lFirstData, uint32(blocks[0]))
	}
	hdr.setLong(lByteSize, uint32(len(data)))
	hdr.setDate(lDays, v.Clock())
	hdr.setName(name)
	hdr.setLong(lSecType, stFile)

	prev := hdrNum
	for i := 0; ; i += HashSize {
		cur := v.block(prev)
		n := min(HashSize, len(blocks)-i)
		cur.setLong(lHighSeq, uint32(n))
		for j := range n {
			cur.setLong(lHashTable+HashSize-1-j, uint32(blocks[i+j]))
		}

		if i+HashSize >= len(blocks) {
			break
		}

		ext, err := v.allocate()
		if err != nil {
			return err
		}
		e := v.block(ext)
		e.setLong(lType, tList)
		e.setLong(lHeaderKey, uint32(ext))
		e.setLong(lParent, uint32(hdrNum))
		e.setLong(lSecType, stFile)
		cur.setLong(lExtension, uint32(ext))
		if prev != hdrNum {
			v.commit(prev)
		}
		prev = ext
	}
	if prev != hdrNum {
		v.commit(prev)
	}

	v.link(dir, hdrNum, name)

	return nil
}

package custom

import (
	"fmt"

	"github.com/jetsetilly/amichip/logger"
)

// DSKSyncHoldTicks is the number of ticks the WORDEQUAL bit of DSKBYTR stays
// set after the sync word has passed the head. The value is empirical.
const DSKSyncHoldTicks = 10

// DSKLEN bits
const (
	dsklenDMAEN = 0x8000
	dsklenWRITE = 0x4000
	dsklenMask  = 0x3fff
)

// the number of words that can be collected by a write DMA. this is more
// than enough for a full track
const diskWriteBufLen = 0x4000

// Disk is the state of disk DMA.
type Disk struct {
	PT   uint32
	LEN  uint16
	SYNC uint16

	// DSKLEN must be written twice with the DMA enable bit set to start DMA
	Armed  bool
	Active bool
	Write  bool
	Count  int32

	// read DMA is waiting for the sync word
	Syncing bool

	// the most recent word and byte from the drive
	DATR      uint16
	Byte      uint8
	ByteReady bool
	WordEqual int32

	// words from the drive waiting for a DMA slot
	FIFO    [4]uint16
	FIFOLen int32

	WriteBuf [diskWriteBufLen]uint16
	WriteLen int32
}

// DiskString returns a summary of disk DMA for debugging
func (cst *Custom) DiskString() string {
	dsk := &cst.State.Disk
	return fmt.Sprintf("Disk DMA: active=%v write=%v syncing=%v pt=%#06x count=%d sync=%#04x fifo=%d",
		dsk.Active, dsk.Write, dsk.Syncing, dsk.PT, dsk.Count, dsk.SYNC, dsk.FIFOLen)
}

func (cst *Custom) writeDSKLEN(v uint16) {
	dsk := &cst.State.Disk
	dsk.LEN = v

	if v&dsklenDMAEN == 0 {
		dsk.Armed = false
		dsk.Active = false
		return
	}

	if !dsk.Armed {
		dsk.Armed = true
		return
	}

	dsk.Armed = false
	dsk.Active = true
	dsk.Write = v&dsklenWRITE != 0
	dsk.Count = int32(v & dsklenMask)
	dsk.FIFOLen = 0
	dsk.WriteLen = 0
	dsk.Syncing = !dsk.Write && cst.State.ADKCON&ADKWordSyn != 0

	if dsk.Count == 0 {
		cst.diskFinish()
	}
}

func (cst *Custom) readDSKBYTR() uint16 {
	dsk := &cst.State.Disk
	v := uint16(dsk.Byte)
	if dsk.ByteReady {
		v |= 0x8000
	}
	if dsk.Active && cst.dmaEnabled(DMADisk) {
		v |= 0x4000
	}
	if dsk.Write {
		v |= 0x2000
	}
	if dsk.WordEqual > 0 {
		v |= 0x1000
	}
	return v
}

// DiskWord is called every time a word of MFM data passes the drive head
func (cst *Custom) DiskWord(w uint16) {
	dsk := &cst.State.Disk
	dsk.DATR = w
	dsk.Byte = uint8(w)
	dsk.ByteReady = true

	if w == dsk.SYNC {
		cst.Interrupt(IntDSKSYN)
		dsk.WordEqual = DSKSyncHoldTicks
		if dsk.Syncing {
			dsk.Syncing = false
			return
		}
	}

	if !dsk.Active || dsk.Write || dsk.Syncing || !cst.dmaEnabled(DMADisk) {
		return
	}

	if dsk.FIFOLen >= int32(len(dsk.FIFO)) {
		logger.Logf(cst.ctx, "disk", "DMA FIFO overflow (%s)", cst.positionString())
		return
	}
	dsk.FIFO[dsk.FIFOLen] = w
	dsk.FIFOLen++
}

func (cst *Custom) diskSlot(cc int32) bool {
	if cc != 7 && cc != 9 && cc != 11 {
		return false
	}

	dsk := &cst.State.Disk
	if !dsk.Active || !cst.dmaEnabled(DMADisk) {
		return false
	}

	if dsk.Write {
		w := cst.dmaRead(BusDisk, dsk.PT)
		if dsk.WriteLen < diskWriteBufLen {
			dsk.WriteBuf[dsk.WriteLen] = w
			dsk.WriteLen++
		}
	} else {
		if dsk.FIFOLen == 0 {
			return false
		}
		cst.dmaWrite(BusDisk, dsk.PT, dsk.FIFO[0])
		copy(dsk.FIFO[:], dsk.FIFO[1:])
		dsk.FIFOLen--
	}

	dsk.PT += 2
	dsk.Count--
	if dsk.Count <= 0 {
		cst.diskFinish()
	}

	return true
}

func (cst *Custom) diskFinish() {
	dsk := &cst.State.Disk
	dsk.Active = false

	if dsk.Write && dsk.WriteLen > 0 && cst.disk != nil {
		data := make([]byte, dsk.WriteLen*2)
		for i, w := range dsk.WriteBuf[:dsk.WriteLen] {
			data[i*2] = uint8(w >> 8)
			data[i*2+1] = uint8(w)
		}
		if err := cst.disk.WriteTrack(data); err != nil {
			logger.Log(cst.ctx, "disk", err)
		}
	}
	dsk.WriteLen = 0

	cst.Interrupt(IntDSKBLK)
}

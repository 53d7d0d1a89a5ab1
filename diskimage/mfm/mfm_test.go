package mfm_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/jetsetilly/amichip/diskimage/mfm"
	"github.com/jetsetilly/amichip/test"
)

func randomData(r *rand.Rand, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(r.IntN(256))
	}
	return b
}

func TestAddClocks(t *testing.T) {
	// zero data produces the familiar 0xaa pattern
	b := []byte{0x00, 0x00}
	prev := mfm.AddClocks(b, 0)
	test.ExpectEquality(t, b[0], uint8(0xaa))
	test.ExpectEquality(t, b[1], uint8(0xaa))
	test.ExpectEquality(t, prev, uint8(0))

	// a previous one bit suppresses the first clock bit
	b = []byte{0x00}
	mfm.AddClocks(b, 1)
	test.ExpectEquality(t, b[0], uint8(0x2a))

	// all ones data has no clock bits
	b = []byte{0x55}
	prev = mfm.AddClocks(b, 0)
	test.ExpectEquality(t, b[0], uint8(0x55))
	test.ExpectEquality(t, prev, uint8(1))
}

func TestSectorRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))

	for n := range 50 {
		data := randomData(r, mfm.SectorSize)
		trk := r.IntN(160)
		sec := r.IntN(mfm.SectorsPerTrack)

		buf := make([]byte, mfm.SectorMFMSize)
		mfm.EncodeSector(buf, trk, sec, data, 0)

		test.ExpectEquality(t, binary.BigEndian.Uint16(buf[4:]), uint16(mfm.Sync), n)
		test.ExpectEquality(t, binary.BigEndian.Uint16(buf[6:]), uint16(mfm.Sync), n)

		dtrk, dsec, ddata, err := mfm.DecodeSector(buf[8:])
		test.DemandSuccess(t, err, n)
		test.ExpectEquality(t, dtrk, trk, n)
		test.ExpectEquality(t, dsec, sec, n)
		test.ExpectSuccess(t, bytes.Equal(ddata, data), n)
	}
}

func TestTrackRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	data := randomData(r, mfm.TrackDataSize)

	enc := mfm.EncodeTrack(37, data)
	test.ExpectEquality(t, len(enc), mfm.TrackMFMSize)

	dec, err := mfm.DecodeTrack(37, enc)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, bytes.Equal(dec, data))

	// rotating the track buffer so that a sector wraps around the end does
	// not affect decoding
	rot := append(append([]byte{}, enc[500:]...), enc[:500]...)
	dec, err = mfm.DecodeTrack(37, rot)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, bytes.Equal(dec, data))

	// sectors for another track are rejected
	_, err = mfm.DecodeTrack(38, enc)
	test.ExpectSuccess(t, errors.Is(err, mfm.ErrTrack))
}

func TestDecodeErrors(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	data := randomData(r, mfm.TrackDataSize)
	enc := mfm.EncodeTrack(2, data)

	// corrupt a data byte of the first sector
	bad := append([]byte{}, enc...)
	bad[100] ^= 0x11
	_, err := mfm.DecodeTrack(2, bad)
	test.ExpectSuccess(t, errors.Is(err, mfm.ErrDataSum))

	// corrupt the header of the first sector
	bad = append([]byte{}, enc...)
	bad[9] ^= 0x04
	_, err = mfm.DecodeTrack(2, bad)
	test.ExpectFailure(t, err)

	// a duplicated sector
	bad = append([]byte{}, enc...)
	copy(bad[mfm.SectorMFMSize:], enc[:mfm.SectorMFMSize])
	_, err = mfm.DecodeTrack(2, bad)
	test.ExpectSuccess(t, errors.Is(err, mfm.ErrDuplicate))

	// no sectors at all
	_, err = mfm.DecodeTrack(2, make([]byte, mfm.TrackMFMSize))
	test.ExpectSuccess(t, errors.Is(err, mfm.ErrMissingSector))
}

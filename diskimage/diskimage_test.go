package diskimage_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/jetsetilly/amichip/diskimage"
	"github.com/jetsetilly/amichip/diskimage/adf"
	"github.com/jetsetilly/amichip/diskimage/mfm"
	"github.com/jetsetilly/amichip/test"
)

func image() []byte {
	img := make([]byte, adf.ImageSize)
	for i := range img {
		img[i] = byte(i/mfm.SectorSize + i)
	}
	return img
}

func TestFingerprint(t *testing.T) {
	f, err := diskimage.Fingerprint(image())
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, f, diskimage.FormatADF)

	f, err = diskimage.Fingerprint([]byte("DMS!"))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, f, diskimage.FormatDMS)

	f, err = diskimage.Fingerprint([]byte("UAE-1ADF\x00\x00\x00\x00"))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, f, diskimage.FormatExtended)

	_, err = diskimage.Fingerprint(make([]byte, 1000))
	test.ExpectSuccess(t, errors.Is(err, diskimage.ErrFormat))
}

func TestADFTracks(t *testing.T) {
	img := image()
	d, err := diskimage.Load("test.adf", img)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, d.Cylinders(), diskimage.Cylinders)
	test.ExpectEquality(t, d.WriteProtected(), false)

	m, err := d.ReadMFMTrack(40, 1)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(m), mfm.TrackMFMSize)

	data, err := mfm.DecodeTrack(81, m)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, bytes.Equal(data, img[81*mfm.TrackDataSize:82*mfm.TrackDataSize]))

	// writing a track back changes the sector data
	data[0] ^= 0xff
	test.DemandSuccess(t, d.WriteMFMTrack(40, 1, mfm.EncodeTrack(81, data)))
	test.ExpectEquality(t, d.Modified(), true)
	out := d.Bytes()
	test.ExpectEquality(t, d.Modified(), false)
	test.ExpectEquality(t, out[81*mfm.TrackDataSize], img[81*mfm.TrackDataSize]^0xff)

	// a track for the wrong position is refused
	err = d.WriteMFMTrack(40, 0, mfm.EncodeTrack(81, data))
	test.ExpectSuccess(t, errors.Is(err, diskimage.ErrTrackFormat))

	_, err = d.ReadMFMTrack(diskimage.MaxCylinders, 0)
	test.ExpectSuccess(t, errors.Is(err, diskimage.ErrNoTrack))
}

func TestADFShort(t *testing.T) {
	d, err := diskimage.NewADF("short", make([]byte, 2*mfm.TrackDataSize), false)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, d.Cylinders(), diskimage.Cylinders)
	test.ExpectEquality(t, len(d.Bytes()), adf.ImageSize)

	_, err = diskimage.NewADF("bad", make([]byte, mfm.TrackDataSize), false)
	test.ExpectSuccess(t, errors.Is(err, diskimage.ErrFormat))
}

func TestWriteProtected(t *testing.T) {
	d, err := diskimage.NewADF("protected", image(), true)
	test.DemandSuccess(t, err)
	m, err := d.ReadMFMTrack(0, 0)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, errors.Is(d.WriteMFMTrack(0, 0, m), diskimage.ErrWriteProtected))
	test.ExpectSuccess(t, errors.Is(diskimage.Save(d, t.TempDir()+"/x.adf"), diskimage.ErrWriteProtected))
}

func TestExtended(t *testing.T) {
	img := image()
	a, err := diskimage.NewADF("flat", img, false)
	test.DemandSuccess(t, err)

	x := diskimage.ExtendedFromADF(a)

	// replace one track with a non-standard bitstream
	raw := bytes.Repeat([]byte{0x92, 0x49, 0x24}, 4000)
	test.DemandSuccess(t, x.WriteMFMTrack(2, 0, raw))
	typ, err := x.TrackType(2, 0)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, typ, diskimage.TrackRaw)

	// and reparse the serialised form
	y, err := diskimage.Load("ext", x.Bytes())
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, y.Cylinders(), diskimage.Cylinders)

	m, err := y.ReadMFMTrack(2, 0)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, bytes.Equal(m, raw))

	m, err = y.ReadMFMTrack(2, 1)
	test.DemandSuccess(t, err)
	data, err := mfm.DecodeTrack(5, m)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, bytes.Equal(data, img[5*mfm.TrackDataSize:6*mfm.TrackDataSize]))

	// a standard track written to a raw track converts it back
	test.DemandSuccess(t, y.WriteMFMTrack(2, 0, mfm.EncodeTrack(4, data)))
	typ, err = y.(*diskimage.ExtendedADF).TrackType(2, 0)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, typ, diskimage.TrackStandard)
}

func TestExtendedErrors(t *testing.T) {
	_, err := diskimage.NewExtendedADF("x", []byte("UAE-1ADF\x00\x00\x00\x01"), false)
	test.ExpectSuccess(t, errors.Is(err, diskimage.ErrFormat))

	b := []byte("UAE-1ADF\x00\x00\x00\x01\x00\x00\x00\x07\x00\x00\x00\x00\x00\x00\x00\x00")
	_, err = diskimage.NewExtendedADF("x", b, false)
	test.ExpectSuccess(t, errors.Is(err, diskimage.ErrFormat))
}

package diskimage

import (
	"fmt"

	"github.com/jetsetilly/amichip/diskimage/adf"
	"github.com/jetsetilly/amichip/diskimage/mfm"
)

// the amount of data in one cylinder of a flat image
const cylinderBytes = Heads * mfm.TrackDataSize

// ADF is a flat sector image. MFM tracks are synthesised when they are read
// and decoded back to sectors when they are written.
type ADF struct {
	label     string
	data      []byte
	protected bool
	modified  bool
}

// NewADF creates a flat disk image. Images shorter than a full disk are
// padded with zeros and images with a partial cylinder are rejected.
func NewADF(label string, data []byte, protected bool) (*ADF, error) {
	if len(data)%cylinderBytes != 0 || len(data) > MaxCylinders*cylinderBytes {
		return nil, fmt.Errorf("%w: %d bytes is not a flat image", ErrFormat, len(data))
	}

	d := make([]byte, max(len(data), adf.ImageSize))
	copy(d, data)

	return &ADF{
		label:     label,
		data:      d,
		protected: protected,
	}, nil
}

func (d *ADF) Label() string {
	return d.label
}

func (d *ADF) Cylinders() int {
	return len(d.data) / cylinderBytes
}

func (d *ADF) track(cyl int, head int) ([]byte, error) {
	if cyl < 0 || cyl >= d.Cylinders() || head < 0 || head >= Heads {
		return nil, fmt.Errorf("%w: cylinder %d head %d", ErrNoTrack, cyl, head)
	}
	i := trackIndex(cyl, head) * mfm.TrackDataSize
	return d.data[i : i+mfm.TrackDataSize], nil
}

func (d *ADF) ReadMFMTrack(cyl int, head int) ([]byte, error) {
	t, err := d.track(cyl, head)
	if err != nil {
		return nil, err
	}
	return mfm.EncodeTrack(trackIndex(cyl, head), t), nil
}

func (d *ADF) WriteMFMTrack(cyl int, head int, m []byte) error {
	if d.protected {
		return ErrWriteProtected
	}
	t, err := d.track(cyl, head)
	if err != nil {
		return err
	}
	data, err := mfm.DecodeTrack(trackIndex(cyl, head), m)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTrackFormat, err)
	}
	copy(t, data)
	d.modified = true
	return nil
}

func (d *ADF) WriteProtected() bool {
	return d.protected
}

func (d *ADF) Modified() bool {
	return d.modified
}

func (d *ADF) Bytes() []byte {
	d.modified = false
	return d.data
}

package diskimage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jetsetilly/amichip/diskimage/dms"
)

// Format names the image type that was detected by Fingerprint.
type Format string

const (
	FormatADF      Format = "ADF"
	FormatExtended Format = "extended ADF"
	FormatDMS      Format = "DMS"
)

// Fingerprint identifies the image type from its content.
func Fingerprint(data []byte) (Format, error) {
	switch {
	case dms.Is(data):
		return FormatDMS, nil
	case IsExtended(data):
		return FormatExtended, nil
	case len(data) > 0 && len(data)%cylinderBytes == 0 && len(data) <= MaxCylinders*cylinderBytes:
		return FormatADF, nil
	}
	return "", fmt.Errorf("%w: %d bytes", ErrFormat, len(data))
}

// Load creates a DiskFile from image data. DMS archives are unpacked into a
// write protected flat image.
func Load(label string, data []byte) (DiskFile, error) {
	f, err := Fingerprint(data)
	if err != nil {
		return nil, err
	}

	switch f {
	case FormatDMS:
		img, err := dms.Unpack(data)
		if err != nil {
			return nil, err
		}
		return NewADF(label, img, true)
	case FormatExtended:
		return NewExtendedADF(label, data, false)
	}

	return NewADF(label, data, false)
}

// LoadFile reads an image from disk. Files without write permission are
// loaded as write protected disks.
func LoadFile(path string) (DiskFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("diskimage: %w", err)
	}

	d, err := Load(filepath.Base(path), data)
	if err != nil {
		return nil, err
	}

	if fi, err := os.Stat(path); err == nil && fi.Mode().Perm()&0o200 == 0 {
		switch d := d.(type) {
		case *ADF:
			d.protected = true
		case *ExtendedADF:
			d.protected = true
		}
	}

	return d, nil
}

// Save writes a modified disk back to the file system. DMS archives and other
// write protected disks are never saved.
func Save(d DiskFile, path string) error {
	if d.WriteProtected() {
		return ErrWriteProtected
	}
	if err := os.WriteFile(path, d.Bytes(), 0o644); err != nil {
		return fmt.Errorf("diskimage: %w", err)
	}
	return nil
}

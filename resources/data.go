package resources

import (
	"bufio"
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Read returns the contents of the named resource. A resource that doesn't
// exist is not an error, the returned data is nil
func Read(name string) ([]byte, error) {
	pth, err := JoinPath(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(pth)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// Lines returns the non-empty lines of the named resource with surrounding
// space trimmed
func Lines(name string) ([]string, error) {
	data, err := Read(name)
	if err != nil {
		return nil, err
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if s != "" {
			lines = append(lines, s)
		}
	}
	return lines, scanner.Err()
}

// Write replaces the named resource with data. The data is written to a
// temporary file first so that a failed write never leaves a partial
// resource behind
func Write(name string, data []byte) error {
	pth, err := JoinPath(name)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(pth), filepath.Base(pth)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, pth)
}

package resources

import (
	"os"
	"path/filepath"
	"strings"
)

const portableDir = "amichip_UserData"

// portable returns the portable resource directory if a file named
// portable.txt sits alongside the executable
func portable() (string, bool) {
	exe, err := os.Executable()
	if err != nil {
		return "", false
	}
	dir := filepath.Dir(exe)
	if _, err := os.Stat(filepath.Join(dir, "portable.txt")); err != nil {
		return "", false
	}
	return filepath.Join(dir, portableDir), true
}

func base() (string, error) {
	if p, ok := portable(); ok {
		return p, nil
	}
	return resourcePath()
}

// JoinPath returns the path to the named resource. Directories leading up
// to the resource are created if necessary but the resource itself is not
// touched.
func JoinPath(path ...string) (string, error) {
	b, err := base()
	if err != nil {
		return "", err
	}

	p := filepath.Join(path...)
	if !strings.HasPrefix(p, b) {
		p = filepath.Join(b, p)
	}

	if err := os.MkdirAll(filepath.Dir(p), 0700); err != nil {
		return "", err
	}

	return p, nil
}

//go:build release

package resources

import (
	"os"
	"path/filepath"
)

// resources are kept in the user's configuration directory for release
// builds. on linux that's usually ~/.config/amichip
func resourcePath() (string, error) {
	p, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(p, "amichip"), nil
}

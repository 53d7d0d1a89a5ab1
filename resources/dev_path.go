//go:build !release

package resources

// resources are kept in the working directory for development builds
func resourcePath() (string, error) {
	return ".amichip", nil
}

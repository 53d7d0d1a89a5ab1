package test

import "strings"

// CompareWriter is an implementation of the io.Writer interface. It should be
// used to capture output and to compare with predefined strings
type CompareWriter struct {
	buffer strings.Builder
}

// Write implements the io.Writer interface
func (tw *CompareWriter) Write(p []byte) (n int, err error) {
	return tw.buffer.Write(p)
}

// Clear string empties the write buffer
func (tw *CompareWriter) Clear() {
	tw.buffer.Reset()
}

// Compare buffered output with predefined/example string
func (tw *CompareWriter) Compare(s string) bool {
	return tw.buffer.String() == s
}

// String returns the buffered output
func (tw *CompareWriter) String() string {
	return tw.buffer.String()
}

package logger

import (
	"fmt"
	"io"
)

// only one central log for the entire application
var central *logger

// maximum number of entries in the central logger
const maxCentral = 256

// MaxEcho is the number of times an identical entry is echoed before further
// repeats are only counted
const MaxEcho = 8

func init() {
	central = newLogger(maxCentral)
}

// Log adds an entry to the central logger
func Log(perm Permission, tag string, detail any) {
	if perm == Allow || perm.AllowLogging() {
		switch d := detail.(type) {
		case error:
			central.log(tag, d.Error())
		case string:
			central.log(tag, d)
		default:
			central.log(tag, fmt.Sprintf("%v", d))
		}
	}
}

// Logf adds a formatted entry to the central logger
func Logf(perm Permission, tag string, detail string, args ...any) {
	if perm == Allow || perm.AllowLogging() {
		central.log(tag, fmt.Sprintf(detail, args...))
	}
}

// Clear all entries from central logger
func Clear() {
	central.clear()
}

// Write contents of central logger to io.Writer
func Write(output io.Writer) {
	central.write(output)
}

// Tail writes the last N entries to io.Writer. A negative number writes all
// entries
func Tail(output io.Writer, number int) {
	central.tail(output, number)
}

// SetEcho prints new log entries to io.Writer as they are added. A nil writer
// turns echoing off
func SetEcho(output io.Writer) {
	central.setEcho(output)
}

// Len returns the number of distinct entries in the central logger
func Len() int {
	return central.len()
}

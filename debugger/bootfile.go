package debugger

import (
	"fmt"
	"os"
	"strings"
)

// loads a binary file into memory at the origin address. used to place
// copper lists and bitplane data in chip RAM
func (m *debugger) loadBinary(filename string, origin mappedAddress) error {
	d, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("cannot load %s: %w", filename, err)
	}

	for i, b := range d {
		err := origin.area.Write8(origin.idx+uint32(i), b)
		if err != nil {
			return err
		}
	}

	fmt.Println(m.styles.debugger.Render(
		fmt.Sprintf("loaded %d bytes from %s at %#06x", len(d), filename, origin.address),
	))
	return nil
}

// a script file contains one debugger command per line. empty lines and lines
// starting with # are ignored
func (m *debugger) loadScript(filename string) error {
	d, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("cannot load script %s: %w", filename, err)
	}

	m.addScript(strings.Split(string(d), "\n"))
	return nil
}

// addScript queues lines of commands. blank lines and comments are ignored
func (m *debugger) addScript(lines []string) {
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		m.script = append(m.script, l)
	}
}

package debugger

import (
	"fmt"

	"github.com/jetsetilly/amichip/hardware/custom"
)

// a watch is a word of memory that stops the emulation when it changes
type watch struct {
	ma   mappedAddress
	data uint16
	prev uint16

	// beam position and frame when the change was noticed
	beam  custom.Beam
	frame int32
}

func (w watch) String() string {
	return fmt.Sprintf("$%06x = $%04x -> $%04x (frame %d v=%03x h=%03x)",
		w.ma.address, w.prev, w.data, w.frame, w.beam.VPos, w.beam.HPos)
}

// checkWatches returns the first watch with a changed value. watches are
// checked in no particular order so only one change is reported even if
// more than one watched word changed in the same tick
func (m *debugger) checkWatches() (*watch, error) {
	for a, w := range m.watches {
		d, err := peek16(w.ma, w.ma.idx)
		if err != nil {
			return nil, fmt.Errorf("watch: %w", err)
		}
		if d == w.data {
			continue
		}
		w.prev = w.data
		w.data = d
		w.beam = m.console.Custom.Beam()
		w.frame = m.console.State.Frame
		m.watches[a] = w
		return &w, nil
	}
	return nil, nil
}

package custom

import (
	"fmt"

	"github.com/jetsetilly/amichip/hardware/savestate"
)

// the version of the State type. must be changed whenever the layout of
// State changes
const stateVersion = 1

// derive the render helpers from the state
func (cst *Custom) derive() {
	cst.deriveMode()
	cst.deriveFetch()
	cst.deriveWindow()
	for n := range cst.State.Sprites {
		cst.deriveSprite(n)
	}
}

// StateVersion implements the savestate.Component interface
func (cst *Custom) StateVersion() uint32 {
	return stateVersion
}

// Snapshot implements the savestate.Component interface
func (cst *Custom) Snapshot() ([]byte, error) {
	return savestate.Encode(&cst.State)
}

// Restore implements the savestate.Component interface
func (cst *Custom) Restore(data []byte) error {
	var s State
	if err := savestate.Decode(data, &s); err != nil {
		return err
	}
	if s.Copper.State < 0 || int(s.Copper.State) >= len(copperStateNames) {
		return fmt.Errorf("%w: copper state %d", ContextError, s.Copper.State)
	}
	if s.Blitter.State < 0 || int(s.Blitter.State) >= len(blitterStateNames) {
		return fmt.Errorf("%w: blitter state %d", ContextError, s.Blitter.State)
	}
	for ch, aud := range s.Audio {
		if aud.State < 0 || int(aud.State) >= len(audioStateNames) {
			return fmt.Errorf("%w: audio channel %d state %d", ContextError, ch, aud.State)
		}
	}
	cst.State = s
	cst.derive()
	return nil
}

package ebiten

import (
	"fmt"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jetsetilly/amichip/gui"
)

// ebiten does not expose the path of a dropped file so it is recovered from
// the formatted value of the file system
func (eg *guiEbiten) inputDragAndDrop() error {
	df := ebiten.DroppedFiles()
	if df == nil {
		return nil
	}

	s := strings.Split(fmt.Sprintf("%#v", df), "\"")
	if len(s) < 2 {
		return fmt.Errorf("dropped file has no path")
	}

	// dropped disks always go in DF0
	select {
	case eg.g.Commands <- []string{"INSERT", "0", s[1]}:
	default:
	}
	return nil
}

func (eg *guiEbiten) send(inp gui.Input) {
	select {
	case eg.g.UserInput <- inp:
	default:
	}
}

// the left mouse button is the fire button of the first port
func (eg *guiEbiten) inputMouse() {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		eg.send(gui.Input{Action: gui.FirePort0, Data: true})
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		eg.send(gui.Input{Action: gui.FirePort0, Data: false})
	}
}

func (eg *guiEbiten) inputKeyboard() error {
	var pressed []ebiten.Key
	var released []ebiten.Key
	pressed = inpututil.AppendJustPressedKeys(pressed)
	released = inpututil.AppendJustReleasedKeys(released)

	for _, p := range released {
		switch p {
		case ebiten.KeyEscape:
			return ebiten.Termination

		// the fire button of the second port is on the keyboard
		case ebiten.KeySpace:
			eg.send(gui.Input{Action: gui.FirePort1, Data: false})
		}
	}

	for _, p := range pressed {
		switch p {
		case ebiten.KeySpace:
			eg.send(gui.Input{Action: gui.FirePort1, Data: true})
		case ebiten.KeyF3:
			select {
			case eg.g.Commands <- []string{"PAUSE"}:
			default:
			}
		}
	}

	return nil
}

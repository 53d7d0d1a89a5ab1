package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jetsetilly/amichip/hardware/spec"
)

// parseStepRule sets the step rule from the arguments to the STEP command.
// returns false if the arguments are not valid
func (m *debugger) parseStepRule(cmd []string) bool {
	rule := strings.ToUpper(cmd[0])

	// a number is a count of ticks
	if n, err := strconv.Atoi(rule); err == nil {
		if n < 1 {
			fmt.Println(m.styles.err.Render(fmt.Sprintf("STEP %d is not valid", n)))
			return false
		}
		m.stepRule = func() bool {
			n--
			return n <= 0
		}
		return true
	}

	switch rule {
	case "FRAME", "FR":
		var tgt int32
		if len(cmd) > 1 {
			n, err := strconv.Atoi(cmd[1])
			if err != nil {
				fmt.Println(m.styles.err.Render(err.Error()))
				return false
			}
			tgt = int32(n)
			if tgt <= m.console.State.Frame {
				fmt.Println(m.styles.err.Render(fmt.Sprintf("FRAME %d is in the past", tgt)))
				return false
			}
		} else {
			tgt = m.console.State.Frame + 1
		}
		m.stepRule = func() bool {
			return m.console.State.Frame == tgt
		}

	case "LINE", "SCANLINE", "SL":
		var tgt int32
		if len(cmd) > 1 {
			n, err := strconv.ParseInt(cmd[1], 0, 32)
			if err != nil {
				fmt.Println(m.styles.err.Render(err.Error()))
				return false
			}
			tgt = int32(n)
			if tgt < 0 || tgt >= spec.LinesLongFrame {
				fmt.Println(m.styles.err.Render(fmt.Sprintf("LINE %d is not on the screen", tgt)))
				return false
			}
		} else {
			tgt = (m.console.Custom.Beam().VPos + 1) % spec.LinesLongFrame
		}
		m.stepRule = func() bool {
			b := m.console.Custom.Beam()
			return b.VPos == tgt && b.HPos == 0
		}

	case "BLITTER", "BLIT":
		// the end of the current blit, or the start and end of the next one
		busy := m.console.Custom.State.Blitter.Busy
		m.stepRule = func() bool {
			if m.console.Custom.State.Blitter.Busy {
				busy = true
				return false
			}
			return busy
		}
		m.postStep = func() {
			fmt.Println(m.styles.custom.Render(m.console.Custom.BlitterString()))
		}

	case "COPPER", "COP":
		// the next change of copper state
		state := m.console.Custom.CopperState()
		m.stepRule = func() bool {
			return m.console.Custom.CopperState() != state
		}
		m.postStep = func() {
			fmt.Println(m.styles.custom.Render(m.console.Custom.CopperString()))
		}

	case "INTERRUPT", "INTR":
		// the next change of the interrupt priority level
		ipl := m.console.IPL()
		m.stepRule = func() bool {
			return m.console.IPL() != ipl
		}

	default:
		fmt.Println(m.styles.err.Render(
			fmt.Sprintf("STEP %s is unsupported", rule),
		))
		return false
	}

	return true
}

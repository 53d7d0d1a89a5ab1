package hardware

import (
	"github.com/jetsetilly/amichip/gui"
	"github.com/jetsetilly/amichip/logger"
)

func (con *Console) handleInput() {
	var drained bool
	for !drained {
		select {
		default:
			drained = true
		case inp := <-con.g.UserInput:
			pressed, ok := inp.Data.(bool)
			if !ok {
				logger.Logf(con.ctx, "input", "%s: unexpected data %v", inp.Action, inp.Data)
				continue
			}
			switch inp.Action {
			case gui.FirePort0:
				con.State.Fire[0] = pressed
			case gui.FirePort1:
				con.State.Fire[1] = pressed
			}
		}
	}
}

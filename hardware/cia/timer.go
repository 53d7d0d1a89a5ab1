package cia

// Timer is one of the two 16 bit interval timers
type Timer struct {
	Counter uint16
	Latch   uint16
}

func (t *Timer) writeLo(data uint8) {
	t.Latch = t.Latch&0xff00 | uint16(data)
}

// writing the high byte loads the counter if the timer is stopped. in one-shot
// mode the write also starts the timer
func (t *Timer) writeHi(data uint8, cr uint8) {
	t.Latch = t.Latch&0x00ff | uint16(data)<<8
	if cr&CRStart == 0 || cr&CRRunMode != 0 {
		t.Counter = t.Latch
	}
}

// count decreases the timer and returns true on underflow. the counter is
// reloaded from the latch on underflow
func (t *Timer) count() bool {
	if t.Counter == 0 {
		t.Counter = t.Latch
		return true
	}
	t.Counter--
	return false
}

package cia

// TOD is the 24 bit event counter
type TOD struct {
	Counter uint32
	Alarm   uint32

	// reading the high byte latches the counter until the low byte is read
	Latched bool
	Latch   uint32

	// writing the high byte stops the counter until the low byte is written
	Stopped bool
}

func (t *TOD) read() uint32 {
	if t.Latched {
		return t.Latch
	}
	return t.Counter
}

func (t *TOD) latch() {
	if !t.Latched {
		t.Latch = t.Counter
		t.Latched = true
	}
}

func (t *TOD) unlatch() {
	t.Latched = false
}

func (t *TOD) alarm() bool {
	return t.Counter == t.Alarm
}

// tick returns true if the alarm time has been reached
func (t *TOD) tick() bool {
	if t.Stopped {
		return false
	}
	t.Counter = (t.Counter + 1) & 0xffffff
	return t.alarm()
}

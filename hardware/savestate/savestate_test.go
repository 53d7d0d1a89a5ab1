package savestate_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/jetsetilly/amichip/hardware/savestate"
	"github.com/jetsetilly/amichip/test"
)

type exampleState struct {
	A uint16
	B [3]int32
	C bool
	D float32
}

func TestRoundTrip(t *testing.T) {
	var a, b exampleState
	a = exampleState{A: 0x1234, B: [3]int32{1, -2, 3}, C: true, D: 0.5}
	b = exampleState{A: 0xffff}

	restored := 0
	comps := func(x, y *exampleState) []savestate.Component {
		return []savestate.Component{
			savestate.Value{Name: "first", Version: 1, State: x, Restored: func() { restored++ }},
			savestate.Value{Name: "second", Version: 2, State: y},
		}
	}

	var buf bytes.Buffer
	test.DemandSuccess(t, savestate.Save(&buf, comps(&a, &b)...))

	var c, d exampleState
	test.DemandSuccess(t, savestate.Load(bytes.NewReader(buf.Bytes()), comps(&c, &d)...))
	test.ExpectEquality(t, c, a)
	test.ExpectEquality(t, d, b)
	test.ExpectEquality(t, restored, 1)
}

func TestVersionMismatch(t *testing.T) {
	var a exampleState
	var buf bytes.Buffer
	test.DemandSuccess(t, savestate.Save(&buf, savestate.Value{Name: "x", Version: 1, State: &a}))

	err := savestate.Load(bytes.NewReader(buf.Bytes()), savestate.Value{Name: "x", Version: 2, State: &a})
	test.ExpectSuccess(t, errors.Is(err, savestate.ErrVersion))
}

func TestMissingAndUnknown(t *testing.T) {
	var a exampleState
	var buf bytes.Buffer
	test.DemandSuccess(t, savestate.Save(&buf, savestate.Value{Name: "x", Version: 1, State: &a}))

	err := savestate.Load(bytes.NewReader(buf.Bytes()), savestate.Value{Name: "y", Version: 1, State: &a})
	test.ExpectSuccess(t, errors.Is(err, savestate.ErrMissing))

	err = savestate.Load(bytes.NewReader(buf.Bytes()))
	test.ExpectSuccess(t, errors.Is(err, savestate.ErrUnknown))
}

func TestBadMagic(t *testing.T) {
	err := savestate.Load(bytes.NewReader([]byte("NOTASAVE")))
	test.ExpectSuccess(t, errors.Is(err, savestate.ErrMagic))
}

func TestUnchangedOnFailure(t *testing.T) {
	a := exampleState{A: 1}
	var buf bytes.Buffer
	test.DemandSuccess(t, savestate.Save(&buf, savestate.Value{Name: "x", Version: 1, State: &a}))

	// truncate the file
	b := exampleState{A: 2}
	data := buf.Bytes()[:buf.Len()-2]
	test.ExpectFailure(t, savestate.Load(bytes.NewReader(data), savestate.Value{Name: "x", Version: 1, State: &b}))
	test.ExpectEquality(t, b.A, uint16(2))
}

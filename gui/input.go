package gui

type Action int

// Input is sent by the front end on the UserInput channel. The Data field is
// true when a button is pressed and false when it is released
type Input struct {
	Action Action
	Data   any
}

const (
	Nothing Action = iota

	// the left mouse button of each port. these are the /FIR lines on CIA-A
	FirePort0
	FirePort1
)

func (a Action) String() string {
	switch a {
	case FirePort0:
		return "fire0"
	case FirePort1:
		return "fire1"
	}
	return "nothing"
}

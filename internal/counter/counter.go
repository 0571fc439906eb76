// Package counter implements the per-side repetition state machine.
package counter

import "github.com/ayusman/repcoach/internal/profile"

// State is the position of one side within a repetition.
type State string

const (
	// Start is the resting position.
	Start State = "start"
	// End is the peak position.
	End State = "end"
)

// Transition is the result of feeding one value to a Machine.
type Transition int

const (
	// None means the state did not change.
	None Transition = iota
	// ToEnd means the side reached the peak position. This is the counting edge.
	ToEnd
	// ToStart means the side returned to rest.
	ToStart
)

func (t Transition) String() string {
	switch t {
	case ToEnd:
		return "start->end"
	case ToStart:
		return "end->start"
	}
	return "none"
}

// Machine is a two-state start/end tracker with hysteresis: values between the
// two thresholds leave the state untouched.
type Machine struct {
	start profile.Condition
	end   profile.Condition
	state State
}

// New creates a Machine in the Start state using the profile's conditions.
func New(p profile.Profile) *Machine {
	start, end := p.Conditions()
	return &Machine{start: start, end: end, state: Start}
}

// Step feeds one conditioned value and returns the transition it caused.
func (m *Machine) Step(value float64) Transition {
	switch m.state {
	case Start:
		if m.end.Met(value) {
			m.state = End
			return ToEnd
		}
	case End:
		if m.start.Met(value) {
			m.state = Start
			return ToStart
		}
	}
	return None
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Reset returns the machine to Start.
func (m *Machine) Reset() {
	m.state = Start
}

package release

import (
	"errors"
	"fmt"
)

// State is a checkpoint in the packaging pipeline.
type State string

// Pipeline states in the order a successful run passes through them.
const (
	StateInit            State = "initialized"
	StateCleaned         State = "cleaned"
	StateBuilt           State = "built"
	StateBuildVerified   State = "build_verified"
	StateStaged          State = "staged"
	StatePackaged        State = "packaged"
	StatePackageVerified State = "package_verified"
	StateReported        State = "reported"
	StateAborted         State = "aborted"
)

// ErrInvalidTransition is returned when a pipeline step is attempted out of order.
var ErrInvalidTransition = errors.New("invalid pipeline transition")

// next maps each state to the only state a successful run may move to.
//
//nolint:gochecknoglobals // The transition table is immutable.
var next = map[State]State{
	StateInit:            StateCleaned,
	StateCleaned:         StateBuilt,
	StateBuilt:           StateBuildVerified,
	StateBuildVerified:   StateStaged,
	StateStaged:          StatePackaged,
	StatePackaged:        StatePackageVerified,
	StatePackageVerified: StateReported,
}

// Machine tracks pipeline progress and validates every transition, so a stage
// can never run before the checks preceding it have passed.
type Machine struct {
	current State
}

// NewMachine returns a machine positioned at the initial state.
func NewMachine() *Machine {
	return &Machine{current: StateInit}
}

// Current returns the state the machine is in.
func (m *Machine) Current() State {
	return m.current
}

// Advance moves the machine to the provided state.
// Only the single successor of the current state is accepted.
func (m *Machine) Advance(to State) error {
	if next[m.current] != to {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.current, to)
	}

	m.current = to

	return nil
}

// Abort marks the run as failed. It is valid from any state, since a failure
// or an interrupt can arrive at any point.
func (m *Machine) Abort() {
	m.current = StateAborted
}

// Terminal reports whether the machine reached a final state.
func (m *Machine) Terminal() bool {
	return m.current == StateReported || m.current == StateAborted
}

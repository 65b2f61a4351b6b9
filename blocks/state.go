package blocks

import "sync/atomic"

// State is the phase a block is in.
type State int32

// All the states of a block.
const (
	Idle State = iota
	Accumulating
	Computing
	Emitting
	Cooldown
	Closed
	Failed
)

var stateNames = [...]string{
	"Idle",
	"Accumulating",
	"Computing",
	"Emitting",
	"Cooldown",
	"Closed",
	"Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}

	return stateNames[s]
}

// stateHolder stores the state so that monitors on other goroutines can read
// it.
type stateHolder struct {
	state atomic.Int32
}

// State returns the current state of the block.
func (h *stateHolder) State() State {
	return State(h.state.Load())
}

func (h *stateHolder) setState(s State) {
	h.state.Store(int32(s))
}

package channel

import "github.com/sarchlab/streamsim/sim"

// An Element is a value travelling through a channel. Time is the cycle at
// which the value becomes visible to the receiver.
type Element[T any] struct {
	Time sim.VTimeInCycle
	Data T
}

// NewElement creates an Element.
func NewElement[T any](time sim.VTimeInCycle, data T) Element[T] {
	return Element[T]{Time: time, Data: data}
}

package sim

import (
	"sync/atomic"
)

// VTimeInCycle is a point on the logical timeline, counted in cycles.
type VTimeInCycle uint64

// A TimeTeller can tell the current logical time.
type TimeTeller interface {
	CurrentTime() VTimeInCycle
}

// Time is the logical clock of a single context. Only the owning context (and
// the channels acting on its behalf) may advance it. Other goroutines may read
// it at any time.
type Time struct {
	now atomic.Uint64
}

// Tick returns the current cycle.
func (t *Time) Tick() VTimeInCycle {
	return VTimeInCycle(t.now.Load())
}

// CurrentTime returns the current cycle. It makes Time a TimeTeller.
func (t *Time) CurrentTime() VTimeInCycle {
	return t.Tick()
}

// IncrCycles moves the clock forward by n cycles.
func (t *Time) IncrCycles(n uint64) {
	t.now.Add(n)
}

// AdvanceTo moves the clock to the given cycle. The clock never moves
// backward, so a target that is not in the future is ignored. It returns the
// number of cycles the clock moved.
func (t *Time) AdvanceTo(target VTimeInCycle) uint64 {
	for {
		now := t.now.Load()
		if uint64(target) <= now {
			return 0
		}

		if t.now.CompareAndSwap(now, uint64(target)) {
			return uint64(target) - now
		}
	}
}

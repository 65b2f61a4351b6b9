package sim

import "sync"

// A PauseGate blocks goroutines that pass through it while it is paused.
// Channels pass through the gate on every enqueue and dequeue, so pausing the
// gate freezes all contexts at their next channel operation.
type PauseGate struct {
	lock   sync.Mutex
	cond   *sync.Cond
	paused bool
}

// NewPauseGate creates an open gate.
func NewPauseGate() *PauseGate {
	g := &PauseGate{}
	g.cond = sync.NewCond(&g.lock)

	return g
}

// Pause closes the gate.
func (g *PauseGate) Pause() {
	g.lock.Lock()
	g.paused = true
	g.lock.Unlock()
}

// Continue opens the gate and releases everyone waiting on it.
func (g *PauseGate) Continue() {
	g.lock.Lock()
	g.paused = false
	g.lock.Unlock()

	g.cond.Broadcast()
}

// IsPaused tells if the gate is closed.
func (g *PauseGate) IsPaused() bool {
	g.lock.Lock()
	defer g.lock.Unlock()

	return g.paused
}

// Pass returns immediately if the gate is open and blocks until Continue
// otherwise. A nil gate is always open.
func (g *PauseGate) Pass() {
	if g == nil {
		return
	}

	g.lock.Lock()
	for g.paused {
		g.cond.Wait()
	}
	g.lock.Unlock()
}

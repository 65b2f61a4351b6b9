// Package program runs a set of contexts connected by channels.
package program

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sarchlab/streamsim/sim"
)

// ErrAlreadyRun is returned when a program is run a second time.
var ErrAlreadyRun = errors.New("program has already been run")

// PanicError wraps a panic raised in a context's run loop.
type PanicError struct {
	Context string
	Value   interface{}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%s panicked: %v", e.Context, e.Value)
}

// Unwrap returns the panic value if it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// ContextTime is the final time of a context.
type ContextTime struct {
	Name string
	Time sim.VTimeInCycle
}

// Executed summarizes a finished run.
type Executed struct {
	contexts []ContextTime
	wallTime time.Duration
}

// ElapsedCycles returns the largest final time among the contexts.
func (e *Executed) ElapsedCycles() sim.VTimeInCycle {
	var elapsed sim.VTimeInCycle
	for _, c := range e.contexts {
		if c.Time > elapsed {
			elapsed = c.Time
		}
	}

	return elapsed
}

// ContextTimes returns the final time of every context, in registration
// order.
func (e *Executed) ContextTimes() []ContextTime {
	return append([]ContextTime(nil), e.contexts...)
}

// WallTime returns how long the run took on the host.
func (e *Executed) WallTime() time.Duration {
	return e.wallTime
}

// A Program is a frozen set of contexts and channels that can be run once.
type Program struct {
	*sim.HookableBase

	sim *sim.Simulation
	ran atomic.Bool
}

// Simulation returns the registration table of the program.
func (p *Program) Simulation() *sim.Simulation {
	return p.sim
}

// Contexts returns the contexts of the program.
func (p *Program) Contexts() []sim.Context {
	return p.sim.Contexts()
}

// Pause stops every context at its next channel operation.
func (p *Program) Pause() {
	p.sim.Gate().Pause()
}

// Continue resumes a paused program.
func (p *Program) Continue() {
	p.sim.Gate().Continue()
}

// IsPaused tells if the program is paused.
func (p *Program) IsPaused() bool {
	return p.sim.Gate().IsPaused()
}

// Run runs every context on its own goroutine and waits for all of them to
// return. When a context returns, the channels it sends on are closed at its
// final time and the channels it receives from are released. The errors of
// all the contexts are joined.
func (p *Program) Run() (*Executed, error) {
	if p.ran.Swap(true) {
		return nil, ErrAlreadyRun
	}

	contexts := p.sim.Contexts()
	errs := make([]error, len(contexts))
	start := time.Now()

	var wg sync.WaitGroup
	for i, c := range contexts {
		wg.Add(1)

		go func() {
			defer wg.Done()
			errs[i] = p.runContext(c)
		}()
	}

	wg.Wait()

	executed := &Executed{wallTime: time.Since(start)}
	for _, c := range contexts {
		executed.contexts = append(executed.contexts,
			ContextTime{Name: c.Name(), Time: c.CurrentTime()})
	}

	return executed, errors.Join(errs...)
}

func (p *Program) runContext(c sim.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Context: c.Name(), Value: r}
		}

		p.release(c)
		p.InvokeHook(sim.HookCtx{
			Domain: p,
			Pos:    sim.HookPosContextEnd,
			Item:   c,
			Detail: err,
		})
	}()

	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    sim.HookPosContextStart,
		Item:   c,
	})

	c.Init()

	return c.Run()
}

func (p *Program) release(c sim.Context) {
	now := c.CurrentTime()
	for _, end := range p.sim.EndsOwnedBy(c.Name()) {
		end.Release(now)
	}
}

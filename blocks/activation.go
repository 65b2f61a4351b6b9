package blocks

import (
	"errors"
	"sync/atomic"

	"github.com/sarchlab/streamsim/channel"
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/tracing"
)

// A Transform maps one scalar to another. Apply must be pure: the same input
// always gives the same output and nothing else changes.
type Transform[T any] interface {
	Apply(v T) T
}

// TransformFunc turns a function into a Transform.
type TransformFunc[T any] func(T) T

// Apply calls f(v).
func (f TransformFunc[T]) Apply(v T) T {
	return f(v)
}

// Activation applies a transform to every scalar it receives and sends the
// result one cycle later.
type Activation[T any] struct {
	*sim.ContextBase
	stateHolder

	transform Transform[T]
	input     *channel.Receiver[T]
	output    *channel.Sender[T]
	ii        uint64

	invocations atomic.Uint64
}

// InitiationInterval returns the number of cycles between invocations.
func (a *Activation[T]) InitiationInterval() uint64 {
	return a.ii
}

// Invocations returns the number of scalars processed.
func (a *Activation[T]) Invocations() uint64 {
	return a.invocations.Load()
}

// Run processes scalars until the input channel closes.
func (a *Activation[T]) Run() error {
	t := a.Clock()

	for invocation := uint64(0); ; invocation++ {
		a.setState(Accumulating)
		before := t.Tick()

		in, err := a.input.Dequeue(t)
		if errors.Is(err, channel.ErrClosed) {
			a.setState(Closed)
			return nil
		}

		if err != nil {
			a.setState(Failed)
			return err
		}

		taskID := sim.GetIDGenerator().Generate()
		tracing.StartTask(taskID, "", a, TaskKindInvocation, "activation", nil)
		tracing.DelayTask(taskID, a, DelayStarvation,
			a.input.ChannelName(), uint64(t.Tick()-before))

		a.setState(Computing)
		out := a.transform.Apply(in.Data)
		tracing.AddTaskStep(taskID, a, StepComputed)

		a.setState(Emitting)

		// One cycle after the input. A block whose initiation interval has
		// carried its clock past that cycle emits at its current time.
		sendStart := t.Tick()
		at := max(in.Time+1, sendStart)

		err = a.output.Enqueue(t, channel.Element[T]{Time: at, Data: out})
		if err != nil {
			tracing.EndTask(taskID, a)
			a.setState(Failed)

			return sendError(a.Name(), invocation, err)
		}

		tracing.DelayTask(taskID, a, DelayBackpressure,
			a.output.ChannelName(), uint64(t.Tick()-sendStart))
		tracing.AddTaskStep(taskID, a, StepFlushed)
		tracing.EndTask(taskID, a)

		a.setState(Cooldown)
		t.IncrCycles(a.ii)
		a.invocations.Add(1)
		a.setState(Idle)
	}
}

// ActivationBuilder can build Activation blocks.
type ActivationBuilder[T any] struct {
	transform Transform[T]
	input     *channel.Receiver[T]
	output    *channel.Sender[T]
	ii        uint64
}

// MakeActivationBuilder returns a builder with an initiation interval of 1
// cycle.
func MakeActivationBuilder[T any]() ActivationBuilder[T] {
	return ActivationBuilder[T]{ii: 1}
}

// WithTransform sets the transform to apply.
func (b ActivationBuilder[T]) WithTransform(
	f Transform[T],
) ActivationBuilder[T] {
	b.transform = f
	return b
}

// WithFunc sets a function as the transform to apply.
func (b ActivationBuilder[T]) WithFunc(f func(T) T) ActivationBuilder[T] {
	b.transform = TransformFunc[T](f)
	return b
}

// WithInput sets the channel the scalars arrive on.
func (b ActivationBuilder[T]) WithInput(
	r *channel.Receiver[T],
) ActivationBuilder[T] {
	b.input = r
	return b
}

// WithOutput sets the channel the results are sent to.
func (b ActivationBuilder[T]) WithOutput(
	s *channel.Sender[T],
) ActivationBuilder[T] {
	b.output = s
	return b
}

// WithInitiationInterval sets the number of cycles between invocations.
func (b ActivationBuilder[T]) WithInitiationInterval(
	ii uint64,
) ActivationBuilder[T] {
	b.ii = ii
	return b
}

// Build creates an Activation block and attaches it to its channels.
func (b ActivationBuilder[T]) Build(name string) *Activation[T] {
	if b.transform == nil {
		panic(name + ": transform must be set")
	}

	if b.input == nil || b.output == nil {
		panic(name + ": input and output channels must be set")
	}

	a := &Activation[T]{
		ContextBase: sim.NewContextBase(name),
		transform:   b.transform,
		input:       b.input,
		output:      b.output,
		ii:          b.ii,
	}

	a.input.Attach(a)
	a.output.Attach(a)

	return a
}

package blocks

import (
	"errors"
	"sync/atomic"

	"github.com/sarchlab/streamsim/channel"
	"github.com/sarchlab/streamsim/linalg"
	"github.com/sarchlab/streamsim/sim"
	"github.com/sarchlab/streamsim/tracing"
)

// Names used in the traces of the blocks.
const (
	TaskKindInvocation = "invocation"

	StepAccumulated = "accumulated"
	StepComputed    = "computed"
	StepFlushed     = "flushed"

	DelayBackpressure = "backpressure"
	DelayStarvation   = "starvation"
)

// A linearOp is the computation of a block that turns a whole input vector
// into a whole output vector.
type linearOp[T linalg.Scalar] interface {
	inputSize() int
	outputSize() int
	apply(in linalg.Vector[T]) linalg.Vector[T]
}

// linearBlock accumulates inputSize scalars, applies the op, and streams the
// outputSize results out with a one-cycle stagger.
type linearBlock[T linalg.Scalar] struct {
	*sim.ContextBase
	stateHolder

	kind     string
	op       linearOp[T]
	input    *channel.Receiver[T]
	output   *channel.Sender[T]
	ii       uint64
	throttle ThrottlePolicy

	invocations atomic.Uint64
}

func newLinearBlock[T linalg.Scalar](
	name string,
	kind string,
	op linearOp[T],
	input *channel.Receiver[T],
	output *channel.Sender[T],
	ii uint64,
	throttle ThrottlePolicy,
) *linearBlock[T] {
	if input == nil || output == nil {
		panic(name + ": input and output channels must be set")
	}

	b := &linearBlock[T]{
		ContextBase: sim.NewContextBase(name),
		kind:        kind,
		op:          op,
		input:       input,
		output:      output,
		ii:          ii,
		throttle:    throttle,
	}

	input.Attach(b)
	output.Attach(b)

	return b
}

// InitiationInterval returns the number of cycles between invocations.
func (b *linearBlock[T]) InitiationInterval() uint64 {
	return b.ii
}

// ThrottlePolicy returns how the initiation interval is applied.
func (b *linearBlock[T]) ThrottlePolicy() ThrottlePolicy {
	return b.throttle
}

// Invocations returns the number of completed invocations.
func (b *linearBlock[T]) Invocations() uint64 {
	return b.invocations.Load()
}

// Run processes input vectors until the input channel closes.
func (b *linearBlock[T]) Run() error {
	t := b.Clock()

	for invocation := uint64(0); ; invocation++ {
		b.setState(Idle)

		in, start, taskID, err := b.accumulate(invocation)
		if err != nil {
			b.setState(Failed)
			return err
		}

		if in == nil {
			b.setState(Closed)
			return nil
		}

		b.setState(Computing)
		out := b.op.apply(in)
		tracing.AddTaskStep(taskID, b, StepComputed)

		b.setState(Emitting)
		err = b.emit(taskID, out)
		if err != nil {
			tracing.EndTask(taskID, b)
			b.setState(Failed)
			return sendError(b.Name(), invocation, err)
		}

		tracing.AddTaskStep(taskID, b, StepFlushed)
		tracing.EndTask(taskID, b)

		b.setState(Cooldown)
		b.throttle.apply(t, start, b.ii)
		b.invocations.Add(1)
	}
}

// accumulate reads one input vector and returns it with the time its first
// element was taken, which is when the invocation starts. It returns a nil
// vector and a nil error if the input closed before the first element.
func (b *linearBlock[T]) accumulate(
	invocation uint64,
) (linalg.Vector[T], sim.VTimeInCycle, string, error) {
	t := b.Clock()
	n := b.op.inputSize()
	buf := make(linalg.Vector[T], 0, n)
	taskID := ""
	start := t.Tick()

	b.setState(Accumulating)

	for i := 0; i < n; i++ {
		before := t.Tick()

		e, err := b.input.Dequeue(t)
		if errors.Is(err, channel.ErrClosed) {
			if i == 0 {
				return nil, start, "", nil
			}

			tracing.EndTask(taskID, b)

			return nil, start, taskID, &ProtocolViolationError{
				Block:      b.Name(),
				Invocation: invocation,
				Received:   i,
				Expected:   n,
			}
		}

		if err != nil {
			return nil, start, taskID, err
		}

		if i == 0 {
			start = t.Tick()
			taskID = sim.GetIDGenerator().Generate()
			tracing.StartTask(taskID, "", b, TaskKindInvocation, b.kind, nil)
		}

		tracing.DelayTask(taskID, b, DelayStarvation,
			b.input.ChannelName(), uint64(t.Tick()-before))

		buf = append(buf, e.Data)
		t.IncrCycles(1)
	}

	tracing.AddTaskStep(taskID, b, StepAccumulated)

	return buf, start, taskID, nil
}

// emit sends the j-th output one cycle plus j cycles after the current time.
// A full output channel moves the clock forward before the time is taken.
func (b *linearBlock[T]) emit(taskID string, out linalg.Vector[T]) error {
	t := b.Clock()

	for j, v := range out {
		before := t.Tick()

		err := b.output.Enqueue(t, channel.Element[T]{
			Time: before + 1 + sim.VTimeInCycle(j),
			Data: v,
		})
		if err != nil {
			return err
		}

		tracing.DelayTask(taskID, b, DelayBackpressure,
			b.output.ChannelName(), uint64(t.Tick()-before))
	}

	return nil
}

package channel

import (
	"log"
	"sync"

	"github.com/sarchlab/streamsim/sim"
)

// HookPosEnqueue marks when an element is put into the channel.
var HookPosEnqueue = &sim.HookPos{Name: "Chan Enqueue"}

// HookPosDequeue marks when an element is taken from the channel.
var HookPosDequeue = &sim.HookPos{Name: "Chan Dequeue"}

// HookPosClose marks when the receiver observes the closure of the channel.
var HookPosClose = &sim.HookPos{Name: "Chan Close"}

// HookPosSendStall marks when a full channel pushed back the sender. The hook
// Detail is the number of cycles the sender's clock moved.
var HookPosSendStall = &sim.HookPos{Name: "Chan Send Stall"}

// HookPosRecvStall marks when the receiver had to wait for an element to
// become visible. The hook Detail is the number of cycles the receiver's clock
// moved.
var HookPosRecvStall = &sim.HookPos{Name: "Chan Recv Stall"}

// A Channel is the shared state behind a Sender and a Receiver. Programs and
// monitors use it to observe the channel; contexts use the ends.
type Channel[T any] struct {
	*sim.HookableBase

	name string
	gate *sim.PauseGate

	lock sync.Mutex
	cond *sync.Cond
	buf  sim.Buffer[Element[T]]

	sent, received uint64
	dequeueTimes   []sim.VTimeInCycle

	closed       bool
	closeTime    sim.VTimeInCycle
	receiverGone bool
}

// Bounded creates a channel that can hold up to capacity elements, registers
// it with the simulation, and returns its two ends. The ends still need to be
// attached to their owners.
func Bounded[T any](
	s *sim.Simulation,
	name string,
	capacity int,
) (*Sender[T], *Receiver[T]) {
	c := &Channel[T]{
		HookableBase: sim.NewHookableBase(),
		name:         name,
		gate:         s.Gate(),
		buf:          sim.NewBuffer[Element[T]](name+".Buf", capacity),
		dequeueTimes: make([]sim.VTimeInCycle, capacity),
	}
	c.cond = sync.NewCond(&c.lock)

	s.RegisterChannel(c)

	return &Sender[T]{ch: c, sim: s}, &Receiver[T]{ch: c, sim: s}
}

// Name returns the name of the channel.
func (c *Channel[T]) Name() string {
	return c.name
}

// Capacity returns the maximum number of elements in flight.
func (c *Channel[T]) Capacity() int {
	return c.buf.Capacity()
}

// Size returns the number of elements enqueued but not yet dequeued.
func (c *Channel[T]) Size() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.buf.Size()
}

// Sent returns the number of elements enqueued so far.
func (c *Channel[T]) Sent() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.sent
}

// Received returns the number of elements dequeued so far.
func (c *Channel[T]) Received() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.received
}

// IsClosed tells if the sender has closed the channel.
func (c *Channel[T]) IsClosed() bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.closed
}

func (c *Channel[T]) enqueue(t *sim.Time, e Element[T]) error {
	c.gate.Pass()

	now := t.Tick()
	if e.Time < now {
		log.Panicf("%s: cannot enqueue an element at cycle %d, now %d",
			c.name, e.Time, now)
	}

	c.lock.Lock()

	if c.closed {
		c.lock.Unlock()
		log.Panicf("%s: enqueue after close", c.name)
	}

	stalled, err := c.waitForSlot(t)
	if err != nil {
		c.lock.Unlock()
		return err
	}

	if now = t.Tick(); e.Time < now {
		e.Time = now
	}

	c.buf.Push(e)
	c.sent++
	c.cond.Broadcast()
	c.lock.Unlock()

	if c.NumHooks() > 0 {
		if stalled > 0 {
			c.InvokeHook(sim.HookCtx{
				Domain: c,
				Pos:    HookPosSendStall,
				Item:   e,
				Detail: stalled,
			})
		}

		c.InvokeHook(sim.HookCtx{Domain: c, Pos: HookPosEnqueue, Item: e})
	}

	return nil
}

// waitForSlot blocks until the slot of the next element is freed and moves the
// sender's clock to the cycle it was freed. It must be called with the lock
// held.
func (c *Channel[T]) waitForSlot(t *sim.Time) (uint64, error) {
	capacity := uint64(len(c.dequeueTimes))

	if c.receiverGone {
		return 0, ErrReceiverGone
	}

	if c.sent < capacity {
		return 0, nil
	}

	freedBy := c.sent - capacity
	for c.received <= freedBy && !c.receiverGone {
		c.cond.Wait()
	}

	if c.receiverGone {
		return 0, ErrReceiverGone
	}

	return t.AdvanceTo(c.dequeueTimes[freedBy%capacity]), nil
}

func (c *Channel[T]) dequeue(t *sim.Time) (Element[T], error) {
	c.gate.Pass()

	c.lock.Lock()

	if c.receiverGone {
		c.lock.Unlock()
		log.Panicf("%s: dequeue after the receiver is released", c.name)
	}

	for c.buf.Size() == 0 && !c.closed {
		c.cond.Wait()
	}

	e, ok := c.buf.Pop()
	if !ok {
		closeTime := c.closeTime
		c.lock.Unlock()

		t.AdvanceTo(closeTime)

		if c.NumHooks() > 0 {
			c.InvokeHook(sim.HookCtx{
				Domain: c,
				Pos:    HookPosClose,
				Item:   closeTime,
			})
		}

		return e, ErrClosed
	}

	stalled := t.AdvanceTo(e.Time)
	c.dequeueTimes[c.received%uint64(len(c.dequeueTimes))] = t.Tick()
	c.received++
	c.cond.Broadcast()
	c.lock.Unlock()

	if c.NumHooks() > 0 {
		if stalled > 0 {
			c.InvokeHook(sim.HookCtx{
				Domain: c,
				Pos:    HookPosRecvStall,
				Item:   e,
				Detail: stalled,
			})
		}

		c.InvokeHook(sim.HookCtx{Domain: c, Pos: HookPosDequeue, Item: e})
	}

	return e, nil
}

func (c *Channel[T]) close(now sim.VTimeInCycle) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	c.closeTime = now
	c.cond.Broadcast()
}

func (c *Channel[T]) dropReceiver() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.receiverGone = true
	c.cond.Broadcast()
}

package channel

import "github.com/sarchlab/streamsim/sim"

// A Sender is the writing end of a channel.
type Sender[T any] struct {
	ch  *Channel[T]
	sim *sim.Simulation
}

// Channel returns the channel the end belongs to.
func (s *Sender[T]) Channel() *Channel[T] {
	return s.ch
}

// ChannelName returns the name of the channel.
func (s *Sender[T]) ChannelName() string {
	return s.ch.name
}

// Kind returns sim.SenderEnd.
func (s *Sender[T]) Kind() sim.EndKind {
	return sim.SenderEnd
}

// Attach records the owner of the end in the simulation table.
func (s *Sender[T]) Attach(owner sim.Named) {
	s.sim.Attach(s, owner)
}

// Enqueue puts an element into the channel on behalf of the owner whose clock
// is t. It blocks while the channel is full. If the owner's clock had to move
// past e.Time while waiting, the element is delivered at the new time.
//
// Enqueue panics if e.Time is earlier than the owner's current time, or if the
// channel is already closed. It returns ErrReceiverGone if the receiver end has
// been released.
func (s *Sender[T]) Enqueue(t *sim.Time, e Element[T]) error {
	return s.ch.enqueue(t, e)
}

// Close marks that no more elements will be sent. The receiver sees the
// closure at the owner's current time, after draining the queue. Closing an
// already closed channel does nothing.
func (s *Sender[T]) Close(t *sim.Time) {
	s.ch.close(t.Tick())
}

// Release closes the channel at the given time.
func (s *Sender[T]) Release(now sim.VTimeInCycle) {
	s.ch.close(now)
}

// A Receiver is the reading end of a channel.
type Receiver[T any] struct {
	ch  *Channel[T]
	sim *sim.Simulation
}

// Channel returns the channel the end belongs to.
func (r *Receiver[T]) Channel() *Channel[T] {
	return r.ch
}

// ChannelName returns the name of the channel.
func (r *Receiver[T]) ChannelName() string {
	return r.ch.name
}

// Kind returns sim.ReceiverEnd.
func (r *Receiver[T]) Kind() sim.EndKind {
	return sim.ReceiverEnd
}

// Attach records the owner of the end in the simulation table.
func (r *Receiver[T]) Attach(owner sim.Named) {
	r.sim.Attach(r, owner)
}

// Dequeue takes the next element on behalf of the owner whose clock is t. It
// blocks while the channel is empty and returns ErrClosed once the channel is
// closed and drained.
func (r *Receiver[T]) Dequeue(t *sim.Time) (Element[T], error) {
	return r.ch.dequeue(t)
}

// Close disconnects the receiver. Senders blocked on, or later calling,
// Enqueue get ErrReceiverGone.
func (r *Receiver[T]) Close() {
	r.ch.dropReceiver()
}

// Release disconnects the receiver.
func (r *Receiver[T]) Release(_ sim.VTimeInCycle) {
	r.ch.dropReceiver()
}

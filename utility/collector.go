package utility

import (
	"errors"
	"sync"

	"github.com/sarchlab/streamsim/channel"
	"github.com/sarchlab/streamsim/sim"
)

// A Collector keeps every element it receives.
type Collector[T any] struct {
	*sim.ContextBase

	input *channel.Receiver[T]

	lock     sync.Mutex
	elements []channel.Element[T]
}

// Run collects the elements until the channel closes.
func (c *Collector[T]) Run() error {
	t := c.Clock()

	for {
		e, err := c.input.Dequeue(t)
		if errors.Is(err, channel.ErrClosed) {
			return nil
		}

		if err != nil {
			return err
		}

		c.lock.Lock()
		c.elements = append(c.elements, e)
		c.lock.Unlock()
	}
}

// Elements returns the elements received so far.
func (c *Collector[T]) Elements() []channel.Element[T] {
	c.lock.Lock()
	defer c.lock.Unlock()

	return append([]channel.Element[T](nil), c.elements...)
}

// Values returns the data of the elements received so far.
func (c *Collector[T]) Values() []T {
	c.lock.Lock()
	defer c.lock.Unlock()

	values := make([]T, len(c.elements))
	for i, e := range c.elements {
		values[i] = e.Data
	}

	return values
}

// Len returns the number of elements received so far.
func (c *Collector[T]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return len(c.elements)
}

// CollectorBuilder can build Collectors.
type CollectorBuilder[T any] struct {
	input *channel.Receiver[T]
}

// MakeCollectorBuilder returns a builder for a Collector.
func MakeCollectorBuilder[T any]() CollectorBuilder[T] {
	return CollectorBuilder[T]{}
}

// WithInput sets the channel to collect from.
func (b CollectorBuilder[T]) WithInput(
	r *channel.Receiver[T],
) CollectorBuilder[T] {
	b.input = r
	return b
}

// Build creates the Collector and attaches it to its channel.
func (b CollectorBuilder[T]) Build(name string) *Collector[T] {
	if b.input == nil {
		panic(name + ": input channel must be set")
	}

	c := &Collector[T]{
		ContextBase: sim.NewContextBase(name),
		input:       b.input,
	}

	c.input.Attach(c)

	return c
}

package utility

import (
	"iter"
	"slices"

	"github.com/sarchlab/streamsim/channel"
	"github.com/sarchlab/streamsim/sim"
)

// Generator sends one value per cycle, each visible at the cycle it is sent.
type Generator[T any] struct {
	*sim.ContextBase

	values iter.Seq[T]
	output *channel.Sender[T]
}

// Run sends all the values. The output channel is closed by the program once
// Run returns.
func (g *Generator[T]) Run() error {
	t := g.Clock()

	for v := range g.values {
		err := g.output.Enqueue(t, channel.Element[T]{Time: t.Tick(), Data: v})
		if err != nil {
			return err
		}

		t.IncrCycles(1)
	}

	return nil
}

// GeneratorBuilder can build Generators.
type GeneratorBuilder[T any] struct {
	values iter.Seq[T]
	output *channel.Sender[T]
}

// MakeGeneratorBuilder returns a builder for a Generator with no values.
func MakeGeneratorBuilder[T any]() GeneratorBuilder[T] {
	return GeneratorBuilder[T]{}
}

// WithValues sets the values to send.
func (b GeneratorBuilder[T]) WithValues(values []T) GeneratorBuilder[T] {
	b.values = slices.Values(slices.Clone(values))
	return b
}

// WithSeq sets a sequence that yields the values to send. The sequence is
// consumed on the generator's goroutine.
func (b GeneratorBuilder[T]) WithSeq(seq iter.Seq[T]) GeneratorBuilder[T] {
	b.values = seq
	return b
}

// WithOutput sets the channel to send to.
func (b GeneratorBuilder[T]) WithOutput(
	s *channel.Sender[T],
) GeneratorBuilder[T] {
	b.output = s
	return b
}

// Build creates the Generator and attaches it to its channel.
func (b GeneratorBuilder[T]) Build(name string) *Generator[T] {
	if b.output == nil {
		panic(name + ": output channel must be set")
	}

	values := b.values
	if values == nil {
		values = func(func(T) bool) {}
	}

	g := &Generator[T]{
		ContextBase: sim.NewContextBase(name),
		values:      values,
		output:      b.output,
	}

	g.output.Attach(g)

	return g
}

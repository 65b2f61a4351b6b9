package utility

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"sync/atomic"

	"github.com/sarchlab/streamsim/channel"
	"github.com/sarchlab/streamsim/sim"
)

// Errors reported by a Checker.
var (
	ErrMismatch   = errors.New("mismatch")
	ErrMissing    = errors.New("missing element")
	ErrUnexpected = errors.New("unexpected element")
)

// A Checker receives elements and compares them with the expected values, in
// order. It fails on the first element that does not match, if the channel
// closes early, or if more elements arrive than expected.
type Checker[T any] struct {
	*sim.ContextBase

	expected iter.Seq[T]
	equal    func(got, want T) bool
	input    *channel.Receiver[T]
	checked  atomic.Uint64
}

// Checked returns the number of elements that matched.
func (c *Checker[T]) Checked() uint64 {
	return c.checked.Load()
}

// Run checks the elements until all the expected values are seen.
func (c *Checker[T]) Run() error {
	t := c.Clock()
	index := 0

	for want := range c.expected {
		e, err := c.input.Dequeue(t)
		if errors.Is(err, channel.ErrClosed) {
			return fmt.Errorf("%s: element %d: want %v: %w",
				c.Name(), index, want, ErrMissing)
		}

		if err != nil {
			return err
		}

		if !c.equal(e.Data, want) {
			return fmt.Errorf("%s: element %d at cycle %d: got %v, want %v: %w",
				c.Name(), index, e.Time, e.Data, want, ErrMismatch)
		}

		c.checked.Add(1)
		index++
	}

	e, err := c.input.Dequeue(t)
	if err == nil {
		return fmt.Errorf("%s: element %d at cycle %d: got %v: %w",
			c.Name(), index, e.Time, e.Data, ErrUnexpected)
	}

	if !errors.Is(err, channel.ErrClosed) {
		return err
	}

	return nil
}

// CheckerBuilder can build Checkers.
type CheckerBuilder[T any] struct {
	expected iter.Seq[T]
	equal    func(got, want T) bool
	input    *channel.Receiver[T]
}

// MakeCheckerBuilder returns a builder for a Checker that compares with ==.
func MakeCheckerBuilder[T comparable]() CheckerBuilder[T] {
	return CheckerBuilder[T]{
		equal: func(got, want T) bool { return got == want },
	}
}

// WithExpected sets the expected values.
func (b CheckerBuilder[T]) WithExpected(values []T) CheckerBuilder[T] {
	b.expected = slices.Values(slices.Clone(values))
	return b
}

// WithExpectedSeq sets a sequence that yields the expected values.
func (b CheckerBuilder[T]) WithExpectedSeq(seq iter.Seq[T]) CheckerBuilder[T] {
	b.expected = seq
	return b
}

// WithEqual sets how a received value is compared with an expected one.
func (b CheckerBuilder[T]) WithEqual(
	equal func(got, want T) bool,
) CheckerBuilder[T] {
	b.equal = equal
	return b
}

// WithInput sets the channel to check.
func (b CheckerBuilder[T]) WithInput(r *channel.Receiver[T]) CheckerBuilder[T] {
	b.input = r
	return b
}

// Build creates the Checker and attaches it to its channel.
func (b CheckerBuilder[T]) Build(name string) *Checker[T] {
	if b.input == nil {
		panic(name + ": input channel must be set")
	}

	if b.equal == nil {
		panic(name + ": comparison must be set")
	}

	expected := b.expected
	if expected == nil {
		expected = func(func(T) bool) {}
	}

	c := &Checker[T]{
		ContextBase: sim.NewContextBase(name),
		expected:    expected,
		equal:       b.equal,
		input:       b.input,
	}

	c.input.Attach(c)

	return c
}

// ApproxEqual returns a comparison that accepts values within tol of each
// other.
func ApproxEqual[T ~float32 | ~float64](tol T) func(got, want T) bool {
	return func(got, want T) bool {
		d := got - want
		return d <= tol && d >= -tol
	}
}

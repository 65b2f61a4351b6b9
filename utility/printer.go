package utility

import (
	"errors"
	"log"

	"github.com/sarchlab/streamsim/channel"
	"github.com/sarchlab/streamsim/sim"
)

// A Printer logs every element it receives.
type Printer[T any] struct {
	*sim.ContextBase

	logger *log.Logger
	input  *channel.Receiver[T]
}

// Run logs the elements until the channel closes.
func (p *Printer[T]) Run() error {
	t := p.Clock()

	for {
		e, err := p.input.Dequeue(t)
		if errors.Is(err, channel.ErrClosed) {
			return nil
		}

		if err != nil {
			return err
		}

		p.logger.Printf("%d, %s, %v", e.Time, p.Name(), e.Data)
	}
}

// PrinterBuilder can build Printers.
type PrinterBuilder[T any] struct {
	logger *log.Logger
	input  *channel.Receiver[T]
}

// MakePrinterBuilder returns a builder for a Printer that writes to the
// standard logger.
func MakePrinterBuilder[T any]() PrinterBuilder[T] {
	return PrinterBuilder[T]{logger: log.Default()}
}

// WithLogger sets the logger to write to.
func (b PrinterBuilder[T]) WithLogger(l *log.Logger) PrinterBuilder[T] {
	b.logger = l
	return b
}

// WithInput sets the channel to print.
func (b PrinterBuilder[T]) WithInput(r *channel.Receiver[T]) PrinterBuilder[T] {
	b.input = r
	return b
}

// Build creates the Printer and attaches it to its channel.
func (b PrinterBuilder[T]) Build(name string) *Printer[T] {
	if b.input == nil {
		panic(name + ": input channel must be set")
	}

	p := &Printer[T]{
		ContextBase: sim.NewContextBase(name),
		logger:      b.logger,
		input:       b.input,
	}

	p.input.Attach(p)

	return p
}

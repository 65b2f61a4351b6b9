package program

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sarchlab/streamsim/channel"
	"github.com/sarchlab/streamsim/sim"
)

// ErrUnattachedEnds is returned by Initialize when some channel end has no
// owner.
var ErrUnattachedEnds = errors.New("unattached channel ends")

// A Builder collects the contexts and channels of a program.
type Builder struct {
	sim      *sim.Simulation
	name     string
	channels int
}

// NewBuilder creates a Builder for an unnamed program.
func NewBuilder() *Builder {
	return &Builder{sim: sim.NewSimulation()}
}

// WithName sets the name that prefixes the channel names, as in "MLP.Chan[0]".
func (b *Builder) WithName(name string) *Builder {
	if name != "" {
		sim.NameMustBeValid(name)
	}

	b.name = name

	return b
}

// Simulation returns the registration table shared by the program's contexts
// and channels.
func (b *Builder) Simulation() *sim.Simulation {
	return b.sim
}

// Bounded creates a channel that holds up to capacity elements. Channels are
// named Chan[0], Chan[1], ... in creation order.
func Bounded[T any](
	b *Builder,
	capacity int,
) (*channel.Sender[T], *channel.Receiver[T]) {
	name := sim.BuildNameWithIndex(b.name, "Chan", b.channels)
	b.channels++

	return channel.Bounded[T](b.sim, name, capacity)
}

// AddContext registers a context with the program.
func (b *Builder) AddContext(c sim.Context) {
	b.sim.RegisterContext(c)
}

// Initialize checks that every channel end has an owner and freezes the
// program. No context or channel can be added afterward.
func (b *Builder) Initialize() (*Program, error) {
	if missing := b.sim.UnattachedEnds(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s",
			ErrUnattachedEnds, strings.Join(missing, ", "))
	}

	b.sim.Freeze()

	return &Program{
		HookableBase: sim.NewHookableBase(),
		sim:          b.sim,
	}, nil
}

package sim

import (
	"fmt"
	"sync"
)

// EndKind tells which side of a channel an end is.
type EndKind int

// The two sides of a channel.
const (
	SenderEnd EndKind = iota
	ReceiverEnd
)

func (k EndKind) String() string {
	switch k {
	case SenderEnd:
		return "sender"
	case ReceiverEnd:
		return "receiver"
	default:
		return fmt.Sprintf("EndKind(%d)", int(k))
	}
}

// A ChannelEnd is one side of a channel, as seen by the simulation.
type ChannelEnd interface {
	// ChannelName returns the name of the channel the end belongs to.
	ChannelName() string

	// Kind tells if the end is a sender or a receiver.
	Kind() EndKind

	// Release tears the end down after its owner's run loop returned. now is
	// the owner's final time. A sender closes the channel, a receiver
	// disconnects so that further sends fail.
	Release(now VTimeInCycle)
}

type endKey struct {
	channel string
	kind    EndKind
}

type attachment struct {
	end   ChannelEnd
	owner string
}

// A Simulation is the process-wide table of contexts and channels. It records
// which context owns which channel end. The record only goes from the end to
// the owner's name, so ends never hold a reference to their owner.
type Simulation struct {
	lock sync.Mutex

	frozen bool
	gate   *PauseGate

	contexts     []Context
	contextIndex map[string]int

	channels     []BufferStatus
	channelIndex map[string]int

	attachments []attachment
	ownerIndex  map[endKey]int
}

// NewSimulation creates a new simulation.
func NewSimulation() *Simulation {
	return &Simulation{
		gate:         NewPauseGate(),
		contextIndex: make(map[string]int),
		channelIndex: make(map[string]int),
		ownerIndex:   make(map[endKey]int),
	}
}

// Gate returns the pause gate shared by all the channels of the simulation.
func (s *Simulation) Gate() *PauseGate {
	return s.gate
}

// RegisterContext registers a context with the simulation.
func (s *Simulation) RegisterContext(c Context) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.mustNotBeFrozen("register context " + c.Name())

	name := c.Name()
	if _, found := s.contextIndex[name]; found {
		panic("context " + name + " already registered")
	}

	s.contexts = append(s.contexts, c)
	s.contextIndex[name] = len(s.contexts) - 1
}

// RegisterChannel registers a channel with the simulation.
func (s *Simulation) RegisterChannel(c BufferStatus) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.mustNotBeFrozen("register channel " + c.Name())

	name := c.Name()
	if _, found := s.channelIndex[name]; found {
		panic("channel " + name + " already registered")
	}

	s.channels = append(s.channels, c)
	s.channelIndex[name] = len(s.channels) - 1
}

// Attach records that the owner holds the given channel end. Every end can be
// attached only once, no owner may hold both ends of the same channel, and no
// attachment is allowed once the simulation is frozen.
func (s *Simulation) Attach(end ChannelEnd, owner Named) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.mustNotBeFrozen(fmt.Sprintf(
		"attach %s of %s", end.Kind(), end.ChannelName()))

	key := endKey{channel: end.ChannelName(), kind: end.Kind()}
	if i, found := s.ownerIndex[key]; found {
		panic(fmt.Sprintf("%s of %s is already attached to %s",
			end.Kind(), end.ChannelName(), s.attachments[i].owner))
	}

	other := endKey{channel: key.channel, kind: 1 - key.kind}
	if i, found := s.ownerIndex[other]; found &&
		s.attachments[i].owner == owner.Name() {
		panic(fmt.Sprintf("%s cannot hold both ends of %s",
			owner.Name(), end.ChannelName()))
	}

	s.attachments = append(s.attachments,
		attachment{end: end, owner: owner.Name()})
	s.ownerIndex[key] = len(s.attachments) - 1
}

// Freeze forbids further registration and attachment.
func (s *Simulation) Freeze() {
	s.lock.Lock()
	s.frozen = true
	s.lock.Unlock()
}

// IsFrozen tells if the simulation has been frozen.
func (s *Simulation) IsFrozen() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.frozen
}

func (s *Simulation) mustNotBeFrozen(action string) {
	if s.frozen {
		panic("cannot " + action + " after the simulation is initialized")
	}
}

// OwnerOf returns the name of the context that holds the given end.
func (s *Simulation) OwnerOf(channel string, kind EndKind) (string, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()

	i, found := s.ownerIndex[endKey{channel: channel, kind: kind}]
	if !found {
		return "", false
	}

	return s.attachments[i].owner, true
}

// EndsOwnedBy returns the channel ends held by the owner, in attachment
// order.
func (s *Simulation) EndsOwnedBy(owner string) []ChannelEnd {
	s.lock.Lock()
	defer s.lock.Unlock()

	var ends []ChannelEnd
	for _, a := range s.attachments {
		if a.owner == owner {
			ends = append(ends, a.end)
		}
	}

	return ends
}

// UnattachedEnds lists the registered channel ends that no context holds, as
// "Channel (kind)".
func (s *Simulation) UnattachedEnds() []string {
	s.lock.Lock()
	defer s.lock.Unlock()

	var missing []string
	for _, c := range s.channels {
		for _, kind := range []EndKind{SenderEnd, ReceiverEnd} {
			key := endKey{channel: c.Name(), kind: kind}
			if _, found := s.ownerIndex[key]; !found {
				missing = append(missing,
					fmt.Sprintf("%s (%s)", c.Name(), kind))
			}
		}
	}

	return missing
}

// Contexts returns all the registered contexts in registration order.
func (s *Simulation) Contexts() []Context {
	s.lock.Lock()
	defer s.lock.Unlock()

	return append([]Context(nil), s.contexts...)
}

// GetContextByName returns the context with the given name, or nil.
func (s *Simulation) GetContextByName(name string) Context {
	s.lock.Lock()
	defer s.lock.Unlock()

	i, found := s.contextIndex[name]
	if !found {
		return nil
	}

	return s.contexts[i]
}

// Channels returns all the registered channels in registration order.
func (s *Simulation) Channels() []BufferStatus {
	s.lock.Lock()
	defer s.lock.Unlock()

	return append([]BufferStatus(nil), s.channels...)
}

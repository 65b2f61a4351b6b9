package sim

import "log"

// HookPosBufPush marks when an element is pushed into the buffer.
var HookPosBufPush = &HookPos{Name: "Buffer Push"}

// HookPosBufPop marks when an element is popped from the buffer.
var HookPosBufPop = &HookPos{Name: "Buffer Pop"}

// BufferStatus is the read-only view of a bounded queue, as used by hang
// detection.
type BufferStatus interface {
	Named
	Capacity() int
	Size() int
}

// A Buffer is a bounded fifo queue. A Buffer is not safe for concurrent use;
// the owner must serialize access.
type Buffer[T any] interface {
	BufferStatus
	Hookable

	CanPush() bool
	Push(e T)
	Pop() (T, bool)
	Peek() (T, bool)

	// Remove all elements in the buffer
	Clear()
}

// NewBuffer creates a ring buffer with a fixed capacity.
func NewBuffer[T any](name string, capacity int) Buffer[T] {
	NameMustBeValid(name)

	if capacity <= 0 {
		log.Panicf("buffer %s must have a positive capacity", name)
	}

	return &ringBuffer[T]{
		HookableBase: NewHookableBase(),
		name:         name,
		elements:     make([]T, capacity),
	}
}

type ringBuffer[T any] struct {
	*HookableBase

	name     string
	elements []T
	head     int
	size     int
}

func (b *ringBuffer[T]) Name() string {
	return b.name
}

func (b *ringBuffer[T]) CanPush() bool {
	return b.size < len(b.elements)
}

func (b *ringBuffer[T]) Push(e T) {
	if !b.CanPush() {
		log.Panicf("buffer %s overflow", b.name)
	}

	b.elements[(b.head+b.size)%len(b.elements)] = e
	b.size++

	if b.NumHooks() > 0 {
		b.InvokeHook(HookCtx{
			Domain: b,
			Pos:    HookPosBufPush,
			Item:   e,
		})
	}
}

func (b *ringBuffer[T]) Pop() (T, bool) {
	var zero T
	if b.size == 0 {
		return zero, false
	}

	e := b.elements[b.head]
	b.elements[b.head] = zero
	b.head = (b.head + 1) % len(b.elements)
	b.size--

	if b.NumHooks() > 0 {
		b.InvokeHook(HookCtx{
			Domain: b,
			Pos:    HookPosBufPop,
			Item:   e,
		})
	}

	return e, true
}

func (b *ringBuffer[T]) Peek() (T, bool) {
	if b.size == 0 {
		var zero T
		return zero, false
	}

	return b.elements[b.head], true
}

func (b *ringBuffer[T]) Capacity() int {
	return len(b.elements)
}

func (b *ringBuffer[T]) Size() int {
	return b.size
}

func (b *ringBuffer[T]) Clear() {
	var zero T
	for i := range b.elements {
		b.elements[i] = zero
	}

	b.head = 0
	b.size = 0
}

package blocks

import (
	"errors"
	"fmt"
)

// ErrProtocolViolation is matched by every ProtocolViolationError.
var ErrProtocolViolation = errors.New("protocol violation")

// ProtocolViolationError reports that the input of a block closed after only
// part of an input vector had arrived. The upstream producer must send whole
// vectors, so this is a bug in the producer, not an end of stream.
type ProtocolViolationError struct {
	Block      string
	Invocation uint64
	Received   int
	Expected   int
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf(
		"%s: invocation %d: input closed after %d of %d elements",
		e.Block, e.Invocation, e.Received, e.Expected)
}

// Is makes errors.Is(err, ErrProtocolViolation) hold.
func (e *ProtocolViolationError) Is(target error) bool {
	return target == ErrProtocolViolation
}

// Unwrap returns ErrProtocolViolation.
func (e *ProtocolViolationError) Unwrap() error {
	return ErrProtocolViolation
}

func sendError(block string, invocation uint64, err error) error {
	return fmt.Errorf("%s: invocation %d: %w", block, invocation, err)
}

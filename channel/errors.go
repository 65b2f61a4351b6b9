package channel

import "errors"

// ErrClosed is returned by Dequeue once the sender has closed the channel and
// every buffered element has been taken.
var ErrClosed = errors.New("channel closed")

// ErrReceiverGone is returned by Enqueue when the receiver end has been torn
// down, so the element can never be delivered.
var ErrReceiverGone = errors.New("channel receiver is gone")

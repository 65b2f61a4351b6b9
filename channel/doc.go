// Package channel provides bounded, timestamped FIFO channels that connect
// contexts.
//
// A channel has exactly one Sender end and one Receiver end. Both ends block
// the calling goroutine: Enqueue while the channel is full and Dequeue while it
// is empty. While blocked, the caller's logical clock is advanced by the
// channel according to the timestamps involved, never by wall-clock time:
//
//   - Dequeue moves the receiver's clock to the element's timestamp if the
//     element is not visible yet. The cycle at which the receiver took the
//     element is recorded.
//   - Enqueueing the n-th element into a channel of capacity K requires the
//     (n-K)-th element to have been dequeued. The sender's clock moves to the
//     cycle at which that element was taken.
//   - Once the sender closes the channel and the queue drains, Dequeue
//     returns ErrClosed and moves the receiver's clock to the close time.
//
// Because the rules only involve logical timestamps, the simulated cycle
// counts do not depend on how goroutines are scheduled.
package channel

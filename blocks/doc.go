// Package blocks provides the compute blocks of a streaming pipeline.
//
// A block is a context that reads scalars from one input channel, computes,
// and writes scalars to one output channel, all under its own logical clock.
// GEMV and MatMul accumulate a full input vector (or tile) one scalar per
// cycle before they compute, then stream the result out one scalar per cycle.
// Activation applies a pure function to every scalar with a one-cycle
// latency. Every block waits a configurable initiation interval between
// invocations.
//
// A block stops cleanly when its input closes between invocations. Closure in
// the middle of an input vector is reported as a ProtocolViolationError.
package blocks

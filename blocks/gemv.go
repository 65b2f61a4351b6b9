package blocks

import (
	"fmt"

	"github.com/sarchlab/streamsim/channel"
	"github.com/sarchlab/streamsim/linalg"
)

// GEMV multiplies every input vector by a weight matrix and adds a bias
// vector.
type GEMV[T linalg.Scalar] struct {
	*linearBlock[T]

	op *gemvOp[T]
}

// Weights returns a copy of the weight matrix.
func (g *GEMV[T]) Weights() *linalg.Matrix[T] {
	return g.op.weights.Clone()
}

// Biases returns a copy of the bias vector.
func (g *GEMV[T]) Biases() linalg.Vector[T] {
	return g.op.biases.Clone()
}

type gemvOp[T linalg.Scalar] struct {
	weights *linalg.Matrix[T]
	biases  linalg.Vector[T]
}

func (op *gemvOp[T]) inputSize() int {
	return op.weights.Cols()
}

func (op *gemvOp[T]) outputSize() int {
	return op.weights.Rows()
}

func (op *gemvOp[T]) apply(in linalg.Vector[T]) linalg.Vector[T] {
	y := op.weights.MulVec(in)
	y.AddInPlace(op.biases)

	return y
}

// GEMVBuilder can build GEMV blocks.
type GEMVBuilder[T linalg.Scalar] struct {
	weights  *linalg.Matrix[T]
	biases   linalg.Vector[T]
	input    *channel.Receiver[T]
	output   *channel.Sender[T]
	ii       uint64
	throttle ThrottlePolicy
}

// MakeGEMVBuilder returns a builder with an initiation interval of 1 cycle,
// throttling after the flush.
func MakeGEMVBuilder[T linalg.Scalar]() GEMVBuilder[T] {
	return GEMVBuilder[T]{
		ii:       1,
		throttle: ThrottleAfterFlush,
	}
}

// WithWeights sets the R x C weight matrix.
func (b GEMVBuilder[T]) WithWeights(w *linalg.Matrix[T]) GEMVBuilder[T] {
	b.weights = w
	return b
}

// WithBiases sets the bias vector of length R.
func (b GEMVBuilder[T]) WithBiases(v linalg.Vector[T]) GEMVBuilder[T] {
	b.biases = v
	return b
}

// WithInput sets the channel the input vectors arrive on.
func (b GEMVBuilder[T]) WithInput(r *channel.Receiver[T]) GEMVBuilder[T] {
	b.input = r
	return b
}

// WithOutput sets the channel the results are sent to.
func (b GEMVBuilder[T]) WithOutput(s *channel.Sender[T]) GEMVBuilder[T] {
	b.output = s
	return b
}

// WithInitiationInterval sets the number of cycles between invocations.
func (b GEMVBuilder[T]) WithInitiationInterval(ii uint64) GEMVBuilder[T] {
	b.ii = ii
	return b
}

// WithThrottlePolicy sets how the initiation interval is applied.
func (b GEMVBuilder[T]) WithThrottlePolicy(p ThrottlePolicy) GEMVBuilder[T] {
	b.throttle = p
	return b
}

// Build creates a GEMV block and attaches it to its channels.
func (b GEMVBuilder[T]) Build(name string) *GEMV[T] {
	op := newGEMVOp(name, b.weights, b.biases)

	return &GEMV[T]{
		linearBlock: newLinearBlock[T](name, "gemv", op,
			b.input, b.output, b.ii, b.throttle),
		op: op,
	}
}

func newGEMVOp[T linalg.Scalar](
	name string,
	weights *linalg.Matrix[T],
	biases linalg.Vector[T],
) *gemvOp[T] {
	if weights == nil {
		panic(name + ": weights must be set")
	}

	if weights.Rows() == 0 || weights.Cols() == 0 {
		panic(fmt.Sprintf("%s: weights must not be empty, got %dx%d",
			name, weights.Rows(), weights.Cols()))
	}

	if len(biases) != weights.Rows() {
		panic(fmt.Sprintf("%s: %d biases for %d output rows",
			name, len(biases), weights.Rows()))
	}

	return &gemvOp[T]{
		weights: weights.Clone(),
		biases:  biases.Clone(),
	}
}

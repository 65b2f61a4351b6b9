package blocks

import (
	"fmt"

	"github.com/sarchlab/streamsim/channel"
	"github.com/sarchlab/streamsim/linalg"
)

// MatMul multiplies a batch of input vectors by a weight matrix and adds a
// bias vector to every result. The batch arrives row-major, one vector after
// the other, and the results leave in the same order.
type MatMul[T linalg.Scalar] struct {
	*linearBlock[T]

	op *matMulOp[T]
}

// BatchSize returns the number of vectors per invocation.
func (m *MatMul[T]) BatchSize() int {
	return m.op.batch
}

type matMulOp[T linalg.Scalar] struct {
	gemvOp[T]
	batch int
}

func (op *matMulOp[T]) inputSize() int {
	return op.batch * op.weights.Cols()
}

func (op *matMulOp[T]) outputSize() int {
	return op.batch * op.weights.Rows()
}

func (op *matMulOp[T]) apply(in linalg.Vector[T]) linalg.Vector[T] {
	cols := op.weights.Cols()
	rows := op.weights.Rows()
	out := make(linalg.Vector[T], op.batch*rows)

	for k := 0; k < op.batch; k++ {
		y := out[k*rows : (k+1)*rows]
		op.weights.MulVecInto(y, in[k*cols:(k+1)*cols])
		y.AddInPlace(op.biases)
	}

	return out
}

// MatMulBuilder can build MatMul blocks.
type MatMulBuilder[T linalg.Scalar] struct {
	weights  *linalg.Matrix[T]
	biases   linalg.Vector[T]
	input    *channel.Receiver[T]
	output   *channel.Sender[T]
	ii       uint64
	throttle ThrottlePolicy
	batch    int
}

// MakeMatMulBuilder returns a builder with a batch of 1 vector and an
// initiation interval of 1 cycle, throttling after the flush.
func MakeMatMulBuilder[T linalg.Scalar]() MatMulBuilder[T] {
	return MatMulBuilder[T]{
		ii:       1,
		throttle: ThrottleAfterFlush,
		batch:    1,
	}
}

// WithWeights sets the R x C weight matrix.
func (b MatMulBuilder[T]) WithWeights(w *linalg.Matrix[T]) MatMulBuilder[T] {
	b.weights = w
	return b
}

// WithBiases sets the bias vector of length R.
func (b MatMulBuilder[T]) WithBiases(v linalg.Vector[T]) MatMulBuilder[T] {
	b.biases = v
	return b
}

// WithInput sets the channel the input vectors arrive on.
func (b MatMulBuilder[T]) WithInput(r *channel.Receiver[T]) MatMulBuilder[T] {
	b.input = r
	return b
}

// WithOutput sets the channel the results are sent to.
func (b MatMulBuilder[T]) WithOutput(s *channel.Sender[T]) MatMulBuilder[T] {
	b.output = s
	return b
}

// WithInitiationInterval sets the number of cycles between invocations.
func (b MatMulBuilder[T]) WithInitiationInterval(ii uint64) MatMulBuilder[T] {
	b.ii = ii
	return b
}

// WithThrottlePolicy sets how the initiation interval is applied.
func (b MatMulBuilder[T]) WithThrottlePolicy(
	p ThrottlePolicy,
) MatMulBuilder[T] {
	b.throttle = p
	return b
}

// WithBatchSize sets the number of vectors processed per invocation.
func (b MatMulBuilder[T]) WithBatchSize(n int) MatMulBuilder[T] {
	b.batch = n
	return b
}

// Build creates a MatMul block and attaches it to its channels.
func (b MatMulBuilder[T]) Build(name string) *MatMul[T] {
	if b.batch <= 0 {
		panic(fmt.Sprintf("%s: batch size must be positive, got %d",
			name, b.batch))
	}

	op := &matMulOp[T]{
		gemvOp: *newGEMVOp(name, b.weights, b.biases),
		batch:  b.batch,
	}

	return &MatMul[T]{
		linearBlock: newLinearBlock[T](name, "matmul", op,
			b.input, b.output, b.ii, b.throttle),
		op: op,
	}
}

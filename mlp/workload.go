// Package mlp assembles a generator, a linear block, an activation and a
// consumer into a runnable pipeline, and computes the reference output the
// pipeline is checked against.
package mlp

import (
	"github.com/sarchlab/streamsim/linalg"
)

// A Workload is the data fed to a pipeline: N input vectors of F features, an
// R x F weight matrix and R biases.
type Workload[T linalg.Scalar] struct {
	Inputs  *linalg.Matrix[T]
	Weights *linalg.Matrix[T]
	Biases  linalg.Vector[T]
}

// MakeWorkload creates the standard workload: input n has features
// n*F, n*F+1, ..., every weight is 0.5, and bias j is j-2.
func MakeWorkload[T linalg.Float](inputs, features, outputs int) Workload[T] {
	x := linalg.NewMatrix[T](inputs, features)
	for n := 0; n < inputs; n++ {
		for f := 0; f < features; f++ {
			x.Set(n, f, T(n*features+f))
		}
	}

	biases := make(linalg.Vector[T], outputs)
	for j := range biases {
		biases[j] = T(j) - 2
	}

	return Workload[T]{
		Inputs:  x,
		Weights: linalg.FromElem[T](outputs, features, 0.5),
		Biases:  biases,
	}
}

// NumInputs returns N.
func (w Workload[T]) NumInputs() int {
	return w.Inputs.Rows()
}

// NumFeatures returns F.
func (w Workload[T]) NumFeatures() int {
	return w.Inputs.Cols()
}

// NumOutputs returns R.
func (w Workload[T]) NumOutputs() int {
	return w.Weights.Rows()
}

// Reference computes f(W . X^T + b) and returns it in the order a pipeline
// streams it out: all R outputs of input 0, then of input 1, and so on.
func Reference[T linalg.Scalar](w Workload[T], f func(T) T) []T {
	out := w.Weights.Mul(w.Inputs.Transpose())
	out.AddColumn(w.Biases)
	out.MapInPlace(f)

	return out.Transpose().Data()
}

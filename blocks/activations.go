package blocks

import (
	"fmt"
	"math"

	"github.com/sarchlab/streamsim/linalg"
)

// ReLU returns max(0, v).
func ReLU[T linalg.Real]() TransformFunc[T] {
	return func(v T) T {
		if v < 0 {
			return 0
		}

		return v
	}
}

// Identity returns its input.
func Identity[T any]() TransformFunc[T] {
	return func(v T) T { return v }
}

// LeakyReLU returns v for positive v and alpha*v otherwise.
func LeakyReLU[T linalg.Float](alpha T) TransformFunc[T] {
	return func(v T) T {
		if v < 0 {
			return alpha * v
		}

		return v
	}
}

// Sigmoid returns 1 / (1 + e^-v).
func Sigmoid[T linalg.Float]() TransformFunc[T] {
	return func(v T) T {
		return T(1 / (1 + math.Exp(-float64(v))))
	}
}

// Tanh returns the hyperbolic tangent of v.
func Tanh[T linalg.Float]() TransformFunc[T] {
	return func(v T) T {
		return T(math.Tanh(float64(v)))
	}
}

// ActivationNames lists the names accepted by TransformByName.
var ActivationNames = []string{
	"relu", "identity", "leaky-relu", "sigmoid", "tanh",
}

// TransformByName returns the stock transform with the given name.
// "leaky-relu" uses a slope of 0.01.
func TransformByName[T linalg.Float](name string) (Transform[T], error) {
	switch name {
	case "relu":
		return ReLU[T](), nil
	case "identity":
		return Identity[T](), nil
	case "leaky-relu":
		return LeakyReLU[T](0.01), nil
	case "sigmoid":
		return Sigmoid[T](), nil
	case "tanh":
		return Tanh[T](), nil
	default:
		return nil, fmt.Errorf("unknown activation %q, want one of %v",
			name, ActivationNames)
	}
}

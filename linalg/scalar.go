// Package linalg provides the small amount of dense linear algebra that
// streaming blocks and their reference models need, generic over the scalar
// type.
package linalg

// Scalar is any numeric type with ordinary addition and multiplication.
type Scalar interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 |
		~complex64 | ~complex128
}

// Real is a Scalar with an ordering.
type Real interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Float is a real floating-point Scalar.
type Float interface {
	~float32 | ~float64
}

// Zero returns the additive identity.
func Zero[T Scalar]() T {
	var zero T
	return zero
}

// One returns the multiplicative identity.
func One[T Scalar]() T {
	return T(1)
}

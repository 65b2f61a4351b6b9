package linalg

import "fmt"

// A Vector is a dense vector.
type Vector[T Scalar] []T

// Full creates a vector of length n with every element set to v.
func Full[T Scalar](n int, v T) Vector[T] {
	vec := make(Vector[T], n)
	for i := range vec {
		vec[i] = v
	}

	return vec
}

// Len returns the length of the vector.
func (v Vector[T]) Len() int {
	return len(v)
}

// Clone returns a copy of the vector.
func (v Vector[T]) Clone() Vector[T] {
	return append(Vector[T](nil), v...)
}

// Add returns v + o, elementwise.
func (v Vector[T]) Add(o Vector[T]) Vector[T] {
	mustHaveSameLength(len(v), len(o))

	out := make(Vector[T], len(v))
	for i := range v {
		out[i] = v[i] + o[i]
	}

	return out
}

// AddInPlace adds o to v, elementwise.
func (v Vector[T]) AddInPlace(o Vector[T]) {
	mustHaveSameLength(len(v), len(o))

	for i := range v {
		v[i] += o[i]
	}
}

// Dot returns the inner product of v and o.
func (v Vector[T]) Dot(o Vector[T]) T {
	mustHaveSameLength(len(v), len(o))

	var sum T
	for i := range v {
		sum += v[i] * o[i]
	}

	return sum
}

// Sum returns the sum of the elements.
func (v Vector[T]) Sum() T {
	var sum T
	for _, x := range v {
		sum += x
	}

	return sum
}

// Map returns f applied to every element.
func (v Vector[T]) Map(f func(T) T) Vector[T] {
	out := make(Vector[T], len(v))
	for i, x := range v {
		out[i] = f(x)
	}

	return out
}

func mustHaveSameLength(a, b int) {
	if a != b {
		panic(fmt.Sprintf("linalg: length mismatch, %d vs %d", a, b))
	}
}

package linalg

import (
	"errors"
	"fmt"
)

// ErrShape is returned when data does not fit the requested shape.
var ErrShape = errors.New("linalg: data does not match shape")

// A Matrix is a dense, row-major matrix.
type Matrix[T Scalar] struct {
	rows, cols int
	data       []T
}

// NewMatrix creates a zero-filled rows x cols matrix.
func NewMatrix[T Scalar](rows, cols int) *Matrix[T] {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("linalg: invalid shape %dx%d", rows, cols))
	}

	return &Matrix[T]{rows: rows, cols: cols, data: make([]T, rows*cols)}
}

// FromElem creates a rows x cols matrix with every element set to v.
func FromElem[T Scalar](rows, cols int, v T) *Matrix[T] {
	m := NewMatrix[T](rows, cols)
	for i := range m.data {
		m.data[i] = v
	}

	return m
}

// FromShapeVec wraps row-major data as a rows x cols matrix. The data is
// copied.
func FromShapeVec[T Scalar](rows, cols int, data []T) (*Matrix[T], error) {
	if rows < 0 || cols < 0 || rows*cols != len(data) {
		return nil, fmt.Errorf("%w: %d elements for %dx%d",
			ErrShape, len(data), rows, cols)
	}

	m := NewMatrix[T](rows, cols)
	copy(m.data, data)

	return m, nil
}

// FromRows builds a matrix from its rows. All rows must have the same length.
func FromRows[T Scalar](rows [][]T) (*Matrix[T], error) {
	if len(rows) == 0 {
		return NewMatrix[T](0, 0), nil
	}

	m := NewMatrix[T](len(rows), len(rows[0]))
	for i, r := range rows {
		if len(r) != m.cols {
			return nil, fmt.Errorf("%w: row %d has %d elements, want %d",
				ErrShape, i, len(r), m.cols)
		}

		copy(m.data[i*m.cols:], r)
	}

	return m, nil
}

// Rows returns the number of rows.
func (m *Matrix[T]) Rows() int {
	return m.rows
}

// Cols returns the number of columns.
func (m *Matrix[T]) Cols() int {
	return m.cols
}

// At returns the element at row i, column j.
func (m *Matrix[T]) At(i, j int) T {
	m.mustContain(i, j)
	return m.data[i*m.cols+j]
}

// Set sets the element at row i, column j.
func (m *Matrix[T]) Set(i, j int, v T) {
	m.mustContain(i, j)
	m.data[i*m.cols+j] = v
}

// Row returns a copy of row i.
func (m *Matrix[T]) Row(i int) Vector[T] {
	m.mustContain(i, 0)
	return Vector[T](m.data[i*m.cols : (i+1)*m.cols]).Clone()
}

// Data returns a copy of the elements in row-major order.
func (m *Matrix[T]) Data() []T {
	return append([]T(nil), m.data...)
}

// Clone returns a deep copy of the matrix.
func (m *Matrix[T]) Clone() *Matrix[T] {
	return &Matrix[T]{rows: m.rows, cols: m.cols, data: m.Data()}
}

// MulVec returns m . x.
func (m *Matrix[T]) MulVec(x Vector[T]) Vector[T] {
	out := make(Vector[T], m.rows)
	m.MulVecInto(out, x)

	return out
}

// MulVecInto writes m . x into dst, which must have Rows() elements.
func (m *Matrix[T]) MulVecInto(dst, x Vector[T]) {
	mustHaveSameLength(m.cols, len(x))
	mustHaveSameLength(m.rows, len(dst))

	for i := 0; i < m.rows; i++ {
		row := m.data[i*m.cols : (i+1)*m.cols]

		var sum T
		for j, w := range row {
			sum += w * x[j]
		}

		dst[i] = sum
	}
}

// Mul returns m . o.
func (m *Matrix[T]) Mul(o *Matrix[T]) *Matrix[T] {
	mustHaveSameLength(m.cols, o.rows)

	out := NewMatrix[T](m.rows, o.cols)
	for i := 0; i < m.rows; i++ {
		for k := 0; k < m.cols; k++ {
			a := m.data[i*m.cols+k]
			for j := 0; j < o.cols; j++ {
				out.data[i*o.cols+j] += a * o.data[k*o.cols+j]
			}
		}
	}

	return out
}

// Transpose returns the transpose of m.
func (m *Matrix[T]) Transpose() *Matrix[T] {
	out := NewMatrix[T](m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.data[j*m.rows+i] = m.data[i*m.cols+j]
		}
	}

	return out
}

// AddColumn adds v to every column of m, in place. v must have Rows()
// elements.
func (m *Matrix[T]) AddColumn(v Vector[T]) {
	mustHaveSameLength(m.rows, len(v))

	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			m.data[i*m.cols+j] += v[i]
		}
	}
}

// MapInPlace replaces every element x with f(x).
func (m *Matrix[T]) MapInPlace(f func(T) T) {
	for i, x := range m.data {
		m.data[i] = f(x)
	}
}

func (m *Matrix[T]) mustContain(i, j int) {
	if i < 0 || i >= m.rows || j < 0 || (j >= m.cols && m.cols > 0) {
		panic(fmt.Sprintf("linalg: index (%d, %d) out of range %dx%d",
			i, j, m.rows, m.cols))
	}
}

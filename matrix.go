package qsim

import (
	"fmt"
	"math/bits"
	"math/cmplx"
)

// Matrix is a square 2^k × 2^k complex matrix in row-major order. Matrices
// are value-like: once built they are shared read-only, and every operation
// returns a fresh matrix.
type Matrix [][]Complex

// NewMatrix validates and wraps a row-major square matrix. The dimension
// must be a power of two so the matrix can act on whole qubits.
func NewMatrix(rows [][]Complex) (Matrix, error) {
	n := len(rows)
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("%w: %d rows", ErrBadDimension, n)
	}
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrBadDimension, i, len(row), n)
		}
	}
	return Matrix(rows), nil
}

// Identity returns the dim × dim identity matrix.
func Identity(dim int) Matrix {
	m := make(Matrix, dim)
	for i := range m {
		m[i] = make([]Complex, dim)
		m[i][i] = 1
	}
	return m
}

// Dim returns the number of rows (== columns).
func (m Matrix) Dim() int { return len(m) }

// NumQubits returns log2 of the dimension: how many qubits m acts on.
func (m Matrix) NumQubits() int { return bits.TrailingZeros(uint(len(m))) }

// Mul returns m·other.
func (m Matrix) Mul(other Matrix) Matrix {
	dim := m.Dim()
	out := make(Matrix, dim)
	for i := range out {
		out[i] = make([]Complex, dim)
		for k := 0; k < dim; k++ {
			if approxZero(m[i][k]) {
				continue
			}
			a := m[i][k]
			for j := 0; j < dim; j++ {
				out[i][j] += a * other[k][j]
			}
		}
	}
	return out
}

// MulVec returns m·v as a new slice.
func (m Matrix) MulVec(v []Complex) []Complex {
	dim := m.Dim()
	out := make([]Complex, dim)
	for i := 0; i < dim; i++ {
		var sum Complex
		for j := 0; j < dim; j++ {
			sum += m[i][j] * v[j]
		}
		out[i] = sum
	}
	return out
}

// Dagger returns the conjugate transpose.
func (m Matrix) Dagger() Matrix {
	dim := m.Dim()
	out := make(Matrix, dim)
	for i := range out {
		out[i] = make([]Complex, dim)
		for j := 0; j < dim; j++ {
			out[i][j] = cmplx.Conj(m[j][i])
		}
	}
	return out
}

// IsUnitary reports whether m†·m ≈ I within Epsilon.
func (m Matrix) IsUnitary() bool {
	prod := m.Dagger().Mul(m)
	for i := range prod {
		for j := range prod[i] {
			want := Complex(0)
			if i == j {
				want = 1
			}
			if !ApproxEqual(prod[i][j], want) {
				return false
			}
		}
	}
	return true
}

// IsHermitian reports whether m ≈ m† within Epsilon.
func (m Matrix) IsHermitian() bool {
	for i := range m {
		for j := range m[i] {
			if !ApproxEqual(m[i][j], cmplx.Conj(m[j][i])) {
				return false
			}
		}
	}
	return true
}

// ApproxEqual reports whether two matrices agree entrywise within Epsilon.
func (m Matrix) ApproxEqual(other Matrix) bool {
	if m.Dim() != other.Dim() {
		return false
	}
	for i := range m {
		for j := range m[i] {
			if !ApproxEqual(m[i][j], other[i][j]) {
				return false
			}
		}
	}
	return true
}

package qsim

import (
	"math"
	"math/cmplx"
)

// Complex is the amplitude scalar. All state amplitudes and matrix entries
// are plain complex128 values; helpers below cover the operations the
// language does not provide directly.
type Complex = complex128

// Epsilon is the default tolerance for amplitude and matrix comparisons.
// Accumulated rotation error makes exact float comparison meaningless.
const Epsilon = 1e-10

// Probability returns |c|² without taking the square root.
func Probability(c Complex) float64 {
	return real(c)*real(c) + imag(c)*imag(c)
}

// Magnitude returns |c|.
func Magnitude(c Complex) float64 {
	return cmplx.Abs(c)
}

// FromPolar builds r·e^{iθ}.
func FromPolar(r, theta float64) Complex {
	return cmplx.Rect(r, theta)
}

// ApproxEqual reports whether a and b agree within Epsilon componentwise.
func ApproxEqual(a, b Complex) bool {
	return math.Abs(real(a)-real(b)) < Epsilon && math.Abs(imag(a)-imag(b)) < Epsilon
}

// approxZero reports whether c is within Epsilon of zero.
func approxZero(c Complex) bool {
	return math.Abs(real(c)) < Epsilon && math.Abs(imag(c)) < Epsilon
}

package qsim

import (
	"fmt"
	"math/cmplx"
)

// ReducedDensity computes the single-qubit reduced density matrix of qubit
// q by tracing out every other qubit: entries sum amplitude_i·conj(amplitude_j)
// over index pairs agreeing on all bits except q.
func (s *State) ReducedDensity(q int) ([2][2]Complex, error) {
	var rho [2][2]Complex
	if q < 0 || q >= s.NumQubits {
		return rho, fmt.Errorf("%w: q[%d] with %d qubits", ErrQubitRange, q, s.NumQubits)
	}
	bit := 1 << q
	for i, a0 := range s.Amps {
		if i&bit != 0 {
			continue
		}
		a1 := s.Amps[i|bit]
		rho[0][0] += a0 * cmplx.Conj(a0)
		rho[0][1] += a0 * cmplx.Conj(a1)
		rho[1][0] += a1 * cmplx.Conj(a0)
		rho[1][1] += a1 * cmplx.Conj(a1)
	}
	return rho, nil
}

// BlochVector is a qubit's reduced state as a point in the Bloch ball.
// Pure is false when the qubit is entangled with the rest of the register;
// a maximally mixed qubit sits at the origin and consumers pick their own
// display pole for it.
type BlochVector struct {
	X, Y, Z float64
	Pure    bool
}

// Bloch derives qubit q's Bloch vector from its reduced density matrix.
// The y sign follows the Y matrix convention in gates.go: |0⟩+i|1⟩ lands on
// +y. Purity is Tr(ρ²) ≈ 1, equivalent to ρ² ≈ ρ for a trace-one 2×2.
func (s *State) Bloch(q int) (BlochVector, error) {
	rho, err := s.ReducedDensity(q)
	if err != nil {
		return BlochVector{}, err
	}
	trSq := Probability(rho[0][0]) + Probability(rho[1][1]) + 2*Probability(rho[0][1])
	return BlochVector{
		X:    2 * real(rho[0][1]),
		Y:    -2 * imag(rho[0][1]),
		Z:    real(rho[0][0] - rho[1][1]),
		Pure: trSq > 1-1e-6,
	}, nil
}

// DensityMatrix returns the outer product |ψ⟩⟨ψ| as a fresh matrix. Used
// for purity checks and verification; never mutated in place.
func (s *State) DensityMatrix() Matrix {
	dim := len(s.Amps)
	rho := make(Matrix, dim)
	for i := range rho {
		rho[i] = make([]Complex, dim)
		for j := 0; j < dim; j++ {
			rho[i][j] = s.Amps[i] * cmplx.Conj(s.Amps[j])
		}
	}
	return rho
}

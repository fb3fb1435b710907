package qsim

import (
	"math"
	"math/cmplx"
	"testing"
)

func assertBloch(t *testing.T, got BlochVector, x, y, z float64, pure bool) {
	t.Helper()
	const tol = 1e-9
	if math.Abs(got.X-x) > tol || math.Abs(got.Y-y) > tol || math.Abs(got.Z-z) > tol {
		t.Errorf("Bloch = (%g, %g, %g), want (%g, %g, %g)", got.X, got.Y, got.Z, x, y, z)
	}
	if got.Pure != pure {
		t.Errorf("Pure = %v, want %v", got.Pure, pure)
	}
}

func TestBlochPoles(t *testing.T) {
	s := NewState(1)
	v, err := s.Bloch(0)
	if err != nil {
		t.Fatal(err)
	}
	assertBloch(t, v, 0, 0, 1, true)

	s.Apply(GateMatrix(KindX), 0)
	v, _ = s.Bloch(0)
	assertBloch(t, v, 0, 0, -1, true)
}

func TestBlochConventions(t *testing.T) {
	// H|0⟩ lands on +x.
	s := NewState(1)
	s.Apply(GateMatrix(KindH), 0)
	v, _ := s.Bloch(0)
	assertBloch(t, v, 1, 0, 0, true)

	// S·H|0⟩ = (|0⟩+i|1⟩)/√2 lands on +y.
	s = NewState(1)
	s.Apply(GateMatrix(KindH), 0)
	s.Apply(GateMatrix(KindS), 0)
	v, _ = s.Bloch(0)
	assertBloch(t, v, 0, 1, 0, true)

	// RX(π/2)|0⟩ rotates the +z pole onto -y. This pins the
	// y = -2·Im(ρ01) sign choice to the Y-matrix convention.
	s = NewState(1)
	s.Apply(RotationMatrix(KindRX, math.Pi/2), 0)
	v, _ = s.Bloch(0)
	assertBloch(t, v, 0, -1, 0, true)
}

func TestSeparableRoundTrip(t *testing.T) {
	// |a⟩⊗|b⟩: each qubit's reduced Bloch vector equals the single-qubit
	// preparation applied to it.
	s := NewState(2)
	s.Apply(RotationMatrix(KindRY, 0.8), 0)
	s.Apply(RotationMatrix(KindRX, 1.9), 1)

	single0 := NewState(1)
	single0.Apply(RotationMatrix(KindRY, 0.8), 0)
	single1 := NewState(1)
	single1.Apply(RotationMatrix(KindRX, 1.9), 0)

	want0, _ := single0.Bloch(0)
	want1, _ := single1.Bloch(0)
	got0, _ := s.Bloch(0)
	got1, _ := s.Bloch(1)

	assertBloch(t, got0, want0.X, want0.Y, want0.Z, true)
	assertBloch(t, got1, want1.X, want1.Y, want1.Z, true)
}

func TestBellPairIsMaximallyMixed(t *testing.T) {
	s := NewState(2)
	s.Apply(GateMatrix(KindH), 0)
	s.ApplyCX(0, 1)

	for q := 0; q < 2; q++ {
		v, err := s.Bloch(q)
		if err != nil {
			t.Fatal(err)
		}
		assertBloch(t, v, 0, 0, 0, false)
	}
}

func TestReducedDensityTrace(t *testing.T) {
	s := NewState(3)
	s.Apply(GateMatrix(KindH), 0)
	s.ApplyCX(0, 2)
	s.Apply(RotationMatrix(KindRZ, 0.4), 1)

	for q := 0; q < 3; q++ {
		rho, err := s.ReducedDensity(q)
		if err != nil {
			t.Fatal(err)
		}
		tr := rho[0][0] + rho[1][1]
		if !ApproxEqual(tr, 1) {
			t.Errorf("q%d: Tr(ρ) = %v, want 1", q, tr)
		}
		if !ApproxEqual(rho[0][1], cmplx.Conj(rho[1][0])) {
			t.Errorf("q%d: ρ01 != conj(ρ10)", q)
		}
	}
}

func TestDensityMatrixPurity(t *testing.T) {
	s := NewState(2)
	s.Apply(GateMatrix(KindH), 0)
	s.ApplyCX(0, 1)

	rho := s.DensityMatrix()
	// Pure state: ρ² = ρ.
	if !rho.Mul(rho).ApproxEqual(rho) {
		t.Error("|ψ⟩⟨ψ| should be idempotent")
	}
	tr := Complex(0)
	for i := range rho {
		tr += rho[i][i]
	}
	if !ApproxEqual(tr, 1) {
		t.Errorf("Tr(ρ) = %v, want 1", tr)
	}
}

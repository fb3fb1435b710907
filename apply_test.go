package qsim

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

// assertAmps compares a state against expected amplitudes within Epsilon.
func assertAmps(t *testing.T, s *State, want []Complex) {
	t.Helper()
	if len(s.Amps) != len(want) {
		t.Fatalf("dim = %d, want %d", len(s.Amps), len(want))
	}
	for i := range want {
		if !ApproxEqual(s.Amps[i], want[i]) {
			t.Errorf("amp[%d] = %v, want %v", i, s.Amps[i], want[i])
		}
	}
}

func TestInvolutions(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
	}{
		{"H twice", KindH},
		{"X twice", KindX},
		{"Z twice", KindZ},
	}
	for _, tt := range tests {
		s := NewState(3)
		// Start from a non-trivial state.
		s.applySingle(matH, 0)
		s.applySingle(RotationMatrix(KindRY, 0.7), 2)
		ref := s.Clone()

		m := GateMatrix(tt.kind)
		if err := s.Apply(m, 1); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if err := s.Apply(m, 1); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		assertAmps(t, s, ref.Amps)
	}

	// SWAP twice is identity too.
	s := NewState(3)
	s.applySingle(matH, 0)
	ref := s.Clone()
	s.ApplySwap(0, 2)
	s.ApplySwap(0, 2)
	assertAmps(t, s, ref.Amps)
}

func TestCNOTTruthTable(t *testing.T) {
	// control = qubit 0 (LSB), target = qubit 1. Index 0b(t c).
	tests := []struct {
		in, out int
	}{
		{0b00, 0b00},
		{0b01, 0b11}, // control set, target flips
		{0b10, 0b10},
		{0b11, 0b01},
	}
	for _, tt := range tests {
		s := NewState(2)
		s.Amps[0] = 0
		s.Amps[tt.in] = 1
		if err := s.ApplyCX(0, 1); err != nil {
			t.Fatalf("ApplyCX: %v", err)
		}
		if !ApproxEqual(s.Amps[tt.out], 1) {
			t.Errorf("CX on |%02b⟩: amp[%02b] = %v, want 1", tt.in, tt.out, s.Amps[tt.out])
		}
	}
}

func TestBellState(t *testing.T) {
	s := NewState(2)
	if err := s.Apply(GateMatrix(KindH), 0); err != nil {
		t.Fatal(err)
	}
	if err := s.ApplyCX(0, 1); err != nil {
		t.Fatal(err)
	}
	inv := complex(1/math.Sqrt2, 0)
	assertAmps(t, s, []Complex{inv, 0, 0, inv})
}

func TestEndToEndHHCX(t *testing.T) {
	// |000⟩, H on q0, H on q1, CX(0→2): four basis states at amplitude 0.5.
	s := NewState(3)
	s.Apply(GateMatrix(KindH), 0)
	s.Apply(GateMatrix(KindH), 1)
	s.ApplyCX(0, 2)

	half := complex(0.5, 0)
	// q0 spreads to indices {0,1}, q1 to {0,2}; CX copies q0 into q2.
	assertAmps(t, s, []Complex{half, 0, half, 0, 0, half, 0, half})

	for _, i := range []int{0, 2, 5, 7} {
		if p := Probability(s.Amps[i]); math.Abs(p-0.25) > Epsilon {
			t.Errorf("P(|%03b⟩) = %g, want 0.25", i, p)
		}
	}
}

func TestNormPreservation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s := NewState(5)
	kinds := []Kind{KindH, KindX, KindY, KindZ, KindS, KindT}
	for i := 0; i < 200; i++ {
		switch rng.Intn(4) {
		case 0:
			s.Apply(GateMatrix(kinds[rng.Intn(len(kinds))]), rng.Intn(5))
		case 1:
			s.Apply(RotationMatrix(KindRX, rng.Float64()*2*math.Pi), rng.Intn(5))
		case 2:
			a, b := rng.Intn(5), rng.Intn(5)
			if a != b {
				s.ApplyCX(a, b)
			}
		case 3:
			a, b := rng.Intn(5), rng.Intn(5)
			if a != b {
				s.Apply(matSwap, a, b)
			}
		}
		if norm := s.Norm(); math.Abs(norm-1) > 1e-9 {
			t.Fatalf("after %d gates: norm = %g", i+1, norm)
		}
	}
}

// Closed-form paths must agree with the synthesized-matrix paths.
func TestClosedFormMatrixParity(t *testing.T) {
	prepare := func() *State {
		s := NewState(4)
		s.applySingle(matH, 0)
		s.applySingle(matH, 1)
		s.applySingle(RotationMatrix(KindRY, 1.3), 2)
		s.applySingle(GateMatrix(KindT), 0)
		s.ApplyCX(1, 3)
		return s
	}

	tests := []struct {
		name   string
		closed func(*State) error
		matrix func(*State) error
	}{
		{"CX", func(s *State) error { return s.ApplyCX(0, 2) },
			func(s *State) error { return s.Apply(matCX, 0, 2) }},
		{"CY", func(s *State) error { return s.ApplyCY(1, 3) },
			func(s *State) error { return s.Apply(matCY, 1, 3) }},
		{"CZ", func(s *State) error { return s.ApplyCZ(2, 0) },
			func(s *State) error { return s.Apply(matCZ, 2, 0) }},
		{"SWAP", func(s *State) error { return s.ApplySwap(1, 2) },
			func(s *State) error { return s.Apply(matSwap, 1, 2) }},
		{"MCX", func(s *State) error { return s.ApplyMCX([]int{0, 1}, 3) },
			func(s *State) error { return s.Apply(ControlledMatrix(matX, 2), 0, 1, 3) }},
		{"MCY", func(s *State) error { return s.ApplyMCY([]int{0, 2}, 1) },
			func(s *State) error { return s.Apply(ControlledMatrix(matY, 2), 0, 2, 1) }},
		{"MCZ", func(s *State) error { return s.ApplyMCZ([]int{1, 3}, 0) },
			func(s *State) error { return s.Apply(ControlledMatrix(matZ, 2), 1, 3, 0) }},
	}
	for _, tt := range tests {
		a, b := prepare(), prepare()
		if err := tt.closed(a); err != nil {
			t.Fatalf("%s closed form: %v", tt.name, err)
		}
		if err := tt.matrix(b); err != nil {
			t.Fatalf("%s matrix path: %v", tt.name, err)
		}
		for i := range a.Amps {
			if !ApproxEqual(a.Amps[i], b.Amps[i]) {
				t.Errorf("%s: amp[%d] closed=%v matrix=%v", tt.name, i, a.Amps[i], b.Amps[i])
			}
		}
	}
}

// The general contraction (k=3 path, exercised through the MCX parity
// above) must also agree with decomposing onto the optimized paths.
func TestGeneralContractionAgainstPairPath(t *testing.T) {
	// SWAP⊗I-style check: a 4x4 on qubits (2,0) via the pair path vs the
	// same operation built as an 8x8 acting on (2,0,1) with identity on
	// qubit 1, via the general path.
	big := Identity(8)
	// Embed matSwap on sub-basis bits 0,1 with bit 2 untouched.
	for hi := 0; hi < 2; hi++ {
		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				big[hi<<2|r][hi<<2|c] = matSwap[r][c]
			}
		}
	}

	a := NewState(3)
	a.applySingle(matH, 0)
	a.applySingle(RotationMatrix(KindRX, 0.9), 2)
	b := a.Clone()

	if err := a.Apply(matSwap, 2, 0); err != nil {
		t.Fatal(err)
	}
	if err := b.Apply(big, 2, 0, 1); err != nil {
		t.Fatal(err)
	}
	for i := range a.Amps {
		if !ApproxEqual(a.Amps[i], b.Amps[i]) {
			t.Errorf("amp[%d]: pair=%v general=%v", i, a.Amps[i], b.Amps[i])
		}
	}
}

func TestApplyValidation(t *testing.T) {
	s := NewState(2)
	before := append([]Complex{}, s.Amps...)

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"out of range", func() error { return s.Apply(matX, 5) }, ErrQubitRange},
		{"negative", func() error { return s.Apply(matX, -1) }, ErrQubitRange},
		{"duplicate", func() error { return s.Apply(matCX, 1, 1) }, ErrDuplicateQubit},
		{"control==target", func() error { return s.ApplyCX(0, 0) }, ErrControlIsTarget},
		{"dim mismatch", func() error { return s.Apply(matCX, 0) }, ErrBadDimension},
		{"mcx empty controls", func() error { return s.ApplyMCX(nil, 0) }, ErrQubitRange},
	}
	for _, tt := range tests {
		err := tt.call()
		if !errors.Is(err, tt.want) {
			t.Errorf("%s: error = %v, want %v", tt.name, err, tt.want)
		}
	}

	// Validation failures must not touch the amplitudes.
	assertAmps(t, s, before)
}

func TestSetAmplitudes(t *testing.T) {
	s := NewState(1)
	if err := s.SetAmplitudes([]Complex{3, 4}); err != nil {
		t.Fatal(err)
	}
	if !ApproxEqual(s.Amps[0], 0.6) || !ApproxEqual(s.Amps[1], 0.8) {
		t.Errorf("renormalized amps = %v", s.Amps)
	}

	if err := s.SetAmplitudes([]Complex{1, 0, 0}); !errors.Is(err, ErrBadAmplitudes) {
		t.Errorf("non power of two: error = %v, want ErrBadAmplitudes", err)
	}
	if err := s.SetAmplitudes([]Complex{0, 0}); !errors.Is(err, ErrBadAmplitudes) {
		t.Errorf("zero norm: error = %v, want ErrBadAmplitudes", err)
	}
}

func TestProbabilities(t *testing.T) {
	s := NewState(2)
	s.Apply(GateMatrix(KindH), 0)

	if p := s.Probability(0, 0); math.Abs(p-0.5) > Epsilon {
		t.Errorf("P(q0=0) = %g, want 0.5", p)
	}
	if p := s.Probability(1, 1); math.Abs(p) > Epsilon {
		t.Errorf("P(q1=1) = %g, want 0", p)
	}

	probs := s.Probabilities()
	if math.Abs(probs[0]-0.5) > Epsilon || math.Abs(probs[1]) > Epsilon {
		t.Errorf("Probabilities() = %v", probs)
	}
}

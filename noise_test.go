package qsim

import (
	"math"
	"math/rand"
	"testing"
)

func TestAmplitudeDampingFullDecay(t *testing.T) {
	// gamma=1 always relaxes |1⟩ to |0⟩.
	s := NewState(1)
	s.SetRand(rand.New(rand.NewSource(1)))
	s.Apply(GateMatrix(KindX), 0)

	if err := s.ApplyAmplitudeDamping(0, 1); err != nil {
		t.Fatal(err)
	}
	if p := s.Probability(0, 0); math.Abs(p-1) > Epsilon {
		t.Errorf("P(0) after full decay = %g, want 1", p)
	}
	if norm := s.Norm(); math.Abs(norm-1) > Epsilon {
		t.Errorf("norm = %g", norm)
	}
}

func TestAmplitudeDampingZeroIsNoop(t *testing.T) {
	s := NewState(2)
	s.SetRand(rand.New(rand.NewSource(2)))
	s.Apply(GateMatrix(KindH), 0)
	before := append([]Complex{}, s.Amps...)

	if err := s.ApplyAmplitudeDamping(0, 0); err != nil {
		t.Fatal(err)
	}
	assertAmps(t, s, before)
}

func TestAmplitudeDampingBias(t *testing.T) {
	// Repeated trajectories on H|0⟩ with gamma=0.5 must relax toward |0⟩:
	// the averaged P(1) drops well below the noiseless 0.5.
	rng := rand.New(rand.NewSource(5))
	total := 0.0
	const trials = 500
	for i := 0; i < trials; i++ {
		s := NewState(1)
		s.SetRand(rng)
		s.Apply(GateMatrix(KindH), 0)
		if err := s.ApplyAmplitudeDamping(0, 0.5); err != nil {
			t.Fatal(err)
		}
		total += s.Probability(0, 1)
	}
	if avg := total / trials; avg > 0.4 {
		t.Errorf("mean P(1) = %g, want < 0.4 under damping", avg)
	}
}

func TestPhaseDampingPreservesPopulations(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	for i := 0; i < 50; i++ {
		s := NewState(1)
		s.SetRand(rng)
		s.Apply(RotationMatrix(KindRY, 1.1), 0)
		want := s.Probability(0, 1)

		if err := s.ApplyPhaseDamping(0, 0.7); err != nil {
			t.Fatal(err)
		}
		if got := s.Probability(0, 1); math.Abs(got-want) > Epsilon {
			t.Errorf("dephasing changed populations: %g -> %g", want, got)
		}
		if norm := s.Norm(); math.Abs(norm-1) > Epsilon {
			t.Errorf("norm = %g", norm)
		}
	}
}

func TestNoiseValidation(t *testing.T) {
	s := NewState(1)
	if err := s.ApplyAmplitudeDamping(3, 0.1); err == nil {
		t.Error("out-of-range qubit should fail")
	}
	if err := s.ApplyPhaseDamping(-1, 0.1); err == nil {
		t.Error("negative qubit should fail")
	}
}

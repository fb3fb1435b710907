package qsim

import (
	"fmt"
	"math"
)

// Relaxation channels, simulated by quantum trajectories: one Kraus branch
// is sampled per application using the state's RNG, so a single execution
// stays a pure state vector. Averaging over runs reproduces the channel.

// ApplyAmplitudeDamping applies T1-style relaxation with decay probability
// gamma to qubit q: with probability gamma·P(1) the excitation decays to
// |0⟩, otherwise the |1⟩ component is attenuated by √(1−gamma).
func (s *State) ApplyAmplitudeDamping(q int, gamma float64) error {
	if q < 0 || q >= s.NumQubits {
		return fmt.Errorf("%w: q[%d] with %d qubits", ErrQubitRange, q, s.NumQubits)
	}
	gamma = clampUnit(gamma)
	pDecay := gamma * s.Probability(q, 1)
	if s.rng.Float64() < pDecay {
		// Decay branch: |1⟩ drops to |0⟩. Project onto bit=1, then flip.
		s.collapse(q, 1)
		s.applySingle(matX, q)
		return nil
	}
	// No-decay branch: K0 = diag(1, √(1−gamma)), then renormalize.
	bit := 1 << q
	damp := complex(math.Sqrt(1-gamma), 0)
	total := 0.0
	for i, a := range s.Amps {
		if i&bit != 0 {
			a *= damp
			s.Amps[i] = a
		}
		total += Probability(a)
	}
	s.renormalize(total)
	return nil
}

// ApplyPhaseDamping applies T2-style dephasing with probability lambda to
// qubit q: with probability lambda the qubit's phase coherence collapses
// (a Z is applied half the time, which averages the off-diagonals away),
// otherwise the state is untouched.
func (s *State) ApplyPhaseDamping(q int, lambda float64) error {
	if q < 0 || q >= s.NumQubits {
		return fmt.Errorf("%w: q[%d] with %d qubits", ErrQubitRange, q, s.NumQubits)
	}
	lambda = clampUnit(lambda)
	if s.rng.Float64() < lambda && s.rng.Float64() < 0.5 {
		s.applySingle(matZ, q)
	}
	return nil
}

func (s *State) renormalize(total float64) {
	if total < Epsilon {
		return
	}
	norm := complex(math.Sqrt(total), 0)
	for i, a := range s.Amps {
		s.Amps[i] = a / norm
	}
}

func clampUnit(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

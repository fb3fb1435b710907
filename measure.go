package qsim

import (
	"fmt"
	"math"
	"strings"
)

// Measure samples qubit q from its marginal distribution, collapses the
// state onto the observed outcome and renormalizes. The draw comes from the
// state's sampling source; inject a seeded source for determinism.
func (s *State) Measure(q int) (int, error) {
	if q < 0 || q >= s.NumQubits {
		return 0, fmt.Errorf("%w: q[%d] with %d qubits", ErrQubitRange, q, s.NumQubits)
	}
	outcome := 0
	if s.rng.Float64() >= s.Probability(q, 0) {
		outcome = 1
	}
	s.collapse(q, outcome)
	return outcome, nil
}

// collapse zeroes every amplitude whose bit q disagrees with outcome and
// renormalizes the survivors. A total surviving probability below Epsilon
// leaves the zero vector in place; with outcomes sampled from the marginal
// this branch is unreachable short of pathological rounding.
func (s *State) collapse(q, outcome int) {
	bit := 1 << q
	total := 0.0
	for i, a := range s.Amps {
		if (i&bit != 0) == (outcome != 0) {
			total += Probability(a)
		} else {
			s.Amps[i] = 0
		}
	}
	if total < Epsilon {
		return
	}
	norm := complex(math.Sqrt(total), 0)
	for i, a := range s.Amps {
		if a != 0 {
			s.Amps[i] = a / norm
		}
	}
}

// MeasureAll measures every qubit in index order, collapsing cumulatively,
// and returns the outcome bitstring with qubit 0 first.
func (s *State) MeasureAll() string {
	var sb strings.Builder
	for q := 0; q < s.NumQubits; q++ {
		outcome, _ := s.Measure(q)
		sb.WriteByte('0' + byte(outcome))
	}
	return sb.String()
}

// Reset projects qubit q to |0⟩ without sampling, renormalizing the
// survivors. A qubit already certain to be 1 degenerates to the zero
// vector, same as collapse.
func (s *State) Reset(q int) error {
	if q < 0 || q >= s.NumQubits {
		return fmt.Errorf("%w: q[%d] with %d qubits", ErrQubitRange, q, s.NumQubits)
	}
	s.collapse(q, 0)
	return nil
}
